package jobs

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/attunelabs/attune-backend/internal/domain"
	"github.com/attunelabs/attune-backend/internal/pkg/dbctx"
	"github.com/attunelabs/attune-backend/internal/platform/logger"
)

type BuildRunRepo interface {
	Create(dbc dbctx.Context, runs []*types.BuildRun) ([]*types.BuildRun, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error

	// GetLatest returns the most recently started run, optionally scoped
	// to one timezone. Nil when no run has ever happened.
	GetLatest(dbc dbctx.Context, timezone string) (*types.BuildRun, error)
}

type buildRunRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBuildRunRepo(db *gorm.DB, baseLog *logger.Logger) BuildRunRepo {
	return &buildRunRepo{db: db, log: baseLog.With("repo", "BuildRunRepo")}
}

func (r *buildRunRepo) Create(dbc dbctx.Context, runs []*types.BuildRun) ([]*types.BuildRun, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(runs) == 0 {
		return []*types.BuildRun{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

func (r *buildRunRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	if updates == nil {
		updates = map[string]any{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.BuildRun{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *buildRunRepo) GetLatest(dbc dbctx.Context, timezone string) (*types.BuildRun, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(dbc.Ctx).Model(&types.BuildRun{})
	if timezone != "" {
		q = q.Where("timezone = ?", timezone)
	}
	var run types.BuildRun
	err := q.Order("started_at DESC").
		Limit(1).
		Find(&run).Error
	if err != nil {
		return nil, err
	}
	if run.ID == uuid.Nil {
		return nil, nil
	}
	return &run, nil
}
