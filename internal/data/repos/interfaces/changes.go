package interfaces

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/attunelabs/attune-backend/internal/domain"
	"github.com/attunelabs/attune-backend/internal/pkg/dbctx"
	"github.com/attunelabs/attune-backend/internal/platform/logger"
)

type InterfaceChangeRepo interface {
	CreateMany(dbc dbctx.Context, rows []*types.InterfaceChangeRecord) ([]*types.InterfaceChangeRecord, error)

	// ListByUser returns the newest change lines first, capped at limit.
	ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.InterfaceChangeRecord, error)

	ListByConfigVersion(dbc dbctx.Context, userID uuid.UUID, version int) ([]*types.InterfaceChangeRecord, error)
}

type interfaceChangeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewInterfaceChangeRepo(db *gorm.DB, baseLog *logger.Logger) InterfaceChangeRepo {
	return &interfaceChangeRepo{db: db, log: baseLog.With("repo", "InterfaceChangeRepo")}
}

func (r *interfaceChangeRepo) CreateMany(dbc dbctx.Context, rows []*types.InterfaceChangeRecord) ([]*types.InterfaceChangeRecord, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rows) == 0 {
		return []*types.InterfaceChangeRecord{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *interfaceChangeRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.InterfaceChangeRecord, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == uuid.Nil {
		return nil, nil
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var out []*types.InterfaceChangeRecord
	if err := transaction.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("config_version DESC, created_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *interfaceChangeRepo) ListByConfigVersion(dbc dbctx.Context, userID uuid.UUID, version int) ([]*types.InterfaceChangeRecord, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == uuid.Nil || version <= 0 {
		return nil, nil
	}
	var out []*types.InterfaceChangeRecord
	if err := transaction.WithContext(dbc.Ctx).
		Where("user_id = ? AND config_version = ?", userID, version).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
