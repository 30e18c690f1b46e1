package patterns

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/attunelabs/attune-backend/internal/domain"
	"github.com/attunelabs/attune-backend/internal/pkg/dbctx"
	pkgerrors "github.com/attunelabs/attune-backend/internal/pkg/errors"
	"github.com/attunelabs/attune-backend/internal/platform/logger"
)

type PatternSnapshotRepo interface {
	// Create persists the snapshot at the next version for its user. The
	// version is assigned inside the write transaction; losing the
	// unique-index race surfaces as ErrConflict.
	Create(dbc dbctx.Context, snap *types.PatternSnapshot) (*types.PatternSnapshot, error)

	GetLatestByUser(dbc dbctx.Context, userID uuid.UUID) (*types.PatternSnapshot, error)
}

type patternSnapshotRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPatternSnapshotRepo(db *gorm.DB, baseLog *logger.Logger) PatternSnapshotRepo {
	return &patternSnapshotRepo{db: db, log: baseLog.With("repo", "PatternSnapshotRepo")}
}

func (r *patternSnapshotRepo) Create(dbc dbctx.Context, snap *types.PatternSnapshot) (*types.PatternSnapshot, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if snap == nil {
		return nil, fmt.Errorf("nil snapshot: %w", pkgerrors.ErrInvalidArgument)
	}
	if snap.UserID == uuid.Nil {
		return nil, fmt.Errorf("snapshot missing user id: %w", pkgerrors.ErrInvalidArgument)
	}
	err := transaction.WithContext(dbc.Ctx).Transaction(func(txx *gorm.DB) error {
		var latest int
		if err := txx.Model(&types.PatternSnapshot{}).
			Select("COALESCE(MAX(version), 0)").
			Where("user_id = ?", snap.UserID).
			Scan(&latest).Error; err != nil {
			return err
		}
		snap.Version = latest + 1
		return txx.Create(snap).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("snapshot version race for user %s: %w", snap.UserID, pkgerrors.ErrConflict)
		}
		return nil, err
	}
	return snap, nil
}

func (r *patternSnapshotRepo) GetLatestByUser(dbc dbctx.Context, userID uuid.UUID) (*types.PatternSnapshot, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == uuid.Nil {
		return nil, nil
	}
	var snap types.PatternSnapshot
	err := transaction.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("version DESC").
		Limit(1).
		Find(&snap).Error
	if err != nil {
		return nil, err
	}
	if snap.ID == uuid.Nil {
		return nil, nil
	}
	return &snap, nil
}
