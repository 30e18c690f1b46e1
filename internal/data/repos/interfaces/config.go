package interfaces

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

type InterfaceConfigRepo interface {
	// Create persists one sealed config at the version the caller sealed
	// into the payload. The caller owns the version bump because the
	// ciphertext already embeds it; the unique index turns a concurrent
	// bump into ErrConflict.
	Create(dbc dbctx.Context, rec *types.InterfaceConfigRecord) (*types.InterfaceConfigRecord, error)

	GetLatestByUser(dbc dbctx.Context, userID uuid.UUID) (*types.InterfaceConfigRecord, error)
}

type interfaceConfigRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewInterfaceConfigRepo(db *gorm.DB, baseLog *logger.Logger) InterfaceConfigRepo {
	return &interfaceConfigRepo{db: db, log: baseLog.With("repo", "InterfaceConfigRepo")}
}

func (r *interfaceConfigRepo) Create(dbc dbctx.Context, rec *types.InterfaceConfigRecord) (*types.InterfaceConfigRecord, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if rec == nil {
		return nil, fmt.Errorf("nil config record: %w", pkgerrors.ErrInvalidArgument)
	}
	if rec.UserID == uuid.Nil {
		return nil, fmt.Errorf("config record missing user id: %w", pkgerrors.ErrInvalidArgument)
	}
	if rec.Version <= 0 {
		return nil, fmt.Errorf("config record missing version: %w", pkgerrors.ErrInvalidArgument)
	}
	if len(rec.Encrypted) == 0 {
		return nil, fmt.Errorf("config record missing ciphertext: %w", pkgerrors.ErrInvalidArgument)
	}
	if err := transaction.WithContext(dbc.Ctx).Create(rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("config version %d already stored for user %s: %w", rec.Version, rec.UserID, pkgerrors.ErrConflict)
		}
		return nil, err
	}
	return rec, nil
}

func (r *interfaceConfigRepo) GetLatestByUser(dbc dbctx.Context, userID uuid.UUID) (*types.InterfaceConfigRecord, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == uuid.Nil {
		return nil, nil
	}
	var rec types.InterfaceConfigRecord
	err := transaction.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("version DESC").
		Limit(1).
		Find(&rec).Error
	if err != nil {
		return nil, err
	}
	if rec.ID == uuid.Nil {
		return nil, nil
	}
	return &rec, nil
}
