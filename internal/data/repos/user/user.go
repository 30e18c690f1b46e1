package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/attunelabs/attune-backend/internal/domain"
	"github.com/attunelabs/attune-backend/internal/pkg/dbctx"
	"github.com/attunelabs/attune-backend/internal/platform/logger"
)

type UserRepo interface {
	Create(dbc dbctx.Context, users []*types.User) ([]*types.User, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.User, error)
	GetByAnonymousID(dbc dbctx.Context, anonymousID string) (*types.User, error)
	EmailExists(dbc dbctx.Context, email string) (bool, error)

	// ListActiveForOvernight returns users active since the cutoff who have
	// at least one processed session, optionally filtered to one timezone.
	ListActiveForOvernight(dbc dbctx.Context, activeSince time.Time, timezone string) ([]*types.User, error)

	UpdateLastActive(dbc dbctx.Context, userID uuid.UUID, at time.Time) error
	UpdateConfigKey(dbc dbctx.Context, userID uuid.UUID, key, salt []byte, passphraseSet bool) error
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return &userRepo{db: db, log: baseLog.With("repo", "UserRepo")}
}

func (r *userRepo) Create(dbc dbctx.Context, users []*types.User) ([]*types.User, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(users) == 0 {
		return []*types.User{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.User, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.User
	if len(ids) == 0 {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *userRepo) GetByAnonymousID(dbc dbctx.Context, anonymousID string) (*types.User, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if anonymousID == "" {
		return nil, nil
	}
	var u types.User
	err := transaction.WithContext(dbc.Ctx).
		Where("anonymous_id = ?", anonymousID).
		Limit(1).
		Find(&u).Error
	if err != nil {
		return nil, err
	}
	if u.ID == uuid.Nil {
		return nil, nil
	}
	return &u, nil
}

func (r *userRepo) EmailExists(dbc dbctx.Context, email string) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.User{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *userRepo) ListActiveForOvernight(dbc dbctx.Context, activeSince time.Time, timezone string) ([]*types.User, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(dbc.Ctx).
		Model(&types.User{}).
		Distinct("app_user.*").
		Joins("JOIN voice_session ON voice_session.user_id = app_user.id AND voice_session.processed = ?", true).
		Where("app_user.last_active_at IS NOT NULL AND app_user.last_active_at >= ?", activeSince)
	if timezone != "" {
		q = q.Where("app_user.timezone = ?", timezone)
	}
	var out []*types.User
	if err := q.Order("app_user.created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *userRepo) UpdateLastActive(dbc dbctx.Context, userID uuid.UUID, at time.Time) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == uuid.Nil {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.User{}).
		Where("id = ?", userID).
		Update("last_active_at", at).Error
}

func (r *userRepo) UpdateConfigKey(dbc dbctx.Context, userID uuid.UUID, key, salt []byte, passphraseSet bool) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == uuid.Nil {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"config_key":     key,
			"key_salt":       salt,
			"passphrase_set": passphraseSet,
		}).Error
}
