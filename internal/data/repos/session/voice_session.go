package session

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/attunelabs/attune-backend/internal/domain"
	"github.com/attunelabs/attune-backend/internal/pkg/dbctx"
	"github.com/attunelabs/attune-backend/internal/platform/logger"
)

type VoiceSessionRepo interface {
	Create(dbc dbctx.Context, sessions []*types.VoiceSession) ([]*types.VoiceSession, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.VoiceSession, error)

	// ListByUserSince returns the user's processed sessions recorded at or
	// after the cutoff, oldest first. Analyzers depend on that ordering.
	ListByUserSince(dbc dbctx.Context, userID uuid.UUID, since time.Time) ([]*types.VoiceSession, error)

	CountProcessedSince(dbc dbctx.Context, userID uuid.UUID, since time.Time) (int64, error)
	MarkProcessed(dbc dbctx.Context, ids []uuid.UUID) error
}

type voiceSessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewVoiceSessionRepo(db *gorm.DB, baseLog *logger.Logger) VoiceSessionRepo {
	return &voiceSessionRepo{db: db, log: baseLog.With("repo", "VoiceSessionRepo")}
}

func (r *voiceSessionRepo) Create(dbc dbctx.Context, sessions []*types.VoiceSession) ([]*types.VoiceSession, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(sessions) == 0 {
		return []*types.VoiceSession{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *voiceSessionRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.VoiceSession, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.VoiceSession
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

func (r *voiceSessionRepo) ListByUserSince(dbc dbctx.Context, userID uuid.UUID, since time.Time) ([]*types.VoiceSession, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == uuid.Nil {
		return nil, nil
	}
	var out []*types.VoiceSession
	if err := transaction.WithContext(dbc.Ctx).
		Where("user_id = ? AND processed = ? AND recorded_at >= ?", userID, true, since).
		Order("recorded_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *voiceSessionRepo) CountProcessedSince(dbc dbctx.Context, userID uuid.UUID, since time.Time) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == uuid.Nil {
		return 0, nil
	}
	var count int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.VoiceSession{}).
		Where("user_id = ? AND processed = ? AND recorded_at >= ?", userID, true, since).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *voiceSessionRepo) MarkProcessed(dbc dbctx.Context, ids []uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(ids) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.VoiceSession{}).
		Where("id IN ?", ids).
		Updates(map[string]any{
			"processed":  true,
			"updated_at": time.Now(),
		}).Error
}
