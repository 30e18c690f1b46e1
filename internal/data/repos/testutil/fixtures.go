package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/attunelabs/attune-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:          uuid.New(),
		AnonymousID: "anon-" + uuid.NewString(),
		Email:       email,
		Password:    "pw",
		Timezone:    "UTC",
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedSession(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, recordedAt time.Time, processed bool) *types.VoiceSession {
	tb.Helper()
	s := &types.VoiceSession{
		ID:                     uuid.New(),
		UserID:                 userID,
		RecordedAt:             recordedAt,
		DurationSeconds:        42,
		Transcript:             "talked about the day",
		VoiceEmotion:           "neutral",
		VoiceEmotionConfidence: 0.8,
		Features:               types.EncodeVoiceFeatures(types.VoiceFeatures{PitchMean: 180, SpeechRate: 3.1}),
		Processed:              processed,
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed session: %v", err)
	}
	return s
}

func PtrUUID(v uuid.UUID) *uuid.UUID { return &v }

func PtrTime(v time.Time) *time.Time { return &v }
