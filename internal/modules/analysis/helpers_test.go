package analysis

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/attunelabs/attune-backend/internal/domain"
	"github.com/attunelabs/attune-backend/internal/domain/session"
	"github.com/attunelabs/attune-backend/internal/modules/analysis/tables"
	"github.com/attunelabs/attune-backend/internal/platform/logger"
)

var testStart = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

// quietFeatures trip no micro-moment thresholds.
var quietFeatures = domain.VoiceFeatures{
	PitchMean:        150,
	PitchStd:         20,
	PitchRange:       100,
	EnergyMean:       0.5,
	EnergyStd:        0.05,
	SpeechRate:       1.0,
	PauseRatio:       0.1,
	ZeroCrossingRate: 0.05,
}

// shakyFeatures trip tremor, voice crack, sigh, hesitation, and harshness.
var shakyFeatures = domain.VoiceFeatures{
	PitchMean:        150,
	PitchStd:         60,
	PitchRange:       250,
	EnergyMean:       0.5,
	EnergyStd:        0.2,
	SpeechRate:       1.0,
	PauseRatio:       0.4,
	ZeroCrossingRate: 0.2,
}

func loadTables(t *testing.T) *tables.Tables {
	t.Helper()
	tab, err := tables.Load()
	if err != nil {
		t.Fatalf("tables.Load: %v", err)
	}
	return tab
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("dev")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func makeSession(offsetHours int, emotion, transcript string, f domain.VoiceFeatures) domain.VoiceSession {
	return domain.VoiceSession{
		ID:                     uuid.New(),
		UserID:                 uuid.New(),
		RecordedAt:             testStart.Add(time.Duration(offsetHours) * time.Hour),
		Transcript:             transcript,
		VoiceEmotion:           emotion,
		VoiceEmotionConfidence: 0.8,
		Features:               session.EncodeVoiceFeatures(f),
		Processed:              true,
	}
}

// emotionRun builds one session per day with the given emotion labels.
func emotionRun(emotions ...string) []domain.VoiceSession {
	out := make([]domain.VoiceSession, 0, len(emotions))
	for i, e := range emotions {
		out = append(out, makeSession(i*24, e, "talked about my day", quietFeatures))
	}
	return out
}
