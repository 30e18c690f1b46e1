package interfacegen

import (
	"testing"

	"github.com/google/uuid"

	"github.com/attunelabs/attune-backend/internal/domain"
	"github.com/attunelabs/attune-backend/internal/domain/patterns"
	"github.com/attunelabs/attune-backend/internal/platform/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("dev")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

// basePatterns is a settled low-risk snapshot. Tests overwrite what they
// need.
func basePatterns() domain.AggregatedPatterns {
	return domain.AggregatedPatterns{
		UserID:         uuid.New(),
		SessionCount:   10,
		WindowDays:     30,
		DataConfidence: 0.8,
		Baseline:       domain.VoiceBaseline{Established: true, SessionCount: 10},
		Emotional: domain.EmotionalPattern{
			Trajectory:   patterns.TrajectoryStable,
			Distribution: map[string]float64{"neutral": 0.6, "calm": 0.4},
			Variability:  0.3,
		},
		Cultural: domain.CulturalContext{
			PrimaryLanguage:       "en",
			StoicismLevel:         patterns.StoicismLow,
			CommunicationApproach: "direct_supportive",
		},
		Risk: domain.RiskAssessment{
			Level:      patterns.RiskLow,
			Score:      0.1,
			Trajectory: patterns.RiskTrajectoryStable,
		},
	}
}

func criticalPatterns() domain.AggregatedPatterns {
	p := basePatterns()
	p.Risk = domain.RiskAssessment{
		Level:          patterns.RiskCritical,
		Score:          0.9,
		Trajectory:     patterns.RiskTrajectoryEscalating,
		AlertCounselor: true,
	}
	p.Dissonance = &domain.DissonanceResult{
		Score:     0.85,
		Type:      patterns.DissonanceDefensiveConcealment,
		RiskLevel: patterns.RiskCritical,
	}
	return p
}

func withRisk(p domain.AggregatedPatterns, level string) domain.AggregatedPatterns {
	p.Risk.Level = level
	p.Risk.AlertCounselor = level == patterns.RiskHigh || level == patterns.RiskCritical
	return p
}
