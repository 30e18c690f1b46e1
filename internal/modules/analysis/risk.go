package analysis

import (
	"fmt"
	"math"

	"github.com/attunelabs/attune-backend/internal/domain"
	"github.com/attunelabs/attune-backend/internal/domain/patterns"
)

// Evidence weights. Calibration constants carried from the deployed rule
// set; the crisis floor keeps literal crisis language at critical no
// matter what the other signals say.
const (
	weightHighDissonance  = 0.25
	weightDecliningTrend  = 0.20
	weightHighRiskEmotion = 0.20
	weightNegativeTruth   = 0.15
	weightSevereTrigger   = 0.15
	weightVolatileState   = 0.10
	weightBaselineDrift   = 0.10
	severeTriggerCutoff   = 0.7
	baselineDriftCutoff   = 0.6
	crisisRiskFloor       = 0.85
	highDissonanceCutoff  = 0.7
)

// RiskInputs carries the analyzer outputs the engine fuses.
type RiskInputs struct {
	Dissonance *domain.DissonanceResult
	Emotional  domain.EmotionalPattern
	Triggers   domain.TriggerPattern
	Baseline   domain.VoiceBaseline
}

// RiskAssessmentEngine fuses dissonance, trajectory, triggers, and baseline
// deviation into a single leveled score.
type RiskAssessmentEngine struct{}

func NewRiskAssessmentEngine() *RiskAssessmentEngine { return &RiskAssessmentEngine{} }

func (e *RiskAssessmentEngine) Assess(in RiskInputs) domain.RiskAssessment {
	score := 0.0
	var factors []string
	var protective []string

	if d := in.Dissonance; d != nil {
		if d.Score > highDissonanceCutoff {
			score += weightHighDissonance
			factors = append(factors, "high word-voice dissonance")
		}
		if PolarityOf(d.TruthEmotion) == PolarityNegative {
			score += weightNegativeTruth
			factors = append(factors, fmt.Sprintf("voice indicates %s", d.TruthEmotion))
		}
		if d.BaselineDeviation != nil && *d.BaselineDeviation > baselineDriftCutoff {
			score += weightBaselineDrift
			factors = append(factors, "voice far from personal baseline")
		}
	}

	switch in.Emotional.Trajectory {
	case patterns.TrajectoryDeclining:
		score += weightDecliningTrend * math.Max(in.Emotional.TrajectoryConfidence, 0.5)
		factors = append(factors, "declining emotional trajectory")
	case patterns.TrajectoryVolatile:
		score += weightVolatileState
		factors = append(factors, "volatile emotional state")
	case patterns.TrajectoryImproving:
		protective = append(protective, "improving emotional trajectory")
	}

	for _, emotion := range in.Emotional.PrimaryEmotions {
		if isHighRiskEmotion(emotion) {
			score += weightHighRiskEmotion
			factors = append(factors, fmt.Sprintf("predominant %s", emotion))
			break
		}
	}
	for _, emotion := range in.Emotional.PrimaryEmotions {
		if PolarityOf(emotion) == PolarityPositive {
			protective = append(protective, fmt.Sprintf("frequent %s sessions", emotion))
			break
		}
	}

	for _, t := range in.Triggers.Triggers {
		if t.Severity >= severeTriggerCutoff {
			score += weightSevereTrigger
			factors = append(factors, fmt.Sprintf("active severe trigger: %s", t.Topic))
			break
		}
	}

	if in.Baseline.Established {
		protective = append(protective, "established voice baseline")
	}

	score = clamp01(score)

	// A critical session-level read, crisis language included, floors the
	// fused score at critical.
	if in.Dissonance != nil && in.Dissonance.RiskLevel == patterns.RiskCritical {
		score = math.Max(score, crisisRiskFloor)
		factors = append(factors, "critical session signals")
	}

	level := patterns.RiskLevelForScore(score)
	return domain.RiskAssessment{
		Level:             level,
		Score:             round3(score),
		Factors:           factors,
		ProtectiveFactors: protective,
		Trajectory:        riskTrajectory(in.Emotional.Trajectory),
		RecommendedAction: recommendedAction(level),
		AlertCounselor:    level == patterns.RiskHigh || level == patterns.RiskCritical,
	}
}

// riskTrajectory mirrors the emotional trajectory onto risk vocabulary.
// Volatile and insufficient histories read as stable rather than guessing
// a direction.
func riskTrajectory(emotional string) string {
	switch emotional {
	case patterns.TrajectoryDeclining:
		return patterns.RiskTrajectoryEscalating
	case patterns.TrajectoryImproving:
		return patterns.RiskTrajectoryImproving
	default:
		return patterns.RiskTrajectoryStable
	}
}

func recommendedAction(level string) string {
	switch level {
	case patterns.RiskCritical:
		return "immediate_crisis_protocol"
	case patterns.RiskHigh:
		return "proactive_outreach"
	case patterns.RiskMedium:
		return "gentle_check_in"
	default:
		return "continue_monitoring"
	}
}
