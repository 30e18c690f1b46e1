package patterns

import "strings"

// Risk levels, lowest to highest.
const (
	RiskLow      = "low"
	RiskMedium   = "medium"
	RiskHigh     = "high"
	RiskCritical = "critical"
)

// Risk trajectory labels mirror the emotional trajectory.
const (
	RiskTrajectoryEscalating = "escalating"
	RiskTrajectoryStable     = "stable"
	RiskTrajectoryImproving  = "improving"
)

// RiskLevelForScore maps a fused score in [0,1] onto the four fixed bands.
// The thresholds are calibration targets carried over from the deployed
// rule set; changing them changes alerting behavior.
func RiskLevelForScore(score float64) string {
	switch {
	case score >= 0.8:
		return RiskCritical
	case score >= 0.6:
		return RiskHigh
	case score >= 0.4:
		return RiskMedium
	default:
		return RiskLow
	}
}

// RiskRank orders levels so callers can compare severity. Unknown levels
// rank lowest.
func RiskRank(level string) int {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case RiskCritical:
		return 3
	case RiskHigh:
		return 2
	case RiskMedium:
		return 1
	default:
		return 0
	}
}

// RiskAssessment is the fused point-in-time crisis estimate.
type RiskAssessment struct {
	Level string  `json:"level"`
	Score float64 `json:"score"`

	Factors           []string `json:"factors,omitempty"`
	ProtectiveFactors []string `json:"protective_factors,omitempty"`

	Trajectory        string `json:"trajectory"`
	RecommendedAction string `json:"recommended_action"`

	// AlertCounselor is true only at high or critical.
	AlertCounselor bool `json:"alert_counselor"`
}
