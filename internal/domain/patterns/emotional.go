package patterns

// Trajectory labels for emotional direction over a session window.
const (
	TrajectoryImproving        = "improving"
	TrajectoryDeclining        = "declining"
	TrajectoryStable           = "stable"
	TrajectoryVolatile         = "volatile"
	TrajectoryInsufficientData = "insufficient_data"
)

// TrajectoryMinSessions gates trend computation; RecentShiftMinSessions
// gates the last-week-versus-previous-week comparison.
const (
	TrajectoryMinSessions  = 7
	RecentShiftMinSessions = 14
)

// EmotionalPattern aggregates per-session emotion labels into distribution,
// direction, and time-of-day structure.
type EmotionalPattern struct {
	// PrimaryEmotions are labels covering more than 20% of sessions.
	PrimaryEmotions []string           `json:"primary_emotions,omitempty"`
	Distribution    map[string]float64 `json:"distribution,omitempty"`

	// TimeOfDay maps bucket names (morning/afternoon/evening/night) to the
	// dominant emotion recorded in that bucket.
	TimeOfDay map[string]string `json:"time_of_day,omitempty"`

	Trajectory           string  `json:"trajectory"`
	TrajectoryConfidence float64 `json:"trajectory_confidence"`

	// Variability is the normalized Shannon entropy of the label sequence.
	Variability float64 `json:"variability"`

	// RecentShift describes a dominant-emotion change between the last
	// seven sessions and the seven before, only when the change crosses a
	// positive/negative boundary. Empty when no shift was detected.
	RecentShift string `json:"recent_shift,omitempty"`
}
