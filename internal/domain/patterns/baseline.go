package patterns

// BaselineMinSessions is the minimum history needed before a baseline counts
// as established.
const BaselineMinSessions = 3

// StressMarker records a personal deviation pattern, e.g. "speaks faster
// when anxious": the user's speech rate during fear-labeled sessions runs
// 1.2x their overall mean.
type StressMarker struct {
	Emotion     string  `json:"emotion"`
	Feature     string  `json:"feature"`
	Ratio       float64 `json:"ratio"`
	Description string  `json:"description"`
}

// VoiceBaseline is a user's typical voice statistics over their session
// history. A baseline with Established=false carries zeroed statistics and
// must never be used for deviation scoring.
type VoiceBaseline struct {
	Established  bool `json:"established"`
	SessionCount int  `json:"session_count"`

	PitchMean      float64 `json:"pitch_mean"`
	PitchStd       float64 `json:"pitch_std"`
	EnergyMean     float64 `json:"energy_mean"`
	EnergyStd      float64 `json:"energy_std"`
	SpeechRateMean float64 `json:"speech_rate_mean"`
	SpeechRateStd  float64 `json:"speech_rate_std"`
	PauseRatioMean float64 `json:"pause_ratio_mean"`

	EmotionDistribution map[string]float64 `json:"emotion_distribution,omitempty"`
	StressMarkers       []StressMarker     `json:"stress_markers,omitempty"`
}
