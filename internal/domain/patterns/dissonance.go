package patterns

// Dissonance types classify the relationship between stated and voiced
// emotion for one session.
const (
	DissonanceCongruent            = "congruent"
	DissonanceMinimization         = "minimization"
	DissonanceExaggeration         = "exaggeration"
	DissonanceDefensiveConcealment = "defensive_concealment"
	DissonanceMixed                = "mixed"
)

// Micro-moment flags. Each is a thresholded vocal signal used as
// corroborating evidence.
const (
	MicroTremor      = "tremor"
	MicroVoiceCrack  = "voice_crack"
	MicroFlatProsody = "flat_prosody"
	MicroSigh        = "sigh"
	MicroHesitation  = "hesitation"
	MicroHarshness   = "harshness"
)

// DissonanceResult measures the word-versus-voice gap for a single session.
// Only the latest session's result feeds risk; history is not kept.
type DissonanceResult struct {
	StatedEmotion    string  `json:"stated_emotion"`
	StatedConfidence float64 `json:"stated_confidence"`
	VoiceEmotion     string  `json:"voice_emotion"`
	VoiceConfidence  float64 `json:"voice_confidence"`

	Score float64 `json:"score"`
	Type  string  `json:"type"`

	// TruthEmotion is the resolved signal. The voice always wins; the
	// words only modulate confidence.
	TruthEmotion    string  `json:"truth_emotion"`
	TruthConfidence float64 `json:"truth_confidence"`

	MicroMoments []string `json:"micro_moments,omitempty"`

	// BaselineDeviation is nil when the user has no established baseline.
	BaselineDeviation *float64 `json:"baseline_deviation,omitempty"`

	RiskLevel      string `json:"risk_level"`
	Interpretation string `json:"interpretation"`
}
