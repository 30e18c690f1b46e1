package patterns

// Effectiveness bands for coping strategies.
const (
	CopingEffectiveCutoff   = 0.6
	CopingIneffectiveCutoff = 0.4
)

// CopingStrategy is one behavior mentioned in transcripts, scored by the
// emotional improvement observed in the following session.
type CopingStrategy struct {
	Name     string `json:"name"`
	Category string `json:"category"`

	// Effectiveness is the clamped next-session valence delta, in [0,1].
	Effectiveness   float64  `json:"effectiveness"`
	MentionCount    int      `json:"mention_count"`
	ImprovementRate float64  `json:"improvement_rate"`
	Evidence        []string `json:"evidence,omitempty"`
}

// CopingProfile splits detected strategies into effective and ineffective
// sets and suggests untried ones.
type CopingProfile struct {
	Effective   []CopingStrategy `json:"effective,omitempty"`
	Ineffective []CopingStrategy `json:"ineffective,omitempty"`
	Untried     []string         `json:"untried,omitempty"`

	// Consistency is how regularly any strategy appears across sessions.
	Consistency float64 `json:"consistency"`

	// PrimaryStyle is the dominant strategy category, or "mixed" when no
	// category dominates.
	PrimaryStyle string `json:"primary_style"`
}
