package patterns

// Stoicism levels describe how strongly a user minimizes distress in words.
const (
	StoicismLow      = "low"
	StoicismModerate = "moderate"
	StoicismHigh     = "high"
)

// DeflectionUse counts how often one concealment phrase appeared.
type DeflectionUse struct {
	Phrase string `json:"phrase"`
	Count  int    `json:"count"`
}

// CulturalContext captures communication style: language, code-switching,
// and the deflection habits that shape how stated emotion is interpreted.
type CulturalContext struct {
	PrimaryLanguage      string `json:"primary_language"`
	CodeSwitching        bool   `json:"code_switching"`
	CodeSwitchingPattern string `json:"code_switching_pattern,omitempty"`

	DeflectionPhrases []DeflectionUse `json:"deflection_phrases,omitempty"`
	// DeflectionFrequency is deflection mentions per session.
	DeflectionFrequency float64 `json:"deflection_frequency"`

	StoicismLevel     string   `json:"stoicism_level"`
	CulturalStressors []string `json:"cultural_stressors,omitempty"`

	// CommunicationApproach is the recommended tone for prompts and copy,
	// e.g. "indirect_gentle" for high stoicism.
	CommunicationApproach string `json:"communication_approach"`
}
