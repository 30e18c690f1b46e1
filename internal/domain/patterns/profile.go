package patterns

// MentalHealthProfile is a narrative summary assembled from the other
// analyzer outputs. It introduces no new scoring.
type MentalHealthProfile struct {
	PrimaryConcerns   []string `json:"primary_concerns,omitempty"`
	SecondaryConcerns []string `json:"secondary_concerns,omitempty"`

	CurrentState string `json:"current_state"`

	SupportNeeds       []string `json:"support_needs,omitempty"`
	CommunicationStyle string   `json:"communication_style"`

	Strengths           []string `json:"strengths,omitempty"`
	EffectivePatterns   []string `json:"effective_patterns,omitempty"`
	IneffectivePatterns []string `json:"ineffective_patterns,omitempty"`
}
