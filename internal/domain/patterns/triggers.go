package patterns

// Trigger is one topic whose mentions correlate with distressed voice
// features.
type Trigger struct {
	Topic     string  `json:"topic"`
	Frequency int     `json:"frequency"`
	Severity  float64 `json:"severity"`

	VoiceMarkers  []string `json:"voice_markers,omitempty"`
	SamplePhrases []string `json:"sample_phrases,omitempty"`
}

// TopicPair is two trigger topics that appeared in the same session at
// least twice.
type TopicPair struct {
	TopicA string `json:"topic_a"`
	TopicB string `json:"topic_b"`
	Count  int    `json:"count"`
}

// TriggerPattern holds triggers ranked by severity plus co-occurring topic
// pairs ranked by frequency.
type TriggerPattern struct {
	Triggers      []Trigger   `json:"triggers,omitempty"`
	CoOccurrences []TopicPair `json:"co_occurrences,omitempty"`
}

// ActiveSevere reports whether any trigger at or above the severity cutoff
// is present.
func (p TriggerPattern) ActiveSevere(cutoff float64) bool {
	for _, t := range p.Triggers {
		if t.Severity >= cutoff {
			return true
		}
	}
	return false
}
