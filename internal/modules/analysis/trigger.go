package analysis

import (
	"sort"
	"strings"

	"github.com/attunelabs/attune-backend/internal/domain"
	"github.com/attunelabs/attune-backend/internal/domain/patterns"
	"github.com/attunelabs/attune-backend/internal/modules/analysis/tables"
)

const (
	maxSamplePhrases  = 3
	sampleWindowBytes = 40
)

// TriggerDetector finds topics whose mentions co-occur with distressed
// voice features. Topics mentioned once are ignored.
type TriggerDetector struct {
	tab *tables.Tables
}

func NewTriggerDetector(tab *tables.Tables) *TriggerDetector {
	return &TriggerDetector{tab: tab}
}

func (d *TriggerDetector) Detect(sessions []domain.VoiceSession) domain.TriggerPattern {
	if len(sessions) == 0 {
		return domain.TriggerPattern{}
	}

	// mentions[topic] = indexes of sessions mentioning it.
	mentions := make(map[string][]int)
	samples := make(map[string][]string)
	for i, s := range sessions {
		tr := strings.ToLower(s.Transcript)
		for _, topic := range d.tab.Triggers.Topics {
			for _, kw := range topic.Keywords {
				idx := strings.Index(tr, kw)
				if idx < 0 {
					continue
				}
				mentions[topic.Topic] = append(mentions[topic.Topic], i)
				if len(samples[topic.Topic]) < maxSamplePhrases {
					samples[topic.Topic] = append(samples[topic.Topic], snippet(tr, idx, len(kw)))
				}
				break
			}
		}
	}

	var out domain.TriggerPattern
	topics := make([]string, 0, len(mentions))
	for t, idxs := range mentions {
		if len(idxs) >= minSignalMentions {
			topics = append(topics, t)
		}
	}
	sort.Strings(topics)

	for _, topic := range topics {
		idxs := mentions[topic]
		var distress []float64
		markerCounts := make(map[string]int)
		for _, i := range idxs {
			s := sessions[i]
			distress = append(distress, sessionDistress(s))
			for _, m := range microMoments(s.VoiceFeatures()) {
				markerCounts[m]++
			}
		}
		out.Triggers = append(out.Triggers, patterns.Trigger{
			Topic:         topic,
			Frequency:     len(idxs),
			Severity:      round3(clamp01(mean(distress))),
			VoiceMarkers:  frequentMarkers(markerCounts, len(idxs)),
			SamplePhrases: samples[topic],
		})
	}

	// Rank by severity, then frequency, then name.
	sort.Slice(out.Triggers, func(i, j int) bool {
		a, b := out.Triggers[i], out.Triggers[j]
		if a.Severity != b.Severity {
			return a.Severity > b.Severity
		}
		if a.Frequency != b.Frequency {
			return a.Frequency > b.Frequency
		}
		return a.Topic < b.Topic
	})

	out.CoOccurrences = coOccurrences(mentions)
	return out
}

// sessionDistress scores how distressed one session sounds, in [0,1].
func sessionDistress(s domain.VoiceSession) float64 {
	score := 0.0
	if v := ValenceOf(s.VoiceEmotion); v < 0 {
		score += -v
	}
	f := s.VoiceFeatures()
	if f.PauseRatio > pauseHesitation {
		score += 0.1
	}
	if f.PitchStd > pitchTremor {
		score += 0.1
	}
	if f.EnergyStd > energySigh {
		score += 0.05
	}
	return clamp01(score)
}

// frequentMarkers keeps micro-moment flags seen in at least half the
// mentioning sessions.
func frequentMarkers(counts map[string]int, mentionCount int) []string {
	var out []string
	for m, c := range counts {
		if c*2 >= mentionCount {
			out = append(out, m)
		}
	}
	sort.Strings(out)
	return out
}

// coOccurrences reports topic pairs that appear in the same session at
// least twice, ranked by count.
func coOccurrences(mentions map[string][]int) []patterns.TopicPair {
	topics := make([]string, 0, len(mentions))
	for t := range mentions {
		topics = append(topics, t)
	}
	sort.Strings(topics)

	inSession := make(map[string]map[int]bool, len(mentions))
	for t, idxs := range mentions {
		set := make(map[int]bool, len(idxs))
		for _, i := range idxs {
			set[i] = true
		}
		inSession[t] = set
	}

	var pairs []patterns.TopicPair
	for i := 0; i < len(topics); i++ {
		for j := i + 1; j < len(topics); j++ {
			count := 0
			for idx := range inSession[topics[i]] {
				if inSession[topics[j]][idx] {
					count++
				}
			}
			if count >= minSignalMentions {
				pairs = append(pairs, patterns.TopicPair{TopicA: topics[i], TopicB: topics[j], Count: count})
			}
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Count != pairs[j].Count {
			return pairs[i].Count > pairs[j].Count
		}
		if pairs[i].TopicA != pairs[j].TopicA {
			return pairs[i].TopicA < pairs[j].TopicA
		}
		return pairs[i].TopicB < pairs[j].TopicB
	})
	return pairs
}

// snippet lifts a short window around a keyword match for evidence.
func snippet(text string, idx, klen int) string {
	start := idx - sampleWindowBytes
	if start < 0 {
		start = 0
	}
	end := idx + klen + sampleWindowBytes
	if end > len(text) {
		end = len(text)
	}
	return strings.TrimSpace(text[start:end])
}
