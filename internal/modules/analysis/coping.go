package analysis

import (
	"sort"
	"strings"

	"github.com/attunelabs/attune-backend/internal/domain"
	"github.com/attunelabs/attune-backend/internal/domain/patterns"
	"github.com/attunelabs/attune-backend/internal/modules/analysis/tables"
)

const (
	maxUntriedSuggestions = 4
	dominantStyleShare    = 0.5
)

// CopingEffectivenessTracker scores strategies mentioned in transcripts by
// the emotional change observed in the following session. A mention in the
// final session has no next session and contributes nothing to the score.
type CopingEffectivenessTracker struct {
	tab *tables.Tables
}

func NewCopingEffectivenessTracker(tab *tables.Tables) *CopingEffectivenessTracker {
	return &CopingEffectivenessTracker{tab: tab}
}

func (t *CopingEffectivenessTracker) Track(sessions []domain.VoiceSession) domain.CopingProfile {
	profile := domain.CopingProfile{PrimaryStyle: "mixed"}
	if len(sessions) == 0 {
		return profile
	}

	detected := t.detectStrategies(sessions)

	sessionsWithAny := make(map[int]bool)
	categoryMentions := make(map[string]int)
	for _, s := range detected {
		for _, idx := range s.mentionIdx {
			sessionsWithAny[idx] = true
		}
		categoryMentions[s.entry.Category] += len(s.mentionIdx)
	}
	profile.Consistency = round3(float64(len(sessionsWithAny)) / float64(len(sessions)))
	profile.PrimaryStyle = primaryStyle(categoryMentions)

	for _, s := range detected {
		strategy := patterns.CopingStrategy{
			Name:            s.entry.Name,
			Category:        s.entry.Category,
			Effectiveness:   round3(s.effectiveness(sessions)),
			MentionCount:    len(s.mentionIdx),
			ImprovementRate: round3(s.improvementRate(sessions)),
			Evidence:        s.evidence,
		}
		switch {
		case strategy.Effectiveness >= patterns.CopingEffectiveCutoff:
			profile.Effective = append(profile.Effective, strategy)
		case strategy.Effectiveness < patterns.CopingIneffectiveCutoff:
			profile.Ineffective = append(profile.Ineffective, strategy)
		}
	}
	sortStrategies(profile.Effective)
	sortStrategies(profile.Ineffective)

	profile.Untried = t.untriedSuggestions(categoryMentions)
	return profile
}

type detectedStrategy struct {
	entry      tables.StrategyEntry
	mentionIdx []int
	evidence   []string
}

// detectStrategies scans every session for strategy keywords, keeping only
// strategies mentioned at least twice.
func (t *CopingEffectivenessTracker) detectStrategies(sessions []domain.VoiceSession) []detectedStrategy {
	var out []detectedStrategy
	for _, entry := range t.tab.Coping.Strategies {
		d := detectedStrategy{entry: entry}
		for i, s := range sessions {
			tr := strings.ToLower(s.Transcript)
			for _, kw := range entry.Keywords {
				idx := strings.Index(tr, kw)
				if idx < 0 {
					continue
				}
				d.mentionIdx = append(d.mentionIdx, i)
				if len(d.evidence) < 2 {
					d.evidence = append(d.evidence, snippet(tr, idx, len(kw)))
				}
				break
			}
		}
		if len(d.mentionIdx) >= minSignalMentions {
			out = append(out, d)
		}
	}
	return out
}

// effectiveness maps the mean next-session valence delta into [0,1]
// centered at 0.5, so a strategy followed by no change scores neutral.
func (d detectedStrategy) effectiveness(sessions []domain.VoiceSession) float64 {
	var deltas []float64
	for _, i := range d.mentionIdx {
		if i+1 >= len(sessions) {
			continue
		}
		cur := ValenceOf(sessions[i].VoiceEmotion)
		next := ValenceOf(sessions[i+1].VoiceEmotion)
		deltas = append(deltas, next-cur)
	}
	if len(deltas) == 0 {
		return 0.5
	}
	return clamp01(0.5 + mean(deltas))
}

func (d detectedStrategy) improvementRate(sessions []domain.VoiceSession) float64 {
	evaluable, improved := 0, 0
	for _, i := range d.mentionIdx {
		if i+1 >= len(sessions) {
			continue
		}
		evaluable++
		if ValenceOf(sessions[i+1].VoiceEmotion) > ValenceOf(sessions[i].VoiceEmotion) {
			improved++
		}
	}
	if evaluable == 0 {
		return 0
	}
	return float64(improved) / float64(evaluable)
}

func sortStrategies(list []patterns.CopingStrategy) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].Effectiveness != list[j].Effectiveness {
			return list[i].Effectiveness > list[j].Effectiveness
		}
		return list[i].Name < list[j].Name
	})
}

// primaryStyle is the category holding at least half of all mentions, or
// "mixed" when none dominates.
func primaryStyle(categoryMentions map[string]int) string {
	total := 0
	for _, c := range categoryMentions {
		total += c
	}
	if total == 0 {
		return "mixed"
	}

	categories := make([]string, 0, len(categoryMentions))
	for c := range categoryMentions {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	best, bestCount := "", 0
	for _, c := range categories {
		if categoryMentions[c] > bestCount {
			best, bestCount = c, categoryMentions[c]
		}
	}
	if float64(bestCount)/float64(total) >= dominantStyleShare {
		return best
	}
	return "mixed"
}

// untriedSuggestions offers strategies from categories the user has not
// touched, avoidant excluded.
func (t *CopingEffectivenessTracker) untriedSuggestions(categoryMentions map[string]int) []string {
	categories := make([]string, 0, len(t.tab.Coping.Suggestions))
	for c := range t.tab.Coping.Suggestions {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	var out []string
	for _, c := range categories {
		if categoryMentions[c] > 0 {
			continue
		}
		for _, suggestion := range t.tab.Coping.Suggestions[c] {
			if len(out) >= maxUntriedSuggestions {
				return out
			}
			out = append(out, suggestion)
		}
	}
	return out
}
