package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/attunelabs/attune-backend/internal/domain"
	"github.com/attunelabs/attune-backend/internal/domain/patterns"
	"github.com/attunelabs/attune-backend/internal/modules/analysis/tables"
)

// Signal floors. Single mentions are noise; nothing is reported below two.
const (
	minSignalMentions   = 2
	codeSwitchShare     = 0.30
	primaryLangShare    = 0.60
	stoicismHighCutoff  = 0.5
	stoicismModerateCut = 0.2
)

// CulturalContextAnalyzer classifies communication style from transcripts:
// language preference, code-switching, deflection habits, and stoicism.
type CulturalContextAnalyzer struct {
	tab *tables.Tables
}

func NewCulturalContextAnalyzer(tab *tables.Tables) *CulturalContextAnalyzer {
	return &CulturalContextAnalyzer{tab: tab}
}

func (a *CulturalContextAnalyzer) Analyze(sessions []domain.VoiceSession) domain.CulturalContext {
	ctx := domain.CulturalContext{
		PrimaryLanguage:       "en",
		StoicismLevel:         patterns.StoicismLow,
		CommunicationApproach: a.approachFor(patterns.StoicismLow),
	}
	if len(sessions) == 0 {
		return ctx
	}

	transcripts := make([]string, len(sessions))
	for i, s := range sessions {
		transcripts[i] = strings.ToLower(s.Transcript)
	}

	a.detectLanguage(&ctx, transcripts)
	a.detectDeflection(&ctx, transcripts)
	a.detectStressors(&ctx, transcripts)

	stoicScore := a.stoicismScore(ctx, transcripts)
	switch {
	case stoicScore >= stoicismHighCutoff:
		ctx.StoicismLevel = patterns.StoicismHigh
	case stoicScore >= stoicismModerateCut:
		ctx.StoicismLevel = patterns.StoicismModerate
	default:
		ctx.StoicismLevel = patterns.StoicismLow
	}
	ctx.CommunicationApproach = a.approachFor(ctx.StoicismLevel)
	return ctx
}

// detectLanguage counts sessions that use each marker language. A session
// uses a language when at least two distinct markers appear.
func (a *CulturalContextAnalyzer) detectLanguage(ctx *domain.CulturalContext, transcripts []string) {
	total := len(transcripts)
	for _, lang := range a.tab.Cultural.Languages {
		using := 0
		for _, tr := range transcripts {
			distinct := 0
			for _, marker := range lang.Markers {
				if containsWord(tr, marker) {
					distinct++
					if distinct >= 2 {
						break
					}
				}
			}
			if distinct >= 2 {
				using++
			}
		}
		share := float64(using) / float64(total)
		if share >= codeSwitchShare {
			ctx.CodeSwitching = true
			ctx.CodeSwitchingPattern = fmt.Sprintf("mixes en and %s in %d of %d sessions", lang.Code, using, total)
		}
		if share >= primaryLangShare {
			ctx.PrimaryLanguage = lang.Code
		}
		// First language crossing the threshold wins; the table is ordered
		// by prevalence.
		if ctx.CodeSwitching {
			return
		}
	}
}

func (a *CulturalContextAnalyzer) detectDeflection(ctx *domain.CulturalContext, transcripts []string) {
	counts := make(map[string]int)
	total := 0
	for _, tr := range transcripts {
		for _, phrase := range a.tab.Cultural.Deflections {
			c := strings.Count(tr, phrase)
			if c > 0 {
				counts[phrase] += c
				total += c
			}
		}
	}
	if total < minSignalMentions {
		return
	}

	phrases := make([]string, 0, len(counts))
	for p := range counts {
		phrases = append(phrases, p)
	}
	sort.Slice(phrases, func(i, j int) bool {
		if counts[phrases[i]] != counts[phrases[j]] {
			return counts[phrases[i]] > counts[phrases[j]]
		}
		return phrases[i] < phrases[j]
	})
	for _, p := range phrases {
		ctx.DeflectionPhrases = append(ctx.DeflectionPhrases, patterns.DeflectionUse{Phrase: p, Count: counts[p]})
	}
	ctx.DeflectionFrequency = round3(float64(total) / float64(len(transcripts)))
}

func (a *CulturalContextAnalyzer) detectStressors(ctx *domain.CulturalContext, transcripts []string) {
	type hit struct {
		name  string
		count int
	}
	var hits []hit
	for _, stressor := range a.tab.Cultural.Stressors {
		count := 0
		for _, tr := range transcripts {
			for _, kw := range stressor.Keywords {
				count += strings.Count(tr, kw)
			}
		}
		if count >= minSignalMentions {
			hits = append(hits, hit{name: stressor.Name, count: count})
		}
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].count != hits[j].count {
			return hits[i].count > hits[j].count
		}
		return hits[i].name < hits[j].name
	})
	for _, h := range hits {
		ctx.CulturalStressors = append(ctx.CulturalStressors, h.name)
	}
}

// stoicismScore blends deflection frequency with explicit stoic markers.
func (a *CulturalContextAnalyzer) stoicismScore(ctx domain.CulturalContext, transcripts []string) float64 {
	markerHits := 0
	for _, tr := range transcripts {
		for _, m := range a.tab.Cultural.StoicMarkers {
			markerHits += strings.Count(tr, m)
		}
	}
	markerFreq := float64(markerHits) / float64(len(transcripts))
	return ctx.DeflectionFrequency*0.5 + markerFreq
}

func (a *CulturalContextAnalyzer) approachFor(stoicism string) string {
	if approach, ok := a.tab.Cultural.Approaches[stoicism]; ok && approach != "" {
		return approach
	}
	return "warm_direct"
}

// containsWord matches a marker as a whole word so short function words do
// not fire inside English words ("po" in "point").
func containsWord(text, word string) bool {
	idx := 0
	for {
		i := strings.Index(text[idx:], word)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(word)
		beforeOK := start == 0 || !isWordByte(text[start-1])
		afterOK := end >= len(text) || !isWordByte(text[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
		if idx >= len(text) {
			return false
		}
	}
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9' || b == '\''
}
