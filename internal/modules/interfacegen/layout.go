package interfacegen

import (
	"sort"

	"github.com/attunelabs/attune-backend/internal/domain"
	"github.com/attunelabs/attune-backend/internal/domain/interfaces"
	"github.com/attunelabs/attune-backend/internal/domain/patterns"
)

// Base priorities before adjustment. Safety surfaces start near the top so
// no bonus stack can push reflection content above them.
var basePriority = map[string]int{
	interfaces.ComponentSafetyCheck:         95,
	interfaces.ComponentCrisisResources:     85,
	interfaces.ComponentCounselorConnect:    75,
	interfaces.ComponentDissonanceIndicator: 60,
	interfaces.ComponentBreathingExercise:   55,
	interfaces.ComponentMoodCheckin:         50,
	interfaces.ComponentCopingToolkit:       45,
	interfaces.ComponentTriggerInsights:     40,
	interfaces.ComponentSessionRecorder:     35,
	interfaces.ComponentJournalPrompt:       30,
	interfaces.ComponentProgressCelebration: 25,
}

var urgencyBonus = map[string]int{
	interfaces.UrgencyCritical: 15,
	interfaces.UrgencyHigh:     10,
	interfaces.UrgencyNormal:   0,
	interfaces.UrgencyLow:      -5,
}

var prominenceBonus = map[string]int{
	interfaces.ProminenceModal:    20,
	interfaces.ProminenceHero:     10,
	interfaces.ProminencePrimary:  5,
	interfaces.ProminenceStandard: 0,
	interfaces.ProminenceMinimal:  -10,
}

// Mobile screens show fewer components the worse the risk reads.
const (
	mobileMaxCritical = 3
	mobileMaxHigh     = 5
	mobileMaxDefault  = 7
)

// LayoutPrioritizer orders visible components for desktop and mobile.
type LayoutPrioritizer struct{}

func NewLayoutPrioritizer() *LayoutPrioritizer { return &LayoutPrioritizer{} }

func (l *LayoutPrioritizer) Prioritize(components map[string]domain.ComponentConfig, p domain.AggregatedPatterns) ([]domain.LayoutEntry, []string) {
	layout := make([]domain.LayoutEntry, 0, len(components))
	for name, cfg := range components {
		layout = append(layout, domain.LayoutEntry{
			Component: name,
			Priority:  clampPriority(l.priority(cfg, p)),
		})
	}
	// Clamping flattens stacked bonuses at the top of the scale, so ties
	// fall back to base priority before the name.
	sort.Slice(layout, func(i, j int) bool {
		if layout[i].Priority != layout[j].Priority {
			return layout[i].Priority > layout[j].Priority
		}
		if basePriority[layout[i].Component] != basePriority[layout[j].Component] {
			return basePriority[layout[i].Component] > basePriority[layout[j].Component]
		}
		return layout[i].Component < layout[j].Component
	})

	max := mobileMax(p.Risk.Level)
	mobile := make([]string, 0, max)
	for _, entry := range layout {
		if len(mobile) == max {
			break
		}
		mobile = append(mobile, entry.Component)
	}
	return layout, mobile
}

func (l *LayoutPrioritizer) priority(cfg domain.ComponentConfig, p domain.AggregatedPatterns) int {
	score := basePriority[cfg.Component]
	score += urgencyBonus[cfg.Urgency]
	score += prominenceBonus[cfg.Prominence]

	// Risk pulls support surfaces up; an improving trajectory pulls
	// reflection surfaces up.
	switch cfg.Component {
	case interfaces.ComponentCrisisResources, interfaces.ComponentCounselorConnect:
		if patterns.RiskRank(p.Risk.Level) >= patterns.RiskRank(patterns.RiskHigh) {
			score += 10
		}
	case interfaces.ComponentProgressCelebration:
		if p.Emotional.Trajectory == patterns.TrajectoryImproving {
			score += 10
		}
	case interfaces.ComponentBreathingExercise, interfaces.ComponentCopingToolkit:
		if p.Emotional.Trajectory == patterns.TrajectoryDeclining {
			score += 5
		}
	}
	return score
}

func clampPriority(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func mobileMax(riskLevel string) int {
	switch riskLevel {
	case patterns.RiskCritical:
		return mobileMaxCritical
	case patterns.RiskHigh:
		return mobileMaxHigh
	default:
		return mobileMaxDefault
	}
}
