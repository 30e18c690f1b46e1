package interfacegen

import (
	"fmt"
	"sort"

	"github.com/attunelabs/attune-backend/internal/domain"
	"github.com/attunelabs/attune-backend/internal/domain/interfaces"
	"github.com/attunelabs/attune-backend/internal/domain/patterns"
)

// componentLabels turn component identifiers into changelog copy.
var componentLabels = map[string]string{
	interfaces.ComponentSafetyCheck:         "Safety check-in",
	interfaces.ComponentCrisisResources:     "Support resources",
	interfaces.ComponentMoodCheckin:         "Mood check-in",
	interfaces.ComponentDissonanceIndicator: "Reflection indicator",
	interfaces.ComponentBreathingExercise:   "Breathing exercise",
	interfaces.ComponentCopingToolkit:       "Coping toolkit",
	interfaces.ComponentTriggerInsights:     "Trigger insights",
	interfaces.ComponentProgressCelebration: "Progress celebration",
	interfaces.ComponentJournalPrompt:       "Journal prompt",
	interfaces.ComponentCounselorConnect:    "Counselor connect",
	interfaces.ComponentSessionRecorder:     "Session recorder",
}

var languageLabels = map[string]string{
	"en": "English",
	"tl": "Tagalog",
	"es": "Spanish",
	"vi": "Vietnamese",
}

// riskManaged components appear and disappear with the risk level, so a
// risk change entry already explains their toggling.
var riskManaged = map[string]bool{
	interfaces.ComponentSafetyCheck:      true,
	interfaces.ComponentCrisisResources:  true,
	interfaces.ComponentCounselorConnect: true,
}

var severityRank = map[string]int{
	interfaces.SeverityHigh:   3,
	interfaces.SeverityMedium: 2,
	interfaces.SeverityLow:    1,
	interfaces.SeverityInfo:   0,
}

// ChangeDetector explains today's config in terms of yesterday's. Every
// build yields at least one change entry.
type ChangeDetector struct{}

func NewChangeDetector() *ChangeDetector { return &ChangeDetector{} }

func (d *ChangeDetector) Diff(previous *domain.UIConfig, next domain.UIConfig) []domain.InterfaceChange {
	if previous == nil {
		return []domain.InterfaceChange{{
			Type:     interfaces.ChangeBaselineEstablished,
			Reason:   "Your personalized space is ready. It will keep adjusting to how you're doing.",
			Severity: interfaces.SeverityInfo,
		}}
	}

	var changes []domain.InterfaceChange

	prevRank := patterns.RiskRank(previous.Metadata.RiskLevel)
	nextRank := patterns.RiskRank(next.Metadata.RiskLevel)
	riskShifted := prevRank != nextRank
	switch {
	case nextRank > prevRank:
		changes = append(changes, domain.InterfaceChange{
			Type:      interfaces.ChangeRiskEscalation,
			Component: interfaces.ComponentCrisisResources,
			Reason: fmt.Sprintf("Support was stepped up (%s to %s) after your recent sessions.",
				previous.Metadata.RiskLevel, next.Metadata.RiskLevel),
			Severity: interfaces.SeverityHigh,
		})
	case nextRank < prevRank:
		changes = append(changes, domain.InterfaceChange{
			Type:      interfaces.ChangeRiskDeescalation,
			Component: interfaces.ComponentCrisisResources,
			Reason: fmt.Sprintf("Support was eased (%s to %s) as things steadied.",
				previous.Metadata.RiskLevel, next.Metadata.RiskLevel),
			Severity: interfaces.SeverityInfo,
		})
	}

	if previous.Theme.Name != next.Theme.Name {
		changes = append(changes, domain.InterfaceChange{
			Type:     interfaces.ChangeThemeChanged,
			Reason:   fmt.Sprintf("The look shifted to %s to match where you are right now.", next.Theme.Name),
			Severity: interfaces.SeverityLow,
		})
	}

	prevSet := componentSet(previous.Components)
	nextSet := componentSet(next.Components)

	if nextSet[interfaces.ComponentDissonanceIndicator] && !prevSet[interfaces.ComponentDissonanceIndicator] {
		changes = append(changes, domain.InterfaceChange{
			Type:      interfaces.ChangeDissonanceDetected,
			Component: interfaces.ComponentDissonanceIndicator,
			Reason:    "Your words and your voice have been telling different stories. A gentle check-in was added.",
			Severity:  interfaces.SeverityMedium,
		})
	}

	for _, name := range sortedNames(nextSet) {
		if prevSet[name] {
			continue
		}
		if riskShifted && riskManaged[name] {
			continue
		}
		// The dissonance entry above already explains this add.
		if name == interfaces.ComponentDissonanceIndicator {
			continue
		}
		changes = append(changes, domain.InterfaceChange{
			Type:      interfaces.ChangeFeatureAdded,
			Component: name,
			Reason:    fmt.Sprintf("%s was added based on your recent patterns.", componentLabel(name)),
			Severity:  interfaces.SeverityLow,
		})
	}
	for _, name := range sortedNames(prevSet) {
		if nextSet[name] {
			continue
		}
		if riskShifted && riskManaged[name] {
			continue
		}
		changes = append(changes, domain.InterfaceChange{
			Type:      interfaces.ChangeFeatureRemoved,
			Component: name,
			Reason:    fmt.Sprintf("%s was tucked away for now.", componentLabel(name)),
			Severity:  interfaces.SeverityInfo,
		})
	}

	if previous.CulturalOverlay.Language != next.CulturalOverlay.Language {
		changes = append(changes, domain.InterfaceChange{
			Type:     interfaces.ChangeLanguageAdjusted,
			Reason:   fmt.Sprintf("Prompts were adjusted for %s based on how you speak.", languageLabel(next.CulturalOverlay.Language)),
			Severity: interfaces.SeverityInfo,
		})
	}

	if len(changes) == 0 {
		changes = append(changes, domain.InterfaceChange{
			Type:     interfaces.ChangeConfigRefreshed,
			Reason:   "Tuned overnight. Nothing visible changed today.",
			Severity: interfaces.SeverityInfo,
		})
	}

	// Presentation order: most serious first, stable within a band.
	sort.SliceStable(changes, func(i, j int) bool {
		return severityRank[changes[i].Severity] > severityRank[changes[j].Severity]
	})
	return changes
}

func componentSet(components []domain.ComponentConfig) map[string]bool {
	set := make(map[string]bool, len(components))
	for _, c := range components {
		set[c.Component] = true
	}
	return set
}

func sortedNames(set map[string]bool) []string {
	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func componentLabel(name string) string {
	if label, ok := componentLabels[name]; ok {
		return label
	}
	return name
}

func languageLabel(code string) string {
	if label, ok := languageLabels[code]; ok {
		return label
	}
	return code
}
