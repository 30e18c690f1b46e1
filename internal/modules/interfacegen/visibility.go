package interfacegen

import (
	"github.com/attunelabs/attune-backend/internal/domain"
	"github.com/attunelabs/attune-backend/internal/domain/interfaces"
	"github.com/attunelabs/attune-backend/internal/domain/patterns"
)

// dissonanceShowCutoff gates the indicator; dissonanceUrgentCutoff raises
// its urgency.
const (
	dissonanceShowCutoff   = 0.6
	dissonanceUrgentCutoff = 0.8
)

// visibilityRule decides one component. Hidden is the explicit false, never
// a nil config.
type visibilityRule func(p domain.AggregatedPatterns) (domain.ComponentConfig, bool)

// ComponentVisibilityEngine runs one independent rule per component. Rules
// never consult each other; layout handles competition for space.
type ComponentVisibilityEngine struct {
	rules []visibilityRule
}

func NewComponentVisibilityEngine() *ComponentVisibilityEngine {
	return &ComponentVisibilityEngine{rules: []visibilityRule{
		safetyCheckRule,
		crisisResourcesRule,
		counselorConnectRule,
		dissonanceIndicatorRule,
		breathingExerciseRule,
		moodCheckinRule,
		copingToolkitRule,
		triggerInsightsRule,
		progressCelebrationRule,
		journalPromptRule,
		sessionRecorderRule,
	}}
}

func (e *ComponentVisibilityEngine) Evaluate(p domain.AggregatedPatterns) map[string]domain.ComponentConfig {
	out := make(map[string]domain.ComponentConfig, len(e.rules))
	for _, rule := range e.rules {
		if cfg, visible := rule(p); visible {
			out[cfg.Component] = cfg
		}
	}
	return out
}

// safetyCheckRule surfaces the blocking check-in only at critical risk.
func safetyCheckRule(p domain.AggregatedPatterns) (domain.ComponentConfig, bool) {
	if p.Risk.Level != patterns.RiskCritical {
		return domain.ComponentConfig{}, false
	}
	return domain.ComponentConfig{
		Component:  interfaces.ComponentSafetyCheck,
		Prominence: interfaces.ProminenceModal,
		Urgency:    interfaces.UrgencyCritical,
		Props: map[string]interface{}{
			"blocking":         true,
			"show_crisis_line": true,
		},
	}, true
}

// crisisResourcesRule shows support options from medium risk upward.
func crisisResourcesRule(p domain.AggregatedPatterns) (domain.ComponentConfig, bool) {
	if patterns.RiskRank(p.Risk.Level) < patterns.RiskRank(patterns.RiskMedium) {
		return domain.ComponentConfig{}, false
	}
	cfg := domain.ComponentConfig{
		Component:  interfaces.ComponentCrisisResources,
		Prominence: interfaces.ProminenceStandard,
		Urgency:    interfaces.UrgencyNormal,
	}
	switch p.Risk.Level {
	case patterns.RiskCritical:
		cfg.Prominence, cfg.Urgency = interfaces.ProminenceHero, interfaces.UrgencyCritical
	case patterns.RiskHigh:
		cfg.Prominence, cfg.Urgency = interfaces.ProminenceHero, interfaces.UrgencyHigh
	}
	return cfg, true
}

func counselorConnectRule(p domain.AggregatedPatterns) (domain.ComponentConfig, bool) {
	if !p.Risk.AlertCounselor {
		return domain.ComponentConfig{}, false
	}
	cfg := domain.ComponentConfig{
		Component:  interfaces.ComponentCounselorConnect,
		Prominence: interfaces.ProminencePrimary,
		Urgency:    interfaces.UrgencyHigh,
	}
	if p.Risk.Level == patterns.RiskCritical {
		cfg.Prominence, cfg.Urgency = interfaces.ProminenceHero, interfaces.UrgencyCritical
	}
	return cfg, true
}

// dissonanceIndicatorRule reflects the latest session's word-voice gap back
// to the user once it clears the reporting cutoff.
func dissonanceIndicatorRule(p domain.AggregatedPatterns) (domain.ComponentConfig, bool) {
	d := p.Dissonance
	if d == nil || d.Score < dissonanceShowCutoff {
		return domain.ComponentConfig{}, false
	}
	urgency := interfaces.UrgencyNormal
	if d.Score >= dissonanceUrgentCutoff {
		urgency = interfaces.UrgencyHigh
	}
	return domain.ComponentConfig{
		Component:  interfaces.ComponentDissonanceIndicator,
		Prominence: interfaces.ProminenceStandard,
		Urgency:    urgency,
		Props: map[string]interface{}{
			"score": d.Score,
			"type":  d.Type,
		},
	}, true
}

// breathingExerciseRule shows grounding tools under elevated risk or an
// anxiety-leaning distribution.
func breathingExerciseRule(p domain.AggregatedPatterns) (domain.ComponentConfig, bool) {
	anxious := false
	for _, e := range p.Emotional.PrimaryEmotions {
		if e == "anxious" || e == "fear" {
			anxious = true
			break
		}
	}
	if !anxious && patterns.RiskRank(p.Risk.Level) < patterns.RiskRank(patterns.RiskMedium) {
		return domain.ComponentConfig{}, false
	}
	cfg := domain.ComponentConfig{
		Component:  interfaces.ComponentBreathingExercise,
		Prominence: interfaces.ProminenceStandard,
		Urgency:    interfaces.UrgencyNormal,
	}
	if patterns.RiskRank(p.Risk.Level) >= patterns.RiskRank(patterns.RiskHigh) {
		cfg.Prominence = interfaces.ProminencePrimary
	}
	return cfg, true
}

// moodCheckinRule keeps the daily check-in always on; it leads while the
// baseline is still forming.
func moodCheckinRule(p domain.AggregatedPatterns) (domain.ComponentConfig, bool) {
	cfg := domain.ComponentConfig{
		Component:  interfaces.ComponentMoodCheckin,
		Prominence: interfaces.ProminenceStandard,
		Urgency:    interfaces.UrgencyNormal,
	}
	if !p.Baseline.Established {
		cfg.Prominence = interfaces.ProminencePrimary
	}
	return cfg, true
}

func copingToolkitRule(p domain.AggregatedPatterns) (domain.ComponentConfig, bool) {
	if len(p.Coping.Effective) == 0 && len(p.Coping.Untried) == 0 {
		return domain.ComponentConfig{}, false
	}
	props := map[string]interface{}{}
	if len(p.Coping.Effective) > 0 {
		names := make([]string, 0, len(p.Coping.Effective))
		for _, s := range p.Coping.Effective {
			names = append(names, s.Name)
		}
		props["effective"] = names
	}
	if len(p.Coping.Untried) > 0 {
		props["suggestions"] = p.Coping.Untried
	}
	return domain.ComponentConfig{
		Component:  interfaces.ComponentCopingToolkit,
		Prominence: interfaces.ProminenceStandard,
		Urgency:    interfaces.UrgencyNormal,
		Props:      props,
	}, true
}

// triggerInsightsRule hides analytical content during a crisis; reflection
// can wait until the surface is calm again.
func triggerInsightsRule(p domain.AggregatedPatterns) (domain.ComponentConfig, bool) {
	if len(p.Triggers.Triggers) == 0 || p.Risk.Level == patterns.RiskCritical {
		return domain.ComponentConfig{}, false
	}
	topics := make([]string, 0, len(p.Triggers.Triggers))
	for _, t := range p.Triggers.Triggers {
		topics = append(topics, t.Topic)
	}
	return domain.ComponentConfig{
		Component:  interfaces.ComponentTriggerInsights,
		Prominence: interfaces.ProminenceStandard,
		Urgency:    interfaces.UrgencyLow,
		Props:      map[string]interface{}{"topics": topics},
	}, true
}

func progressCelebrationRule(p domain.AggregatedPatterns) (domain.ComponentConfig, bool) {
	if p.Emotional.Trajectory != patterns.TrajectoryImproving {
		return domain.ComponentConfig{}, false
	}
	if patterns.RiskRank(p.Risk.Level) > patterns.RiskRank(patterns.RiskMedium) {
		return domain.ComponentConfig{}, false
	}
	return domain.ComponentConfig{
		Component:  interfaces.ComponentProgressCelebration,
		Prominence: interfaces.ProminenceStandard,
		Urgency:    interfaces.UrgencyLow,
	}, true
}

// journalPromptRule offers writing prompts below high risk, tuned to the
// recommended communication approach.
func journalPromptRule(p domain.AggregatedPatterns) (domain.ComponentConfig, bool) {
	if patterns.RiskRank(p.Risk.Level) >= patterns.RiskRank(patterns.RiskHigh) {
		return domain.ComponentConfig{}, false
	}
	return domain.ComponentConfig{
		Component:  interfaces.ComponentJournalPrompt,
		Prominence: interfaces.ProminenceMinimal,
		Urgency:    interfaces.UrgencyLow,
		Props:      map[string]interface{}{"tone": p.Cultural.CommunicationApproach},
	}, true
}

// sessionRecorderRule keeps the core input surface always available.
func sessionRecorderRule(p domain.AggregatedPatterns) (domain.ComponentConfig, bool) {
	cfg := domain.ComponentConfig{
		Component:  interfaces.ComponentSessionRecorder,
		Prominence: interfaces.ProminenceStandard,
		Urgency:    interfaces.UrgencyNormal,
	}
	if !p.Baseline.Established {
		cfg.Prominence = interfaces.ProminencePrimary
	}
	return cfg, true
}
