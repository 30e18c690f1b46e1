package interfacegen

import (
	"testing"

	"github.com/attunelabs/attune-backend/internal/domain"
	"github.com/attunelabs/attune-backend/internal/domain/interfaces"
	"github.com/attunelabs/attune-backend/internal/domain/patterns"
)

func configWith(risk, theme, language string, components ...string) domain.UIConfig {
	cfg := domain.UIConfig{
		Theme:           domain.Theme{Name: theme},
		CulturalOverlay: domain.CulturalOverlay{Language: language},
		Metadata:        domain.UIMetadata{RiskLevel: risk, Version: 1},
	}
	for _, c := range components {
		cfg.Components = append(cfg.Components, domain.ComponentConfig{Component: c})
	}
	return cfg
}

func TestChanges_FirstBuildYieldsBaselineOnly(t *testing.T) {
	d := NewChangeDetector()
	next := configWith(patterns.RiskLow, interfaces.ThemeBalanced, "en",
		interfaces.ComponentMoodCheckin, interfaces.ComponentSessionRecorder)

	changes := d.Diff(nil, next)
	if len(changes) != 1 {
		t.Fatalf("changes = %+v, want exactly one", changes)
	}
	if changes[0].Type != interfaces.ChangeBaselineEstablished {
		t.Fatalf("type = %q, want baseline_established", changes[0].Type)
	}
	if changes[0].Severity != interfaces.SeverityInfo {
		t.Fatalf("severity = %q, want info", changes[0].Severity)
	}
}

func TestChanges_MediumToHighEscalation(t *testing.T) {
	d := NewChangeDetector()
	prev := configWith(patterns.RiskMedium, interfaces.ThemeBalanced, "en",
		interfaces.ComponentCrisisResources, interfaces.ComponentMoodCheckin)
	next := configWith(patterns.RiskHigh, interfaces.ThemeCrisis, "en",
		interfaces.ComponentCrisisResources, interfaces.ComponentCounselorConnect, interfaces.ComponentMoodCheckin)

	changes := d.Diff(&prev, next)

	var escalation *domain.InterfaceChange
	for i := range changes {
		if changes[i].Type == interfaces.ChangeRiskEscalation {
			escalation = &changes[i]
		}
		// Risk-managed component churn is explained by the escalation
		// entry, not reported twice.
		if changes[i].Type == interfaces.ChangeFeatureAdded && changes[i].Component == interfaces.ComponentCounselorConnect {
			t.Fatalf("counselor_connect add reported beside an escalation")
		}
	}
	if escalation == nil {
		t.Fatalf("no risk_escalation in %+v", changes)
	}
	if escalation.Component != interfaces.ComponentCrisisResources {
		t.Fatalf("escalation component = %q, want crisis_resources", escalation.Component)
	}
	if escalation.Severity != interfaces.SeverityHigh {
		t.Fatalf("escalation severity = %q, want high", escalation.Severity)
	}
	if changes[0].Type != interfaces.ChangeRiskEscalation {
		t.Fatalf("changes[0] = %+v, want the escalation first", changes[0])
	}
}

func TestChanges_DeescalationIsInfo(t *testing.T) {
	d := NewChangeDetector()
	prev := configWith(patterns.RiskHigh, interfaces.ThemeCrisis, "en", interfaces.ComponentCrisisResources)
	next := configWith(patterns.RiskLow, interfaces.ThemeBalanced, "en", interfaces.ComponentMoodCheckin)

	changes := d.Diff(&prev, next)
	var found bool
	for _, c := range changes {
		if c.Type == interfaces.ChangeRiskDeescalation {
			found = true
			if c.Severity != interfaces.SeverityInfo {
				t.Fatalf("deescalation severity = %q, want info", c.Severity)
			}
		}
	}
	if !found {
		t.Fatalf("no risk_deescalation in %+v", changes)
	}
}

func TestChanges_FeatureChurnAtSteadyRisk(t *testing.T) {
	d := NewChangeDetector()
	prev := configWith(patterns.RiskLow, interfaces.ThemeBalanced, "en",
		interfaces.ComponentMoodCheckin, interfaces.ComponentJournalPrompt)
	next := configWith(patterns.RiskLow, interfaces.ThemeBalanced, "en",
		interfaces.ComponentMoodCheckin, interfaces.ComponentCopingToolkit)

	changes := d.Diff(&prev, next)
	if len(changes) != 2 {
		t.Fatalf("changes = %+v, want add and remove", changes)
	}
	// feature_added sorts above feature_removed (low beats info).
	if changes[0].Type != interfaces.ChangeFeatureAdded || changes[0].Component != interfaces.ComponentCopingToolkit {
		t.Fatalf("changes[0] = %+v, want coping_toolkit added", changes[0])
	}
	if changes[1].Type != interfaces.ChangeFeatureRemoved || changes[1].Component != interfaces.ComponentJournalPrompt {
		t.Fatalf("changes[1] = %+v, want journal_prompt removed", changes[1])
	}
}

func TestChanges_NewDissonanceExplainedOnce(t *testing.T) {
	d := NewChangeDetector()
	prev := configWith(patterns.RiskLow, interfaces.ThemeBalanced, "en", interfaces.ComponentMoodCheckin)
	next := configWith(patterns.RiskLow, interfaces.ThemeBalanced, "en",
		interfaces.ComponentMoodCheckin, interfaces.ComponentDissonanceIndicator)

	changes := d.Diff(&prev, next)
	if len(changes) != 1 {
		t.Fatalf("changes = %+v, want a single dissonance entry", changes)
	}
	c := changes[0]
	if c.Type != interfaces.ChangeDissonanceDetected || c.Component != interfaces.ComponentDissonanceIndicator {
		t.Fatalf("change = %+v, want dissonance_detected", c)
	}
	if c.Severity != interfaces.SeverityMedium {
		t.Fatalf("severity = %q, want medium", c.Severity)
	}
}

func TestChanges_LanguageAdjusted(t *testing.T) {
	d := NewChangeDetector()
	prev := configWith(patterns.RiskLow, interfaces.ThemeBalanced, "en", interfaces.ComponentMoodCheckin)
	next := configWith(patterns.RiskLow, interfaces.ThemeBalanced, "tl", interfaces.ComponentMoodCheckin)

	changes := d.Diff(&prev, next)
	if len(changes) != 1 || changes[0].Type != interfaces.ChangeLanguageAdjusted {
		t.Fatalf("changes = %+v, want one language_adjusted", changes)
	}
}

func TestChanges_IdenticalBuildsStillExplain(t *testing.T) {
	d := NewChangeDetector()
	cfg := configWith(patterns.RiskLow, interfaces.ThemeBalanced, "en", interfaces.ComponentMoodCheckin)

	changes := d.Diff(&cfg, cfg)
	if len(changes) != 1 || changes[0].Type != interfaces.ChangeConfigRefreshed {
		t.Fatalf("changes = %+v, want one config_refreshed", changes)
	}
}

func TestChanges_ThemeShiftReported(t *testing.T) {
	d := NewChangeDetector()
	prev := configWith(patterns.RiskLow, interfaces.ThemeBalanced, "en", interfaces.ComponentMoodCheckin)
	next := configWith(patterns.RiskLow, interfaces.ThemeWarm, "en", interfaces.ComponentMoodCheckin)

	changes := d.Diff(&prev, next)
	if len(changes) != 1 || changes[0].Type != interfaces.ChangeThemeChanged {
		t.Fatalf("changes = %+v, want one theme_changed", changes)
	}
	if changes[0].Severity != interfaces.SeverityLow {
		t.Fatalf("severity = %q, want low", changes[0].Severity)
	}
}
