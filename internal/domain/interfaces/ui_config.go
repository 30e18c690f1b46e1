// Package interfaces defines the renderable interface contract the nightly
// builder produces, plus its encrypted persistence records.
package interfaces

import (
	"time"

	"github.com/google/uuid"
)

// Component identifiers. The frontend renders only components named here.
const (
	ComponentSafetyCheck         = "safety_check"
	ComponentCrisisResources     = "crisis_resources"
	ComponentMoodCheckin         = "mood_checkin"
	ComponentDissonanceIndicator = "dissonance_indicator"
	ComponentBreathingExercise   = "breathing_exercise"
	ComponentCopingToolkit       = "coping_toolkit"
	ComponentTriggerInsights     = "trigger_insights"
	ComponentProgressCelebration = "progress_celebration"
	ComponentJournalPrompt       = "journal_prompt"
	ComponentCounselorConnect    = "counselor_connect"
	ComponentSessionRecorder     = "session_recorder"
)

// Prominence levels, strongest first.
const (
	ProminenceModal    = "modal"
	ProminenceHero     = "hero"
	ProminencePrimary  = "primary"
	ProminenceStandard = "standard"
	ProminenceMinimal  = "minimal"
)

// Urgency levels attached to visible components.
const (
	UrgencyCritical = "critical"
	UrgencyHigh     = "high"
	UrgencyNormal   = "normal"
	UrgencyLow      = "low"
)

// Theme names.
const (
	ThemeCrisis   = "crisis"
	ThemeCalm     = "calm_support"
	ThemeWarm     = "warm_comfort"
	ThemeAdaptive = "adaptive"
	ThemeBalanced = "balanced"
)

// Theme is the visual register of the interface.
type Theme struct {
	Name    string `json:"name"`
	Variant string `json:"variant,omitempty"`

	Palette   map[string]string `json:"palette,omitempty"`
	Animation string            `json:"animation,omitempty"`

	OverlayTags []string `json:"overlay_tags,omitempty"`
}

// ComponentConfig describes one visible component. Hidden components are
// simply absent from the config; visibility rules return (config, false)
// to hide.
type ComponentConfig struct {
	Component  string `json:"component"`
	Prominence string `json:"prominence"`
	Urgency    string `json:"urgency"`

	Props map[string]interface{} `json:"props,omitempty"`
}

// LayoutEntry is one component with its computed priority, 0-100.
type LayoutEntry struct {
	Component string `json:"component"`
	Priority  int    `json:"priority"`
}

// CulturalOverlay adapts copy and prompts to the user's communication
// style.
type CulturalOverlay struct {
	Language              string `json:"language"`
	CommunicationApproach string `json:"communication_approach"`
	StoicismLevel         string `json:"stoicism_level"`
}

// Metadata rides unencrypted beside the sealed config so alert routing and
// diagnostics can inspect it without a key.
type Metadata struct {
	RiskLevel      string    `json:"risk_level"`
	Theme          string    `json:"theme"`
	SessionCount   int       `json:"session_count"`
	DataConfidence float64   `json:"data_confidence"`
	Version        int       `json:"version"`
	GeneratedAt    time.Time `json:"generated_at"`
}

// UIConfig is the complete renderable contract for one user for one day.
type UIConfig struct {
	UserID uuid.UUID `json:"user_id"`

	Theme      Theme             `json:"theme"`
	Components []ComponentConfig `json:"components"`

	// Layout is sorted by descending priority. MobileLayout is the same
	// ordering truncated by risk level.
	Layout       []LayoutEntry `json:"layout"`
	MobileLayout []string      `json:"mobile_layout"`

	CulturalOverlay CulturalOverlay `json:"cultural_overlay"`

	Changes  []InterfaceChange `json:"changes"`
	Metadata Metadata          `json:"metadata"`
}

// Component looks up a visible component's config by name.
func (c UIConfig) Component(name string) (ComponentConfig, bool) {
	for _, cc := range c.Components {
		if cc.Component == name {
			return cc, true
		}
	}
	return ComponentConfig{}, false
}
