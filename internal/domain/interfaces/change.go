package interfaces

// Change types emitted by the config differ.
const (
	ChangeBaselineEstablished = "baseline_established"
	ChangeRiskEscalation      = "risk_escalation"
	ChangeRiskDeescalation    = "risk_deescalation"
	ChangeThemeChanged        = "theme_changed"
	ChangeFeatureAdded        = "feature_added"
	ChangeFeatureRemoved      = "feature_removed"
	ChangeLanguageAdjusted    = "language_adjusted"
	ChangeDissonanceDetected  = "dissonance_detected"

	// ChangeConfigRefreshed marks a rebuild that altered nothing visible. A
	// stored config never carries an empty change list.
	ChangeConfigRefreshed = "config_refreshed"
)

// Change severities, used for presentation ordering.
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
	SeverityInfo   = "info"
)

// InterfaceChange is one explained difference between yesterday's config
// and today's. Reasons are user-facing text; they stay plaintext so the
// frontend can show a changelog without decrypting the config.
type InterfaceChange struct {
	Type      string `json:"type"`
	Component string `json:"component,omitempty"`
	Reason    string `json:"reason"`
	Severity  string `json:"severity"`
}
