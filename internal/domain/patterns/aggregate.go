package patterns

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// DataConfidenceForSessions derives confidence purely from history size.
// It deliberately ignores every other signal.
func DataConfidenceForSessions(count int) float64 {
	switch {
	case count < 3:
		return 0.3
	case count < 7:
		return 0.6
	case count < 14:
		return 0.8
	default:
		return 0.95
	}
}

// AggregatedPatterns is one user's complete pattern snapshot for one
// aggregation run.
type AggregatedPatterns struct {
	UserID uuid.UUID `json:"user_id"`

	SessionCount int `json:"session_count"`
	WindowDays   int `json:"window_days"`

	// DataConfidence derives purely from SessionCount.
	DataConfidence float64 `json:"data_confidence"`

	Baseline  VoiceBaseline    `json:"baseline"`
	Emotional EmotionalPattern `json:"emotional"`
	Cultural  CulturalContext  `json:"cultural"`
	Triggers  TriggerPattern   `json:"triggers"`
	Coping    CopingProfile    `json:"coping"`

	// Dissonance is nil when the window held no latest session to score.
	Dissonance *DissonanceResult `json:"dissonance,omitempty"`

	Risk    RiskAssessment      `json:"risk"`
	Profile MentalHealthProfile `json:"profile"`

	GeneratedAt time.Time `json:"generated_at"`
}

// PatternSnapshot persists one immutable AggregatedPatterns. Versions
// increase per user; the latest version wins.
type PatternSnapshot struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_pattern_snapshot_user_version" json:"user_id"`

	Version int `gorm:"not null;uniqueIndex:idx_pattern_snapshot_user_version" json:"version"`

	SessionCount   int     `gorm:"not null;column:session_count" json:"session_count"`
	DataConfidence float64 `gorm:"not null;column:data_confidence" json:"data_confidence"`

	// RiskLevel is denormalized so alert routing can filter without
	// decoding the payload.
	RiskLevel string `gorm:"not null;column:risk_level;index" json:"risk_level"`

	Patterns datatypes.JSON `gorm:"column:patterns;type:jsonb" json:"patterns"`

	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
}

func (PatternSnapshot) TableName() string { return "pattern_snapshot" }

// EncodeAggregatedPatterns serializes a snapshot payload for storage.
func EncodeAggregatedPatterns(p AggregatedPatterns) datatypes.JSON {
	raw, err := json.Marshal(p)
	if err != nil {
		return datatypes.JSON([]byte("{}"))
	}
	return datatypes.JSON(raw)
}

// DecodeAggregatedPatterns decodes a stored payload. Malformed payloads
// decode to the zero value rather than failing the caller.
func DecodeAggregatedPatterns(raw datatypes.JSON) AggregatedPatterns {
	var p AggregatedPatterns
	if len(raw) == 0 {
		return p
	}
	_ = json.Unmarshal(raw, &p)
	return p
}
