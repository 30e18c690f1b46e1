package jobs

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Build run statuses.
const (
	BuildRunning   = "running"
	BuildCompleted = "completed"
	BuildFailed    = "failed"
)

// Per-user build outcomes recorded in a run's result payload.
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
	OutcomeSkipped = "skipped"
)

// Build triggers.
const (
	TriggerNightly = "nightly"
	TriggerManual  = "manual"
)

// UserOutcome is one user's result within a batch. Error carries only a
// short message; transcripts and scores never land here.
type UserOutcome struct {
	UserID  uuid.UUID `json:"user_id"`
	Outcome string    `json:"outcome"`
	Error   string    `json:"error,omitempty"`
}

// BuildRun records one overnight batch for one timezone.
type BuildRun struct {
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`

	Timezone string `gorm:"not null;column:timezone;index" json:"timezone"`
	Status   string `gorm:"not null;column:status;index" json:"status"`
	Trigger  string `gorm:"not null;default:'nightly';column:trigger" json:"trigger"`
	DryRun   bool   `gorm:"not null;default:false;column:dry_run" json:"dry_run"`

	TotalUsers int `gorm:"not null;default:0;column:total_users" json:"total_users"`
	Succeeded  int `gorm:"not null;default:0;column:succeeded" json:"succeeded"`
	Failed     int `gorm:"not null;default:0;column:failed" json:"failed"`
	Skipped    int `gorm:"not null;default:0;column:skipped" json:"skipped"`

	Error  string         `gorm:"column:error" json:"error,omitempty"`
	Result datatypes.JSON `gorm:"column:result;type:jsonb" json:"result"`

	StartedAt  time.Time  `gorm:"not null;column:started_at;index" json:"started_at"`
	FinishedAt *time.Time `gorm:"column:finished_at" json:"finished_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now();index" json:"updated_at"`
}

func (BuildRun) TableName() string { return "build_run" }

// EncodeOutcomes serializes per-user outcomes for the result column.
func EncodeOutcomes(outcomes []UserOutcome) datatypes.JSON {
	raw, err := json.Marshal(outcomes)
	if err != nil {
		return datatypes.JSON([]byte("[]"))
	}
	return datatypes.JSON(raw)
}

// DecodeOutcomes decodes a stored result column, nil on malformed input.
func DecodeOutcomes(raw datatypes.JSON) []UserOutcome {
	if len(raw) == 0 {
		return nil
	}
	var out []UserOutcome
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}
