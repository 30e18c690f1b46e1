package interfaces

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ConfigRecord persists one sealed UIConfig. The payload is opaque
// ciphertext; only Metadata and the denormalized risk level are readable
// in place.
type ConfigRecord struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_interface_config_user_version" json:"user_id"`

	Version int `gorm:"not null;uniqueIndex:idx_interface_config_user_version" json:"version"`

	Encrypted []byte `gorm:"column:encrypted;not null" json:"-"`
	KeySalt   []byte `gorm:"column:key_salt" json:"-"`

	RiskLevel string         `gorm:"not null;column:risk_level;index" json:"risk_level"`
	Metadata  datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata"`

	GeneratedAt time.Time `gorm:"not null;column:generated_at" json:"generated_at"`
	CreatedAt   time.Time `gorm:"not null;default:now();index" json:"created_at"`
}

func (ConfigRecord) TableName() string { return "interface_config" }

// ChangeRecord persists one plaintext change line tied to a config version.
type ChangeRecord struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`

	ConfigVersion int    `gorm:"not null;column:config_version;index" json:"config_version"`
	ChangeType    string `gorm:"not null;column:change_type;index" json:"change_type"`
	Component     string `gorm:"column:component" json:"component,omitempty"`
	Reason        string `gorm:"type:text;column:reason" json:"reason"`
	Severity      string `gorm:"not null;column:severity" json:"severity"`

	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
}

func (ChangeRecord) TableName() string { return "interface_change" }

// EncodeMetadata serializes config metadata for the unencrypted column.
func EncodeMetadata(m Metadata) datatypes.JSON {
	raw, err := json.Marshal(m)
	if err != nil {
		return datatypes.JSON([]byte("{}"))
	}
	return datatypes.JSON(raw)
}

// DecodeMetadata decodes stored metadata, zero value on malformed input.
func DecodeMetadata(raw datatypes.JSON) Metadata {
	var m Metadata
	if len(raw) == 0 {
		return m
	}
	_ = json.Unmarshal(raw, &m)
	return m
}
