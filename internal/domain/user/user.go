package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	AnonymousID string    `gorm:"uniqueIndex;not null;column:anonymous_id" json:"anonymous_id"`
	Email       string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password    string    `gorm:"not null;column:password" json:"-"`
	DisplayName string    `gorm:"column:display_name" json:"display_name"`

	// Timezone is an IANA zone name and decides which nightly batch the
	// user belongs to.
	Timezone          string `gorm:"not null;default:'UTC';column:timezone" json:"timezone"`
	PreferredLanguage string `gorm:"column:preferred_language" json:"preferred_language"`

	// ConfigKey is the AES-256 key used to seal this user's interface
	// config. When the user set a passphrase the key was derived from it
	// with KeySalt; otherwise it was generated randomly at signup. The
	// salt ships with each stored config so clients can re-derive.
	ConfigKey     []byte `gorm:"column:config_key" json:"-"`
	KeySalt       []byte `gorm:"column:key_salt" json:"-"`
	PassphraseSet bool   `gorm:"not null;default:false;column:passphrase_set" json:"passphrase_set"`

	LastActiveAt *time.Time `gorm:"column:last_active_at;index" json:"last_active_at,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (User) TableName() string { return "app_user" }
