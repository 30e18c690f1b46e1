package session

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// VoiceFeatures is the numeric feature bundle extracted upstream from one
// recording. No raw audio ever reaches this service.
type VoiceFeatures struct {
	PitchMean        float64 `json:"pitch_mean"`
	PitchStd         float64 `json:"pitch_std"`
	PitchRange       float64 `json:"pitch_range"`
	EnergyMean       float64 `json:"energy_mean"`
	EnergyStd        float64 `json:"energy_std"`
	SpeechRate       float64 `json:"speech_rate"`
	PauseRatio       float64 `json:"pause_ratio"`
	ZeroCrossingRate float64 `json:"zero_crossing_rate"`
}

type VoiceSession struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index:idx_voice_session_user_time" json:"user_id"`

	RecordedAt      time.Time `gorm:"not null;index:idx_voice_session_user_time" json:"recorded_at"`
	DurationSeconds float64   `gorm:"column:duration_seconds" json:"duration_seconds"`

	Transcript string `gorm:"type:text;column:transcript" json:"transcript"`

	// VoiceEmotion is the upstream classifier's label for how the voice
	// sounded, independent of what the words said.
	VoiceEmotion           string         `gorm:"column:voice_emotion;index" json:"voice_emotion"`
	VoiceEmotionConfidence float64        `gorm:"column:voice_emotion_confidence" json:"voice_emotion_confidence"`
	Features               datatypes.JSON `gorm:"column:features;type:jsonb" json:"features"`

	Processed bool `gorm:"not null;default:false;column:processed;index" json:"processed"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (VoiceSession) TableName() string { return "voice_session" }

// VoiceFeatures decodes the stored feature bundle. Malformed or absent
// payloads decode to the zero bundle; analyzers treat zeroed features as
// silence rather than an error.
func (s VoiceSession) VoiceFeatures() VoiceFeatures {
	var f VoiceFeatures
	if len(s.Features) == 0 {
		return f
	}
	_ = json.Unmarshal(s.Features, &f)
	return f
}

// EncodeVoiceFeatures serializes a feature bundle for storage.
func EncodeVoiceFeatures(f VoiceFeatures) datatypes.JSON {
	raw, err := json.Marshal(f)
	if err != nil {
		return datatypes.JSON([]byte("{}"))
	}
	return datatypes.JSON(raw)
}
