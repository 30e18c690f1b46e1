package domain

import (
	"github.com/attunelabs/attune-backend/internal/domain/interfaces"
	"github.com/attunelabs/attune-backend/internal/domain/jobs"
	"github.com/attunelabs/attune-backend/internal/domain/patterns"
	"github.com/attunelabs/attune-backend/internal/domain/session"
	"github.com/attunelabs/attune-backend/internal/domain/user"
	"gorm.io/datatypes"
)

type User = user.User

type VoiceSession = session.VoiceSession
type VoiceFeatures = session.VoiceFeatures

type VoiceBaseline = patterns.VoiceBaseline
type StressMarker = patterns.StressMarker
type EmotionalPattern = patterns.EmotionalPattern
type CulturalContext = patterns.CulturalContext
type DeflectionUse = patterns.DeflectionUse
type Trigger = patterns.Trigger
type TopicPair = patterns.TopicPair
type TriggerPattern = patterns.TriggerPattern
type CopingStrategy = patterns.CopingStrategy
type CopingProfile = patterns.CopingProfile
type DissonanceResult = patterns.DissonanceResult
type RiskAssessment = patterns.RiskAssessment
type MentalHealthProfile = patterns.MentalHealthProfile
type AggregatedPatterns = patterns.AggregatedPatterns
type PatternSnapshot = patterns.PatternSnapshot

type Theme = interfaces.Theme
type ComponentConfig = interfaces.ComponentConfig
type LayoutEntry = interfaces.LayoutEntry
type CulturalOverlay = interfaces.CulturalOverlay
type UIConfig = interfaces.UIConfig
type UIMetadata = interfaces.Metadata
type InterfaceChange = interfaces.InterfaceChange
type InterfaceConfigRecord = interfaces.ConfigRecord
type InterfaceChangeRecord = interfaces.ChangeRecord

type BuildRun = jobs.BuildRun
type BuildUserOutcome = jobs.UserOutcome

func EncodeVoiceFeatures(f session.VoiceFeatures) datatypes.JSON {
	return session.EncodeVoiceFeatures(f)
}

func EncodeAggregatedPatterns(p patterns.AggregatedPatterns) datatypes.JSON {
	return patterns.EncodeAggregatedPatterns(p)
}

func DecodeAggregatedPatterns(raw datatypes.JSON) patterns.AggregatedPatterns {
	return patterns.DecodeAggregatedPatterns(raw)
}

func RiskLevelForScore(score float64) string { return patterns.RiskLevelForScore(score) }
func RiskRank(level string) int              { return patterns.RiskRank(level) }
