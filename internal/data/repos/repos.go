package repos

import (
	"gorm.io/gorm"

	"github.com/attunelabs/attune-backend/internal/data/repos/interfaces"
	"github.com/attunelabs/attune-backend/internal/data/repos/jobs"
	"github.com/attunelabs/attune-backend/internal/data/repos/patterns"
	"github.com/attunelabs/attune-backend/internal/data/repos/session"
	"github.com/attunelabs/attune-backend/internal/data/repos/user"
	"github.com/attunelabs/attune-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo
type VoiceSessionRepo = session.VoiceSessionRepo
type PatternSnapshotRepo = patterns.PatternSnapshotRepo
type InterfaceConfigRepo = interfaces.InterfaceConfigRepo
type InterfaceChangeRepo = interfaces.InterfaceChangeRepo
type BuildRunRepo = jobs.BuildRunRepo

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }
func NewVoiceSessionRepo(db *gorm.DB, baseLog *logger.Logger) VoiceSessionRepo {
	return session.NewVoiceSessionRepo(db, baseLog)
}
func NewPatternSnapshotRepo(db *gorm.DB, baseLog *logger.Logger) PatternSnapshotRepo {
	return patterns.NewPatternSnapshotRepo(db, baseLog)
}
func NewInterfaceConfigRepo(db *gorm.DB, baseLog *logger.Logger) InterfaceConfigRepo {
	return interfaces.NewInterfaceConfigRepo(db, baseLog)
}
func NewInterfaceChangeRepo(db *gorm.DB, baseLog *logger.Logger) InterfaceChangeRepo {
	return interfaces.NewInterfaceChangeRepo(db, baseLog)
}
func NewBuildRunRepo(db *gorm.DB, baseLog *logger.Logger) BuildRunRepo {
	return jobs.NewBuildRunRepo(db, baseLog)
}
