package app

import (
	"gorm.io/gorm"

	"github.com/attunelabs/attune-backend/internal/data/repos"
	"github.com/attunelabs/attune-backend/internal/platform/logger"
)

type Repos struct {
	User            repos.UserRepo
	VoiceSession    repos.VoiceSessionRepo
	PatternSnapshot repos.PatternSnapshotRepo
	InterfaceConfig repos.InterfaceConfigRepo
	InterfaceChange repos.InterfaceChangeRepo
	BuildRun        repos.BuildRunRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:            repos.NewUserRepo(db, log),
		VoiceSession:    repos.NewVoiceSessionRepo(db, log),
		PatternSnapshot: repos.NewPatternSnapshotRepo(db, log),
		InterfaceConfig: repos.NewInterfaceConfigRepo(db, log),
		InterfaceChange: repos.NewInterfaceChangeRepo(db, log),
		BuildRun:        repos.NewBuildRunRepo(db, log),
	}
}
