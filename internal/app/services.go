package app

import (
	"fmt"

	"github.com/attunelabs/attune-backend/internal/jobs/overnight"
	"github.com/attunelabs/attune-backend/internal/modules/analysis"
	"github.com/attunelabs/attune-backend/internal/modules/analysis/tables"
	"github.com/attunelabs/attune-backend/internal/modules/interfacegen"
	"github.com/attunelabs/attune-backend/internal/platform/logger"
	"github.com/attunelabs/attune-backend/internal/services"
)

type Services struct {
	Token     services.TokenService
	Interface services.InterfaceService
	Patterns  services.PatternService
	Overnight services.OvernightService

	// Builder runs one user or one batch; Scheduler fires it nightly per
	// configured timezone.
	Builder   *overnight.Builder
	Scheduler *overnight.Scheduler
}

func wireServices(log *logger.Logger, cfg Config, reposet Repos, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	tab, err := tables.Load()
	if err != nil {
		return Services{}, fmt.Errorf("load analysis tables: %w", err)
	}
	aggregator := analysis.NewAggregator(tab, log)
	generator := interfacegen.NewGenerator(log)

	builder := overnight.NewBuilder(overnight.Deps{
		Log:        log,
		Users:      reposet.User,
		Sessions:   reposet.VoiceSession,
		Snapshots:  reposet.PatternSnapshot,
		Configs:    reposet.InterfaceConfig,
		Changes:    reposet.InterfaceChange,
		Runs:       reposet.BuildRun,
		Aggregator: aggregator,
		Generator:  generator,
		Bus:        clients.AlertBus,
	})

	var scheduler *overnight.Scheduler
	if cfg.SchedulerEnabled {
		scheduler, err = overnight.NewScheduler(builder, log)
		if err != nil {
			return Services{}, fmt.Errorf("init overnight scheduler: %w", err)
		}
	} else {
		log.Info("Overnight scheduler disabled by config")
	}

	tokenService, err := services.NewTokenService(log, cfg.JWTSecretKey)
	if err != nil {
		return Services{}, fmt.Errorf("init token service: %w", err)
	}

	return Services{
		Token:     tokenService,
		Interface: services.NewInterfaceService(log, reposet.InterfaceConfig, reposet.InterfaceChange),
		Patterns:  services.NewPatternService(log, reposet.PatternSnapshot),
		Overnight: services.NewOvernightService(log, builder, reposet.BuildRun),
		Builder:   builder,
		Scheduler: scheduler,
	}, nil
}
