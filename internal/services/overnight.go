package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/attunelabs/attune-backend/internal/data/repos"
	types "github.com/attunelabs/attune-backend/internal/domain"
	jobsdomain "github.com/attunelabs/attune-backend/internal/domain/jobs"
	"github.com/attunelabs/attune-backend/internal/jobs/overnight"
	"github.com/attunelabs/attune-backend/internal/pkg/dbctx"
	pkgerrors "github.com/attunelabs/attune-backend/internal/pkg/errors"
	"github.com/attunelabs/attune-backend/internal/platform/logger"
)

type OvernightService interface {
	// TriggerRun executes one batch synchronously and returns its summary.
	// An empty timezone runs every eligible user regardless of zone.
	TriggerRun(ctx context.Context, timezone string, dryRun bool) (*overnight.BatchSummary, error)

	// GetLatestRun returns the most recently started run, optionally scoped
	// to one timezone.
	GetLatestRun(ctx context.Context, timezone string) (*types.BuildRun, error)
}

type overnightService struct {
	log    *logger.Logger
	runner overnight.BatchRunner
	runs   repos.BuildRunRepo
}

func NewOvernightService(log *logger.Logger, runner overnight.BatchRunner, runs repos.BuildRunRepo) OvernightService {
	return &overnightService{
		log:    log.With("service", "OvernightService"),
		runner: runner,
		runs:   runs,
	}
}

func (s *overnightService) TriggerRun(ctx context.Context, timezone string, dryRun bool) (*overnight.BatchSummary, error) {
	timezone = strings.TrimSpace(timezone)
	if timezone != "" {
		if _, err := time.LoadLocation(timezone); err != nil {
			return nil, fmt.Errorf("unknown timezone %q: %w", timezone, pkgerrors.ErrInvalidArgument)
		}
	}
	summary, err := s.runner.RunBatch(ctx, overnight.BatchOptions{
		Timezone: timezone,
		DryRun:   dryRun,
		Trigger:  jobsdomain.TriggerManual,
	})
	if err != nil {
		return nil, fmt.Errorf("run batch: %w", err)
	}
	return summary, nil
}

func (s *overnightService) GetLatestRun(ctx context.Context, timezone string) (*types.BuildRun, error) {
	run, err := s.runs.GetLatest(dbctx.Context{Ctx: ctx}, strings.TrimSpace(timezone))
	if err != nil {
		return nil, fmt.Errorf("fetch latest run: %w", err)
	}
	if run == nil {
		return nil, fmt.Errorf("no build run recorded: %w", pkgerrors.ErrNotFound)
	}
	return run, nil
}
