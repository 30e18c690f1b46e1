package overnight

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	jobsdomain "github.com/attunelabs/attune-backend/internal/domain/jobs"
	"github.com/attunelabs/attune-backend/internal/platform/envutil"
	"github.com/attunelabs/attune-backend/internal/platform/logger"
)

// BatchRunner is the slice of Builder the scheduler drives.
type BatchRunner interface {
	RunBatch(ctx context.Context, opts BatchOptions) (*BatchSummary, error)
}

// Scheduler fires one nightly batch per configured timezone at that zone's
// local hour, so every user is rebuilt during their own night. Entries are
// fixed at construction; an unknown zone is skipped with a warning instead
// of failing startup.
type Scheduler struct {
	log    *logger.Logger
	cron   *cron.Cron
	runner BatchRunner

	entries int

	// ctx bounds every batch the entries launch. Written once in Start,
	// before the cron goroutine exists.
	ctx context.Context
}

func NewScheduler(runner BatchRunner, baseLog *logger.Logger) (*Scheduler, error) {
	s := &Scheduler{
		log:    baseLog.With("component", "OvernightScheduler"),
		cron:   cron.New(),
		runner: runner,
		ctx:    context.Background(),
	}

	spec := envutil.String("OVERNIGHT_CRON", "0 3 * * *")
	for _, tz := range envutil.List("OVERNIGHT_TIMEZONES", []string{"UTC"}) {
		zone := strings.TrimSpace(tz)
		if zone == "" {
			continue
		}
		if _, err := time.LoadLocation(zone); err != nil {
			s.log.Warn("skipping unknown timezone", "timezone", zone, "error", err)
			continue
		}
		if _, err := s.cron.AddFunc("CRON_TZ="+zone+" "+spec, func() { s.runZone(zone) }); err != nil {
			return nil, fmt.Errorf("schedule %s: %w", zone, err)
		}
		s.entries++
	}
	if s.entries == 0 {
		return nil, fmt.Errorf("no valid overnight timezones configured")
	}
	s.log.Info("overnight schedule registered", "spec", spec, "timezones", s.entries)
	return s, nil
}

func (s *Scheduler) runZone(timezone string) {
	summary, err := s.runner.RunBatch(s.ctx, BatchOptions{
		Timezone: timezone,
		Trigger:  jobsdomain.TriggerNightly,
	})
	if err != nil {
		s.log.Error("nightly batch failed", "timezone", timezone, "error", err)
		return
	}
	s.log.Info("nightly batch done",
		"timezone", timezone,
		"run_id", summary.RunID.String(),
		"total", summary.Total,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
	)
}

// Start begins firing entries. Cancel ctx before Stop on shutdown so an
// in-flight batch unwinds instead of running to completion.
func (s *Scheduler) Start(ctx context.Context) {
	if ctx != nil {
		s.ctx = ctx
	}
	s.cron.Start()
}

// Stop halts scheduling and waits for entries already firing to return.
func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
}

// Entries reports how many timezone entries were registered.
func (s *Scheduler) Entries() int { return s.entries }
