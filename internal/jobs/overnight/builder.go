// Package overnight runs the nightly analysis pipeline: one bounded
// concurrent build per eligible user, each producing a pattern snapshot, a
// sealed interface config, and an explained change list. A user's failure
// never aborts siblings; they keep their previous config until the next run.
package overnight

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	redisclient "github.com/attunelabs/attune-backend/internal/clients/redis"
	"github.com/attunelabs/attune-backend/internal/data/repos"
	types "github.com/attunelabs/attune-backend/internal/domain"
	ifdomain "github.com/attunelabs/attune-backend/internal/domain/interfaces"
	jobsdomain "github.com/attunelabs/attune-backend/internal/domain/jobs"
	"github.com/attunelabs/attune-backend/internal/modules/analysis"
	"github.com/attunelabs/attune-backend/internal/modules/interfacegen"
	"github.com/attunelabs/attune-backend/internal/observability"
	"github.com/attunelabs/attune-backend/internal/pkg/dbctx"
	pkgerrors "github.com/attunelabs/attune-backend/internal/pkg/errors"
	"github.com/attunelabs/attune-backend/internal/platform/cryptobox"
	"github.com/attunelabs/attune-backend/internal/platform/ctxutil"
	"github.com/attunelabs/attune-backend/internal/platform/envutil"
	"github.com/attunelabs/attune-backend/internal/platform/logger"
)

type Deps struct {
	Log        *logger.Logger
	Users      repos.UserRepo
	Sessions   repos.VoiceSessionRepo
	Snapshots  repos.PatternSnapshotRepo
	Configs    repos.InterfaceConfigRepo
	Changes    repos.InterfaceChangeRepo
	Runs       repos.BuildRunRepo
	Aggregator *analysis.Aggregator
	Generator  *interfacegen.Generator
	Bus        redisclient.AlertBus
}

type Builder struct {
	log *logger.Logger

	users     repos.UserRepo
	sessions  repos.VoiceSessionRepo
	snapshots repos.PatternSnapshotRepo
	configs   repos.InterfaceConfigRepo
	changes   repos.InterfaceChangeRepo
	runs      repos.BuildRunRepo

	aggregator *analysis.Aggregator
	generator  *interfacegen.Generator
	bus        redisclient.AlertBus

	windowDays     int
	activeWindow   time.Duration
	userTimeout    time.Duration
	maxConcurrency int

	now func() time.Time
}

func NewBuilder(d Deps) *Builder {
	maxConc := envutil.Int("OVERNIGHT_MAX_CONCURRENCY", 8)
	if maxConc < 1 {
		maxConc = 1
	}
	windowDays := envutil.Int("ANALYSIS_WINDOW_DAYS", 30)
	if windowDays < 1 {
		windowDays = 30
	}
	return &Builder{
		log:            d.Log.With("component", "OvernightBuilder"),
		users:          d.Users,
		sessions:       d.Sessions,
		snapshots:      d.Snapshots,
		configs:        d.Configs,
		changes:        d.Changes,
		runs:           d.Runs,
		aggregator:     d.Aggregator,
		generator:      d.Generator,
		bus:            d.Bus,
		windowDays:     windowDays,
		activeWindow:   envutil.Duration("OVERNIGHT_ACTIVE_WINDOW", 24*time.Hour),
		userTimeout:    envutil.Duration("BUILD_USER_TIMEOUT", 2*time.Minute),
		maxConcurrency: maxConc,
		now:            time.Now,
	}
}

type BuildOptions struct {
	DryRun bool
}

type BatchOptions struct {
	// Timezone scopes the batch to users in one IANA zone; empty builds
	// everyone eligible.
	Timezone string
	DryRun   bool
	Trigger  string
}

// UserBuildResult is one user's outcome within a batch. Error carries a
// short operator-facing message; transcript content never lands here.
type UserBuildResult struct {
	UserID        uuid.UUID `json:"user_id"`
	Outcome       string    `json:"outcome"`
	Error         string    `json:"error,omitempty"`
	ConfigVersion int       `json:"config_version,omitempty"`
	RiskLevel     string    `json:"risk_level,omitempty"`
	Escalated     bool      `json:"escalated,omitempty"`
	DurationMS    int64     `json:"duration_ms"`
}

type BatchSummary struct {
	RunID    uuid.UUID `json:"run_id"`
	Timezone string    `json:"timezone,omitempty"`
	Trigger  string    `json:"trigger"`
	DryRun   bool      `json:"dry_run"`

	Total       int `json:"total"`
	Succeeded   int `json:"succeeded"`
	Failed      int `json:"failed"`
	Skipped     int `json:"skipped"`
	Escalations int `json:"escalations"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Results []UserBuildResult `json:"results"`
}

// RunBatch builds every eligible user for one timezone. Per-user failures
// are collected into the summary; only batch-level failures (the run row,
// the eligibility query) return an error.
func (b *Builder) RunBatch(ctx context.Context, opts BatchOptions) (*BatchSummary, error) {
	tracer := otel.Tracer("overnight")
	ctx, span := tracer.Start(ctx, "overnight.batch", trace.WithAttributes(
		attribute.String("timezone", opts.Timezone),
		attribute.Bool("dry_run", opts.DryRun),
	))
	defer span.End()

	trigger := strings.TrimSpace(opts.Trigger)
	if trigger == "" {
		trigger = jobsdomain.TriggerNightly
	}

	started := b.now().UTC()
	dbc := dbctx.Context{Ctx: ctx}

	run := &types.BuildRun{
		Timezone:  opts.Timezone,
		Status:    jobsdomain.BuildRunning,
		Trigger:   trigger,
		DryRun:    opts.DryRun,
		StartedAt: started,
	}
	createdRuns, err := b.runs.Create(dbc, []*types.BuildRun{run})
	if err != nil {
		return nil, fmt.Errorf("create build run: %w", err)
	}
	runID := createdRuns[0].ID

	ctx = ctxutil.WithTraceData(ctx, &ctxutil.TraceData{RequestID: runID.String()})
	dbc = dbctx.Context{Ctx: ctx}

	activeSince := started.Add(-b.activeWindow)
	users, err := b.users.ListActiveForOvernight(dbc, activeSince, opts.Timezone)
	if err != nil {
		b.finishRun(dbc, runID, jobsdomain.BuildFailed, nil, err.Error())
		observability.Current().ObserveBuildBatch(tzLabel(opts.Timezone), jobsdomain.BuildFailed, b.now().UTC().Sub(started))
		return nil, fmt.Errorf("list eligible users: %w", err)
	}

	b.log.Info("overnight batch starting",
		"run_id", runID.String(),
		"timezone", opts.Timezone,
		"users", len(users),
		"dry_run", opts.DryRun,
		"trigger", trigger,
	)

	results := make([]UserBuildResult, len(users))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.maxConcurrency)
	for i, u := range users {
		i, u := i, u
		g.Go(func() error {
			// Outcomes are collected, never returned; one user cannot
			// cancel the group.
			results[i] = b.BuildUser(gctx, u, BuildOptions{DryRun: opts.DryRun})
			return nil
		})
	}
	_ = g.Wait()

	summary := &BatchSummary{
		RunID:     runID,
		Timezone:  opts.Timezone,
		Trigger:   trigger,
		DryRun:    opts.DryRun,
		Total:     len(results),
		StartedAt: started,
		Results:   results,
	}
	for _, r := range results {
		switch r.Outcome {
		case jobsdomain.OutcomeSuccess:
			summary.Succeeded++
		case jobsdomain.OutcomeSkipped:
			summary.Skipped++
		default:
			summary.Failed++
		}
		if r.Escalated {
			summary.Escalations++
		}
	}
	finished := b.now().UTC()
	summary.FinishedAt = finished

	b.finishRun(dbc, runID, jobsdomain.BuildCompleted, summary, "")
	observability.Current().ObserveBuildBatch(tzLabel(opts.Timezone), jobsdomain.BuildCompleted, finished.Sub(started))

	if !opts.DryRun {
		observability.ReportRiskEscalations(ctx, b.log, opts.Timezone, summary.Escalations, summary.Total, map[string]any{
			"run_id": runID.String(),
		})
		event := redisclient.BuildEvent{
			RunID:      runID,
			Timezone:   opts.Timezone,
			Status:     jobsdomain.BuildCompleted,
			Total:      summary.Total,
			Succeeded:  summary.Succeeded,
			Failed:     summary.Failed,
			Skipped:    summary.Skipped,
			DryRun:     opts.DryRun,
			OccurredAt: finished,
		}
		if perr := b.bus.PublishBuildEvent(ctx, event); perr != nil {
			b.log.Warn("build event publish failed", "run_id", runID.String(), "error", perr)
		}
	}

	b.log.Info("overnight batch finished",
		"run_id", runID.String(),
		"timezone", opts.Timezone,
		"total", summary.Total,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
		"escalations", summary.Escalations,
		"duration", finished.Sub(started).String(),
		"dry_run", opts.DryRun,
	)
	return summary, nil
}

// RunUser builds a single user outside a batch, for the ops CLI.
func (b *Builder) RunUser(ctx context.Context, userID uuid.UUID, dryRun bool) (UserBuildResult, error) {
	dbc := dbctx.Context{Ctx: ctx}
	found, err := b.users.GetByIDs(dbc, []uuid.UUID{userID})
	if err != nil {
		return UserBuildResult{}, fmt.Errorf("load user: %w", err)
	}
	if len(found) == 0 {
		return UserBuildResult{}, fmt.Errorf("user %s: %w", userID, pkgerrors.ErrNotFound)
	}
	return b.BuildUser(ctx, found[0], BuildOptions{DryRun: dryRun}), nil
}

// BuildUser runs the full pipeline for one user: session window → analyzers
// → generator → seal → persist. It always returns a tagged result, including
// on panic; callers rely on it never throwing.
func (b *Builder) BuildUser(ctx context.Context, u *types.User, opts BuildOptions) (res UserBuildResult) {
	res = UserBuildResult{UserID: u.ID, Outcome: jobsdomain.OutcomeFailed}
	started := b.now()
	defer func() {
		if r := recover(); r != nil {
			res.Outcome = jobsdomain.OutcomeFailed
			res.Error = fmt.Sprintf("panic: %v", r)
			b.log.Error("user build panicked", "user_id", u.ID.String(), "panic", r)
		}
		dur := b.now().Sub(started)
		res.DurationMS = dur.Milliseconds()
		observability.Current().ObserveBuildUser(res.Outcome, dur)
	}()

	uctx, cancel := context.WithTimeout(ctx, b.userTimeout)
	defer cancel()
	dbc := dbctx.Context{Ctx: uctx}

	since := started.UTC().AddDate(0, 0, -b.windowDays)
	sessionRows, err := b.sessions.ListByUserSince(dbc, u.ID, since)
	if err != nil {
		res.Error = fmt.Sprintf("load sessions: %v", err)
		return res
	}
	if len(sessionRows) == 0 {
		res.Outcome = jobsdomain.OutcomeSkipped
		res.Error = "no processed sessions in window"
		return res
	}

	sessions := make([]types.VoiceSession, 0, len(sessionRows))
	for _, s := range sessionRows {
		sessions = append(sessions, *s)
	}
	b.reportSessionQuality(uctx, u.ID, sessions)

	prevRec, err := b.configs.GetLatestByUser(dbc, u.ID)
	if err != nil {
		res.Error = fmt.Sprintf("load previous config: %v", err)
		return res
	}

	key := u.ConfigKey
	if len(key) != cryptobox.KeySize {
		if prevRec != nil {
			// A sealed config exists but its key is gone. Fail closed;
			// guessing a fresh key would orphan the stored history.
			observability.Current().IncDecryptFailure()
			res.Error = "config key missing for sealed config"
			return res
		}
		freshKey, salt, kerr := bootstrapKey()
		if kerr != nil {
			res.Error = fmt.Sprintf("bootstrap config key: %v", kerr)
			return res
		}
		if !opts.DryRun {
			if uerr := b.users.UpdateConfigKey(dbc, u.ID, freshKey, salt, false); uerr != nil {
				res.Error = fmt.Sprintf("store config key: %v", uerr)
				return res
			}
		}
		key = freshKey
		u.KeySalt = salt
	}

	var previous *types.UIConfig
	if prevRec != nil {
		var prevCfg types.UIConfig
		if derr := cryptobox.OpenJSON(key, prevRec.Encrypted, &prevCfg); derr != nil {
			observability.Current().IncDecryptFailure()
			res.Error = "previous config decrypt failed"
			return res
		}
		previous = &prevCfg
	}

	loc := locationFor(u.Timezone)
	agg := b.aggregator.Aggregate(u.ID, sessions, loc, b.windowDays)
	observability.Current().IncRiskLevel(agg.Risk.Level)

	cfg, err := b.generator.Generate(agg, previous)
	if err != nil {
		res.Error = fmt.Sprintf("generate config: %v", err)
		return res
	}

	sealed, err := cryptobox.SealJSON(key, cfg)
	if err != nil {
		res.Error = fmt.Sprintf("seal config: %v", err)
		return res
	}

	escalated := prevRec != nil && types.RiskRank(cfg.Metadata.RiskLevel) > types.RiskRank(prevRec.RiskLevel)
	if escalated {
		observability.Current().IncRiskEscalation()
	}

	if !opts.DryRun {
		snap := &types.PatternSnapshot{
			UserID:         u.ID,
			SessionCount:   agg.SessionCount,
			DataConfidence: agg.DataConfidence,
			RiskLevel:      agg.Risk.Level,
			Patterns:       types.EncodeAggregatedPatterns(agg),
		}
		if _, serr := b.snapshots.Create(dbc, snap); serr != nil {
			res.Error = fmt.Sprintf("store snapshot: %v", serr)
			return res
		}

		rec := &types.InterfaceConfigRecord{
			UserID:      u.ID,
			Version:     cfg.Metadata.Version,
			Encrypted:   sealed,
			KeySalt:     u.KeySalt,
			RiskLevel:   cfg.Metadata.RiskLevel,
			Metadata:    ifdomain.EncodeMetadata(cfg.Metadata),
			GeneratedAt: cfg.Metadata.GeneratedAt,
		}
		if _, cerr := b.configs.Create(dbc, rec); cerr != nil {
			res.Error = fmt.Sprintf("store config: %v", cerr)
			return res
		}

		changeRows := make([]*types.InterfaceChangeRecord, 0, len(cfg.Changes))
		for _, ch := range cfg.Changes {
			changeRows = append(changeRows, &types.InterfaceChangeRecord{
				UserID:        u.ID,
				ConfigVersion: cfg.Metadata.Version,
				ChangeType:    ch.Type,
				Component:     ch.Component,
				Reason:        ch.Reason,
				Severity:      ch.Severity,
			})
		}
		if _, cherr := b.changes.CreateMany(dbc, changeRows); cherr != nil {
			res.Error = fmt.Sprintf("store changes: %v", cherr)
			return res
		}

		if agg.Risk.AlertCounselor {
			alert := redisclient.RiskAlert{
				UserID:        u.ID,
				Level:         agg.Risk.Level,
				Score:         agg.Risk.Score,
				ConfigVersion: cfg.Metadata.Version,
				OccurredAt:    b.now().UTC(),
			}
			if perr := b.bus.PublishRiskAlert(uctx, alert); perr != nil {
				// Alert delivery never fails a build.
				b.log.Warn("risk alert publish failed", "user_id", u.ID.String(), "error", perr)
			}
		}
	}

	res.Outcome = jobsdomain.OutcomeSuccess
	res.Error = ""
	res.ConfigVersion = cfg.Metadata.Version
	res.RiskLevel = cfg.Metadata.RiskLevel
	res.Escalated = escalated
	return res
}

// reportSessionQuality surfaces malformed inputs without excluding them;
// analyzers degrade per-field (zero features, neutral emotion) rather than
// dropping whole sessions.
func (b *Builder) reportSessionQuality(ctx context.Context, userID uuid.UUID, sessions []types.VoiceSession) {
	var issues []string
	for _, s := range sessions {
		if strings.TrimSpace(s.Transcript) == "" {
			issues = append(issues, fmt.Sprintf("empty transcript: session %s", s.ID))
		}
		if len(s.Features) > 0 && !json.Valid(s.Features) {
			issues = append(issues, fmt.Sprintf("malformed features: session %s", s.ID))
		}
		if s.VoiceEmotion != "" && !analysis.KnownEmotion(s.VoiceEmotion) {
			issues = append(issues, fmt.Sprintf("unknown emotion label %q: session %s", s.VoiceEmotion, s.ID))
		}
	}
	if len(issues) == 0 {
		return
	}
	observability.ReportDataQualityErrors(ctx, b.log, "overnight_build", issues, map[string]any{
		"user_id": userID.String(),
	})
}

func (b *Builder) finishRun(dbc dbctx.Context, runID uuid.UUID, status string, summary *BatchSummary, errMsg string) {
	updates := map[string]any{
		"status":      status,
		"finished_at": b.now().UTC(),
	}
	if summary != nil {
		updates["total_users"] = summary.Total
		updates["succeeded"] = summary.Succeeded
		updates["failed"] = summary.Failed
		updates["skipped"] = summary.Skipped
		updates["result"] = jobsdomain.EncodeOutcomes(toOutcomes(summary.Results))
	}
	if errMsg != "" {
		updates["error"] = errMsg
	}
	if err := b.runs.UpdateFields(dbc, runID, updates); err != nil {
		b.log.Error("build run update failed", "run_id", runID.String(), "status", status, "error", err)
	}
}

func toOutcomes(results []UserBuildResult) []jobsdomain.UserOutcome {
	out := make([]jobsdomain.UserOutcome, 0, len(results))
	for _, r := range results {
		out = append(out, jobsdomain.UserOutcome{
			UserID:  r.UserID,
			Outcome: r.Outcome,
			Error:   r.Error,
		})
	}
	return out
}

func bootstrapKey() ([]byte, []byte, error) {
	key, err := cryptobox.GenerateKey()
	if err != nil {
		return nil, nil, err
	}
	salt, err := cryptobox.GenerateSalt()
	if err != nil {
		return nil, nil, err
	}
	return key, salt, nil
}

func locationFor(timezone string) *time.Location {
	loc, err := time.LoadLocation(strings.TrimSpace(timezone))
	if err != nil || loc == nil {
		return time.UTC
	}
	return loc
}

func tzLabel(timezone string) string {
	timezone = strings.TrimSpace(timezone)
	if timezone == "" {
		return "all"
	}
	return timezone
}
