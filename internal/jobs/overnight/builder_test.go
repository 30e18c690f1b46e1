package overnight

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	redisclient "github.com/attunelabs/attune-backend/internal/clients/redis"
	types "github.com/attunelabs/attune-backend/internal/domain"
	ifdomain "github.com/attunelabs/attune-backend/internal/domain/interfaces"
	jobsdomain "github.com/attunelabs/attune-backend/internal/domain/jobs"
	"github.com/attunelabs/attune-backend/internal/domain/patterns"
	"github.com/attunelabs/attune-backend/internal/domain/session"
	"github.com/attunelabs/attune-backend/internal/modules/analysis"
	"github.com/attunelabs/attune-backend/internal/modules/analysis/tables"
	"github.com/attunelabs/attune-backend/internal/modules/interfacegen"
	"github.com/attunelabs/attune-backend/internal/pkg/dbctx"
	pkgerrors "github.com/attunelabs/attune-backend/internal/pkg/errors"
	"github.com/attunelabs/attune-backend/internal/platform/cryptobox"
	"github.com/attunelabs/attune-backend/internal/platform/logger"
)

var buildStart = time.Date(2025, 7, 1, 3, 0, 0, 0, time.UTC)

var calmFeatures = types.VoiceFeatures{
	PitchMean:        150,
	PitchStd:         20,
	PitchRange:       100,
	EnergyMean:       0.5,
	EnergyStd:        0.05,
	SpeechRate:       1.0,
	PauseRatio:       0.1,
	ZeroCrossingRate: 0.05,
}

var shakyFeatures = types.VoiceFeatures{
	PitchMean:        150,
	PitchStd:         60,
	PitchRange:       250,
	EnergyMean:       0.5,
	EnergyStd:        0.2,
	SpeechRate:       1.0,
	PauseRatio:       0.4,
	ZeroCrossingRate: 0.2,
}

func TestBuildUser_FirstBuildPersistsSnapshotConfigAndChanges(t *testing.T) {
	fx := newBuilderFixture(t)
	u := testUser(t)
	fx.sessions.byUser[u.ID] = calmRun(u.ID, 8)

	res := fx.builder.BuildUser(context.Background(), u, BuildOptions{})
	if res.Outcome != jobsdomain.OutcomeSuccess {
		t.Fatalf("outcome = %q (%s), want success", res.Outcome, res.Error)
	}
	if res.ConfigVersion != 1 {
		t.Fatalf("config version = %d, want 1", res.ConfigVersion)
	}
	if res.RiskLevel != patterns.RiskLow {
		t.Fatalf("risk level = %q, want low", res.RiskLevel)
	}
	if res.Escalated {
		t.Fatalf("escalated on a first build")
	}

	if got := len(fx.snapshots.created); got != 1 {
		t.Fatalf("snapshots stored = %d, want 1", got)
	}
	snap := fx.snapshots.created[0]
	if snap.UserID != u.ID || snap.SessionCount != 8 || snap.RiskLevel != patterns.RiskLow {
		t.Fatalf("snapshot fields off: %+v", snap)
	}
	if len(snap.Patterns) == 0 {
		t.Fatalf("snapshot payload empty")
	}

	if got := len(fx.configs.created); got != 1 {
		t.Fatalf("configs stored = %d, want 1", got)
	}
	rec := fx.configs.created[0]
	if rec.Version != 1 || rec.UserID != u.ID {
		t.Fatalf("config record fields off: version=%d user=%s", rec.Version, rec.UserID)
	}
	var stored types.UIConfig
	if err := cryptobox.OpenJSON(u.ConfigKey, rec.Encrypted, &stored); err != nil {
		t.Fatalf("stored config does not open with the user key: %v", err)
	}
	if stored.Metadata.Version != 1 {
		t.Fatalf("sealed version = %d, want 1", stored.Metadata.Version)
	}
	meta := ifdomain.DecodeMetadata(rec.Metadata)
	if meta.Version != 1 || meta.RiskLevel != patterns.RiskLow {
		t.Fatalf("plaintext metadata off: %+v", meta)
	}

	if got := len(fx.changes.created); got != 1 {
		t.Fatalf("change rows = %d, want the single baseline entry", got)
	}
	ch := fx.changes.created[0]
	if ch.ChangeType != ifdomain.ChangeBaselineEstablished || ch.ConfigVersion != 1 {
		t.Fatalf("change row off: %+v", ch)
	}

	if got := len(fx.bus.riskAlerts); got != 0 {
		t.Fatalf("risk alerts = %d, want none at low risk", got)
	}
}

func TestBuildUser_SkipsWithoutSessionsInWindow(t *testing.T) {
	fx := newBuilderFixture(t)
	u := testUser(t)

	res := fx.builder.BuildUser(context.Background(), u, BuildOptions{})
	if res.Outcome != jobsdomain.OutcomeSkipped {
		t.Fatalf("outcome = %q, want skipped", res.Outcome)
	}
	if len(fx.snapshots.created) != 0 || len(fx.configs.created) != 0 || len(fx.changes.created) != 0 {
		t.Fatalf("skipped build wrote rows")
	}
	if fx.users.keyUpdates != 0 {
		t.Fatalf("skipped build touched the config key")
	}
}

func TestBuildUser_RepeatBuildBumpsVersion(t *testing.T) {
	fx := newBuilderFixture(t)
	u := testUser(t)
	fx.sessions.byUser[u.ID] = calmRun(u.ID, 8)
	fx.configs.latest[u.ID] = sealedPrevious(t, u, 3, patterns.RiskLow)

	res := fx.builder.BuildUser(context.Background(), u, BuildOptions{})
	if res.Outcome != jobsdomain.OutcomeSuccess {
		t.Fatalf("outcome = %q (%s), want success", res.Outcome, res.Error)
	}
	if res.ConfigVersion != 4 {
		t.Fatalf("config version = %d, want previous+1", res.ConfigVersion)
	}
	if res.Escalated {
		t.Fatalf("escalated with an unchanged low risk level")
	}
	for _, ch := range fx.changes.created {
		if ch.ConfigVersion != 4 {
			t.Fatalf("change row carries version %d, want 4", ch.ConfigVersion)
		}
	}
}

func TestBuildUser_DecryptFailureFailsClosed(t *testing.T) {
	fx := newBuilderFixture(t)
	u := testUser(t)
	fx.sessions.byUser[u.ID] = calmRun(u.ID, 5)

	other := testUser(t)
	prev := sealedPrevious(t, other, 2, patterns.RiskLow)
	prev.UserID = u.ID
	fx.configs.latest[u.ID] = prev

	res := fx.builder.BuildUser(context.Background(), u, BuildOptions{})
	if res.Outcome != jobsdomain.OutcomeFailed {
		t.Fatalf("outcome = %q, want failed on undecryptable history", res.Outcome)
	}
	if !strings.Contains(res.Error, "decrypt") {
		t.Fatalf("error = %q, want a decrypt failure", res.Error)
	}
	if len(fx.snapshots.created) != 0 || len(fx.configs.created) != 0 {
		t.Fatalf("failed build wrote rows")
	}
}

func TestBuildUser_MissingKeyWithSealedHistoryFails(t *testing.T) {
	fx := newBuilderFixture(t)
	u := testUser(t)
	prev := sealedPrevious(t, u, 1, patterns.RiskLow)
	u.ConfigKey = nil
	fx.sessions.byUser[u.ID] = calmRun(u.ID, 5)
	fx.configs.latest[u.ID] = prev

	res := fx.builder.BuildUser(context.Background(), u, BuildOptions{})
	if res.Outcome != jobsdomain.OutcomeFailed {
		t.Fatalf("outcome = %q, want failed when the key is gone", res.Outcome)
	}
	if fx.users.keyUpdates != 0 {
		t.Fatalf("generated a replacement key over sealed history")
	}
	if len(fx.configs.created) != 0 {
		t.Fatalf("failed build wrote a config")
	}
}

func TestBuildUser_BootstrapsKeyOnFirstBuild(t *testing.T) {
	fx := newBuilderFixture(t)
	u := testUser(t)
	u.ConfigKey = nil
	u.KeySalt = nil
	fx.sessions.byUser[u.ID] = calmRun(u.ID, 5)

	res := fx.builder.BuildUser(context.Background(), u, BuildOptions{})
	if res.Outcome != jobsdomain.OutcomeSuccess {
		t.Fatalf("outcome = %q (%s), want success", res.Outcome, res.Error)
	}
	if fx.users.keyUpdates != 1 {
		t.Fatalf("key updates = %d, want 1", fx.users.keyUpdates)
	}
	if len(fx.users.lastKey) != cryptobox.KeySize {
		t.Fatalf("stored key length = %d, want %d", len(fx.users.lastKey), cryptobox.KeySize)
	}
	if len(fx.configs.created) != 1 {
		t.Fatalf("configs stored = %d, want 1", len(fx.configs.created))
	}
	var stored types.UIConfig
	if err := cryptobox.OpenJSON(fx.users.lastKey, fx.configs.created[0].Encrypted, &stored); err != nil {
		t.Fatalf("config does not open with the bootstrapped key: %v", err)
	}
}

func TestBuildUser_DryRunComputesWithoutPersisting(t *testing.T) {
	fx := newBuilderFixture(t)
	u := testUser(t)
	fx.sessions.byUser[u.ID] = calmRun(u.ID, 8)

	res := fx.builder.BuildUser(context.Background(), u, BuildOptions{DryRun: true})
	if res.Outcome != jobsdomain.OutcomeSuccess {
		t.Fatalf("outcome = %q (%s), want success", res.Outcome, res.Error)
	}
	if res.ConfigVersion != 1 || res.RiskLevel != patterns.RiskLow {
		t.Fatalf("dry run skipped computation: %+v", res)
	}
	if len(fx.snapshots.created) != 0 || len(fx.configs.created) != 0 || len(fx.changes.created) != 0 {
		t.Fatalf("dry run wrote rows")
	}
	if len(fx.bus.riskAlerts) != 0 {
		t.Fatalf("dry run published alerts")
	}
}

func TestBuildUser_CrisisEscalatesAndAlerts(t *testing.T) {
	fx := newBuilderFixture(t)
	u := testUser(t)
	sessions := calmRun(u.ID, 5)
	sessions = append(sessions, userSession(u.ID, 0, "happy",
		"i'm fine. honestly some days i just want to die", shakyFeatures))
	fx.sessions.byUser[u.ID] = sessions
	fx.configs.latest[u.ID] = sealedPrevious(t, u, 6, patterns.RiskLow)

	res := fx.builder.BuildUser(context.Background(), u, BuildOptions{})
	if res.Outcome != jobsdomain.OutcomeSuccess {
		t.Fatalf("outcome = %q (%s), want success", res.Outcome, res.Error)
	}
	if res.RiskLevel != patterns.RiskCritical {
		t.Fatalf("risk level = %q, want critical for a latest-session crisis", res.RiskLevel)
	}
	if !res.Escalated {
		t.Fatalf("low to critical did not register as an escalation")
	}
	if len(fx.bus.riskAlerts) != 1 {
		t.Fatalf("risk alerts = %d, want 1", len(fx.bus.riskAlerts))
	}
	alert := fx.bus.riskAlerts[0]
	if alert.UserID != u.ID || alert.Level != patterns.RiskCritical || alert.ConfigVersion != 7 {
		t.Fatalf("alert fields off: %+v", alert)
	}
}

func TestBuildUser_AlertPublishFailureDoesNotFailBuild(t *testing.T) {
	fx := newBuilderFixture(t)
	fx.bus.riskErr = errors.New("redis down")
	u := testUser(t)
	fx.sessions.byUser[u.ID] = []*types.VoiceSession{
		userSession(u.ID, 0, "happy", "i'm fine. honestly some days i just want to die", shakyFeatures),
	}

	res := fx.builder.BuildUser(context.Background(), u, BuildOptions{})
	if res.Outcome != jobsdomain.OutcomeSuccess {
		t.Fatalf("outcome = %q (%s), want success despite publish failure", res.Outcome, res.Error)
	}
	if len(fx.configs.created) != 1 {
		t.Fatalf("config not stored")
	}
}

func TestRunBatch_CollectsOutcomesAndFinishesRun(t *testing.T) {
	fx := newBuilderFixture(t)

	good := testUser(t)
	fx.sessions.byUser[good.ID] = calmRun(good.ID, 5)
	broken := testUser(t)
	fx.sessions.errFor[broken.ID] = errors.New("connection reset")
	idle := testUser(t)

	fx.users.active = []*types.User{good, broken, idle}

	summary, err := fx.builder.RunBatch(context.Background(), BatchOptions{Timezone: "America/Los_Angeles"})
	if err != nil {
		t.Fatalf("RunBatch: %v", err)
	}
	if summary.Total != 3 || summary.Succeeded != 1 || summary.Failed != 1 || summary.Skipped != 1 {
		t.Fatalf("summary counts off: %+v", summary)
	}
	if summary.Trigger != jobsdomain.TriggerNightly {
		t.Fatalf("trigger = %q, want nightly default", summary.Trigger)
	}

	if len(fx.runs.created) != 1 {
		t.Fatalf("build runs created = %d, want 1", len(fx.runs.created))
	}
	run := fx.runs.created[0]
	if run.Status != jobsdomain.BuildRunning || run.Timezone != "America/Los_Angeles" {
		t.Fatalf("run row off: %+v", run)
	}

	last := fx.runs.lastUpdate()
	if last["status"] != jobsdomain.BuildCompleted {
		t.Fatalf("final status = %v, want completed", last["status"])
	}
	if last["total_users"] != 3 || last["succeeded"] != 1 || last["failed"] != 1 || last["skipped"] != 1 {
		t.Fatalf("final counts off: %+v", last)
	}
	if _, ok := last["result"]; !ok {
		t.Fatalf("final update missing per-user outcomes")
	}

	if len(fx.bus.buildEvents) != 1 {
		t.Fatalf("build events = %d, want 1", len(fx.bus.buildEvents))
	}
	event := fx.bus.buildEvents[0]
	if event.RunID != summary.RunID || event.Succeeded != 1 || event.Failed != 1 || event.Skipped != 1 {
		t.Fatalf("build event off: %+v", event)
	}
}

func TestRunBatch_DryRunSuppressesWritesAndEvents(t *testing.T) {
	fx := newBuilderFixture(t)
	u := testUser(t)
	fx.sessions.byUser[u.ID] = calmRun(u.ID, 5)
	fx.users.active = []*types.User{u}

	summary, err := fx.builder.RunBatch(context.Background(), BatchOptions{DryRun: true, Trigger: jobsdomain.TriggerManual})
	if err != nil {
		t.Fatalf("RunBatch: %v", err)
	}
	if !summary.DryRun || summary.Succeeded != 1 {
		t.Fatalf("summary off: %+v", summary)
	}
	if summary.Trigger != jobsdomain.TriggerManual {
		t.Fatalf("trigger = %q, want manual", summary.Trigger)
	}

	if len(fx.snapshots.created) != 0 || len(fx.configs.created) != 0 {
		t.Fatalf("dry run wrote rows")
	}
	if len(fx.bus.buildEvents) != 0 {
		t.Fatalf("dry run published a build event")
	}

	// The run row itself is still recorded so operators can see the rehearsal.
	if len(fx.runs.created) != 1 || !fx.runs.created[0].DryRun {
		t.Fatalf("dry run row missing or untagged: %+v", fx.runs.created)
	}
	if got := fx.runs.lastUpdate()["status"]; got != jobsdomain.BuildCompleted {
		t.Fatalf("final status = %v, want completed", got)
	}
}

func TestRunBatch_EligibilityFailureMarksRunFailed(t *testing.T) {
	fx := newBuilderFixture(t)
	fx.users.activeErr = errors.New("db unreachable")

	_, err := fx.builder.RunBatch(context.Background(), BatchOptions{})
	if err == nil {
		t.Fatalf("expected an error when eligibility listing fails")
	}
	if got := fx.runs.lastUpdate()["status"]; got != jobsdomain.BuildFailed {
		t.Fatalf("final status = %v, want failed", got)
	}
	if msg, ok := fx.runs.lastUpdate()["error"].(string); !ok || msg == "" {
		t.Fatalf("failed run carries no error message")
	}
}

func TestRunBatch_RunRowFailureAborts(t *testing.T) {
	fx := newBuilderFixture(t)
	fx.runs.createErr = errors.New("insert denied")
	u := testUser(t)
	fx.users.active = []*types.User{u}
	fx.sessions.byUser[u.ID] = calmRun(u.ID, 5)

	_, err := fx.builder.RunBatch(context.Background(), BatchOptions{})
	if err == nil {
		t.Fatalf("expected an error when the run row cannot be created")
	}
	if len(fx.snapshots.created) != 0 {
		t.Fatalf("users were built without a run row")
	}
}

func TestRunUser_UnknownUserReturnsNotFound(t *testing.T) {
	fx := newBuilderFixture(t)

	_, err := fx.builder.RunUser(context.Background(), uuid.New(), false)
	if !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestRunUser_BuildsSingleUser(t *testing.T) {
	fx := newBuilderFixture(t)
	u := testUser(t)
	fx.users.byID[u.ID] = u
	fx.sessions.byUser[u.ID] = calmRun(u.ID, 5)

	res, err := fx.builder.RunUser(context.Background(), u.ID, false)
	if err != nil {
		t.Fatalf("RunUser: %v", err)
	}
	if res.Outcome != jobsdomain.OutcomeSuccess {
		t.Fatalf("outcome = %q (%s), want success", res.Outcome, res.Error)
	}
	if len(fx.snapshots.created) != 1 {
		t.Fatalf("snapshot not stored")
	}
}

// --- fixture ---

type builderFixture struct {
	users     *fakeUserRepo
	sessions  *fakeSessionRepo
	snapshots *fakeSnapshotRepo
	configs   *fakeConfigRepo
	changes   *fakeChangeRepo
	runs      *fakeRunRepo
	bus       *fakeAlertBus

	builder *Builder
}

func newBuilderFixture(t *testing.T) *builderFixture {
	t.Helper()
	log := testLogger(t)
	tab, err := tables.Load()
	if err != nil {
		t.Fatalf("tables.Load: %v", err)
	}
	fx := &builderFixture{
		users:     &fakeUserRepo{byID: map[uuid.UUID]*types.User{}},
		sessions:  &fakeSessionRepo{byUser: map[uuid.UUID][]*types.VoiceSession{}, errFor: map[uuid.UUID]error{}},
		snapshots: &fakeSnapshotRepo{},
		configs:   &fakeConfigRepo{latest: map[uuid.UUID]*types.InterfaceConfigRecord{}},
		changes:   &fakeChangeRepo{},
		runs:      &fakeRunRepo{},
		bus:       &fakeAlertBus{},
	}
	fx.builder = NewBuilder(Deps{
		Log:        log,
		Users:      fx.users,
		Sessions:   fx.sessions,
		Snapshots:  fx.snapshots,
		Configs:    fx.configs,
		Changes:    fx.changes,
		Runs:       fx.runs,
		Aggregator: analysis.NewAggregator(tab, log),
		Generator:  interfacegen.NewGenerator(log),
		Bus:        fx.bus,
	})
	fx.builder.now = func() time.Time { return buildStart }
	return fx
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("dev")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func testUser(t *testing.T) *types.User {
	t.Helper()
	key, err := cryptobox.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	salt, err := cryptobox.GenerateSalt()
	if err != nil {
		t.Fatalf("GenerateSalt: %v", err)
	}
	return &types.User{
		ID:        uuid.New(),
		Timezone:  "America/Los_Angeles",
		ConfigKey: key,
		KeySalt:   salt,
	}
}

func userSession(userID uuid.UUID, ageHours int, emotion, transcript string, f types.VoiceFeatures) *types.VoiceSession {
	return &types.VoiceSession{
		ID:                     uuid.New(),
		UserID:                 userID,
		RecordedAt:             buildStart.Add(-time.Duration(ageHours) * time.Hour),
		Transcript:             transcript,
		VoiceEmotion:           emotion,
		VoiceEmotionConfidence: 0.8,
		Features:               session.EncodeVoiceFeatures(f),
		Processed:              true,
	}
}

// calmRun yields n unremarkable sessions, oldest first.
func calmRun(userID uuid.UUID, n int) []*types.VoiceSession {
	out := make([]*types.VoiceSession, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, userSession(userID, (n-i)*24, "neutral", "talked about my day", calmFeatures))
	}
	return out
}

func sealedPrevious(t *testing.T, u *types.User, version int, riskLevel string) *types.InterfaceConfigRecord {
	t.Helper()
	prev := types.UIConfig{
		UserID: u.ID,
		Theme:  types.Theme{Name: "morning-calm"},
		Metadata: types.UIMetadata{
			RiskLevel:   riskLevel,
			Version:     version,
			GeneratedAt: buildStart.AddDate(0, 0, -1),
		},
	}
	sealed, err := cryptobox.SealJSON(u.ConfigKey, prev)
	if err != nil {
		t.Fatalf("SealJSON: %v", err)
	}
	return &types.InterfaceConfigRecord{
		ID:          uuid.New(),
		UserID:      u.ID,
		Version:     version,
		Encrypted:   sealed,
		KeySalt:     u.KeySalt,
		RiskLevel:   riskLevel,
		Metadata:    ifdomain.EncodeMetadata(prev.Metadata),
		GeneratedAt: prev.Metadata.GeneratedAt,
	}
}

// --- fakes ---

type fakeUserRepo struct {
	mu         sync.Mutex
	active     []*types.User
	activeErr  error
	byID       map[uuid.UUID]*types.User
	keyUpdates int
	lastKey    []byte
	lastSalt   []byte
}

func (f *fakeUserRepo) Create(_ dbctx.Context, users []*types.User) ([]*types.User, error) {
	return users, nil
}

func (f *fakeUserRepo) GetByIDs(_ dbctx.Context, ids []uuid.UUID) ([]*types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*types.User
	for _, id := range ids {
		if u, ok := f.byID[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) GetByAnonymousID(_ dbctx.Context, _ string) (*types.User, error) {
	return nil, nil
}

func (f *fakeUserRepo) EmailExists(_ dbctx.Context, _ string) (bool, error) { return false, nil }

func (f *fakeUserRepo) ListActiveForOvernight(_ dbctx.Context, _ time.Time, _ string) ([]*types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.activeErr != nil {
		return nil, f.activeErr
	}
	return f.active, nil
}

func (f *fakeUserRepo) UpdateLastActive(_ dbctx.Context, _ uuid.UUID, _ time.Time) error {
	return nil
}

func (f *fakeUserRepo) UpdateConfigKey(_ dbctx.Context, _ uuid.UUID, key, salt []byte, _ bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keyUpdates++
	f.lastKey = append([]byte(nil), key...)
	f.lastSalt = append([]byte(nil), salt...)
	return nil
}

type fakeSessionRepo struct {
	mu     sync.Mutex
	byUser map[uuid.UUID][]*types.VoiceSession
	errFor map[uuid.UUID]error
}

func (f *fakeSessionRepo) Create(_ dbctx.Context, sessions []*types.VoiceSession) ([]*types.VoiceSession, error) {
	return sessions, nil
}

func (f *fakeSessionRepo) GetByIDs(_ dbctx.Context, _ []uuid.UUID) ([]*types.VoiceSession, error) {
	return nil, nil
}

func (f *fakeSessionRepo) ListByUserSince(_ dbctx.Context, userID uuid.UUID, _ time.Time) ([]*types.VoiceSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errFor[userID]; err != nil {
		return nil, err
	}
	return f.byUser[userID], nil
}

func (f *fakeSessionRepo) CountProcessedSince(_ dbctx.Context, userID uuid.UUID, _ time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.byUser[userID])), nil
}

func (f *fakeSessionRepo) MarkProcessed(_ dbctx.Context, _ []uuid.UUID) error { return nil }

type fakeSnapshotRepo struct {
	mu      sync.Mutex
	created []*types.PatternSnapshot
	err     error
}

func (f *fakeSnapshotRepo) Create(_ dbctx.Context, snap *types.PatternSnapshot) (*types.PatternSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	snap.ID = uuid.New()
	snap.Version = len(f.created) + 1
	f.created = append(f.created, snap)
	return snap, nil
}

func (f *fakeSnapshotRepo) GetLatestByUser(_ dbctx.Context, _ uuid.UUID) (*types.PatternSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.created) == 0 {
		return nil, nil
	}
	return f.created[len(f.created)-1], nil
}

type fakeConfigRepo struct {
	mu      sync.Mutex
	latest  map[uuid.UUID]*types.InterfaceConfigRecord
	created []*types.InterfaceConfigRecord
	err     error
}

func (f *fakeConfigRepo) Create(_ dbctx.Context, rec *types.InterfaceConfigRecord) (*types.InterfaceConfigRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	rec.ID = uuid.New()
	f.created = append(f.created, rec)
	f.latest[rec.UserID] = rec
	return rec, nil
}

func (f *fakeConfigRepo) GetLatestByUser(_ dbctx.Context, userID uuid.UUID) (*types.InterfaceConfigRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.latest[userID], nil
}

type fakeChangeRepo struct {
	mu      sync.Mutex
	created []*types.InterfaceChangeRecord
}

func (f *fakeChangeRepo) CreateMany(_ dbctx.Context, rows []*types.InterfaceChangeRecord) ([]*types.InterfaceChangeRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, rows...)
	return rows, nil
}

func (f *fakeChangeRepo) ListByUser(_ dbctx.Context, _ uuid.UUID, _ int) ([]*types.InterfaceChangeRecord, error) {
	return nil, nil
}

func (f *fakeChangeRepo) ListByConfigVersion(_ dbctx.Context, _ uuid.UUID, _ int) ([]*types.InterfaceChangeRecord, error) {
	return nil, nil
}

type fakeRunRepo struct {
	mu        sync.Mutex
	created   []*types.BuildRun
	updates   []map[string]any
	createErr error
}

func (f *fakeRunRepo) Create(_ dbctx.Context, runs []*types.BuildRun) ([]*types.BuildRun, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	for _, r := range runs {
		if r.ID == uuid.Nil {
			r.ID = uuid.New()
		}
		f.created = append(f.created, r)
	}
	return runs, nil
}

func (f *fakeRunRepo) UpdateFields(_ dbctx.Context, _ uuid.UUID, updates map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, updates)
	return nil
}

func (f *fakeRunRepo) GetLatest(_ dbctx.Context, _ string) (*types.BuildRun, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.created) == 0 {
		return nil, nil
	}
	return f.created[len(f.created)-1], nil
}

func (f *fakeRunRepo) lastUpdate() map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.updates) == 0 {
		return map[string]any{}
	}
	return f.updates[len(f.updates)-1]
}

type fakeAlertBus struct {
	mu          sync.Mutex
	riskAlerts  []redisclient.RiskAlert
	buildEvents []redisclient.BuildEvent
	riskErr     error
}

func (f *fakeAlertBus) PublishRiskAlert(_ context.Context, alert redisclient.RiskAlert) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.riskErr != nil {
		return f.riskErr
	}
	f.riskAlerts = append(f.riskAlerts, alert)
	return nil
}

func (f *fakeAlertBus) PublishBuildEvent(_ context.Context, event redisclient.BuildEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.buildEvents = append(f.buildEvents, event)
	return nil
}

func (f *fakeAlertBus) Close() error { return nil }
