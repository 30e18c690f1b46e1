package patterns

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/attunelabs/attune-backend/internal/data/repos/testutil"
	types "github.com/attunelabs/attune-backend/internal/domain"
	"github.com/attunelabs/attune-backend/internal/pkg/dbctx"
)

func TestPatternSnapshotRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewPatternSnapshotRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "snapshotrepo@example.com")

	first := &types.PatternSnapshot{
		ID:             uuid.New(),
		UserID:         u.ID,
		SessionCount:   4,
		DataConfidence: 0.6,
		RiskLevel:      "low",
		Patterns:       types.EncodeAggregatedPatterns(types.AggregatedPatterns{UserID: u.ID, SessionCount: 4}),
	}
	created, err := repo.Create(dbc, first)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Version != 1 {
		t.Fatalf("Create: expected version 1, got %d", created.Version)
	}

	second := &types.PatternSnapshot{
		ID:             uuid.New(),
		UserID:         u.ID,
		SessionCount:   9,
		DataConfidence: 0.8,
		RiskLevel:      "medium",
		Patterns:       types.EncodeAggregatedPatterns(types.AggregatedPatterns{UserID: u.ID, SessionCount: 9}),
	}
	if _, err := repo.Create(dbc, second); err != nil {
		t.Fatalf("Create (second): %v", err)
	}
	if second.Version != 2 {
		t.Fatalf("Create (second): expected version 2, got %d", second.Version)
	}

	// Versions are per user, not global.
	other := testutil.SeedUser(t, ctx, tx, "snapshotrepo-other@example.com")
	otherSnap := &types.PatternSnapshot{
		ID:        uuid.New(),
		UserID:    other.ID,
		RiskLevel: "low",
		Patterns:  types.EncodeAggregatedPatterns(types.AggregatedPatterns{UserID: other.ID}),
	}
	if _, err := repo.Create(dbc, otherSnap); err != nil {
		t.Fatalf("Create (other user): %v", err)
	}
	if otherSnap.Version != 1 {
		t.Fatalf("Create (other user): expected version 1, got %d", otherSnap.Version)
	}

	latest, err := repo.GetLatestByUser(dbc, u.ID)
	if err != nil {
		t.Fatalf("GetLatestByUser: %v", err)
	}
	if latest == nil || latest.Version != 2 || latest.RiskLevel != "medium" {
		t.Fatalf("GetLatestByUser: unexpected result: %+v", latest)
	}
	decoded := types.DecodeAggregatedPatterns(latest.Patterns)
	if decoded.SessionCount != 9 {
		t.Fatalf("GetLatestByUser: payload did not round-trip: %+v", decoded)
	}

	none, err := repo.GetLatestByUser(dbc, uuid.New())
	if err != nil {
		t.Fatalf("GetLatestByUser (missing): %v", err)
	}
	if none != nil {
		t.Fatalf("GetLatestByUser (missing): expected nil, got %+v", none)
	}

	if _, err := repo.Create(dbc, &types.PatternSnapshot{ID: uuid.New()}); err == nil {
		t.Fatalf("Create (missing user): expected error")
	}
}
