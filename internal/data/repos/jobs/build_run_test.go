package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/attunelabs/attune-backend/internal/data/repos/testutil"
	types "github.com/attunelabs/attune-backend/internal/domain"
	jobsdomain "github.com/attunelabs/attune-backend/internal/domain/jobs"
	"github.com/attunelabs/attune-backend/internal/pkg/dbctx"
)

func TestBuildRunRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewBuildRunRepo(db, testutil.Logger(t))

	now := time.Now().UTC()

	older := &types.BuildRun{
		ID:        uuid.New(),
		Timezone:  "UTC",
		Status:    jobsdomain.BuildCompleted,
		StartedAt: now.Add(-26 * time.Hour),
	}
	newer := &types.BuildRun{
		ID:        uuid.New(),
		Timezone:  "UTC",
		Status:    jobsdomain.BuildRunning,
		StartedAt: now.Add(-time.Minute),
	}
	manila := &types.BuildRun{
		ID:        uuid.New(),
		Timezone:  "Asia/Manila",
		Status:    jobsdomain.BuildCompleted,
		DryRun:    true,
		StartedAt: now.Add(-10 * time.Hour),
	}
	created, err := repo.Create(dbc, []*types.BuildRun{older, newer, manila})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 3 {
		t.Fatalf("Create: expected 3, got %d", len(created))
	}

	latest, err := repo.GetLatest(dbc, "")
	if err != nil {
		t.Fatalf("GetLatest: %v", err)
	}
	if latest == nil || latest.ID != newer.ID {
		t.Fatalf("GetLatest: expected %v, got %+v", newer.ID, latest)
	}

	scoped, err := repo.GetLatest(dbc, "Asia/Manila")
	if err != nil {
		t.Fatalf("GetLatest (timezone): %v", err)
	}
	if scoped == nil || scoped.ID != manila.ID || !scoped.DryRun {
		t.Fatalf("GetLatest (timezone): unexpected result: %+v", scoped)
	}

	none, err := repo.GetLatest(dbc, "Mars/Olympus")
	if err != nil {
		t.Fatalf("GetLatest (unknown timezone): %v", err)
	}
	if none != nil {
		t.Fatalf("GetLatest (unknown timezone): expected nil, got %+v", none)
	}

	finished := now.Truncate(time.Second)
	outcomes := []jobsdomain.UserOutcome{
		{UserID: uuid.New(), Outcome: jobsdomain.OutcomeSuccess},
		{UserID: uuid.New(), Outcome: jobsdomain.OutcomeFailed, Error: "build timed out"},
	}
	err = repo.UpdateFields(dbc, newer.ID, map[string]any{
		"status":      jobsdomain.BuildCompleted,
		"total_users": 2,
		"succeeded":   1,
		"failed":      1,
		"finished_at": finished,
		"result":      jobsdomain.EncodeOutcomes(outcomes),
	})
	if err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}

	reloaded, err := repo.GetLatest(dbc, "UTC")
	if err != nil || reloaded == nil {
		t.Fatalf("GetLatest (after update): err=%v run=%+v", err, reloaded)
	}
	if reloaded.Status != jobsdomain.BuildCompleted || reloaded.Succeeded != 1 || reloaded.Failed != 1 {
		t.Fatalf("GetLatest (after update): counts not persisted: %+v", reloaded)
	}
	if reloaded.FinishedAt == nil || !reloaded.FinishedAt.Equal(finished) {
		t.Fatalf("GetLatest (after update): finished_at = %v, want %v", reloaded.FinishedAt, finished)
	}
	decoded := jobsdomain.DecodeOutcomes(reloaded.Result)
	if len(decoded) != 2 || decoded[1].Error != "build timed out" {
		t.Fatalf("GetLatest (after update): outcomes did not round-trip: %+v", decoded)
	}
}
