package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	types "github.com/attunelabs/attune-backend/internal/domain"
	"github.com/attunelabs/attune-backend/internal/pkg/dbctx"
	pkgerrors "github.com/attunelabs/attune-backend/internal/pkg/errors"
)

func TestPatternService_ReturnsLatestSnapshotMetadata(t *testing.T) {
	userID := uuid.New()
	createdAt := time.Date(2025, 7, 2, 3, 30, 0, 0, time.UTC)
	snapshots := &fakeSnapshotRepo{latest: map[uuid.UUID]*types.PatternSnapshot{
		userID: {
			ID:             uuid.New(),
			UserID:         userID,
			Version:        7,
			SessionCount:   21,
			DataConfidence: 0.9,
			RiskLevel:      "low",
			Patterns:       datatypes.JSON([]byte(`{"sentiment":{"trend":"improving"}}`)),
			CreatedAt:      createdAt,
		},
	}}
	svc := NewPatternService(testLogger(t), snapshots)

	view, err := svc.GetLatestSnapshot(authedCtx(userID))
	if err != nil {
		t.Fatalf("GetLatestSnapshot: %v", err)
	}
	if view.Version != 7 || view.SessionCount != 21 {
		t.Fatalf("unexpected view: %+v", view)
	}
	if view.RiskLevel != "low" || view.DataConfidence != 0.9 {
		t.Fatalf("unexpected view: %+v", view)
	}
	if !view.CreatedAt.Equal(createdAt) {
		t.Fatalf("created_at: want=%s got=%s", createdAt, view.CreatedAt)
	}
}

func TestPatternService_RequiresCaller(t *testing.T) {
	svc := NewPatternService(testLogger(t), &fakeSnapshotRepo{})

	_, err := svc.GetLatestSnapshot(context.Background())
	if !errors.Is(err, pkgerrors.ErrUnauthorized) {
		t.Fatalf("want ErrUnauthorized, got %v", err)
	}
}

func TestPatternService_NotFoundWithoutSnapshots(t *testing.T) {
	svc := NewPatternService(testLogger(t), &fakeSnapshotRepo{})

	_, err := svc.GetLatestSnapshot(authedCtx(uuid.New()))
	if !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

type fakeSnapshotRepo struct {
	latest map[uuid.UUID]*types.PatternSnapshot
	err    error
}

func (f *fakeSnapshotRepo) Create(dbc dbctx.Context, snap *types.PatternSnapshot) (*types.PatternSnapshot, error) {
	if f.latest == nil {
		f.latest = map[uuid.UUID]*types.PatternSnapshot{}
	}
	f.latest[snap.UserID] = snap
	return snap, nil
}

func (f *fakeSnapshotRepo) GetLatestByUser(dbc dbctx.Context, userID uuid.UUID) (*types.PatternSnapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.latest[userID], nil
}
