package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/attunelabs/attune-backend/internal/data/repos"
	"github.com/attunelabs/attune-backend/internal/pkg/dbctx"
	pkgerrors "github.com/attunelabs/attune-backend/internal/pkg/errors"
	"github.com/attunelabs/attune-backend/internal/platform/ctxutil"
	"github.com/attunelabs/attune-backend/internal/platform/logger"
)

// SnapshotView exposes snapshot metadata only. The pattern payload never
// leaves the analysis path through this API.
type SnapshotView struct {
	Version        int       `json:"version"`
	SessionCount   int       `json:"session_count"`
	DataConfidence float64   `json:"data_confidence"`
	RiskLevel      string    `json:"risk_level"`
	CreatedAt      time.Time `json:"created_at"`
}

type PatternService interface {
	GetLatestSnapshot(ctx context.Context) (*SnapshotView, error)
}

type patternService struct {
	log       *logger.Logger
	snapshots repos.PatternSnapshotRepo
}

func NewPatternService(log *logger.Logger, snapshots repos.PatternSnapshotRepo) PatternService {
	return &patternService{
		log:       log.With("service", "PatternService"),
		snapshots: snapshots,
	}
}

func (s *patternService) GetLatestSnapshot(ctx context.Context) (*SnapshotView, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("request user missing: %w", pkgerrors.ErrUnauthorized)
	}
	snap, err := s.snapshots.GetLatestByUser(dbctx.Context{Ctx: ctx}, rd.UserID)
	if err != nil {
		return nil, fmt.Errorf("fetch latest snapshot: %w", err)
	}
	if snap == nil {
		return nil, fmt.Errorf("no pattern snapshot for user %s: %w", rd.UserID, pkgerrors.ErrNotFound)
	}
	return &SnapshotView{
		Version:        snap.Version,
		SessionCount:   snap.SessionCount,
		DataConfidence: snap.DataConfidence,
		RiskLevel:      snap.RiskLevel,
		CreatedAt:      snap.CreatedAt,
	}, nil
}
