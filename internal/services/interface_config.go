package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/attunelabs/attune-backend/internal/data/repos"
	types "github.com/attunelabs/attune-backend/internal/domain"
	ifdomain "github.com/attunelabs/attune-backend/internal/domain/interfaces"
	"github.com/attunelabs/attune-backend/internal/pkg/dbctx"
	pkgerrors "github.com/attunelabs/attune-backend/internal/pkg/errors"
	"github.com/attunelabs/attune-backend/internal/platform/ctxutil"
	"github.com/attunelabs/attune-backend/internal/platform/logger"
)

// ConfigView is the API shape for one stored interface config. The payload
// stays sealed; only metadata and the change log travel in plaintext.
type ConfigView struct {
	Version     int               `json:"version"`
	RiskLevel   string            `json:"risk_level"`
	Encrypted   []byte            `json:"encrypted"`
	KeySalt     []byte            `json:"key_salt,omitempty"`
	Metadata    ifdomain.Metadata `json:"metadata"`
	GeneratedAt time.Time         `json:"generated_at"`

	Changes []*types.InterfaceChangeRecord `json:"changes"`
}

type InterfaceService interface {
	// GetLatestConfig returns the caller's newest sealed config along with
	// the plaintext change lines recorded for that version.
	GetLatestConfig(ctx context.Context) (*ConfigView, error)

	// ListChanges returns the caller's newest change lines first, capped at
	// limit (repo default applies when limit is zero).
	ListChanges(ctx context.Context, limit int) ([]*types.InterfaceChangeRecord, error)
}

type interfaceService struct {
	log     *logger.Logger
	configs repos.InterfaceConfigRepo
	changes repos.InterfaceChangeRepo
}

func NewInterfaceService(log *logger.Logger, configs repos.InterfaceConfigRepo, changes repos.InterfaceChangeRepo) InterfaceService {
	return &interfaceService{
		log:     log.With("service", "InterfaceService"),
		configs: configs,
		changes: changes,
	}
}

func (s *interfaceService) GetLatestConfig(ctx context.Context) (*ConfigView, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("request user missing: %w", pkgerrors.ErrUnauthorized)
	}
	dbc := dbctx.Context{Ctx: ctx}

	rec, err := s.configs.GetLatestByUser(dbc, rd.UserID)
	if err != nil {
		return nil, fmt.Errorf("fetch latest config: %w", err)
	}
	if rec == nil {
		return nil, fmt.Errorf("no interface config for user %s: %w", rd.UserID, pkgerrors.ErrNotFound)
	}

	changes, err := s.changes.ListByConfigVersion(dbc, rd.UserID, rec.Version)
	if err != nil {
		return nil, fmt.Errorf("fetch changes for version %d: %w", rec.Version, err)
	}
	if changes == nil {
		changes = []*types.InterfaceChangeRecord{}
	}

	return &ConfigView{
		Version:     rec.Version,
		RiskLevel:   rec.RiskLevel,
		Encrypted:   rec.Encrypted,
		KeySalt:     rec.KeySalt,
		Metadata:    ifdomain.DecodeMetadata(rec.Metadata),
		GeneratedAt: rec.GeneratedAt,
		Changes:     changes,
	}, nil
}

func (s *interfaceService) ListChanges(ctx context.Context, limit int) ([]*types.InterfaceChangeRecord, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("request user missing: %w", pkgerrors.ErrUnauthorized)
	}
	out, err := s.changes.ListByUser(dbctx.Context{Ctx: ctx}, rd.UserID, limit)
	if err != nil {
		return nil, fmt.Errorf("list changes: %w", err)
	}
	if out == nil {
		out = []*types.InterfaceChangeRecord{}
	}
	return out, nil
}
