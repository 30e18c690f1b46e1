package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/attunelabs/attune-backend/internal/observability"
	"github.com/attunelabs/attune-backend/internal/platform/logger"
)

// RiskAlert is published when a nightly build assesses a user at a level
// that requires human attention. Payloads carry ids and scores only, never
// transcript content.
type RiskAlert struct {
	UserID        uuid.UUID `json:"user_id"`
	Level         string    `json:"level"`
	Score         float64   `json:"score"`
	ConfigVersion int       `json:"config_version"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// BuildEvent is published once per finished batch so downstream consumers
// can track overnight progress without polling the API.
type BuildEvent struct {
	RunID      uuid.UUID `json:"run_id"`
	Timezone   string    `json:"timezone"`
	Status     string    `json:"status"`
	Total      int       `json:"total"`
	Succeeded  int       `json:"succeeded"`
	Failed     int       `json:"failed"`
	Skipped    int       `json:"skipped"`
	DryRun     bool      `json:"dry_run"`
	OccurredAt time.Time `json:"occurred_at"`
}

type AlertBus interface {
	PublishRiskAlert(ctx context.Context, alert RiskAlert) error
	PublishBuildEvent(ctx context.Context, event BuildEvent) error
	Close() error
}

type alertBus struct {
	log          *logger.Logger
	rdb          *goredis.Client
	riskChannel  string
	buildChannel string
}

// NewAlertBus connects to Redis when REDIS_ADDR is set. Without an address
// it returns a no-op bus so builds run the same with or without Redis.
func NewAlertBus(log *logger.Logger) (AlertBus, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		log.Info("REDIS_ADDR not set, alert bus disabled")
		return &noopAlertBus{}, nil
	}
	riskCh := strings.TrimSpace(os.Getenv("REDIS_RISK_CHANNEL"))
	if riskCh == "" {
		riskCh = "risk.alerts"
	}
	buildCh := strings.TrimSpace(os.Getenv("REDIS_BUILD_CHANNEL"))
	if buildCh == "" {
		buildCh = "build.events"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &alertBus{
		log:          log.With("service", "RedisAlertBus"),
		rdb:          rdb,
		riskChannel:  riskCh,
		buildChannel: buildCh,
	}, nil
}

func (b *alertBus) PublishRiskAlert(ctx context.Context, alert RiskAlert) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("alert bus not initialized")
	}
	if alert.OccurredAt.IsZero() {
		alert.OccurredAt = time.Now().UTC()
	}
	raw, err := json.Marshal(alert)
	if err != nil {
		return err
	}
	if err := b.rdb.Publish(ctx, b.riskChannel, raw).Err(); err != nil {
		return err
	}
	observability.Current().IncAlertPublished(b.riskChannel)
	return nil
}

func (b *alertBus) PublishBuildEvent(ctx context.Context, event BuildEvent) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("alert bus not initialized")
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	raw, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if err := b.rdb.Publish(ctx, b.buildChannel, raw).Err(); err != nil {
		return err
	}
	observability.Current().IncAlertPublished(b.buildChannel)
	return nil
}

func (b *alertBus) Close() error {
	if b == nil || b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}

type noopAlertBus struct{}

func (n *noopAlertBus) PublishRiskAlert(context.Context, RiskAlert) error   { return nil }
func (n *noopAlertBus) PublishBuildEvent(context.Context, BuildEvent) error { return nil }
func (n *noopAlertBus) Close() error                                       { return nil }
