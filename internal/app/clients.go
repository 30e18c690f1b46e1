package app

import (
	"fmt"

	redisclient "github.com/attunelabs/attune-backend/internal/clients/redis"
	"github.com/attunelabs/attune-backend/internal/platform/logger"
)

type Clients struct {
	AlertBus redisclient.AlertBus
}

func wireClients(log *logger.Logger) (Clients, error) {
	log.Info("Wiring clients...")

	bus, err := redisclient.NewAlertBus(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init redis alert bus: %w", err)
	}

	return Clients{AlertBus: bus}, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.AlertBus != nil {
		_ = c.AlertBus.Close()
	}
}
