package app

import (
	"github.com/gin-gonic/gin"

	"github.com/attunelabs/attune-backend/internal/handlers"
	"github.com/attunelabs/attune-backend/internal/middleware"
	"github.com/attunelabs/attune-backend/internal/observability"
	"github.com/attunelabs/attune-backend/internal/platform/logger"
	"github.com/attunelabs/attune-backend/internal/server"
)

type Middleware struct {
	Auth *middleware.AuthMiddleware
}

type Handlers struct {
	Health    *handlers.HealthHandler
	Interface *handlers.InterfaceHandler
	Patterns  *handlers.PatternsHandler
	Overnight *handlers.OvernightHandler
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:    handlers.NewHealthHandler(),
		Interface: handlers.NewInterfaceHandler(services.Interface),
		Patterns:  handlers.NewPatternsHandler(services.Patterns),
		Overnight: handlers.NewOvernightHandler(services.Overnight),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: middleware.NewAuthMiddleware(log, services.Token),
	}
}

func wireRouter(log *logger.Logger, cfg Config, handlerset Handlers, middlewareset Middleware, metrics *observability.Metrics) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		Log:              log,
		AuthMiddleware:   middlewareset.Auth,
		ServiceKey:       cfg.InternalServiceKey,
		HealthHandler:    handlerset.Health,
		InterfaceHandler: handlerset.Interface,
		PatternsHandler:  handlerset.Patterns,
		OvernightHandler: handlerset.Overnight,
		Metrics:          metrics,
	})
}
