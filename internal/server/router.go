package server

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/attunelabs/attune-backend/internal/handlers"
	"github.com/attunelabs/attune-backend/internal/middleware"
	"github.com/attunelabs/attune-backend/internal/observability"
	"github.com/attunelabs/attune-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	AuthMiddleware *middleware.AuthMiddleware

	// ServiceKey guards the internal overnight endpoints.
	ServiceKey string

	HealthHandler    *handlers.HealthHandler
	InterfaceHandler *handlers.InterfaceHandler
	PatternsHandler  *handlers.PatternsHandler
	OvernightHandler *handlers.OvernightHandler

	Metrics *observability.Metrics
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("attune-backend"))
	r.Use(middleware.AttachTraceContext())
	r.Use(middleware.RequestLogger(cfg.Log))
	r.Use(middleware.Metrics(cfg.Metrics))
	r.Use(middleware.CORS())

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	// Prometheus text exposition. Serves 503 while metrics are disabled.
	r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))

	api := r.Group("/api")

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		if cfg.InterfaceHandler != nil {
			protected.GET("/interface/config", cfg.InterfaceHandler.GetConfig)
			protected.GET("/interface/changes", cfg.InterfaceHandler.ListChanges)
		}

		if cfg.PatternsHandler != nil {
			protected.GET("/patterns/latest", cfg.PatternsHandler.GetLatestSnapshot)
		}
	}

	internal := api.Group("/overnight")
	{
		internal.Use(middleware.RequireServiceKey(cfg.Log, cfg.ServiceKey))

		if cfg.OvernightHandler != nil {
			internal.POST("/run", cfg.OvernightHandler.TriggerRun)
			internal.GET("/latest", cfg.OvernightHandler.GetLatestRun)
		}
	}

	return r
}
