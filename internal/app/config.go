package app

import (
	"github.com/attunelabs/attune-backend/internal/platform/envutil"
	"github.com/attunelabs/attune-backend/internal/platform/logger"
)

type Config struct {
	Environment string
	Version     string

	JWTSecretKey string

	// InternalServiceKey guards the overnight endpoints. Empty disables them.
	InternalServiceKey string

	// MetricsAddr serves a standalone exposition endpoint in addition to the
	// router's /metrics. Empty skips it.
	MetricsAddr string

	SchedulerEnabled bool
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Environment:        envutil.String("APP_ENV", "development"),
		Version:            envutil.String("APP_VERSION", "dev"),
		JWTSecretKey:       envutil.String("JWT_SECRET_KEY", "defaultsecret"),
		InternalServiceKey: envutil.String("INTERNAL_SERVICE_KEY", ""),
		MetricsAddr:        envutil.String("METRICS_ADDR", ""),
		SchedulerEnabled:   envutil.Bool("OVERNIGHT_SCHEDULER_ENABLED", true),
	}
	if cfg.JWTSecretKey == "defaultsecret" {
		log.Warn("JWT_SECRET_KEY not set, using insecure default")
	}
	if cfg.InternalServiceKey == "" {
		log.Warn("INTERNAL_SERVICE_KEY not set, overnight endpoints disabled")
	}
	return cfg
}
