package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	types "github.com/attunelabs/attune-backend/internal/domain"
	"github.com/attunelabs/attune-backend/internal/platform/envutil"
	"github.com/attunelabs/attune-backend/internal/platform/logger"
)

// Service owns the gorm handle. Postgres is the default driver; DB_DRIVER
// can select sqlite for local runs, which skips postgres-only setup like
// the uuid-ossp extension.
type Service struct {
	db     *gorm.DB
	driver string
	log    *logger.Logger
}

func NewService(log *logger.Logger) (*Service, error) {
	serviceLog := log.With("service", "DBService")

	driver := envutil.String("DB_DRIVER", "postgres")

	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		host := envutil.String("POSTGRES_HOST", "localhost")
		port := envutil.String("POSTGRES_PORT", "5432")
		user := envutil.String("POSTGRES_USER", "postgres")
		password := envutil.String("POSTGRES_PASSWORD", "")
		name := envutil.String("POSTGRES_NAME", "attune")
		dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, name)
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(envutil.String("SQLITE_PATH", "attune.db"))
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}

	serviceLog.Info("Connecting to database", "driver", driver)
	db, err := gorm.Open(dialector, &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	})
	if err != nil {
		serviceLog.Error("Failed to connect to database", "driver", driver, "error", err)
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}

	if driver == "postgres" {
		if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
			serviceLog.Error("Failed to enable uuid-ossp extension", "error", err)
			return nil, fmt.Errorf("enable uuid-ossp extension: %w", err)
		}
	}

	return &Service{db: db, driver: driver, log: serviceLog}, nil
}

func (s *Service) AutoMigrateAll() error {
	s.log.Info("Auto migrating tables...")
	err := s.db.AutoMigrate(
		&types.User{},

		&types.VoiceSession{},
		&types.PatternSnapshot{},

		&types.InterfaceConfigRecord{},
		&types.InterfaceChangeRecord{},

		&types.BuildRun{},
	)
	if err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	return nil
}

func (s *Service) DB() *gorm.DB {
	return s.db
}

func (s *Service) Driver() string {
	return s.driver
}
