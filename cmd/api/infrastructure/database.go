package infrastructure

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"menu-service/internal/adapter/db/postgres"
	"menu-service/internal/adapter/db/provider"
	"menu-service/internal/config"
	"menu-service/pkg/logger"
)

// NewDatabase probes the primary and local databases and returns the provider
// owning the chosen pool. With DB_REQUIRE_READY unset the provider is returned
// even when no database answered, and requests fail until one does.
func NewDatabase(ctx context.Context, cfg *config.Config, l *zap.Logger) (*provider.Provider, error) {
	gormLogger := logger.NewGormLogger(l, cfg.Logger.SlowQuerySeconds, cfg.Logger.Level)

	p := provider.New(cfg.PrimaryDB, cfg.LocalDB, cfg.Pool, l, provider.WithGormLogger(gormLogger))

	db, err := p.Connect(ctx)
	if err != nil {
		if cfg.Pool.RequireReady || !errors.Is(err, provider.ErrUnavailable) || db == nil {
			_ = p.Close()
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		l.Warn("starting without a reachable database", zap.Error(err))
		return p, nil
	}

	if cfg.Pool.AutoMigrate {
		if err := postgres.Migrate(ctx, db); err != nil {
			_ = p.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	l.Info("database connected successfully",
		zap.String("target", p.Target()),
		zap.Int("max_open_conns", cfg.Pool.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.Pool.MaxIdleConns),
		zap.Int("conn_max_lifetime_seconds", cfg.Pool.ConnMaxLifetime),
		zap.Int("conn_max_idle_time_seconds", cfg.Pool.ConnMaxIdleTime),
	)

	return p, nil
}
