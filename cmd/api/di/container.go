package di

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"menu-service/cmd/api/infrastructure"
	"menu-service/internal/adapter/db/postgres"
	"menu-service/internal/adapter/db/provider"
	ginhandler "menu-service/internal/adapter/gin/handler"
	"menu-service/internal/adapter/gin/middleware"
	"menu-service/internal/adapter/gin/router"
	"menu-service/internal/config"
	"menu-service/internal/usecase/dish"
	"menu-service/internal/usecase/user"
	"menu-service/pkg/security"
	redisclient "menu-service/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	DB          *provider.Provider
	RedisClient *redisclient.Client
	UserUC      user.Usecase
	DishUC      dish.Usecase
	RateLimiter *middleware.RateLimiter
	Handlers    router.Handlers
}

// NewContainer creates and initializes all application dependencies
func NewContainer(ctx context.Context, cfg *config.Config, l *zap.Logger) (*Container, error) {
	// Validate configuration before initializing any dependencies
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	db, err := infrastructure.NewDatabase(ctx, cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	c := &Container{
		Config: cfg,
		Logger: l,
		DB:     db,
	}

	// Redis backs the rate limiter only; an unreachable Redis disables limiting.
	if cfg.RateLimit.Enabled {
		rdb, err := infrastructure.NewRedisClient(ctx, cfg, l)
		if err != nil {
			l.Warn("rate limiting disabled", zap.Error(err))
		} else {
			c.RedisClient = rdb
			c.RateLimiter = middleware.NewRateLimiter(
				rdb.Client,
				middleware.RateLimiterConfig{
					Enabled:           true,
					RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
					BurstCapacity:     cfg.RateLimit.BurstCapacity,
				},
				l,
			)
		}
	}

	hasher := security.NewPasswordHasher(cfg.Auth.BcryptCost, cfg.Auth.AllowLegacyPlaintext)

	gdb := db.DB()
	c.UserUC = user.New(postgres.NewUserRepoPG(gdb, l), hasher, l)
	c.DishUC = dish.New(postgres.NewDishRepoPG(gdb, l), l)

	c.Handlers = router.Handlers{
		User:   ginhandler.NewUserHandler(c.UserUC, l),
		Dish:   ginhandler.NewDishHandler(c.DishUC, l),
		Health: ginhandler.NewHealthHandler(db),
	}

	return c, nil
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	var errs []error

	// Close Redis connection
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	// Close database connection
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	return errors.Join(errs...)
}
