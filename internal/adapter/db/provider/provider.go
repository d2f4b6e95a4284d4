// Package provider owns the application's database pool. At startup it probes
// the primary database once and falls back to the local database when the
// probe fails; the primary is not retried afterwards.
package provider

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"menu-service/internal/config"
)

// State is the readiness state of a Provider.
type State int

const (
	StateUnconnected State = iota
	StateProbingPrimary
	StateProbingFallback
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUnconnected:
		return "unconnected"
	case StateProbingPrimary:
		return "probing_primary"
	case StateProbingFallback:
		return "probing_fallback"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Targets reported by Provider.Target.
const (
	TargetPrimary = "primary"
	TargetLocal   = "local"
)

var (
	// ErrUnavailable is returned by Connect when neither database answered the probe.
	ErrUnavailable = errors.New("no database available")
	// ErrNotConnected is returned by Ping before a pool exists.
	ErrNotConnected = errors.New("database not connected")
)

// DialectorFunc builds the GORM dialector for one candidate database.
type DialectorFunc func(cfg config.DatabaseConfig) gorm.Dialector

// PostgresDialector opens cfg through the pgx-backed GORM postgres driver.
func PostgresDialector(cfg config.DatabaseConfig) gorm.Dialector {
	return pgdriver.Open(cfg.DSN())
}

// Option configures a Provider.
type Option func(*Provider)

// WithDialector overrides how candidates are opened.
func WithDialector(fn DialectorFunc) Option {
	return func(p *Provider) { p.dialector = fn }
}

// WithGormLogger sets the logger GORM uses for the pool.
func WithGormLogger(l gormlogger.Interface) Option {
	return func(p *Provider) { p.gormLogger = l }
}

// Provider establishes and owns the shared *gorm.DB.
type Provider struct {
	primary    config.DatabaseConfig
	fallback   config.DatabaseConfig
	pool       config.PoolConfig
	dialector  DialectorFunc
	gormLogger gormlogger.Interface
	log        *zap.Logger

	once sync.Once

	mu     sync.RWMutex
	state  State
	target string
	db     *gorm.DB
	err    error

	pings singleflight.Group
}

// New creates a Provider in StateUnconnected.
func New(primary, fallback config.DatabaseConfig, pool config.PoolConfig, log *zap.Logger, opts ...Option) *Provider {
	p := &Provider{
		primary:   primary,
		fallback:  fallback,
		pool:      pool,
		dialector: PostgresDialector,
		log:       log.Named("db"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Connect probes the primary database, then the local one. Only the first call
// probes; later calls return the same handle and error.
//
// When both probes fail the returned error wraps ErrUnavailable, and the handle
// is the lazily-connecting local pool when one could be built (nil otherwise).
func (p *Provider) Connect(ctx context.Context) (*gorm.DB, error) {
	p.once.Do(func() {
		db, err := p.connect(ctx)
		p.mu.Lock()
		p.db, p.err = db, err
		p.mu.Unlock()
	})

	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.db, p.err
}

func (p *Provider) connect(ctx context.Context) (*gorm.DB, error) {
	p.setState(StateProbingPrimary, "")
	p.log.Info("probing primary database", zap.String("target", p.primary.Redacted()))

	db, primaryErr := p.probe(ctx, p.primary)
	if primaryErr == nil {
		p.setState(StateReady, TargetPrimary)
		p.log.Info("database ready", zap.String("using", TargetPrimary))
		return db, nil
	}
	closeQuietly(db)

	p.log.Warn("primary database unreachable, falling back to local database",
		zap.Error(primaryErr),
		zap.String("target", p.fallback.Redacted()),
	)
	p.setState(StateProbingFallback, "")

	db, fallbackErr := p.probe(ctx, p.fallback)
	if fallbackErr == nil {
		p.setState(StateReady, TargetLocal)
		p.log.Info("database ready", zap.String("using", TargetLocal))
		return db, nil
	}

	target := ""
	if db != nil {
		target = TargetLocal
	}
	p.setState(StateFailed, target)
	p.log.Error("local database unreachable", zap.Error(fallbackErr))

	return db, fmt.Errorf("%w: primary: %v; local: %v", ErrUnavailable, primaryErr, fallbackErr)
}

// probe opens a pool for cfg and pings it once. On ping failure the opened
// pool is returned together with the error.
func (p *Provider) probe(ctx context.Context, cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(p.dialector(cfg), &gorm.Config{
		Logger:               p.gormLogger,
		DisableAutomaticPing: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	p.configurePool(sqlDB, cfg)

	pingCtx, cancel := context.WithTimeout(ctx, p.probeTimeout())
	defer cancel()

	if err := sqlDB.PingContext(pingCtx); err != nil {
		return db, fmt.Errorf("ping: %w", err)
	}
	return db, nil
}

func (p *Provider) configurePool(sqlDB sqlPool, cfg config.DatabaseConfig) {
	maxIdle := p.pool.MaxIdleConns
	if cfg.AllowExitOnIdle {
		maxIdle = 0
	}

	sqlDB.SetMaxOpenConns(p.pool.MaxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetConnMaxLifetime(time.Duration(p.pool.ConnMaxLifetime) * time.Second)
	sqlDB.SetConnMaxIdleTime(time.Duration(p.pool.ConnMaxIdleTime) * time.Second)
}

type sqlPool interface {
	SetMaxOpenConns(n int)
	SetMaxIdleConns(n int)
	SetConnMaxLifetime(d time.Duration)
	SetConnMaxIdleTime(d time.Duration)
}

func (p *Provider) probeTimeout() time.Duration {
	if p.pool.ProbeTimeoutSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(p.pool.ProbeTimeoutSeconds) * time.Second
}

func (p *Provider) setState(s State, target string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = s
	p.target = target
}

// State returns the current readiness state.
func (p *Provider) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// Target returns which candidate the pool points at, or "" when none.
func (p *Provider) Target() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.target
}

// DB returns the pool, or nil before Connect.
func (p *Provider) DB() *gorm.DB {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.db
}

// Ping checks the pool. Concurrent callers share a single round trip, bounded
// by the probe timeout rather than by any single caller's context.
func (p *Provider) Ping(ctx context.Context) error {
	db := p.DB()
	if db == nil {
		return ErrNotConnected
	}

	_, err, _ := p.pings.Do("ping", func() (any, error) {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		pingCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.probeTimeout())
		defer cancel()
		return nil, sqlDB.PingContext(pingCtx)
	})
	return err
}

// Close closes the pool.
func (p *Provider) Close() error {
	db := p.DB()
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

func closeQuietly(db *gorm.DB) {
	if db == nil {
		return
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
