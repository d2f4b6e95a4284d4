package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	App       AppConfig
	PrimaryDB DatabaseConfig
	LocalDB   DatabaseConfig
	Pool      PoolConfig
	Logger    LoggerConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Auth      AuthConfig
}

// AppConfig holds configuration for the HTTP server
type AppConfig struct {
	Port                   string
	ShutdownTimeoutSeconds int
	CORSAllowedOrigins     []string
}

// DatabaseConfig describes one candidate database. URL, when set, wins over the individual fields.
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	URL             string
	SSLMode         string
	AllowExitOnIdle bool
}

// PoolConfig holds connection pool and startup probe settings shared by both candidates.
type PoolConfig struct {
	MaxOpenConns        int
	MaxIdleConns        int
	ConnMaxLifetime     int // seconds
	ConnMaxIdleTime     int // seconds
	ProbeTimeoutSeconds int
	AutoMigrate         bool
	RequireReady        bool
}

// LoggerConfig holds configuration for the logger
type LoggerConfig struct {
	Level            string
	Format           string
	OutputPath       string
	SlowQuerySeconds float64
	EnableSampling   bool
	ServiceName      string
	ServiceVersion   string
}

// RedisConfig holds configuration for the Redis client backing the rate limiter
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	PoolSize int
}

// RateLimitConfig holds token bucket settings
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerSecond float64
	BurstCapacity     int
}

// AuthConfig holds password hashing settings
type AuthConfig struct {
	BcryptCost           int
	AllowLegacyPlaintext bool
}

// LoadConfig reads configuration from path/.env, path/app.env and the environment.
// Variables already present in the environment take precedence over both files.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(filepath.Join(path, ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config

	cfg.App.Port = v.GetString("PORT")
	cfg.App.ShutdownTimeoutSeconds = v.GetInt("SHUTDOWN_TIMEOUT_SECONDS")
	cfg.App.CORSAllowedOrigins = splitList(v.GetString("CORS_ALLOWED_ORIGINS"))

	cfg.PrimaryDB = databaseConfig(v, "")
	cfg.LocalDB = databaseConfig(v, "LOCAL_")

	cfg.Pool.MaxOpenConns = v.GetInt("DB_MAX_OPEN_CONNS")
	cfg.Pool.MaxIdleConns = v.GetInt("DB_MAX_IDLE_CONNS")
	cfg.Pool.ConnMaxLifetime = v.GetInt("DB_CONN_MAX_LIFETIME")
	cfg.Pool.ConnMaxIdleTime = v.GetInt("DB_CONN_MAX_IDLE_TIME")
	cfg.Pool.ProbeTimeoutSeconds = v.GetInt("DB_PROBE_TIMEOUT_SECONDS")
	cfg.Pool.AutoMigrate = v.GetBool("DB_AUTO_MIGRATE")
	cfg.Pool.RequireReady = v.GetBool("DB_REQUIRE_READY")

	cfg.Logger.Level = v.GetString("LOG_LEVEL")
	cfg.Logger.Format = v.GetString("LOG_FORMAT")
	cfg.Logger.OutputPath = v.GetString("LOG_OUTPUT_PATH")
	cfg.Logger.SlowQuerySeconds = v.GetFloat64("LOG_SLOW_QUERY_SECONDS")
	cfg.Logger.EnableSampling = v.GetBool("LOG_ENABLE_SAMPLING")
	cfg.Logger.ServiceName = v.GetString("SERVICE_NAME")
	cfg.Logger.ServiceVersion = v.GetString("SERVICE_VERSION")

	cfg.Redis.Host = v.GetString("REDIS_HOST")
	cfg.Redis.Port = v.GetString("REDIS_PORT")
	cfg.Redis.Password = v.GetString("REDIS_PASSWORD")
	cfg.Redis.DB = v.GetInt("REDIS_DB")
	cfg.Redis.PoolSize = v.GetInt("REDIS_POOL_SIZE")

	cfg.RateLimit.Enabled = v.GetBool("RATE_LIMIT_ENABLED")
	cfg.RateLimit.RequestsPerSecond = v.GetFloat64("RATE_LIMIT_RPS")
	cfg.RateLimit.BurstCapacity = v.GetInt("RATE_LIMIT_BURST")

	cfg.Auth.BcryptCost = v.GetInt("AUTH_BCRYPT_COST")
	cfg.Auth.AllowLegacyPlaintext = v.GetBool("AUTH_ALLOW_LEGACY_PLAINTEXT")

	return &cfg, nil
}

func databaseConfig(v *viper.Viper, prefix string) DatabaseConfig {
	return DatabaseConfig{
		Host:            v.GetString(prefix + "PGHOST"),
		Port:            v.GetString(prefix + "PGPORT"),
		User:            v.GetString(prefix + "PGUSER"),
		Password:        v.GetString(prefix + "PGPASSWORD"),
		Name:            v.GetString(prefix + "PGDATABASE"),
		URL:             v.GetString(prefix + "DATABASE_URL"),
		SSLMode:         v.GetString(prefix + "PGSSLMODE"),
		AllowExitOnIdle: v.GetBool(prefix + "ALLOW_EXIT_ON_IDLE"),
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "3000")
	v.SetDefault("SHUTDOWN_TIMEOUT_SECONDS", 10)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")

	v.SetDefault("PGHOST", "localhost")
	v.SetDefault("PGPORT", "5432")
	v.SetDefault("PGUSER", "postgres")
	v.SetDefault("PGDATABASE", "menu")
	v.SetDefault("PGSSLMODE", "require")

	v.SetDefault("LOCAL_PGHOST", "localhost")
	v.SetDefault("LOCAL_PGPORT", "5432")
	v.SetDefault("LOCAL_PGUSER", "postgres")
	v.SetDefault("LOCAL_PGDATABASE", "menu")
	v.SetDefault("LOCAL_PGSSLMODE", "disable")

	// Matches node-postgres defaults: 10 clients, 10s idle timeout.
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("DB_CONN_MAX_LIFETIME", 300)
	v.SetDefault("DB_CONN_MAX_IDLE_TIME", 10)
	v.SetDefault("DB_PROBE_TIMEOUT_SECONDS", 5)
	v.SetDefault("DB_AUTO_MIGRATE", true)
	v.SetDefault("DB_REQUIRE_READY", true)

	if v.GetString("APP_ENV") == "production" {
		v.SetDefault("LOG_LEVEL", "info")
		v.SetDefault("LOG_FORMAT", "json")
		v.SetDefault("LOG_ENABLE_SAMPLING", true)
	} else {
		v.SetDefault("LOG_LEVEL", "debug")
		v.SetDefault("LOG_FORMAT", "console")
		v.SetDefault("LOG_ENABLE_SAMPLING", false)
	}
	v.SetDefault("LOG_OUTPUT_PATH", "stdout")
	v.SetDefault("LOG_SLOW_QUERY_SECONDS", 0.2)
	v.SetDefault("SERVICE_NAME", "menu-service")
	v.SetDefault("SERVICE_VERSION", "1.0.0")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_POOL_SIZE", 10)

	v.SetDefault("RATE_LIMIT_ENABLED", false)
	v.SetDefault("RATE_LIMIT_RPS", 10.0)
	v.SetDefault("RATE_LIMIT_BURST", 20)

	v.SetDefault("AUTH_BCRYPT_COST", 10)
	v.SetDefault("AUTH_ALLOW_LEGACY_PLAINTEXT", true)
}

// Validate checks the configuration for values that would fail later in less obvious ways.
func (c *Config) Validate() error {
	var errs []error

	if c.App.Port == "" {
		errs = append(errs, errors.New("PORT must be set"))
	}
	if c.App.ShutdownTimeoutSeconds <= 0 {
		errs = append(errs, errors.New("SHUTDOWN_TIMEOUT_SECONDS must be positive"))
	}
	if c.Pool.MaxOpenConns <= 0 {
		errs = append(errs, errors.New("DB_MAX_OPEN_CONNS must be positive"))
	}
	if c.Pool.MaxIdleConns < 0 {
		errs = append(errs, errors.New("DB_MAX_IDLE_CONNS must not be negative"))
	}
	if c.Pool.ProbeTimeoutSeconds <= 0 {
		errs = append(errs, errors.New("DB_PROBE_TIMEOUT_SECONDS must be positive"))
	}
	if err := c.PrimaryDB.validate(); err != nil {
		errs = append(errs, fmt.Errorf("primary database: %w", err))
	}
	if err := c.LocalDB.validate(); err != nil {
		errs = append(errs, fmt.Errorf("local database: %w", err))
	}
	if c.RateLimit.Enabled {
		if c.RateLimit.RequestsPerSecond <= 0 {
			errs = append(errs, errors.New("RATE_LIMIT_RPS must be positive"))
		}
		if c.RateLimit.BurstCapacity <= 0 {
			errs = append(errs, errors.New("RATE_LIMIT_BURST must be positive"))
		}
	}

	return errors.Join(errs...)
}

var validSSLModes = map[string]bool{
	"":            true,
	"disable":     true,
	"allow":       true,
	"prefer":      true,
	"require":     true,
	"verify-ca":   true,
	"verify-full": true,
}

func (c *DatabaseConfig) validate() error {
	if !validSSLModes[c.SSLMode] {
		return fmt.Errorf("unsupported sslmode %q", c.SSLMode)
	}
	if c.URL != "" {
		if _, err := url.Parse(c.URL); err != nil {
			return fmt.Errorf("invalid connection string: %w", err)
		}
		return nil
	}
	if c.Host == "" || c.Name == "" {
		return errors.New("host and database name are required when no connection string is set")
	}
	return nil
}

// DSN returns the PostgreSQL data source name. A connection string without an
// explicit sslmode gets the configured one appended.
func (c *DatabaseConfig) DSN() string {
	if c.URL != "" {
		dsn := c.URL
		if c.SSLMode != "" && !strings.Contains(dsn, "sslmode=") {
			if strings.Contains(dsn, "?") {
				dsn += "&sslmode=" + c.SSLMode
			} else {
				dsn += "?sslmode=" + c.SSLMode
			}
		}
		return dsn
	}

	parts := []string{
		"host=" + quoteDSNValue(c.Host),
		"port=" + quoteDSNValue(c.Port),
		"user=" + quoteDSNValue(c.User),
		"dbname=" + quoteDSNValue(c.Name),
	}
	if c.Password != "" {
		parts = append(parts, "password="+quoteDSNValue(c.Password))
	}
	if c.SSLMode != "" {
		parts = append(parts, "sslmode="+c.SSLMode)
	}
	return strings.Join(parts, " ")
}

// Redacted describes the target without credentials, for logs.
func (c *DatabaseConfig) Redacted() string {
	if c.URL != "" {
		if u, err := url.Parse(c.URL); err == nil {
			return u.Redacted()
		}
		return "<invalid url>"
	}
	return fmt.Sprintf("%s@%s:%s/%s", c.User, c.Host, c.Port, c.Name)
}

// quoteDSNValue quotes a keyword/value DSN value when it contains spaces or quotes.
func quoteDSNValue(s string) string {
	if s != "" && !strings.ContainsAny(s, ` '\`) {
		return s
	}
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	return "'" + s + "'"
}

// ShutdownTimeout returns the graceful shutdown timeout.
func (c *AppConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
