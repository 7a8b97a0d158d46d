// Package config loads application settings from an optional YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Env string `yaml:"env" env:"APP_ENV" env-default:"local"`

	Log        Log        `yaml:"log"`
	Server     Server     `yaml:"server"`
	Database   Database   `yaml:"database"`
	Redis      Redis      `yaml:"redis"`
	TwelveData TwelveData `yaml:"twelvedata"`
	JWT        JWT        `yaml:"jwt"`
	Ledger     Ledger     `yaml:"ledger"`
}

type Log struct {
	Level    string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Encoding string `yaml:"encoding" env:"LOG_ENCODING" env-default:"console"`
}

type Server struct {
	Addr            string        `yaml:"addr" env:"SERVER_ADDR" env-default:":8080"`
	GinMode         string        `yaml:"gin_mode" env:"GIN_MODE" env-default:"release"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
	CORSOrigins     []string      `yaml:"cors_origins" env:"CORS_ALLOW_ORIGINS" env-separator:","`
}

type Database struct {
	Driver         string        `yaml:"driver" env:"DB_DRIVER" env-default:"postgres"`
	User           string        `yaml:"user" env:"DB_USER"`
	Password       string        `yaml:"password" env:"DB_PASSWORD"`
	Name           string        `yaml:"name" env:"DB_NAME" env-default:"finance"`
	Host           string        `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port           string        `yaml:"port" env:"DB_PORT" env-default:"5432"`
	SSLMode        string        `yaml:"sslmode" env:"DB_SSLMODE" env-default:"disable"`
	InstanceName   string        `yaml:"instance_name" env:"INSTANCE_CONNECTION_NAME"`
	SQLitePath     string        `yaml:"sqlite_path" env:"DB_SQLITE_PATH" env-default:"finance.db"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" env:"DB_CONNECT_TIMEOUT" env-default:"30s"`
	RunMigrations  bool          `yaml:"run_migrations" env:"DB_RUN_MIGRATIONS" env-default:"true"`
}

type Redis struct {
	Host     string        `yaml:"host" env:"REDIS_HOST"`
	Port     string        `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	QuoteTTL time.Duration `yaml:"quote_ttl" env:"REDIS_QUOTE_TTL" env-default:"1m"`
}

// Enabled reports whether a redis host was configured.
func (r Redis) Enabled() bool { return r.Host != "" }

type TwelveData struct {
	APIKey        string        `yaml:"api_key" env:"TWELVE_DATA_API_KEY"`
	BaseURL       string        `yaml:"base_url" env:"TWELVE_DATA_BASE_URL" env-default:"https://api.twelvedata.com"`
	Timeout       time.Duration `yaml:"timeout" env:"TWELVE_DATA_TIMEOUT" env-default:"10s"`
	RatePerMinute int           `yaml:"rate_per_minute" env:"TWELVE_DATA_RATE_PER_MINUTE" env-default:"8"`
	LocalCacheTTL time.Duration `yaml:"local_cache_ttl" env:"QUOTE_LOCAL_CACHE_TTL" env-default:"30s"`
}

type JWT struct {
	Secret     string        `yaml:"secret" env:"JWT_SECRET"`
	Expiration time.Duration `yaml:"expiration" env:"JWT_EXPIRATION" env-default:"1h"`
}

type Ledger struct {
	QuoteTimeout    time.Duration `yaml:"quote_timeout" env:"QUOTE_TIMEOUT" env-default:"5s"`
	InitialCash     string        `yaml:"initial_cash" env:"LEDGER_INITIAL_CASH" env-default:"10000.00"`
	ViewConcurrency int           `yaml:"view_concurrency" env:"LEDGER_VIEW_CONCURRENCY" env-default:"4"`
}

// InitialCashAmount parses the cash credited to newly opened accounts.
func (l Ledger) InitialCashAmount() (decimal.Decimal, error) {
	d, err := decimal.NewFromString(l.InitialCash)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid initial cash %q: %w", l.InitialCash, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("invalid initial cash %q: must not be negative", l.InitialCash)
	}
	return d, nil
}

// Load reads .env (when present), then the YAML file at path (when non-empty), then the environment.
// Environment variables override file values.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var cfg Config
	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that have no usable default.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if _, err := c.Ledger.InitialCashAmount(); err != nil {
		return err
	}
	return nil
}
