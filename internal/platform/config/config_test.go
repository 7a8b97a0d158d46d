package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_SQLITE_PATH", "/tmp/ledger.db")
	t.Setenv("QUOTE_TIMEOUT", "2s")
	t.Setenv("CORS_ALLOW_ORIGINS", "http://a.example,http://b.example")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "test-secret", cfg.JWT.Secret)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "/tmp/ledger.db", cfg.Database.SQLitePath)
	assert.Equal(t, 2*time.Second, cfg.Ledger.QuoteTimeout)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.Server.CORSOrigins)

	// defaults
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, 4, cfg.Ledger.ViewConcurrency)
	assert.False(t, cfg.Redis.Enabled())

	cash, err := cfg.Ledger.InitialCashAmount()
	require.NoError(t, err)
	assert.True(t, cash.Equal(decimal.RequireFromString("10000")))
}

func TestLoad_FileThenEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	yml := `
database:
  driver: postgres
  host: db.internal
  name: ledger
jwt:
  secret: from-file
redis:
  host: cache.internal
ledger:
  initial_cash: "2500.50"
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))
	t.Setenv("DB_HOST", "db.override")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "db.override", cfg.Database.Host)
	assert.Equal(t, "ledger", cfg.Database.Name)
	assert.Equal(t, "from-file", cfg.JWT.Secret)
	assert.True(t, cfg.Redis.Enabled())

	cash, err := cfg.Ledger.InitialCashAmount()
	require.NoError(t, err)
	assert.Equal(t, "2500.5", cash.String())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := func() Config {
		return Config{
			Database: Database{Driver: DriverPostgres},
			JWT:      JWT{Secret: "s"},
			Ledger:   Ledger{InitialCash: "10000.00"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "unknown driver", mutate: func(c *Config) { c.Database.Driver = "mysql" }, wantErr: true},
		{name: "missing secret", mutate: func(c *Config) { c.JWT.Secret = "" }, wantErr: true},
		{name: "bad initial cash", mutate: func(c *Config) { c.Ledger.InitialCash = "lots" }, wantErr: true},
		{name: "negative initial cash", mutate: func(c *Config) { c.Ledger.InitialCash = "-1" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
