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

func TestDefaultsAreValid(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 10*time.Second, cfg.EtherDelta.PollInterval.Duration)
	assert.True(t, cfg.Sweep.MaxExposure.Equal(decimal.RequireFromString("0.5")))
	assert.True(t, cfg.Fee.FixedFee.Equal(decimal.RequireFromString("0.0008")))
	assert.Equal(t, "local", cfg.RateLimit.Backend)
	assert.Equal(t, "sweep", cfg.Mode)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown mode", func(c *Config) { c.Mode = "backtest" }},
		{"missing uri", func(c *Config) { c.EtherDelta.URI = "" }},
		{"zero quota", func(c *Config) { c.EtherDelta.RequestsPerMinute = 0 }},
		{"negative retries", func(c *Config) { c.EtherDelta.MaxRetries = -1 }},
		{"zero poll interval", func(c *Config) { c.EtherDelta.PollInterval = duration{} }},
		{"zero exposure", func(c *Config) { c.Sweep.MaxExposure = decimal.Zero }},
		{"unknown fee strategy", func(c *Config) { c.Fee.Strategy = "oracle" }},
		{"gas strategy without units", func(c *Config) {
			c.Fee.Strategy = "gas"
			c.Fee.GasUnits = 0
		}},
		{"unknown limiter backend", func(c *Config) { c.RateLimit.Backend = "memcached" }},
		{"redis backend without addr", func(c *Config) { c.RateLimit.Backend = "redis" }},
		{"s3 enabled without bucket", func(c *Config) {
			c.S3.Enabled = true
			c.S3.Region = "us-east-1"
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Defaults()
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
mode = "scan"

[etherdelta]
poll_interval = "30s"
max_tokens_per_cycle = 3

[sweep]
max_exposure = "1.25"

[fee]
strategy = "gas"
gas_units = 300000
gas_price_gwei = "2"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "scan", cfg.Mode)
	assert.Equal(t, 30*time.Second, cfg.EtherDelta.PollInterval.Duration)
	assert.Equal(t, 3, cfg.EtherDelta.MaxTokensPerCycle)
	assert.True(t, cfg.Sweep.MaxExposure.Equal(decimal.RequireFromString("1.25")))
	assert.Equal(t, "gas", cfg.Fee.Strategy)
	assert.Equal(t, int64(300000), cfg.Fee.GasUnits)

	// Untouched sections keep defaults.
	assert.Equal(t, 24, cfg.EtherDelta.RequestsPerMinute)
	assert.Equal(t, "local", cfg.RateLimit.Backend)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), *cfg)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CLEANSWEEP_ETHERDELTA_URI", "wss://example.test/socket.io/?transport=websocket")
	t.Setenv("CLEANSWEEP_SWEEP_MAX_EXPOSURE", "0.75")
	t.Setenv("CLEANSWEEP_ETHERDELTA_POLL_INTERVAL", "5s")
	t.Setenv("CLEANSWEEP_RATELIMIT_BACKEND", "redis")
	t.Setenv("CLEANSWEEP_REDIS_ADDR", "localhost:6379")
	t.Setenv("CLEANSWEEP_POSTGRES_RUN_MIGRATIONS", "true")

	cfg := Defaults()
	applyEnvOverrides(&cfg)

	assert.Equal(t, "wss://example.test/socket.io/?transport=websocket", cfg.EtherDelta.URI)
	assert.True(t, cfg.Sweep.MaxExposure.Equal(decimal.RequireFromString("0.75")))
	assert.Equal(t, 5*time.Second, cfg.EtherDelta.PollInterval.Duration)
	assert.Equal(t, "redis", cfg.RateLimit.Backend)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.True(t, cfg.Postgres.RunMigrations)
	require.NoError(t, cfg.Validate())
}

func TestEnvOverrideIgnoresMalformedValues(t *testing.T) {
	t.Setenv("CLEANSWEEP_SWEEP_MAX_EXPOSURE", "lots")
	t.Setenv("CLEANSWEEP_ETHERDELTA_MAX_RETRIES", "many")

	cfg := Defaults()
	applyEnvOverrides(&cfg)

	assert.True(t, cfg.Sweep.MaxExposure.Equal(decimal.RequireFromString("0.5")))
	assert.Equal(t, 25, cfg.EtherDelta.MaxRetries)
}
