// Package config defines the top-level configuration for the cleansweep bot
// and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by CLEANSWEEP_* environment
// variables.
type Config struct {
	EtherDelta EtherDeltaConfig `toml:"etherdelta"`
	Sweep      SweepConfig      `toml:"sweep"`
	Fee        FeeConfig        `toml:"fee"`
	RateLimit  RateLimitConfig  `toml:"ratelimit"`
	Redis      RedisConfig      `toml:"redis"`
	Postgres   PostgresConfig   `toml:"postgres"`
	S3         S3Config         `toml:"s3"`
	Notify     NotifyConfig     `toml:"notify"`
	Mode       string           `toml:"mode"`
	LogLevel   string           `toml:"log_level"`
}

// EtherDeltaConfig holds upstream feed parameters.
type EtherDeltaConfig struct {
	URI string `toml:"uri"`
	// RequestsPerMinute is the documented upstream quota; the bot never
	// sends faster than this.
	RequestsPerMinute int `toml:"requests_per_minute"`
	// MaxRetries bounds empty/mistyped payload retries per request.
	MaxRetries int `toml:"max_retries"`
	// PollInterval is the sleep between full poll cycles.
	PollInterval duration `toml:"poll_interval"`
	// MaxTokensPerCycle caps detailed book fetches per cycle.
	MaxTokensPerCycle int `toml:"max_tokens_per_cycle"`
}

// SweepConfig holds sizing parameters.
type SweepConfig struct {
	// MaxExposure is the most ether committed to one sweep.
	MaxExposure decimal.Decimal `toml:"max_exposure"`
}

// FeeConfig selects and parameterizes the per-sweep fee estimate.
type FeeConfig struct {
	// Strategy is "fixed" (flat fee per sweep) or "gas" (derived from gas
	// units and price).
	Strategy string `toml:"strategy"`
	// FixedFee is the flat ether cost per sweep when Strategy is "fixed".
	FixedFee decimal.Decimal `toml:"fixed_fee"`
	// GasUnits and GasPriceGwei size the per-transaction cost when
	// Strategy is "gas".
	GasUnits     int64           `toml:"gas_units"`
	GasPriceGwei decimal.Decimal `toml:"gas_price_gwei"`
}

// RateLimitConfig selects the limiter backend.
type RateLimitConfig struct {
	// Backend is "local" (in-process) or "redis" (shared window across
	// processes).
	Backend string `toml:"backend"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// PostgresConfig holds report persistence parameters. Persistence is off
// when DSN is empty.
type PostgresConfig struct {
	DSN           string `toml:"dsn"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// S3Config holds snapshot archival parameters.
type S3Config struct {
	Enabled        bool   `toml:"enabled"`
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
	Prefix         string `toml:"prefix"`
}

// NotifyConfig holds notification channel credentials. Channels with empty
// credentials are not wired.
type NotifyConfig struct {
	TelegramToken     string `toml:"telegram_token"`
	TelegramChatID    string `toml:"telegram_chat_id"`
	DiscordWebhookURL string `toml:"discord_webhook_url"`
}

// Defaults returns the built-in configuration, mirroring the constants the
// bot has always run with: 0.0004 ether per transaction, half an ether of
// exposure, a ten second poll.
func Defaults() Config {
	return Config{
		EtherDelta: EtherDeltaConfig{
			URI:               "wss://socket.etherdelta.com/socket.io/?transport=websocket",
			RequestsPerMinute: 24,
			MaxRetries:        25,
			PollInterval:      duration{10 * time.Second},
			MaxTokensPerCycle: 10,
		},
		Sweep: SweepConfig{
			MaxExposure: decimal.RequireFromString("0.5"),
		},
		Fee: FeeConfig{
			Strategy:     "fixed",
			FixedFee:     decimal.RequireFromString("0.0008"),
			GasUnits:     250000,
			GasPriceGwei: decimal.RequireFromString("4"),
		},
		RateLimit: RateLimitConfig{Backend: "local"},
		Mode:      "sweep",
		LogLevel:  "info",
	}
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Mode) {
	case "sweep", "scan":
	default:
		return fmt.Errorf("config: unsupported mode %q", c.Mode)
	}

	if c.EtherDelta.URI == "" {
		return fmt.Errorf("config: etherdelta.uri is required")
	}
	if c.EtherDelta.RequestsPerMinute <= 0 {
		return fmt.Errorf("config: etherdelta.requests_per_minute must be positive")
	}
	if c.EtherDelta.MaxRetries < 0 {
		return fmt.Errorf("config: etherdelta.max_retries must not be negative")
	}
	if c.EtherDelta.PollInterval.Duration <= 0 {
		return fmt.Errorf("config: etherdelta.poll_interval must be positive")
	}

	if !c.Sweep.MaxExposure.IsPositive() {
		return fmt.Errorf("config: sweep.max_exposure must be positive")
	}

	switch c.Fee.Strategy {
	case "fixed":
		if c.Fee.FixedFee.IsNegative() {
			return fmt.Errorf("config: fee.fixed_fee must not be negative")
		}
	case "gas":
		if c.Fee.GasUnits <= 0 {
			return fmt.Errorf("config: fee.gas_units must be positive")
		}
		if c.Fee.GasPriceGwei.IsNegative() {
			return fmt.Errorf("config: fee.gas_price_gwei must not be negative")
		}
	default:
		return fmt.Errorf("config: unsupported fee.strategy %q", c.Fee.Strategy)
	}

	switch c.RateLimit.Backend {
	case "local":
	case "redis":
		if c.Redis.Addr == "" {
			return fmt.Errorf("config: redis.addr is required for the redis rate limit backend")
		}
	default:
		return fmt.Errorf("config: unsupported ratelimit.backend %q", c.RateLimit.Backend)
	}

	if c.S3.Enabled {
		if c.S3.Bucket == "" || c.S3.Region == "" {
			return fmt.Errorf("config: s3.bucket and s3.region are required when s3 is enabled")
		}
	}

	return nil
}

// duration wraps time.Duration so TOML values like "10s" decode directly.
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}
