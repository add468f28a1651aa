package config

import (
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies CLEANSWEEP_* environment variable overrides,
// and returns the final Config. The returned Config has NOT been validated;
// the caller should invoke Config.Validate() after Load.
//
// A missing file is not an error: the defaults plus environment overrides
// are a complete configuration.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	// Load .env if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known CLEANSWEEP_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject secrets at deploy time without touching the TOML
// file.
func applyEnvOverrides(cfg *Config) {
	setStr(&cfg.EtherDelta.URI, "CLEANSWEEP_ETHERDELTA_URI")
	setInt(&cfg.EtherDelta.RequestsPerMinute, "CLEANSWEEP_ETHERDELTA_REQUESTS_PER_MINUTE")
	setInt(&cfg.EtherDelta.MaxRetries, "CLEANSWEEP_ETHERDELTA_MAX_RETRIES")
	setDuration(&cfg.EtherDelta.PollInterval, "CLEANSWEEP_ETHERDELTA_POLL_INTERVAL")
	setInt(&cfg.EtherDelta.MaxTokensPerCycle, "CLEANSWEEP_ETHERDELTA_MAX_TOKENS_PER_CYCLE")

	setDecimal(&cfg.Sweep.MaxExposure, "CLEANSWEEP_SWEEP_MAX_EXPOSURE")

	setStr(&cfg.Fee.Strategy, "CLEANSWEEP_FEE_STRATEGY")
	setDecimal(&cfg.Fee.FixedFee, "CLEANSWEEP_FEE_FIXED_FEE")
	setInt64(&cfg.Fee.GasUnits, "CLEANSWEEP_FEE_GAS_UNITS")
	setDecimal(&cfg.Fee.GasPriceGwei, "CLEANSWEEP_FEE_GAS_PRICE_GWEI")

	setStr(&cfg.RateLimit.Backend, "CLEANSWEEP_RATELIMIT_BACKEND")

	setStr(&cfg.Redis.Addr, "CLEANSWEEP_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "CLEANSWEEP_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "CLEANSWEEP_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "CLEANSWEEP_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "CLEANSWEEP_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "CLEANSWEEP_REDIS_TLS_ENABLED")

	setStr(&cfg.Postgres.DSN, "CLEANSWEEP_POSTGRES_DSN")
	setInt(&cfg.Postgres.PoolMaxConns, "CLEANSWEEP_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "CLEANSWEEP_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "CLEANSWEEP_POSTGRES_RUN_MIGRATIONS")

	setBool(&cfg.S3.Enabled, "CLEANSWEEP_S3_ENABLED")
	setStr(&cfg.S3.Endpoint, "CLEANSWEEP_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "CLEANSWEEP_S3_REGION")
	setStr(&cfg.S3.Bucket, "CLEANSWEEP_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "CLEANSWEEP_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "CLEANSWEEP_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "CLEANSWEEP_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "CLEANSWEEP_S3_FORCE_PATH_STYLE")
	setStr(&cfg.S3.Prefix, "CLEANSWEEP_S3_PREFIX")

	setStr(&cfg.Notify.TelegramToken, "CLEANSWEEP_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "CLEANSWEEP_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "CLEANSWEEP_NOTIFY_DISCORD_WEBHOOK_URL")

	setStr(&cfg.Mode, "CLEANSWEEP_MODE")
	setStr(&cfg.LogLevel, "CLEANSWEEP_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setDecimal(dst *decimal.Decimal, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			*dst = d
		}
	}
}
