package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	s3blob "github.com/mshenfield/cleansweep/internal/blob/s3"
	"github.com/mshenfield/cleansweep/internal/cache/redis"
	"github.com/mshenfield/cleansweep/internal/config"
	"github.com/mshenfield/cleansweep/internal/domain"
	"github.com/mshenfield/cleansweep/internal/notify"
	"github.com/mshenfield/cleansweep/internal/platform/etherdelta"
	"github.com/mshenfield/cleansweep/internal/ratelimit"
	"github.com/mshenfield/cleansweep/internal/store/postgres"
	"github.com/mshenfield/cleansweep/internal/sweep"
)

// rateLimiterKey is the shared sliding-window key when the redis backend is
// selected; every process pointed at the same Redis shares one quota.
const rateLimiterKey = "cleansweep:etherdelta:requests"

// Dependencies bundles everything the application modes need. It is
// constructed by Wire and torn down by the returned cleanup function.
type Dependencies struct {
	Source   *etherdelta.Client
	Engine   *sweep.Engine
	Limiter  domain.RateLimiter
	Store    domain.SweepReportStore
	Archiver domain.SnapshotArchiver
	Notifier *notify.Notifier
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function to call on
// shutdown.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- Rate limiter ---
	switch cfg.RateLimit.Backend {
	case "redis":
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })
		deps.Limiter = redis.NewRateLimiter(
			redisClient,
			rateLimiterKey,
			cfg.EtherDelta.RequestsPerMinute,
			time.Minute,
		)
	default:
		deps.Limiter = ratelimit.NewLocal(cfg.EtherDelta.RequestsPerMinute)
	}

	// --- PostgreSQL report store (off when DSN is empty) ---
	if cfg.Postgres.DSN != "" {
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Postgres.DSN,
			MaxConns: cfg.Postgres.PoolMaxConns,
			MinConns: cfg.Postgres.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		if cfg.Postgres.RunMigrations {
			if err := pgClient.RunMigrations(ctx); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
			}
		}

		deps.Store = postgres.NewSweepReportStore(pgClient.Pool())
	}

	// --- S3 snapshot archival ---
	if cfg.S3.Enabled {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		deps.Archiver = s3blob.NewArchiver(s3Client, cfg.S3.Prefix)
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, logger)

	// --- Feed client ---
	deps.Source = etherdelta.NewClient(etherdelta.ClientConfig{
		URI:        cfg.EtherDelta.URI,
		MaxRetries: cfg.EtherDelta.MaxRetries,
		Limiter:    deps.Limiter,
	}, logger)
	closers = append(closers, func() { _ = deps.Source.Close() })

	// --- Sweep engine ---
	var fee domain.FeeEstimator
	switch cfg.Fee.Strategy {
	case "gas":
		fee = domain.NewGasFee(cfg.Fee.GasUnits, cfg.Fee.GasPriceGwei)
	default:
		fee = domain.NewFixedFee(cfg.Fee.FixedFee)
	}
	deps.Engine = sweep.NewEngine(sweep.EngineConfig{
		MaxExposure: cfg.Sweep.MaxExposure,
		Fee:         fee,
	}, logger)

	return deps, cleanup, nil
}
