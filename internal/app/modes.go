package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mshenfield/cleansweep/internal/domain"
	"github.com/mshenfield/cleansweep/internal/sweeper"
)

// SweepMode connects to the feed and runs the polling loop until the context
// is cancelled.
func (a *App) SweepMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting sweep mode")

	if err := deps.Source.Connect(ctx); err != nil {
		return fmt.Errorf("app: connect feed: %w", err)
	}

	sw := sweeper.New(sweeper.Config{
		PollInterval:      a.cfg.EtherDelta.PollInterval.Duration,
		MaxTokensPerCycle: a.cfg.EtherDelta.MaxTokensPerCycle,
	}, sweeper.Deps{
		Source:   deps.Source,
		Engine:   deps.Engine,
		Notifier: deps.Notifier,
		Store:    deps.Store,
		Archiver: deps.Archiver,
		Logger:   a.logger,
	})

	return sw.Run(ctx)
}

// ScanMode takes a single market snapshot, logs every token whose book looks
// crossed, and exits. Useful for checking feed health and market state
// without committing to the polling loop.
func (a *App) ScanMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting scan mode")

	if err := deps.Source.Connect(ctx); err != nil {
		return fmt.Errorf("app: connect feed: %w", err)
	}

	snapshots, err := deps.Source.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("app: snapshot: %w", err)
	}

	candidates := domain.SweepCandidates(snapshots)
	a.logger.InfoContext(ctx, "scan complete",
		slog.Int("tokens", len(snapshots)),
		slog.Int("candidates", len(candidates)),
	)

	for _, snap := range candidates {
		ratio, infinite := snap.BidAskRatio()
		attrs := []slog.Attr{
			slog.String("ticker", snap.Ticker),
			slog.String("address", snap.Address.Hex()),
		}
		if infinite {
			attrs = append(attrs, slog.String("bid_ask_ratio", "inf"))
		} else {
			attrs = append(attrs, slog.String("bid_ask_ratio", ratio.StringFixed(4)))
		}
		if snap.Bid != nil {
			attrs = append(attrs, slog.String("bid", snap.Bid.String()))
		}
		if snap.Ask != nil {
			attrs = append(attrs, slog.String("ask", snap.Ask.String()))
		}
		a.logger.LogAttrs(ctx, slog.LevelInfo, "crossed book", attrs...)
	}

	return nil
}
