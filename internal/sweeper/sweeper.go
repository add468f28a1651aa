// Package sweeper drives the poll cycle: coarse snapshot, candidate filter,
// per-token book fetch, matching, dedup, and reporting of the best new
// sweep. One Sweeper is a single logical control flow; it owns the seen-set
// and the address-to-ticker map and is the only writer to both.
package sweeper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/mshenfield/cleansweep/internal/domain"
	"github.com/mshenfield/cleansweep/internal/notify"
	"github.com/mshenfield/cleansweep/internal/sweep"
)

const (
	reconnectDelay    = 2 * time.Second
	maxReconnectDelay = 60 * time.Second
)

// Reconnector is implemented by market sources whose connection can be
// re-established after a transport error.
type Reconnector interface {
	Connect(ctx context.Context) error
}

// Config configures the poll cycle.
type Config struct {
	// PollInterval is the sleep between cycles.
	PollInterval time.Duration
	// MaxTokensPerCycle caps detailed book fetches per cycle; the candidate
	// ordering makes sure the cap falls on the least promising tokens.
	MaxTokensPerCycle int
}

// Deps bundles the Sweeper's collaborators. Store, Archiver, and Notifier
// are optional.
type Deps struct {
	Source   domain.MarketSource
	Engine   *sweep.Engine
	Notifier *notify.Notifier
	Store    domain.SweepReportStore
	Archiver domain.SnapshotArchiver
	Logger   *slog.Logger
}

// Sweeper runs the polling loop.
type Sweeper struct {
	cfg      Config
	source   domain.MarketSource
	engine   *sweep.Engine
	notifier *notify.Notifier
	store    domain.SweepReportStore
	archiver domain.SnapshotArchiver
	logger   *slog.Logger

	seen    *sweep.SeenSweeps
	tickers map[common.Address]string
}

// New creates a Sweeper. The seen-set starts empty and lives for the
// process's run.
func New(cfg Config, deps Deps) *Sweeper {
	return &Sweeper{
		cfg:      cfg,
		source:   deps.Source,
		engine:   deps.Engine,
		notifier: deps.Notifier,
		store:    deps.Store,
		archiver: deps.Archiver,
		logger:   deps.Logger.With(slog.String("component", "sweeper")),
		seen:     sweep.NewSeenSweeps(),
		tickers:  make(map[common.Address]string),
	}
}

// Run polls until ctx is cancelled. Cycle errors are logged, the connection
// re-established when the source supports it, and the loop proceeds; only
// cancellation ends the run.
func (s *Sweeper) Run(ctx context.Context) error {
	s.logger.InfoContext(ctx, "sweeper started",
		slog.Duration("poll_interval", s.cfg.PollInterval),
	)
	defer s.logger.Info("sweeper stopped")

	delay := reconnectDelay
	for {
		err := s.Cycle(ctx)
		switch {
		case err == nil:
			delay = reconnectDelay
		case ctx.Err() != nil:
			return ctx.Err()
		default:
			s.logger.ErrorContext(ctx, "cycle failed", slog.String("error", err.Error()))
			if r, ok := s.source.(Reconnector); ok {
				if err := sleepCtx(ctx, delay); err != nil {
					return err
				}
				if err := r.Connect(ctx); err != nil {
					s.logger.ErrorContext(ctx, "reconnect failed", slog.String("error", err.Error()))
				}
				if delay *= 2; delay > maxReconnectDelay {
					delay = maxReconnectDelay
				}
			}
		}

		if err := sleepCtx(ctx, s.cfg.PollInterval); err != nil {
			return err
		}
	}
}

// Cycle runs one snapshot-filter-fetch-match pass. Per-token errors are
// logged and skipped; only a failed snapshot fetch fails the cycle.
func (s *Sweeper) Cycle(ctx context.Context) error {
	snapshots, err := s.source.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("sweeper: snapshot: %w", err)
	}

	if s.archiver != nil {
		if err := s.archiver.Archive(ctx, time.Now().UTC(), snapshots); err != nil {
			s.logger.WarnContext(ctx, "archive failed", slog.String("error", err.Error()))
		}
	}

	candidates := domain.SweepCandidates(snapshots)
	if s.cfg.MaxTokensPerCycle > 0 && len(candidates) > s.cfg.MaxTokensPerCycle {
		candidates = candidates[:s.cfg.MaxTokensPerCycle]
	}

	s.logger.InfoContext(ctx, "sweepable tokens",
		slog.Int("total", len(snapshots)),
		slog.Int("candidates", len(candidates)),
	)

	for _, candidate := range candidates {
		s.tickers[candidate.Address] = candidate.Ticker

		book, err := s.source.Book(ctx, candidate.Address)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.WarnContext(ctx, "book fetch failed",
				slog.String("ticker", candidate.Ticker),
				slog.String("error", err.Error()),
			)
			continue
		}

		s.handleBook(ctx, book)
	}
	return nil
}

// handleBook matches one token's book and reports the best unseen sweep,
// if any.
func (s *Sweeper) handleBook(ctx context.Context, book domain.OrderBook) {
	ticker, ok := s.tickers[book.Token]
	if !ok {
		// Cannot report without a ticker; drop the book for this cycle.
		s.logger.ErrorContext(ctx, "dropping book",
			slog.String("token", book.Token.Hex()),
			slog.String("error", domain.ErrUnknownTicker.Error()),
		)
		return
	}

	sweeps := s.engine.FindSweeps(book)
	if len(sweeps) == 0 {
		s.logger.DebugContext(ctx, "no profitable sweeps", slog.String("ticker", ticker))
		return
	}

	best, ok := s.seen.SelectBest(sweeps)
	if !ok {
		s.logger.DebugContext(ctx, "all sweeps already surfaced", slog.String("ticker", ticker))
		return
	}

	s.report(ctx, domain.NewSweepReport(uuid.NewString(), ticker, best, time.Now().UTC()))
}

// report emits the structured record to the log and to the optional
// notifier and store. Delivery failures never fail the cycle.
func (s *Sweeper) report(ctx context.Context, report domain.SweepReport) {
	s.logger.InfoContext(ctx, "sweep found",
		slog.String("ticker", report.Ticker),
		slog.String("token", report.Token.Hex()),
		slog.String("revenue", report.Revenue.String()),
		slog.String("quantity", report.Quantity.String()),
		slog.String("buy_price", report.BuyPrice.String()),
		slog.String("sell_price", report.SellPrice.String()),
		slog.String("risk_revenue", report.RiskRevenueRatio.StringFixed(2)),
	)

	if s.notifier != nil {
		if err := s.notifier.Report(ctx, report); err != nil {
			s.logger.WarnContext(ctx, "notify failed", slog.String("error", err.Error()))
		}
	}
	if s.store != nil {
		if err := s.store.Create(ctx, report); err != nil {
			s.logger.WarnContext(ctx, "store failed", slog.String("error", err.Error()))
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
