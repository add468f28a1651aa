// Package sweep implements the matching engine that turns one token's order
// book into profitable sweeps, and the process-lifetime dedup set that keeps
// repeated polls from re-reporting the same opportunity.
package sweep

import (
	"log/slog"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mshenfield/cleansweep/internal/domain"
)

// EngineConfig configures sweep sizing.
type EngineConfig struct {
	// MaxExposure caps the ether committed to a single sweep.
	MaxExposure decimal.Decimal
	// Fee estimates the flat per-sweep execution cost.
	Fee domain.FeeEstimator
}

// Engine finds every profitable sweep on a single token's book.
type Engine struct {
	cfg    EngineConfig
	logger *slog.Logger
}

// NewEngine creates an Engine.
func NewEngine(cfg EngineConfig, logger *slog.Logger) *Engine {
	return &Engine{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "sweep_engine")),
	}
}

// FindSweeps returns all profitable sweeps for the book. The upstream sends
// buys descending and sells ascending by price; the engine re-sorts
// defensively since the pruning below is only valid on sorted input.
//
// Pruning keeps the pass off the full cross-product: a buy that cannot beat
// the cheapest sell, or a sell at or above the best bid, can never pair
// profitably. The revenue test on each surviving pair is authoritative.
func (e *Engine) FindSweeps(book domain.OrderBook) []domain.Sweep {
	if len(book.Buys) == 0 || len(book.Sells) == 0 {
		return nil
	}

	buys := sortedBuys(book.Buys)
	sells := sortedSells(book.Sells)

	lowestSell := sells[0]
	var candidateBuys []domain.Order
	for _, buy := range buys {
		if buy.Price.GreaterThan(lowestSell.Price) {
			candidateBuys = append(candidateBuys, buy)
		}
	}

	// Sells are ascending, so the candidates are the leading run priced
	// strictly below the best bid.
	highestBuy := buys[0]
	var candidateSells []domain.Order
	for _, sell := range sells {
		if !sell.Price.LessThan(highestBuy.Price) {
			break
		}
		candidateSells = append(candidateSells, sell)
	}

	var sweeps []domain.Sweep
	for _, buy := range candidateBuys {
		for _, sell := range candidateSells {
			s, err := domain.NewSweep(buy, sell, e.cfg.MaxExposure, e.cfg.Fee.SweepFee())
			if err != nil {
				e.logger.Warn("dropping invalid pair",
					slog.String("error", err.Error()),
				)
				continue
			}
			if s.Profitable() {
				sweeps = append(sweeps, s)
			}
		}
	}
	return sweeps
}

func sortedBuys(buys []domain.Order) []domain.Order {
	if sort.SliceIsSorted(buys, func(i, j int) bool {
		return buys[i].Price.GreaterThan(buys[j].Price)
	}) {
		return buys
	}
	sorted := append([]domain.Order(nil), buys...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Price.GreaterThan(sorted[j].Price)
	})
	return sorted
}

func sortedSells(sells []domain.Order) []domain.Order {
	if sort.SliceIsSorted(sells, func(i, j int) bool {
		return sells[i].Price.LessThan(sells[j].Price)
	}) {
		return sells
	}
	sorted := append([]domain.Order(nil), sells...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Price.LessThan(sorted[j].Price)
	})
	return sorted
}
