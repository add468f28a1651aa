package domain

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// OrderBook is the detailed per-token view: buys sorted descending by price,
// sells ascending, as served by the upstream.
type OrderBook struct {
	Token common.Address
	Buys  []Order
	Sells []Order
}

// MarketSource is the upstream market-data capability. Implementations must
// serialize outbound requests through the shared rate limiter and treat
// empty or mistyped payloads as transient, retrying internally.
type MarketSource interface {
	// Snapshot returns the coarse all-tickers view.
	Snapshot(ctx context.Context) ([]TokenSnapshot, error)
	// Book returns the detailed order book for one token.
	Book(ctx context.Context, token common.Address) (OrderBook, error)
}

// RateLimiter gates outbound requests to the upstream quota. Wait blocks
// until a request may be sent, returning early only when ctx is cancelled.
type RateLimiter interface {
	Wait(ctx context.Context) error
}

// SweepReportStore persists surfaced sweep reports.
type SweepReportStore interface {
	Create(ctx context.Context, report SweepReport) error
	ListRecent(ctx context.Context, since time.Time, limit int) ([]SweepReport, error)
}

// SnapshotArchiver stores a cycle's coarse snapshot for offline analysis.
type SnapshotArchiver interface {
	Archive(ctx context.Context, takenAt time.Time, snapshots []TokenSnapshot) error
}
