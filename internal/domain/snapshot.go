package domain

import (
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// TokenSnapshot is the coarse per-token view from the all-tickers snapshot.
// Bid and Ask are nil when the book has no resting order on that side; they
// are never zero-valued stand-ins. Snapshots are rebuilt every poll and
// carry no identity beyond their field values.
type TokenSnapshot struct {
	Ticker  string
	Address common.Address

	// Bid is the highest resting buy price, nil when there are no buys.
	Bid *decimal.Decimal
	// Ask is the lowest resting sell price, nil when there are no sells.
	Ask *decimal.Decimal

	// Descriptive fields from the upstream ticker, nullable like Bid/Ask.
	LastTrade     *decimal.Decimal
	PercentChange *decimal.Decimal
	BaseVolume    *decimal.Decimal
	QuoteVolume   *decimal.Decimal
}

// BidAskRatio is the cheap crossed-book pre-filter: bid divided by ask.
// infinite is true when the ask is zero and the bid positive, the decimal
// equivalent of +Inf. A missing bid or ask, or a degenerate 0/0, yields
// zero so an empty book can never look profitable.
func (t TokenSnapshot) BidAskRatio() (ratio decimal.Decimal, infinite bool) {
	if t.Bid == nil || t.Ask == nil {
		return decimal.Zero, false
	}
	if t.Ask.IsZero() {
		if t.Bid.IsZero() {
			return decimal.Zero, false
		}
		return decimal.Zero, true
	}
	return t.Bid.Div(*t.Ask), false
}

// SweepPossible reports whether the book is crossed: the best bid strictly
// above the best ask. Actual profitability depends on fees and fill sizes
// and is decided by the matching engine.
func (t TokenSnapshot) SweepPossible() bool {
	ratio, infinite := t.BidAskRatio()
	return infinite || ratio.GreaterThan(one)
}

// SweepCandidates filters snapshots to the sweep-possible ones, ordered by
// descending ratio (infinite ratios first) so the most promising tokens get
// detailed lookups first under the request quota.
func SweepCandidates(snapshots []TokenSnapshot) []TokenSnapshot {
	candidates := make([]TokenSnapshot, 0, len(snapshots))
	for _, s := range snapshots {
		if s.SweepPossible() {
			candidates = append(candidates, s)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		ri, infi := candidates[i].BidAskRatio()
		rj, infj := candidates[j].BidAskRatio()
		if infi != infj {
			return infi
		}
		return ri.GreaterThan(rj)
	})
	return candidates
}
