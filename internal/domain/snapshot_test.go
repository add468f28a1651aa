package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func decp(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestBidAskRatio(t *testing.T) {
	tests := []struct {
		name     string
		bid, ask *decimal.Decimal
		ratio    string
		infinite bool
		possible bool
	}{
		{name: "crossed book", bid: decp("1.2"), ask: decp("1"), ratio: "1.2", possible: true},
		{name: "normal book", bid: decp("0.9"), ask: decp("1"), ratio: "0.9"},
		{name: "exactly touching", bid: decp("1"), ask: decp("1"), ratio: "1"},
		{name: "missing bid", ask: decp("1"), ratio: "0"},
		{name: "missing ask", bid: decp("1"), ratio: "0"},
		{name: "both missing", ratio: "0"},
		{name: "zero ask positive bid", bid: decp("0.5"), ask: decp("0"), infinite: true, possible: true},
		{name: "zero over zero", bid: decp("0"), ask: decp("0"), ratio: "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := TokenSnapshot{Ticker: "TST", Bid: tt.bid, Ask: tt.ask}
			ratio, infinite := snap.BidAskRatio()
			assert.Equal(t, tt.infinite, infinite)
			if !tt.infinite {
				assert.True(t, ratio.Equal(decimal.RequireFromString(tt.ratio)),
					"ratio = %s, want %s", ratio, tt.ratio)
			}
			assert.Equal(t, tt.possible, snap.SweepPossible())
		})
	}
}

func TestSweepCandidatesOrdering(t *testing.T) {
	snapshots := []TokenSnapshot{
		{Ticker: "LOW", Bid: decp("1.1"), Ask: decp("1")},
		{Ticker: "FLAT", Bid: decp("1"), Ask: decp("1")},
		{Ticker: "INF", Bid: decp("2"), Ask: decp("0")},
		{Ticker: "HIGH", Bid: decp("3"), Ask: decp("1")},
		{Ticker: "EMPTY"},
	}

	candidates := SweepCandidates(snapshots)

	tickers := make([]string, 0, len(candidates))
	for _, c := range candidates {
		tickers = append(tickers, c.Ticker)
	}
	assert.Equal(t, []string{"INF", "HIGH", "LOW"}, tickers)
}
