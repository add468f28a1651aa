package domain

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// SweepReport is the structured record emitted for each new best sweep.
// Rendering (chat message, log line, database row) is up to the consumers.
type SweepReport struct {
	ID         string
	Ticker     string
	Token      common.Address
	Revenue    decimal.Decimal
	Quantity   decimal.Decimal
	BuyPrice   decimal.Decimal
	SellPrice  decimal.Decimal
	// RiskRevenueRatio is the ether put at risk (the executed spend)
	// divided by the expected revenue. Lower is better.
	RiskRevenueRatio decimal.Decimal
	DetectedAt       time.Time
}

// NewSweepReport builds the report for a sweep on the given ticker.
func NewSweepReport(id, ticker string, sweep Sweep, detectedAt time.Time) SweepReport {
	ratio := decimal.Zero
	if sweep.Revenue.IsPositive() {
		ratio = sweep.Cost.Div(sweep.Revenue)
	}
	return SweepReport{
		ID:               id,
		Ticker:           ticker,
		Token:            sweep.Buy.Token(),
		Revenue:          sweep.Revenue,
		Quantity:         sweep.Quantity,
		BuyPrice:         sweep.Buy.Price,
		SellPrice:        sweep.Sell.Price,
		RiskRevenueRatio: ratio,
		DetectedAt:       detectedAt,
	}
}
