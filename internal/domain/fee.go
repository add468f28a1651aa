package domain

import "github.com/shopspring/decimal"

// sweepTransactions is the number of on-chain transactions a sweep costs:
// one taker fill against the buy, one against the sell.
const sweepTransactions = 2

var gweiPerEther = decimal.New(1, 9)

// FeeEstimator estimates the flat, size-independent ether cost of executing
// one sweep. Which implementation runs is a configuration choice.
type FeeEstimator interface {
	SweepFee() decimal.Decimal
}

// FixedFee charges a constant amount per sweep, calibrated from observed
// transaction costs.
type FixedFee struct {
	perSweep decimal.Decimal
}

// NewFixedFee returns a FixedFee charging the given ether amount per sweep.
func NewFixedFee(perSweep decimal.Decimal) FixedFee {
	return FixedFee{perSweep: perSweep}
}

// SweepFee returns the configured flat fee.
func (f FixedFee) SweepFee() decimal.Decimal {
	return f.perSweep
}

// GasFee derives the per-sweep cost from a configured gas allowance and gas
// price, for the two transactions a sweep requires.
type GasFee struct {
	gasUnits      decimal.Decimal
	gasPriceGwei  decimal.Decimal
}

// NewGasFee returns a GasFee for transactions of gasUnits gas at
// gasPriceGwei gwei per unit.
func NewGasFee(gasUnits int64, gasPriceGwei decimal.Decimal) GasFee {
	return GasFee{
		gasUnits:     decimal.NewFromInt(gasUnits),
		gasPriceGwei: gasPriceGwei,
	}
}

// SweepFee returns 2 * gasUnits * gasPrice, converted from gwei to ether.
func (f GasFee) SweepFee() decimal.Decimal {
	perTxn := f.gasUnits.Mul(f.gasPriceGwei).Div(gweiPerEther)
	return perTxn.Mul(decimal.NewFromInt(sweepTransactions))
}
