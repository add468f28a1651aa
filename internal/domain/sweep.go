package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Sweep pairs a resting buy with a cheaper resting sell on the same token,
// to be taken back-to-back to capture the crossed-book spread. All derived
// figures are computed once at construction; a Sweep only outlives its
// matching pass if it is selected as the cycle's best.
type Sweep struct {
	Buy  Order
	Sell Order

	// AvailableSize is the token quantity both orders can fill.
	AvailableSize decimal.Decimal
	// Quantity is the token quantity actually taken after the exposure cap.
	Quantity decimal.Decimal
	// Cost is the ether spent buying Quantity tokens from the sell order.
	Cost decimal.Decimal
	// Revenue is the net profit: spread on Quantity minus the fixed fee.
	Revenue decimal.Decimal
}

// NewSweep sizes and prices a sweep of the two orders. maxExposure caps the
// ether committed; when the full available size costs more than the cap the
// quantity scales down proportionally. fee is the flat per-sweep cost of the
// two taker transactions. Both orders must reference the same token.
func NewSweep(buy, sell Order, maxExposure, fee decimal.Decimal) (Sweep, error) {
	if buy.Token() != sell.Token() {
		return Sweep{}, fmt.Errorf("%w: sweep across tokens %s and %s",
			ErrDataIntegrity, buy.Token().Hex(), sell.Token().Hex())
	}

	available := decimal.Min(buy.Amount, sell.Amount)
	fullCost := available.Mul(sell.Price)

	quantity := available
	cost := fullCost
	if fullCost.GreaterThan(maxExposure) && fullCost.IsPositive() {
		quantity = maxExposure.Div(fullCost).Mul(available)
		cost = maxExposure
	}

	revenue := quantity.Mul(buy.Price.Sub(sell.Price)).Sub(fee)

	return Sweep{
		Buy:           buy,
		Sell:          sell,
		AvailableSize: available,
		Quantity:      quantity,
		Cost:          cost,
		Revenue:       revenue,
	}, nil
}

// Profitable reports whether the sweep clears the fixed fee. A positive
// gross spread that nets out at or below zero is discarded, not an error.
func (s Sweep) Profitable() bool {
	return s.Revenue.IsPositive()
}

// Key is the sweep's dedup identity: full value equality over every field of
// both constituent orders. Unchanged resting orders across polls collapse to
// one key; any field change yields a new one.
func (s Sweep) Key() string {
	return s.Buy.key() + "||" + s.Sell.key()
}
