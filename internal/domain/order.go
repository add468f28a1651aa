// Package domain contains the core model for the cleansweep bot: resting
// orders, per-token market snapshots, sweeps, and the ports implemented by
// the platform, cache, and store packages.
package domain

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// EtherAddress is the sentinel address EtherDelta uses for ether itself.
// Every order trades a token against ether, so exactly one of the order's
// counter-addresses must equal this sentinel.
var EtherAddress = common.Address{}

// OrderSide indicates whether a resting order buys or sells the token.
type OrderSide string

const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

// Order is a resting order on the EtherDelta book, normalized from the raw
// getMarket response. It is immutable once constructed; Side is derived from
// the counter-addresses, never stored upstream.
type Order struct {
	// Amount is the token quantity on offer.
	Amount decimal.Decimal
	// AmountBase is the ether quantity on the other side of the trade.
	AmountBase decimal.Decimal
	// Price is the ether price per token.
	Price decimal.Decimal
	// Updated is the last time the order changed upstream.
	Updated time.Time
	// TokenGet is the address the order's creator wants to receive.
	TokenGet common.Address
	// TokenGive is the address the order's creator is giving away.
	TokenGive common.Address

	Side OrderSide
}

// NewOrder builds an Order and derives its side. Exactly one of tokenGet and
// tokenGive must be the ether sentinel; anything else is a data-integrity
// failure on the upstream record.
func NewOrder(amount, amountBase, price decimal.Decimal, updated time.Time, tokenGet, tokenGive common.Address) (Order, error) {
	getIsEther := tokenGet == EtherAddress
	giveIsEther := tokenGive == EtherAddress
	if getIsEther == giveIsEther {
		return Order{}, fmt.Errorf("%w: order %s/%s has %d ether sides, want exactly 1",
			ErrDataIntegrity, tokenGet.Hex(), tokenGive.Hex(), boolCount(getIsEther, giveIsEther))
	}

	// A creator asking to receive ether is selling the token; one giving
	// ether away is buying it.
	side := OrderSideBuy
	if getIsEther {
		side = OrderSideSell
	}

	return Order{
		Amount:     amount,
		AmountBase: amountBase,
		Price:      price,
		Updated:    updated,
		TokenGet:   tokenGet,
		TokenGive:  tokenGive,
		Side:       side,
	}, nil
}

// Token returns the non-ether address of the order, i.e. the token being
// traded.
func (o Order) Token() common.Address {
	if o.TokenGet == EtherAddress {
		return o.TokenGive
	}
	return o.TokenGet
}

// key is the full value identity of the order, used for sweep dedup. Any
// field change upstream (a partial fill, a price amendment) produces a new
// key and therefore a fresh report.
func (o Order) key() string {
	return fmt.Sprintf("%s|%s|%s|%d|%s|%s",
		o.Amount.String(), o.AmountBase.String(), o.Price.String(),
		o.Updated.UnixNano(), o.TokenGet.Hex(), o.TokenGive.Hex())
}

func boolCount(bs ...bool) int {
	n := 0
	for _, b := range bs {
		if b {
			n++
		}
	}
	return n
}
