package etherdelta

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/mshenfield/cleansweep/internal/domain"
)

// marketPayload is the body of a "market" event. The upstream reuses the
// event for both shapes: the coarse all-tickers snapshot (ReturnTicker set)
// and the detailed per-token book (Orders set). All numerics decode through
// decimal so values survive the trip exactly.
type marketPayload struct {
	ReturnTicker map[string]rawTicker `json:"returnTicker"`
	Orders       *rawOrders           `json:"orders"`
}

func (m marketPayload) empty() bool {
	return len(m.ReturnTicker) == 0 && m.Orders == nil
}

// rawTicker is one returnTicker entry. Pointer fields are null upstream when
// the book side or statistic does not exist.
type rawTicker struct {
	TokenAddr     string           `json:"tokenAddr"`
	QuoteVolume   *decimal.Decimal `json:"quoteVolume"`
	BaseVolume    *decimal.Decimal `json:"baseVolume"`
	Last          *decimal.Decimal `json:"last"`
	PercentChange *decimal.Decimal `json:"percentChange"`
	Bid           *decimal.Decimal `json:"bid"`
	Ask           *decimal.Decimal `json:"ask"`
}

// rawOrders carries the two book sides: buys descending, sells ascending by
// price.
type rawOrders struct {
	Buys  []rawOrder `json:"buys"`
	Sells []rawOrder `json:"sells"`
}

// rawOrder is one resting order record.
type rawOrder struct {
	Amount     decimal.Decimal `json:"ethAvailableVolume"`
	AmountBase decimal.Decimal `json:"ethAvailableVolumeBase"`
	Price      decimal.Decimal `json:"price"`
	TokenGet   string          `json:"tokenGet"`
	TokenGive  string          `json:"tokenGive"`
	Updated    string          `json:"updated"`
}

func (t rawTicker) toSnapshot(ticker string) (domain.TokenSnapshot, error) {
	if !common.IsHexAddress(t.TokenAddr) {
		return domain.TokenSnapshot{}, fmt.Errorf("%w: ticker %s has bad address %q",
			domain.ErrDataIntegrity, ticker, t.TokenAddr)
	}
	return domain.TokenSnapshot{
		Ticker:        ticker,
		Address:       common.HexToAddress(t.TokenAddr),
		Bid:           t.Bid,
		Ask:           t.Ask,
		LastTrade:     t.Last,
		PercentChange: t.PercentChange,
		BaseVolume:    t.BaseVolume,
		QuoteVolume:   t.QuoteVolume,
	}, nil
}

func (o rawOrder) toOrder() (domain.Order, error) {
	if !common.IsHexAddress(o.TokenGet) || !common.IsHexAddress(o.TokenGive) {
		return domain.Order{}, fmt.Errorf("%w: order has bad addresses get=%q give=%q",
			domain.ErrDataIntegrity, o.TokenGet, o.TokenGive)
	}

	var updated time.Time
	if o.Updated != "" {
		t, err := time.Parse(time.RFC3339, o.Updated)
		if err != nil {
			return domain.Order{}, fmt.Errorf("%w: order updated time %q: %v",
				domain.ErrDataIntegrity, o.Updated, err)
		}
		updated = t
	}

	return domain.NewOrder(
		o.Amount, o.AmountBase, o.Price, updated,
		common.HexToAddress(o.TokenGet), common.HexToAddress(o.TokenGive),
	)
}
