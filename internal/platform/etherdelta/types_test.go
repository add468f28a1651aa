package etherdelta

import (
	"encoding/json"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mshenfield/cleansweep/internal/domain"
)

const tokenHex = "0xd8912c10681d8b21fd3742244f44658dba12264e"

func testTokenAddr() common.Address {
	return common.HexToAddress(tokenHex)
}

func TestMarketPayloadTickerDecoding(t *testing.T) {
	// Shape of a real returnTicker entry; bid present, ask null.
	raw := `{
		"returnTicker": {
			"ETH_GNT": {
				"tokenAddr": "` + tokenHex + `",
				"quoteVolume": "1234.5",
				"baseVolume": 42.125,
				"last": "0.00063",
				"percentChange": null,
				"bid": "0.000630000000000001",
				"ask": null
			}
		}
	}`

	var payload marketPayload
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))
	require.False(t, payload.empty())

	snap, err := payload.ReturnTicker["ETH_GNT"].toSnapshot("ETH_GNT")
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(tokenHex), snap.Address)
	require.NotNil(t, snap.Bid)
	// The long fraction must survive exactly; float64 would round it.
	assert.Equal(t, "0.000630000000000001", snap.Bid.String())
	assert.Nil(t, snap.Ask)
	assert.Nil(t, snap.PercentChange)
	assert.False(t, snap.SweepPossible())
}

func TestMarketPayloadOrderDecoding(t *testing.T) {
	raw := `{
		"orders": {
			"buys": [{
				"ethAvailableVolume": "5",
				"ethAvailableVolumeBase": "50",
				"price": "10",
				"tokenGet": "` + tokenHex + `",
				"tokenGive": "0x0000000000000000000000000000000000000000",
				"updated": "2018-02-10T12:00:00Z"
			}],
			"sells": [{
				"ethAvailableVolume": "5",
				"ethAvailableVolumeBase": "40",
				"price": "8",
				"tokenGet": "0x0000000000000000000000000000000000000000",
				"tokenGive": "` + tokenHex + `",
				"updated": "2018-02-10T11:58:30Z"
			}]
		}
	}`

	var payload marketPayload
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))
	require.NotNil(t, payload.Orders)

	buy, err := payload.Orders.Buys[0].toOrder()
	require.NoError(t, err)
	assert.Equal(t, domain.OrderSideBuy, buy.Side)
	assert.True(t, buy.Price.Equal(decimal.NewFromInt(10)))

	sell, err := payload.Orders.Sells[0].toOrder()
	require.NoError(t, err)
	assert.Equal(t, domain.OrderSideSell, sell.Side)
	assert.Equal(t, common.HexToAddress(tokenHex), sell.Token())
}

func TestRawOrderRejectsBadRecords(t *testing.T) {
	_, err := rawOrder{
		TokenGet: "not-an-address", TokenGive: tokenHex,
	}.toOrder()
	assert.ErrorIs(t, err, domain.ErrDataIntegrity)

	_, err = rawOrder{
		TokenGet: tokenHex, TokenGive: "0x0000000000000000000000000000000000000000",
		Updated: "yesterday",
	}.toOrder()
	assert.ErrorIs(t, err, domain.ErrDataIntegrity)
}

func TestDecodeEvent(t *testing.T) {
	event, body, ok := decodeEvent(`42["market",{"returnTicker":{}}]`)
	require.True(t, ok)
	assert.Equal(t, "market", event)
	assert.JSONEq(t, `{"returnTicker":{}}`, string(body))

	// engine.io handshake and ack packets are not events.
	for _, frame := range []string{"0{\"sid\":\"x\"}", "40", "3", ""} {
		_, _, ok := decodeEvent(frame)
		assert.False(t, ok, "frame %q", frame)
	}
}

func TestEncodeEvent(t *testing.T) {
	frame, err := encodeEvent("getMarket", map[string]string{"token": tokenHex})
	require.NoError(t, err)
	assert.Equal(t, `42["getMarket",{"token":"`+tokenHex+`"}]`, string(frame))
}
