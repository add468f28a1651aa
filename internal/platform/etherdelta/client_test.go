package etherdelta

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mshenfield/cleansweep/internal/domain"
)

type nopLimiter struct{}

func (nopLimiter) Wait(ctx context.Context) error { return ctx.Err() }

const tickerFrame = `42["market",{"returnTicker":{"ETH_TST":{` +
	`"tokenAddr":"` + tokenHex + `","bid":"1.2","ask":"1"}}}]`

// newFakeFeed starts a websocket server running script against each
// connection and returns a connected Client.
func newFakeFeed(t *testing.T, maxRetries int, script func(*websocket.Conn)) *Client {
	t.Helper()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()
		script(conn)
	}))
	t.Cleanup(srv.Close)

	client := NewClient(ClientConfig{
		URI:        "ws" + strings.TrimPrefix(srv.URL, "http"),
		MaxRetries: maxRetries,
		Limiter:    nopLimiter{},
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, client.Connect(context.Background()))
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func readEvent(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	event, _, ok := decodeEvent(string(data))
	require.True(t, ok, "expected an event frame, got %q", data)
	return event
}

func write(t *testing.T, conn *websocket.Conn, frame string) {
	t.Helper()
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(frame)))
}

func TestSnapshotSkipsUnrelatedEvents(t *testing.T) {
	client := newFakeFeed(t, 5, func(conn *websocket.Conn) {
		assert.Equal(t, "getMarket", readEvent(t, conn))
		// Interleaved noise before the real payload.
		write(t, conn, `42["orders",{}]`)
		write(t, conn, `42["trades",[]]`)
		write(t, conn, tickerFrame)
	})

	snapshots, err := client.Snapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, snapshots, 1)
	assert.Equal(t, "ETH_TST", snapshots[0].Ticker)
	assert.True(t, snapshots[0].SweepPossible())
}

func TestSnapshotRetriesEmptyPayload(t *testing.T) {
	client := newFakeFeed(t, 5, func(conn *websocket.Conn) {
		assert.Equal(t, "getMarket", readEvent(t, conn))
		write(t, conn, `42["market",{}]`)
		// The empty payload makes the client ask again.
		assert.Equal(t, "getMarket", readEvent(t, conn))
		write(t, conn, tickerFrame)
	})

	snapshots, err := client.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Len(t, snapshots, 1)
}

func TestSnapshotRetryBudgetExhausted(t *testing.T) {
	client := newFakeFeed(t, 2, func(conn *websocket.Conn) {
		readEvent(t, conn)
		for range 5 {
			write(t, conn, `42["funds",{}]`)
		}
	})

	_, err := client.Snapshot(context.Background())
	assert.ErrorIs(t, err, domain.ErrEmptyResponse)
}

func TestSnapshotAnswersEnginePing(t *testing.T) {
	client := newFakeFeed(t, 5, func(conn *websocket.Conn) {
		readEvent(t, conn)
		write(t, conn, enginePing)
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.Equal(t, enginePong, string(data))
		write(t, conn, tickerFrame)
	})

	_, err := client.Snapshot(context.Background())
	require.NoError(t, err)
}

func TestBookWaitsForOrdersShape(t *testing.T) {
	client := newFakeFeed(t, 5, func(conn *websocket.Conn) {
		assert.Equal(t, "getMarket", readEvent(t, conn))
		// A coarse snapshot is the wrong shape for a book request.
		write(t, conn, tickerFrame)
		assert.Equal(t, "getMarket", readEvent(t, conn))
		write(t, conn, `42["market",{"orders":{"buys":[{`+
			`"ethAvailableVolume":"5","ethAvailableVolumeBase":"50","price":"10",`+
			`"tokenGet":"`+tokenHex+`","tokenGive":"0x0000000000000000000000000000000000000000",`+
			`"updated":"2018-02-10T12:00:00Z"}],"sells":[]}}]`)
	})

	book, err := client.Book(context.Background(), testTokenAddr())
	require.NoError(t, err)
	require.Len(t, book.Buys, 1)
	assert.Equal(t, domain.OrderSideBuy, book.Buys[0].Side)
	assert.Empty(t, book.Sells)
}

func TestGetMarketCancellation(t *testing.T) {
	release := make(chan struct{})
	client := newFakeFeed(t, 5, func(conn *websocket.Conn) {
		readEvent(t, conn)
		<-release // never answer while the client waits
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Snapshot(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRequestsRequireConnect(t *testing.T) {
	client := NewClient(ClientConfig{Limiter: nopLimiter{}},
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	_, err := client.Snapshot(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotConnected)
}
