// Package etherdelta implements domain.MarketSource against the EtherDelta
// socket.io feed. The transport is plain websocket frames carrying the
// socket.io text protocol: events are JSON arrays prefixed with "42", and
// the server's engine.io "2" pings expect a "3" pong back.
package etherdelta

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/websocket"

	"github.com/mshenfield/cleansweep/internal/domain"
)

const (
	// DefaultURI is the public EtherDelta socket endpoint.
	DefaultURI = "wss://socket.etherdelta.com/socket.io/?transport=websocket"

	getMarketEvent = "getMarket"
	marketEvent    = "market"

	// socket.io event frames are prefixed with "42"; engine.io ping/pong
	// are the bare packets "2" and "3".
	eventPrefix = "42"
	enginePing  = "2"
	enginePong  = "3"

	handshakeTimeout = 15 * time.Second
	writeWait        = 10 * time.Second
	// readWait bounds a single wait for the next frame. The server pings
	// roughly every 25s, so a healthy connection never goes this quiet.
	readWait = 60 * time.Second
)

// ClientConfig configures the EtherDelta client.
type ClientConfig struct {
	// URI of the socket endpoint; DefaultURI when empty.
	URI string
	// MaxRetries bounds how many empty or mistyped payloads one request
	// tolerates before giving up with domain.ErrEmptyResponse.
	MaxRetries int
	// Limiter gates every outbound emit. Required: the upstream penalizes
	// callers over its per-minute quota.
	Limiter domain.RateLimiter
}

// Client talks to the EtherDelta feed. Requests are serialized: the upstream
// interleaves unrelated events on one socket and does not correlate
// responses positionally, so each request holds the connection until a
// payload of the expected shape arrives.
type Client struct {
	cfg    ClientConfig
	logger *slog.Logger

	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool
}

// NewClient creates a Client. Call Connect before issuing requests.
func NewClient(cfg ClientConfig, logger *slog.Logger) *Client {
	if cfg.URI == "" {
		cfg.URI = DefaultURI
	}
	return &Client{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "etherdelta")),
	}
}

// Connect dials the socket endpoint. Reconnecting after an error is the
// caller's job; Connect may be called again after a failed request.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return fmt.Errorf("etherdelta: connect: %w", domain.ErrClosed)
	}
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}

	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, c.cfg.URI, nil)
	if err != nil {
		return fmt.Errorf("etherdelta: connect %s: %w", c.cfg.URI, err)
	}
	c.conn = conn
	c.logger.InfoContext(ctx, "connected", slog.String("uri", c.cfg.URI))
	return nil
}

// Close shuts the connection down. The client cannot be reused afterwards.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}

// Snapshot requests the coarse all-tickers view. Ticker entries that fail
// validation are logged and dropped; the rest of the snapshot survives.
func (c *Client) Snapshot(ctx context.Context) ([]domain.TokenSnapshot, error) {
	payload, err := c.getMarket(ctx, nil, func(p marketPayload) bool {
		return len(p.ReturnTicker) > 0
	})
	if err != nil {
		return nil, err
	}

	snapshots := make([]domain.TokenSnapshot, 0, len(payload.ReturnTicker))
	for ticker, raw := range payload.ReturnTicker {
		snap, err := raw.toSnapshot(ticker)
		if err != nil {
			c.logger.WarnContext(ctx, "dropping ticker entry",
				slog.String("ticker", ticker),
				slog.String("error", err.Error()),
			)
			continue
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots, nil
}

// Book requests the detailed order book for one token. Invalid order records
// are logged and dropped.
func (c *Client) Book(ctx context.Context, token common.Address) (domain.OrderBook, error) {
	payload, err := c.getMarket(ctx, &token, func(p marketPayload) bool {
		return p.Orders != nil
	})
	if err != nil {
		return domain.OrderBook{}, err
	}

	book := domain.OrderBook{Token: token}
	for _, raw := range payload.Orders.Buys {
		order, err := raw.toOrder()
		if err != nil {
			c.logger.WarnContext(ctx, "dropping buy order", slog.String("error", err.Error()))
			continue
		}
		book.Buys = append(book.Buys, order)
	}
	for _, raw := range payload.Orders.Sells {
		order, err := raw.toOrder()
		if err != nil {
			c.logger.WarnContext(ctx, "dropping sell order", slog.String("error", err.Error()))
			continue
		}
		book.Sells = append(book.Sells, order)
	}
	return book, nil
}

// getMarket emits a getMarket request and waits for a market payload
// matching want. Empty payloads re-issue the request; events of other kinds
// are skipped. Both count against the retry budget so a misbehaving
// upstream cannot livelock a cycle.
func (c *Client) getMarket(ctx context.Context, token *common.Address, want func(marketPayload) bool) (marketPayload, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return marketPayload{}, fmt.Errorf("etherdelta: getMarket: %w", domain.ErrClosed)
	}
	conn := c.conn
	if conn == nil {
		return marketPayload{}, fmt.Errorf("etherdelta: getMarket: %w", domain.ErrNotConnected)
	}

	// Interrupt a blocked read when the caller goes away. The expired
	// deadline surfaces as a read error below, where ctx.Err takes
	// precedence, so cancellation always releases the connection cleanly.
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetReadDeadline(time.Now())
	})
	defer stop()

	if err := c.emitGetMarket(ctx, conn, token); err != nil {
		return marketPayload{}, err
	}

	retries := 0
	for {
		_ = conn.SetReadDeadline(time.Now().Add(readWait))
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return marketPayload{}, fmt.Errorf("etherdelta: getMarket: %w", ctx.Err())
			}
			return marketPayload{}, fmt.Errorf("etherdelta: read: %w", err)
		}

		frame := string(data)
		if frame == enginePing {
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, []byte(enginePong)); err != nil {
				return marketPayload{}, fmt.Errorf("etherdelta: pong: %w", err)
			}
			continue
		}

		event, body, ok := decodeEvent(frame)
		if !ok {
			// Handshake and ack packets; not a miss.
			continue
		}

		if event != marketEvent {
			c.logger.DebugContext(ctx, "skipping event",
				slog.String("event", event),
				slog.Int("retries", retries),
			)
			if retries++; retries > c.cfg.MaxRetries {
				return marketPayload{}, fmt.Errorf("etherdelta: getMarket after %d retries: %w",
					retries, domain.ErrEmptyResponse)
			}
			continue
		}

		var payload marketPayload
		if err := json.Unmarshal(body, &payload); err != nil || payload.empty() || !want(payload) {
			if retries++; retries > c.cfg.MaxRetries {
				return marketPayload{}, fmt.Errorf("etherdelta: getMarket after %d retries: %w",
					retries, domain.ErrEmptyResponse)
			}
			// A stale or empty market payload belongs to no request of
			// ours; ask again.
			if err := c.emitGetMarket(ctx, conn, token); err != nil {
				return marketPayload{}, err
			}
			continue
		}

		return payload, nil
	}
}

// emitGetMarket writes the request frame, blocking on the rate limiter
// first.
func (c *Client) emitGetMarket(ctx context.Context, conn *websocket.Conn, token *common.Address) error {
	if err := c.cfg.Limiter.Wait(ctx); err != nil {
		return fmt.Errorf("etherdelta: rate limit: %w", err)
	}

	params := map[string]string{}
	if token != nil {
		params["token"] = token.Hex()
	}
	frame, err := encodeEvent(getMarketEvent, params)
	if err != nil {
		return fmt.Errorf("etherdelta: encode getMarket: %w", err)
	}

	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		return fmt.Errorf("etherdelta: emit getMarket: %w", err)
	}
	return nil
}

// decodeEvent splits a "42"-prefixed frame into its event name and body.
// Returns ok=false for any other packet kind.
func decodeEvent(frame string) (event string, body json.RawMessage, ok bool) {
	if len(frame) < len(eventPrefix) || frame[:len(eventPrefix)] != eventPrefix {
		return "", nil, false
	}
	var parts []json.RawMessage
	if err := json.Unmarshal([]byte(frame[len(eventPrefix):]), &parts); err != nil || len(parts) == 0 {
		return "", nil, false
	}
	if err := json.Unmarshal(parts[0], &event); err != nil {
		return "", nil, false
	}
	if len(parts) > 1 {
		body = parts[1]
	}
	return event, body, true
}

// encodeEvent builds a "42"-prefixed frame from an event name and params.
func encodeEvent(event string, params any) ([]byte, error) {
	payload, err := json.Marshal([]any{event, params})
	if err != nil {
		return nil, err
	}
	return append([]byte(eventPrefix), payload...), nil
}

// Compile-time interface check.
var _ domain.MarketSource = (*Client)(nil)
