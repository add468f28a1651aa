package domain

import "errors"

var (
	// ErrDataIntegrity marks an upstream record that violates a model
	// invariant. Scoped to the record or cycle, never fatal.
	ErrDataIntegrity = errors.New("data integrity violation")
	// ErrEmptyResponse is returned when the upstream keeps sending empty or
	// mistyped payloads past the retry budget.
	ErrEmptyResponse = errors.New("empty upstream response")
	// ErrUnknownTicker is returned when an order book references an address
	// that has not been mapped to a ticker yet.
	ErrUnknownTicker = errors.New("no ticker for address")
	// ErrNotConnected is returned by client calls before Connect.
	ErrNotConnected = errors.New("not connected")
	// ErrClosed is returned after the client has been shut down.
	ErrClosed = errors.New("client closed")
	// ErrNotFound is returned by stores when a record does not exist.
	ErrNotFound = errors.New("not found")
)
