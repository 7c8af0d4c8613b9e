// Package provider defines the raw storage primitive used by autocache.
//
// Implementations MUST be byte-for-byte transparent: Get must return exactly the
// bytes previously passed to Set for a key. If a store transforms values
// internally (e.g. compression), the transform MUST be fully reversed on Get.
//
// Every key written by autocache is prefixed with "<namespace>:". External code
// should not write under those prefixes; foreign values fail envelope validation
// and are deleted on read.
package provider

import (
	"context"
	"errors"
	"time"
)

// ErrNotConnected is returned by primitives called before a successful probe.
var ErrNotConnected = errors.New("provider: not connected")

// Provider is a minimal byte store with advisory TTLs and an availability probe.
// Must be safe for concurrent use.
type Provider interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// If an IO/remote error happens, return (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value. ttl is a hint; a store may apply its own expiry or none.
	// Returns ok=false when the store refused the write.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) (ok bool, err error)

	// Del removes a key. Deleting a missing key is not an error.
	Del(ctx context.Context, key string) error

	// Available probes the backend. It never panics and has no side effects on
	// failure. On success it may open and keep a connection for later calls.
	Available(ctx context.Context) bool

	// AutomaticCleanup reports whether the store expires entries on its own.
	AutomaticCleanup() bool
}
