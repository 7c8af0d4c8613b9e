package autocache

import (
	"context"
	"time"

	pr "github.com/unkn0wn-root/autocache/provider"
	"github.com/unkn0wn-root/autocache/version"
)

// Cache is the handle returned by Registry.Instance. One Cache exists per
// backend per Registry; it is safe for concurrent use and never closed.
type Cache interface {
	Backend() BackendName

	// Version is the deployment version stamped on every entry this handle
	// writes and required of every entry it reads with the version check on.
	Version() string

	// Get returns (value, true) for a live entry. Misses, expired or corrupt
	// entries, entries from another deployment version and backend errors all
	// return (nil, false). A stored empty value is a hit.
	//
	// Expired and corrupt entries are deleted on the way out. The delete is
	// not atomic with the read, so a Put racing it under the same key can be
	// lost; the next Get then misses.
	Get(ctx context.Context, key string, opts ...GetOption) ([]byte, bool)

	// Put stores value for ttl (<= 0 => DefaultTTL). Failures are dropped.
	Put(ctx context.Context, key string, value []byte, ttl time.Duration)

	// Remove deletes key. Removing a missing key is fine; failures are dropped.
	Remove(ctx context.Context, key string)
}

type getOptions struct {
	versionCheck bool
}

type GetOption func(*getOptions)

// WithoutVersionCheck accepts entries written under any deployment version.
// Expiry is still enforced.
func WithoutVersionCheck() GetOption {
	return func(o *getOptions) { o.versionCheck = false }
}

// Options configure a Registry. The zero value is usable: auto-detection over
// the default providers, namespace "default", version from build info.
type Options struct {
	Disabled  bool           // caching disabled: detection always yields None
	Namespace string         // key prefix is Namespace + ":"; "" => "default"
	Version   version.Source // nil => version.Build()

	// Providers overrides the provider per backend. Missing entries get the
	// defaults: shm, memcached, memcache and none with their zero configs.
	Providers map[BackendName]pr.Provider

	Logger     Logger           // nil => NopLogger
	Hooks      Hooks            // nil => NopHooks
	DefaultTTL time.Duration    // 0 => DefaultTTL
	Now        func() time.Time // nil => time.Now
}
