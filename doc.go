// Package autocache gives application code one cache contract regardless of
// which caching backend the host provides.
//
// Components:
//   - Provider: raw byte store with an availability probe (shared memory,
//     memcached, legacy memcache or none).
//   - Registry: resolves a BackendName ("auto" probes APCu, then Memcached,
//     then Memcache) to one Cache per backend.
//   - Cache: wraps a Provider with envelopes carrying expiry and the
//     deployment version, and prefixes every key with the namespace.
//
// Keys:
//
//	<namespace>:<key>
//
// Usage:
//
//	reg := autocache.New(autocache.Options{Namespace: "shop", Version: version.Build()})
//	c, err := reg.Instance(ctx, autocache.Auto)
//	c.Put(ctx, "user:1", b, time.Minute)
//	b, ok := c.Get(ctx, "user:1")
//
// Backend failures never reach the caller: reads miss, writes are dropped, and
// both are reported through Logger and Hooks. Only an unknown backend name and
// a backend that is unavailable at construction are errors.
package autocache
