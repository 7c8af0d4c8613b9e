package autocache

import (
	"bytes"
	"context"
	"time"

	"github.com/unkn0wn-root/autocache/internal/wire"
	pr "github.com/unkn0wn-root/autocache/provider"
)

const (
	reasonCorrupt         = "corrupt"
	reasonExpired         = "expired"
	reasonVersionMismatch = "version_mismatch"
	reasonValueDecode     = "value_decode"
)

type adapter struct {
	name     BackendName
	provider pr.Provider
	prefix   string
	version  string

	defaultTTL time.Duration
	now        func() time.Time
	log        Logger
	hooks      Hooks
}

var _ Cache = (*adapter)(nil)

func (a *adapter) Backend() BackendName { return a.name }

func (a *adapter) Version() string { return a.version }

func (a *adapter) Get(ctx context.Context, key string, opts ...GetOption) ([]byte, bool) {
	o := getOptions{versionCheck: true}
	for _, opt := range opts {
		opt(&o)
	}

	k := a.storageKey(key)
	raw, ok, err := a.provider.Get(ctx, k)
	if err != nil {
		a.backendError("get", k, err)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	env, err := wire.Decode(raw)
	if err != nil {
		a.reject(k, reasonCorrupt)
		a.heal(ctx, k)
		return nil, false
	}
	if env.ExpiresAt < a.now().UnixMilli() {
		a.reject(k, reasonExpired)
		a.heal(ctx, k)
		return nil, false
	}
	// a mismatched entry stays: readers without version checks may still use it
	if o.versionCheck && env.Version != a.version {
		a.reject(k, reasonVersionMismatch)
		return nil, false
	}
	return bytes.Clone(env.Payload), true
}

func (a *adapter) Put(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = a.defaultTTL
	}
	k := a.storageKey(key)
	b, err := wire.Encode(wire.Envelope{
		ExpiresAt: a.now().Add(ttl).UnixMilli(),
		Version:   a.version,
		Payload:   value,
	})
	if err != nil {
		a.backendError("encode", k, err)
		return
	}
	ok, err := a.provider.Set(ctx, k, b, ttl)
	if err != nil {
		a.backendError("put", k, err)
		return
	}
	if !ok {
		a.hooks.WriteRejected(a.name, k)
		a.log.Debug("cache write not stored", Fields{"backend": a.name.String(), "key": k})
	}
}

func (a *adapter) Remove(ctx context.Context, key string) {
	k := a.storageKey(key)
	if err := a.provider.Del(ctx, k); err != nil {
		a.backendError("remove", k, err)
	}
}

// decodeFailed is called by Typed when a stored value does not decode.
func (a *adapter) decodeFailed(ctx context.Context, key string) {
	k := a.storageKey(key)
	a.reject(k, reasonValueDecode)
	a.heal(ctx, k)
}

func (a *adapter) storageKey(key string) string {
	return a.prefix + key
}

// heal deletes a stale entry. A concurrent Put of the same key between the
// read and this delete is lost.
func (a *adapter) heal(ctx context.Context, storageKey string) {
	if err := a.provider.Del(ctx, storageKey); err != nil {
		a.backendError("remove", storageKey, err)
	}
}

func (a *adapter) reject(storageKey, reason string) {
	a.hooks.EntryRejected(a.name, storageKey, reason)
	a.log.Debug("cache entry rejected", Fields{"backend": a.name.String(), "key": storageKey, "reason": reason})
}

func (a *adapter) backendError(op, storageKey string, err error) {
	a.hooks.BackendError(a.name, op, storageKey, err)
	a.log.Warn("cache backend error", Fields{"backend": a.name.String(), "op": op, "key": storageKey, "err": err})
}
