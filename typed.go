package autocache

import (
	"context"
	"time"

	c "github.com/unkn0wn-root/autocache/codec"
)

// Typed stores values of type V in a Cache through a codec.
type Typed[V any] struct {
	cache Cache
	codec c.Codec[V]
}

func NewTyped[V any](cache Cache, codec c.Codec[V]) *Typed[V] {
	return &Typed[V]{cache: cache, codec: codec}
}

// Get returns the decoded value. A value that fails to decode is removed and
// reported as a miss.
func (t *Typed[V]) Get(ctx context.Context, key string, opts ...GetOption) (V, bool) {
	var zero V
	raw, ok := t.cache.Get(ctx, key, opts...)
	if !ok {
		return zero, false
	}
	v, err := t.codec.Decode(raw)
	if err != nil {
		if a, ok := t.cache.(*adapter); ok {
			a.decodeFailed(ctx, key)
		} else {
			t.cache.Remove(ctx, key)
		}
		return zero, false
	}
	return v, true
}

// Put encodes and stores v. Only encoding errors are returned.
func (t *Typed[V]) Put(ctx context.Context, key string, v V, ttl time.Duration) error {
	b, err := t.codec.Encode(v)
	if err != nil {
		return err
	}
	t.cache.Put(ctx, key, b, ttl)
	return nil
}

func (t *Typed[V]) Remove(ctx context.Context, key string) {
	t.cache.Remove(ctx, key)
}
