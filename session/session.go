// Package session keeps HTTP session payloads in the auto-detected cache.
//
// Sessions live under "session:<id>" in the registry namespace for 24 hours
// from their last write. They are read without the deployment version check
// so a rollout does not log everybody out.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/unkn0wn-root/autocache"
	"github.com/unkn0wn-root/autocache/codec"
)

const (
	Prefix = "session:"
	TTL    = 24 * time.Hour
)

var (
	// ErrCachingDisabled is returned by New when no cache backend is usable.
	ErrCachingDisabled = errors.New("session: caching disabled")
	ErrEmptySession    = errors.New("session: empty session data")
	ErrEmptyID         = errors.New("session: empty session id")
)

// Handler is the save handler contract a session manager drives.
type Handler interface {
	Open(savePath, name string) error
	Close() error
	Read(ctx context.Context, id string) ([]byte, error)
	Write(ctx context.Context, id string, data []byte) error
	Destroy(ctx context.Context, id string) error
	GC(ctx context.Context, maxLifetime time.Duration) (int, error)
}

type Store struct {
	data *autocache.Typed[[]byte]
	ttl  time.Duration
}

var _ Handler = (*Store)(nil)

type Option func(*Store)

// WithTTL overrides the 24h session lifetime.
func WithTTL(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.ttl = d
		}
	}
}

// New binds a Store to the registry's auto-detected backend.
func New(ctx context.Context, r *autocache.Registry, opts ...Option) (*Store, error) {
	c, err := r.Instance(ctx, autocache.Auto)
	if err != nil {
		return nil, err
	}
	if c.Backend() == autocache.None {
		return nil, ErrCachingDisabled
	}
	s := &Store{data: autocache.NewTyped[[]byte](c, codec.Bytes{}), ttl: TTL}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

func (s *Store) Open(string, string) error { return nil }
func (s *Store) Close() error              { return nil }

// Read returns the stored payload, or empty data when there is none.
func (s *Store) Read(ctx context.Context, id string) ([]byte, error) {
	if id == "" {
		return nil, ErrEmptyID
	}
	b, ok := s.data.Get(ctx, Prefix+id, autocache.WithoutVersionCheck())
	if !ok {
		return []byte{}, nil
	}
	return b, nil
}

func (s *Store) Write(ctx context.Context, id string, data []byte) error {
	if id == "" {
		return ErrEmptyID
	}
	if len(data) == 0 {
		return ErrEmptySession
	}
	return s.data.Put(ctx, Prefix+id, data, s.ttl)
}

func (s *Store) Destroy(ctx context.Context, id string) error {
	if id == "" {
		return ErrEmptyID
	}
	s.data.Remove(ctx, Prefix+id)
	return nil
}

// GC is a no-op: every backend expires entries on its own.
func (s *Store) GC(context.Context, time.Duration) (int, error) { return 0, nil }
