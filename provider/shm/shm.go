// Package shm is the in-process shared-memory backend. All callers in the
// process share one segment; it is allocated lazily by the first successful
// probe.
package shm

import (
	"context"
	"errors"
	"sync"
	"time"

	pr "github.com/unkn0wn-root/autocache/provider"
)

// Engine selects the library backing the segment.
type Engine string

const (
	EngineBigCache  Engine = "bigcache"
	EngineRistretto Engine = "ristretto"
	EngineFastcache Engine = "fastcache"
)

var ErrUnknownEngine = errors.New("shm: unknown engine")

type Config struct {
	Engine     Engine        // "" = bigcache
	MaxBytes   int           // segment size limit; 0 = 64MB
	Shards     int           // bigcache only; power of two, 0 = 256
	LifeWindow time.Duration // bigcache only; global entry lifetime, 0 = 10m
	Disabled   bool          // never available; for hosts where sharing is unwanted
}

// segment is the engine-specific store behind a Backend.
type segment interface {
	get(key string) ([]byte, bool, error)
	set(key string, value []byte, ttl time.Duration) (bool, error)
	del(key string) error
	segments() int
	close() error
}

type Backend struct {
	cfg Config

	mu  sync.Mutex
	seg segment
}

var _ pr.Provider = (*Backend)(nil)

func New(cfg Config) *Backend {
	if cfg.Engine == "" {
		cfg.Engine = EngineBigCache
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 64 << 20
	}
	if cfg.Shards <= 0 {
		cfg.Shards = 256
	}
	if cfg.LifeWindow <= 0 {
		cfg.LifeWindow = 10 * time.Minute
	}
	return &Backend{cfg: cfg}
}

// Available allocates the segment on first success and keeps it.
// A failed allocation leaves the backend untouched.
func (b *Backend) Available(_ context.Context) (ok bool) {
	if b.cfg.Disabled {
		return false
	}
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.seg != nil {
		return true
	}
	seg, err := open(b.cfg)
	if err != nil {
		return false
	}
	if seg.segments() <= 0 {
		_ = seg.close()
		return false
	}
	b.seg = seg
	return true
}

func (b *Backend) AutomaticCleanup() bool { return true }

func (b *Backend) Get(_ context.Context, key string) ([]byte, bool, error) {
	seg := b.current()
	if seg == nil {
		return nil, false, pr.ErrNotConnected
	}
	return seg.get(key)
}

func (b *Backend) Set(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	seg := b.current()
	if seg == nil {
		return false, pr.ErrNotConnected
	}
	return seg.set(key, value, ttl)
}

func (b *Backend) Del(_ context.Context, key string) error {
	seg := b.current()
	if seg == nil {
		return pr.ErrNotConnected
	}
	return seg.del(key)
}

// Close releases the segment. Not part of Provider; tests and short-lived
// tools use it to stop engine goroutines.
func (b *Backend) Close() error {
	b.mu.Lock()
	seg := b.seg
	b.seg = nil
	b.mu.Unlock()
	if seg == nil {
		return nil
	}
	return seg.close()
}

func (b *Backend) current() segment {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.seg
}

func open(cfg Config) (segment, error) {
	switch cfg.Engine {
	case EngineBigCache:
		return openBigCache(cfg)
	case EngineRistretto:
		return openRistretto(cfg)
	case EngineFastcache:
		return openFastcache(cfg), nil
	default:
		return nil, ErrUnknownEngine
	}
}
