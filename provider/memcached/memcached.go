// Package memcached talks to a local memcached daemon through a pooled client.
// The client is created by the first successful probe and shared by every
// caller of the same Provider.
package memcached

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bradfitz/gomemcache/memcache"

	"github.com/unkn0wn-root/autocache/internal/mc"
	pr "github.com/unkn0wn-root/autocache/provider"
)

const DefaultServer = "127.0.0.1:11211"

type Config struct {
	Servers []string      // default: 127.0.0.1:11211
	Timeout time.Duration // per-call socket timeout; 0 = 100ms
	Dial    mc.Dialer     // nil = gomemcache
	Now     func() time.Time
}

type Memcached struct {
	cfg Config

	mu     sync.Mutex
	client mc.Client
}

var _ pr.Provider = (*Memcached)(nil)

func New(cfg Config) *Memcached {
	if len(cfg.Servers) == 0 {
		cfg.Servers = []string{DefaultServer}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 100 * time.Millisecond
	}
	if cfg.Dial == nil {
		cfg.Dial = mc.Dial
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Memcached{cfg: cfg}
}

// Available dials and pings the configured servers once; a working client
// is kept for the rest of the process.
func (p *Memcached) Available(_ context.Context) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client != nil {
		return true
	}
	servers := make([]string, len(p.cfg.Servers))
	for i, s := range p.cfg.Servers {
		servers[i] = mc.Server(s)
	}
	c, err := p.cfg.Dial(p.cfg.Timeout, servers...)
	if err != nil {
		return false
	}
	if err := c.Ping(); err != nil {
		return false
	}
	p.client = c
	return true
}

func (p *Memcached) AutomaticCleanup() bool { return true }

func (p *Memcached) Get(_ context.Context, key string) ([]byte, bool, error) {
	c := p.conn()
	if c == nil {
		return nil, false, pr.ErrNotConnected
	}
	it, err := c.Get(mc.Key(key))
	if errors.Is(err, memcache.ErrCacheMiss) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return it.Value, true, nil
}

func (p *Memcached) Set(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	c := p.conn()
	if c == nil {
		return false, pr.ErrNotConnected
	}
	err := c.Set(&memcache.Item{
		Key:        mc.Key(key),
		Value:      value,
		Expiration: mc.Expiration(ttl, p.cfg.Now()),
	})
	if errors.Is(err, memcache.ErrNotStored) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (p *Memcached) Del(_ context.Context, key string) error {
	c := p.conn()
	if c == nil {
		return pr.ErrNotConnected
	}
	err := c.Delete(mc.Key(key))
	if errors.Is(err, memcache.ErrCacheMiss) {
		return nil
	}
	return err
}

func (p *Memcached) conn() mc.Client {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.client
}
