// Package memcache is the legacy memcached backend: it walks a server list
// (unix socket first, then TCP) and keeps the first server that answers, and
// stores values zlib-compressed behind a flag bit.
package memcache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	gomc "github.com/bradfitz/gomemcache/memcache"
	"github.com/klauspost/compress/zlib"

	"github.com/unkn0wn-root/autocache/internal/mc"
	pr "github.com/unkn0wn-root/autocache/provider"
)

// FlagCompressed marks a zlib-compressed item, same bit as the PHP
// memcache extension's MEMCACHE_COMPRESSED.
const FlagCompressed uint32 = 1 << 1

// DefaultServers is the probe order used when Config.Servers is empty.
var DefaultServers = []string{"unix:///tmp/memcache", "127.0.0.1:11211"}

var ErrCorruptItem = errors.New("memcache: corrupt compressed item")

type Config struct {
	Servers []string      // tried in order; default DefaultServers
	Timeout time.Duration // 0 = 100ms
	// CompressThreshold is the smallest value compressed; 0 compresses all,
	// a negative value disables compression.
	CompressThreshold int
	Dial              mc.Dialer // nil = gomemcache
	Now               func() time.Time
}

type Memcache struct {
	cfg Config

	mu     sync.Mutex
	client mc.Client
	server string
}

var _ pr.Provider = (*Memcache)(nil)

func New(cfg Config) *Memcache {
	if len(cfg.Servers) == 0 {
		cfg.Servers = DefaultServers
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
	return &Memcache{cfg: cfg}
}

// Available connects to the first server in the list that answers a ping.
func (p *Memcache) Available(_ context.Context) (ok bool) {
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
	for _, s := range p.cfg.Servers {
		c, err := p.cfg.Dial(p.cfg.Timeout, mc.Server(s))
		if err != nil {
			continue
		}
		if err := c.Ping(); err != nil {
			continue
		}
		p.client, p.server = c, s
		return true
	}
	return false
}

// Server returns the address picked by the probe, or "".
func (p *Memcache) Server() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.server
}

func (p *Memcache) AutomaticCleanup() bool { return true }

func (p *Memcache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c := p.conn()
	if c == nil {
		return nil, false, pr.ErrNotConnected
	}
	it, err := c.Get(mc.Key(key))
	if errors.Is(err, gomc.ErrCacheMiss) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if it.Flags&FlagCompressed == 0 {
		return it.Value, true, nil
	}
	b, err := inflate(it.Value)
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (p *Memcache) Set(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	c := p.conn()
	if c == nil {
		return false, pr.ErrNotConnected
	}
	it := &gomc.Item{
		Key:        mc.Key(key),
		Value:      value,
		Expiration: mc.Expiration(ttl, p.cfg.Now()),
	}
	if t := p.cfg.CompressThreshold; t >= 0 && len(value) >= t {
		z, err := deflate(value)
		if err != nil {
			return false, err
		}
		it.Value, it.Flags = z, FlagCompressed
	}
	err := c.Set(it)
	if errors.Is(err, gomc.ErrNotStored) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (p *Memcache) Del(_ context.Context, key string) error {
	c := p.conn()
	if c == nil {
		return pr.ErrNotConnected
	}
	err := c.Delete(mc.Key(key))
	if errors.Is(err, gomc.ErrCacheMiss) {
		return nil
	}
	return err
}

func (p *Memcache) conn() mc.Client {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.client
}

func deflate(b []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(b); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func inflate(b []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptItem, err)
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptItem, err)
	}
	return out, nil
}
