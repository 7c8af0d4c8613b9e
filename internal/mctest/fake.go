// Package mctest provides an in-memory memcached client for provider tests.
package mctest

import (
	"errors"
	"sync"
	"time"

	"github.com/bradfitz/gomemcache/memcache"

	"github.com/unkn0wn-root/autocache/internal/mc"
)

var ErrDown = errors.New("mctest: server down")

// Fake behaves like one memcached server. Set Down to simulate an outage.
type Fake struct {
	mu    sync.Mutex
	items map[string]memcache.Item
	Down  bool
	Pings int
}

var _ mc.Client = (*Fake)(nil)

func New() *Fake { return &Fake{items: make(map[string]memcache.Item)} }

func (f *Fake) Get(key string) (*memcache.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Down {
		return nil, ErrDown
	}
	it, ok := f.items[key]
	if !ok {
		return nil, memcache.ErrCacheMiss
	}
	return &it, nil
}

func (f *Fake) Set(item *memcache.Item) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Down {
		return ErrDown
	}
	f.items[item.Key] = *item
	return nil
}

func (f *Fake) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Down {
		return ErrDown
	}
	if _, ok := f.items[key]; !ok {
		return memcache.ErrCacheMiss
	}
	delete(f.items, key)
	return nil
}

func (f *Fake) Ping() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Pings++
	if f.Down {
		return ErrDown
	}
	return nil
}

// Item returns the raw stored item.
func (f *Fake) Item(key string) (memcache.Item, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.items[key]
	return it, ok
}

// Dialer returns an mc.Dialer serving fakes by server address.
// Unknown servers fail to answer pings. dialed records every address tried.
func Dialer(servers map[string]*Fake, dialed *[]string) mc.Dialer {
	var mu sync.Mutex
	return func(_ time.Duration, addrs ...string) (mc.Client, error) {
		mu.Lock()
		if dialed != nil {
			*dialed = append(*dialed, addrs...)
		}
		mu.Unlock()
		if len(addrs) == 1 {
			if f, ok := servers[addrs[0]]; ok {
				return f, nil
			}
		}
		return &Fake{items: map[string]memcache.Item{}, Down: true}, nil
	}
}
