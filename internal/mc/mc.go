// Package mc holds what the memcached and memcache providers share.
package mc

import (
	"crypto/sha1"
	"encoding/hex"
	"math"
	"strings"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
)

// Client is the subset of *memcache.Client the providers use.
type Client interface {
	Get(key string) (*memcache.Item, error)
	Set(item *memcache.Item) error
	Delete(key string) error
	Ping() error
}

var _ Client = (*memcache.Client)(nil)

// Dialer builds a client for one or more servers. Servers are "host:port" or
// an absolute unix socket path.
type Dialer func(timeout time.Duration, servers ...string) (Client, error)

// Dial is the default Dialer backed by gomemcache.
func Dial(timeout time.Duration, servers ...string) (Client, error) {
	var sl memcache.ServerList
	if err := sl.SetServers(servers...); err != nil {
		return nil, err
	}
	c := memcache.NewFromSelector(&sl)
	c.Timeout = timeout
	return c, nil
}

// Server normalizes "unix:///path" to the bare path gomemcache expects.
func Server(s string) string {
	return strings.TrimPrefix(s, "unix://")
}

const maxKeyLen = 250

// Key returns a memcached-safe key. Keys that are too long or contain
// whitespace/control bytes are replaced by a digest.
func Key(k string) string {
	if len(k) <= maxKeyLen && !strings.ContainsFunc(k, func(r rune) bool { return r <= ' ' || r == 0x7f }) {
		return k
	}
	sum := sha1.Sum([]byte(k))
	return "h:" + hex.EncodeToString(sum[:])
}

const relativeLimit = 30 * 24 * time.Hour

// Expiration converts a ttl hint to memcached's expiration field.
// Values above 30 days are sent as absolute unix time, as the protocol requires.
func Expiration(ttl time.Duration, now time.Time) int32 {
	if ttl <= 0 {
		return 0
	}
	secs := int64((ttl + time.Second - 1) / time.Second)
	if ttl > relativeLimit {
		// the field is 32 bits; a wrapped value would expire the item at once
		return int32(min(now.Unix()+secs, math.MaxInt32))
	}
	return int32(secs)
}
