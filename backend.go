package autocache

import (
	"fmt"
	"strings"
)

// BackendName identifies a backend. Auto is resolved by detection before an
// adapter is built.
type BackendName uint8

const (
	Auto BackendName = iota
	APCu
	Memcached
	Memcache
	None
)

// probeOrder is the detection priority. It decides which backend wins when
// several are available and must not change.
var probeOrder = [...]BackendName{APCu, Memcached, Memcache}

var backendNames = [...]string{
	Auto:      "auto",
	APCu:      "apcu",
	Memcached: "memcached",
	Memcache:  "memcache",
	None:      "none",
}

func (n BackendName) String() string {
	if n.valid() {
		return backendNames[n]
	}
	return fmt.Sprintf("BackendName(%d)", uint8(n))
}

func (n BackendName) valid() bool { return int(n) < len(backendNames) }

// ParseBackendName maps a configured name to a BackendName. Matching is
// case-insensitive, so "APCu", "MemCached" and "Memcache" work as well.
func ParseBackendName(s string) (BackendName, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for i, name := range backendNames {
		if name == want {
			return BackendName(i), nil
		}
	}
	return 0, &ConfigurationError{Input: "backend", Value: s, Err: ErrUnknownBackend}
}

func (n BackendName) MarshalText() ([]byte, error) {
	if !n.valid() {
		return nil, &ConfigurationError{Input: "backend", Value: n.String(), Err: ErrUnknownBackend}
	}
	return []byte(n.String()), nil
}

func (n *BackendName) UnmarshalText(b []byte) error {
	v, err := ParseBackendName(string(b))
	if err != nil {
		return err
	}
	*n = v
	return nil
}
