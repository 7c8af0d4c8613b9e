package shm

import (
	"time"

	"github.com/VictoriaMetrics/fastcache"
)

// fastcacheSegment stores through SetBig so values above fastcache's 64KB
// entry limit are kept too. Expiry is left to the envelope; fastcache evicts
// whole buckets when full.
type fastcacheSegment struct {
	c *fastcache.Cache
}

func openFastcache(cfg Config) segment {
	return &fastcacheSegment{c: fastcache.New(cfg.MaxBytes)}
}

func (s *fastcacheSegment) get(key string) ([]byte, bool, error) {
	b := s.c.GetBig(nil, []byte(key))
	if len(b) == 0 {
		return nil, false, nil
	}
	return b, true, nil
}

func (s *fastcacheSegment) set(key string, value []byte, _ time.Duration) (bool, error) {
	s.c.SetBig([]byte(key), value)
	return true, nil
}

func (s *fastcacheSegment) del(key string) error {
	s.c.Del([]byte(key))
	return nil
}

func (s *fastcacheSegment) segments() int {
	var st fastcache.Stats
	s.c.UpdateStats(&st)
	if st.MaxBytesSize == 0 {
		return 0
	}
	return 1
}

func (s *fastcacheSegment) close() error {
	s.c.Reset()
	return nil
}
