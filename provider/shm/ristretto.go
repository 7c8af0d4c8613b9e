package shm

import (
	"time"

	rc "github.com/dgraph-io/ristretto"
)

type ristrettoSegment struct {
	c *rc.Cache
}

func openRistretto(cfg Config) (segment, error) {
	// cost is the value size in bytes, so MaxCost bounds memory use.
	c, err := rc.NewCache(&rc.Config{
		NumCounters: int64(max(cfg.MaxBytes/1024, 1000)) * 10,
		MaxCost:     int64(cfg.MaxBytes),
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &ristrettoSegment{c: c}, nil
}

func (s *ristrettoSegment) get(key string) ([]byte, bool, error) {
	v, ok := s.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, _ := v.([]byte)
	if b == nil {
		// drop unexpected entry shape
		s.c.Del(key)
		return nil, false, nil
	}
	return b, true, nil
}

// Writes are buffered by ristretto; Wait makes them visible to the next Get.
func (s *ristrettoSegment) set(key string, value []byte, ttl time.Duration) (bool, error) {
	ok := s.c.SetWithTTL(key, value, int64(len(value)), ttl)
	s.c.Wait()
	return ok, nil
}

func (s *ristrettoSegment) del(key string) error {
	s.c.Del(key)
	return nil
}

func (s *ristrettoSegment) segments() int { return 1 }

func (s *ristrettoSegment) close() error {
	s.c.Close()
	return nil
}
