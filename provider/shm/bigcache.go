package shm

import (
	"context"
	"errors"
	"time"

	bc "github.com/allegro/bigcache/v3"
)

type bigcacheSegment struct {
	c      *bc.BigCache
	shards int
}

func openBigCache(cfg Config) (segment, error) {
	conf := bc.DefaultConfig(cfg.LifeWindow)
	conf.Shards = cfg.Shards
	conf.CleanWindow = cfg.LifeWindow / 2
	conf.HardMaxCacheSize = max(cfg.MaxBytes>>20, 1)
	conf.Verbose = false
	c, err := bc.New(context.Background(), conf)
	if err != nil {
		return nil, err
	}
	return &bigcacheSegment{c: c, shards: conf.Shards}, nil
}

func (s *bigcacheSegment) get(key string) ([]byte, bool, error) {
	b, err := s.c.Get(key)
	if errors.Is(err, bc.ErrEntryNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

// BigCache does not support per-entry TTL; entries live for LifeWindow.
func (s *bigcacheSegment) set(key string, value []byte, _ time.Duration) (bool, error) {
	if err := s.c.Set(key, value); err != nil {
		return false, err
	}
	return true, nil
}

func (s *bigcacheSegment) del(key string) error {
	err := s.c.Delete(key)
	if errors.Is(err, bc.ErrEntryNotFound) {
		return nil
	}
	return err
}

func (s *bigcacheSegment) segments() int { return s.shards }
func (s *bigcacheSegment) close() error  { return s.c.Close() }
