package session

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/unkn0wn-root/autocache"
	pr "github.com/unkn0wn-root/autocache/provider"
	"github.com/unkn0wn-root/autocache/provider/shm"
	"github.com/unkn0wn-root/autocache/version"
)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func registry(p pr.Provider, ver string, c *clock) *autocache.Registry {
	return autocache.New(autocache.Options{
		Namespace: "site",
		Version:   version.Static(ver),
		Providers: map[autocache.BackendName]pr.Provider{autocache.APCu: p},
		Now:       c.Now,
	})
}

func newStore(t *testing.T, r *autocache.Registry) *Store {
	t.Helper()
	s, err := New(context.Background(), r)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestReadWriteDestroy(t *testing.T) {
	ctx := context.Background()
	seg := shm.New(shm.Config{Engine: shm.EngineFastcache, MaxBytes: 32 << 20})
	defer seg.Close()
	s := newStore(t, registry(seg, "V1", &clock{now: time.Unix(1_700_000_000, 0)}))

	if err := s.Open("", "sid"); err != nil {
		t.Fatal(err)
	}
	if got, err := s.Read(ctx, "abc"); err != nil || len(got) != 0 {
		t.Fatalf("fresh read: %q %v", got, err)
	}
	if err := s.Write(ctx, "abc", []byte("cart=3")); err != nil {
		t.Fatal(err)
	}
	if got, _ := s.Read(ctx, "abc"); !bytes.Equal(got, []byte("cart=3")) {
		t.Fatalf("got %q", got)
	}
	if _, ok, _ := seg.Get(ctx, "site:session:abc"); !ok {
		t.Fatal("expected storage key site:session:abc")
	}
	if err := s.Destroy(ctx, "abc"); err != nil {
		t.Fatal(err)
	}
	if got, _ := s.Read(ctx, "abc"); len(got) != 0 {
		t.Fatalf("after destroy: %q", got)
	}
	if n, err := s.GC(ctx, time.Hour); n != 0 || err != nil {
		t.Fatalf("GC=%d,%v", n, err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestEmptyWriteRejected(t *testing.T) {
	seg := shm.New(shm.Config{Engine: shm.EngineFastcache, MaxBytes: 32 << 20})
	defer seg.Close()
	s := newStore(t, registry(seg, "V1", &clock{now: time.Now()}))

	if err := s.Write(context.Background(), "abc", nil); !errors.Is(err, ErrEmptySession) {
		t.Fatalf("err=%v", err)
	}
	if _, err := s.Read(context.Background(), ""); !errors.Is(err, ErrEmptyID) {
		t.Fatalf("err=%v", err)
	}
}

func TestSurvivesDeploy(t *testing.T) {
	ctx := context.Background()
	seg := shm.New(shm.Config{Engine: shm.EngineFastcache, MaxBytes: 32 << 20})
	defer seg.Close()
	c := &clock{now: time.Unix(1_700_000_000, 0)}

	if err := newStore(t, registry(seg, "V1", c)).Write(ctx, "abc", []byte("user=7")); err != nil {
		t.Fatal(err)
	}
	got, err := newStore(t, registry(seg, "V2", c)).Read(ctx, "abc")
	if err != nil || string(got) != "user=7" {
		t.Fatalf("session lost across versions: %q %v", got, err)
	}
}

func TestExpiresAfterTTL(t *testing.T) {
	ctx := context.Background()
	seg := shm.New(shm.Config{Engine: shm.EngineFastcache, MaxBytes: 32 << 20})
	defer seg.Close()
	c := &clock{now: time.Unix(1_700_000_000, 0)}
	s := newStore(t, registry(seg, "V1", c))

	_ = s.Write(ctx, "abc", []byte("x"))
	c.now = c.now.Add(TTL)
	if got, _ := s.Read(ctx, "abc"); string(got) != "x" {
		t.Fatal("session must live for the full ttl")
	}
	c.now = c.now.Add(time.Second)
	if got, _ := s.Read(ctx, "abc"); len(got) != 0 {
		t.Fatalf("expired session returned %q", got)
	}
}

func TestWithTTL(t *testing.T) {
	ctx := context.Background()
	seg := shm.New(shm.Config{Engine: shm.EngineFastcache, MaxBytes: 32 << 20})
	defer seg.Close()
	c := &clock{now: time.Unix(1_700_000_000, 0)}
	s, err := New(ctx, registry(seg, "V1", c), WithTTL(time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	_ = s.Write(ctx, "abc", []byte("x"))
	c.now = c.now.Add(2 * time.Minute)
	if got, _ := s.Read(ctx, "abc"); len(got) != 0 {
		t.Fatalf("got %q", got)
	}
}

func TestCachingDisabled(t *testing.T) {
	r := autocache.New(autocache.Options{Disabled: true})
	if _, err := New(context.Background(), r); !errors.Is(err, ErrCachingDisabled) {
		t.Fatalf("err=%v", err)
	}
}
