package autocache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/unkn0wn-root/autocache/internal/wire"
)

func TestPutThenGet(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	c := mustInstance(t, f.registry("V1", nil), APCu)

	c.Put(ctx, "k", []byte("v"), 10*time.Second)
	got, ok := c.Get(ctx, "k")
	if !ok || string(got) != "v" {
		t.Fatalf("got=%q ok=%v", got, ok)
	}
}

func TestExpiry(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	c := mustInstance(t, f.registry("V1", nil), APCu)

	c.Put(ctx, "k", []byte("v"), 60*time.Second)

	f.clock.Advance(60 * time.Second)
	if _, ok := c.Get(ctx, "k"); !ok {
		t.Fatal("entry must live through its full ttl")
	}

	f.clock.Advance(time.Second)
	if _, ok := c.Get(ctx, "k"); ok {
		t.Fatal("expected miss after ttl")
	}
	if _, ok := f.apcu.raw("site:k"); ok {
		t.Fatal("expired entry should be deleted on read")
	}
	if f.hooks.count("rejected", reasonExpired) != 1 {
		t.Fatalf("expected one expired rejection, events=%v", f.hooks.events)
	}
}

func TestExpiryIgnoresVersionCheckFlag(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	c := mustInstance(t, f.registry("V1", nil), APCu)

	c.Put(ctx, "k", []byte("v"), time.Second)
	f.clock.Advance(2 * time.Second)
	if _, ok := c.Get(ctx, "k", WithoutVersionCheck()); ok {
		t.Fatal("expired entries miss even without version check")
	}
}

func TestVersionInvalidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	v1 := mustInstance(t, f.registry("V1", nil), APCu)
	v1.Put(ctx, "a", []byte("1"), 300*time.Second)

	// next deployment: same backend, new version
	v2 := mustInstance(t, f.registry("V2", nil), APCu)
	if _, ok := v2.Get(ctx, "a"); ok {
		t.Fatal("entry from previous version must miss")
	}
	got, ok := v2.Get(ctx, "a", WithoutVersionCheck())
	if !ok || string(got) != "1" {
		t.Fatalf("without version check: got=%q ok=%v", got, ok)
	}
	// the mismatch must not destroy the entry
	if _, ok := v1.Get(ctx, "a"); !ok {
		t.Fatal("old version reader lost its entry")
	}
	if f.hooks.count("rejected", reasonVersionMismatch) != 1 {
		t.Fatalf("events=%v", f.hooks.events)
	}
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	c := mustInstance(t, f.registry("V1", nil), APCu)

	c.Put(ctx, "k", []byte("v"), 0)
	c.Remove(ctx, "k")
	if _, ok := c.Get(ctx, "k"); ok {
		t.Fatal("expected miss after Remove")
	}
	c.Remove(ctx, "k") // idempotent
	if f.hooks.count("error", "") != 0 {
		t.Fatalf("remove of missing key reported an error: %v", f.hooks.events)
	}
}

func TestEmptyValueIsAHit(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	c := mustInstance(t, f.registry("V1", nil), APCu)

	c.Put(ctx, "empty", []byte{}, 0)
	got, ok := c.Get(ctx, "empty")
	if !ok || len(got) != 0 {
		t.Fatalf("got=%q ok=%v", got, ok)
	}
}

func TestDefaultTTLAndHint(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	c := mustInstance(t, f.registry("V1", nil), APCu)

	c.Put(ctx, "k", []byte("v"), 0)
	if got := f.apcu.ttl["site:k"]; got != DefaultTTL {
		t.Fatalf("ttl hint=%v want %v", got, DefaultTTL)
	}
	raw, _ := f.apcu.raw("site:k")
	env, err := wire.Decode(raw)
	if err != nil {
		t.Fatal(err)
	}
	if want := f.clock.Now().Add(DefaultTTL).UnixMilli(); env.ExpiresAt != want || env.Version != "V1" {
		t.Fatalf("env=%+v want expiresAt=%d version=V1", env, want)
	}

	c.Put(ctx, "neg", []byte("v"), -time.Second)
	if got := f.apcu.ttl["site:neg"]; got != DefaultTTL {
		t.Fatalf("negative ttl should fall back to default, got %v", got)
	}
}

func TestNamespaceIsolation(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a := mustInstance(t, f.registry("V1", func(o *Options) { o.Namespace = "a" }), APCu)
	b := mustInstance(t, f.registry("V1", func(o *Options) { o.Namespace = "b" }), APCu)

	a.Put(ctx, "k", []byte("from-a"), 0)
	if _, ok := b.Get(ctx, "k"); ok {
		t.Fatal("namespaces must not share keys")
	}
	if _, ok := f.apcu.raw("a:k"); !ok {
		t.Fatal("expected storage key a:k")
	}

	d := mustInstance(t, f.registry("V1", func(o *Options) { o.Namespace = "" }), Memcached)
	d.Put(ctx, "k", []byte("v"), 0)
	if _, ok := f.memcached.raw("default:k"); !ok {
		t.Fatal("empty namespace should default to \"default\"")
	}
}

func TestCorruptEntryIsHealed(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	c := mustInstance(t, f.registry("V1", nil), APCu)

	f.apcu.inject("site:bad", []byte("not-wire-format"))
	if _, ok := c.Get(ctx, "bad"); ok {
		t.Fatal("corrupt entry must miss")
	}
	if _, ok := f.apcu.raw("site:bad"); ok {
		t.Fatal("corrupt entry was not deleted")
	}
	if f.hooks.count("rejected", reasonCorrupt) != 1 {
		t.Fatalf("events=%v", f.hooks.events)
	}
}

func TestBackendFailuresNeverSurface(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	c := mustInstance(t, f.registry("V1", nil), APCu)
	c.Put(ctx, "k", []byte("v"), 0)

	f.apcu.fail(errors.New("connection reset"))
	if _, ok := c.Get(ctx, "k"); ok {
		t.Fatal("backend error must read as a miss")
	}
	c.Put(ctx, "k", []byte("v2"), 0)
	c.Remove(ctx, "k")

	for _, op := range []string{"get", "put", "remove"} {
		if f.hooks.count("error", op) != 1 {
			t.Fatalf("expected one %s error, events=%v", op, f.hooks.events)
		}
	}
}

func TestNoneBackend(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	c := mustInstance(t, f.registry("V1", nil), None)

	c.Put(ctx, "k", []byte("v"), time.Minute)
	if _, ok := c.Get(ctx, "k"); ok {
		t.Fatal("none backend never hits")
	}
	c.Remove(ctx, "k")
	if f.hooks.count("write_rejected", "") != 1 {
		t.Fatalf("events=%v", f.hooks.events)
	}
	if f.hooks.count("error", "") != 0 {
		t.Fatalf("none backend reported errors: %v", f.hooks.events)
	}
}

func TestGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	c := mustInstance(t, f.registry("V1", nil), APCu)

	c.Put(ctx, "k", []byte("abc"), 0)
	got, _ := c.Get(ctx, "k")
	got[0] = 'X'
	again, _ := c.Get(ctx, "k")
	if string(again) != "abc" {
		t.Fatalf("caller mutation leaked into the store: %q", again)
	}
}

func TestHandleReportsVersion(t *testing.T) {
	f := newFixture()
	c := mustInstance(t, f.registry("2024.06.1", nil), Memcache)
	if c.Version() != "2024.06.1" {
		t.Fatalf("Version()=%q", c.Version())
	}
}

func TestPutRacingHealIsLost(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	c := mustInstance(t, f.registry("V1", nil), APCu)

	// a fresh write landing between the read of a stale entry and its delete
	f.apcu.inject("site:k", []byte("stale"))
	f.apcu.beforeDel = func() {
		f.apcu.beforeDel = nil
		c.Put(ctx, "k", []byte("fresh"), 0)
	}
	if _, ok := c.Get(ctx, "k"); ok {
		t.Fatal("stale entry must miss")
	}
	if _, ok := c.Get(ctx, "k"); ok {
		t.Fatal("the racing write is expected to be removed by the heal")
	}
}
