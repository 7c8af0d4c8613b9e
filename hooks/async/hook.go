// Package asynchook moves hook delivery off the request path. Events are
// queued to a fixed pool of workers; when the queue is full they are dropped.
//
//	raw := loghooks.New(slog.Default(), loghooks.Options{RejectEvery: 10})
//	hooks := asynchook.New(raw, 1, 1000)
//	defer hooks.Close()
//
//	reg := autocache.New(autocache.Options{Hooks: hooks})
package asynchook

import (
	"sync"
	"sync/atomic"

	"github.com/unkn0wn-root/autocache"
)

type Hooks struct {
	inner   autocache.Hooks
	q       chan func()
	wg      sync.WaitGroup
	once    sync.Once
	dropped atomic.Uint64
}

var _ autocache.Hooks = (*Hooks)(nil)

func New(inner autocache.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for range workers {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains the queue and stops the workers. Events sent after Close
// are dropped.
func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

// Dropped reports how many events were discarded because the queue was full.
func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	defer func() {
		// send on closed queue
		if recover() != nil {
			h.dropped.Add(1)
		}
	}()
	select {
	case h.q <- f:
	default:
		h.dropped.Add(1)
	}
}

func (h *Hooks) Detected(n autocache.BackendName) { h.try(func() { h.inner.Detected(n) }) }
func (h *Hooks) WriteRejected(n autocache.BackendName, k string) {
	h.try(func() { h.inner.WriteRejected(n, k) })
}
func (h *Hooks) EntryRejected(n autocache.BackendName, k, r string) {
	h.try(func() { h.inner.EntryRejected(n, k, r) })
}
func (h *Hooks) BackendError(n autocache.BackendName, op, k string, err error) {
	h.try(func() { h.inner.BackendError(n, op, k, err) })
}
