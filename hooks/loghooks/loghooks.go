// Package loghooks reports autocache events through log/slog.
package loghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/autocache"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	RejectEvery uint64
	ErrorEvery  uint64
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	rejectCtr atomic.Uint64
	errorCtr  atomic.Uint64
}

var _ autocache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) Detected(name autocache.BackendName) {
	if h.l == nil {
		return
	}
	h.l.Info("autocache.detected", "backend", name.String())
}

func (h *Hooks) EntryRejected(backend autocache.BackendName, storageKey, reason string) {
	if h.l == nil || !sample(h.opts.RejectEvery, &h.rejectCtr) {
		return
	}
	h.l.Debug("autocache.entry_rejected",
		"backend", backend.String(),
		"key", h.redact(storageKey),
		"reason", reason)
}

func (h *Hooks) BackendError(backend autocache.BackendName, op, storageKey string, err error) {
	if h.l == nil || !sample(h.opts.ErrorEvery, &h.errorCtr) {
		return
	}
	h.l.Warn("autocache.backend_error",
		"backend", backend.String(),
		"op", op,
		"key", h.redact(storageKey),
		"err", err)
}

func (h *Hooks) WriteRejected(backend autocache.BackendName, storageKey string) {
	if h.l == nil {
		return
	}
	h.l.Debug("autocache.write_rejected",
		"backend", backend.String(),
		"key", h.redact(storageKey))
}
