// Package prom counts autocache events with Prometheus counters.
package prom

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/unkn0wn-root/autocache"
)

// Hooks exposes:
//
//	autocache_detected_total{backend}
//	autocache_entries_rejected_total{backend,reason}
//	autocache_backend_errors_total{backend,op}
//	autocache_writes_rejected_total{backend}
type Hooks struct {
	detected      *prometheus.CounterVec
	rejected      *prometheus.CounterVec
	errors        *prometheus.CounterVec
	writeRejected *prometheus.CounterVec
}

var _ autocache.Hooks = (*Hooks)(nil)

// New registers the counters with reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) (*Hooks, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	h := &Hooks{
		detected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "autocache",
			Name:      "detected_total",
			Help:      "Backend auto-detection results.",
		}, []string{"backend"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "autocache",
			Name:      "entries_rejected_total",
			Help:      "Stored entries ignored on read.",
		}, []string{"backend", "reason"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "autocache",
			Name:      "backend_errors_total",
			Help:      "Backend failures swallowed by the cache.",
		}, []string{"backend", "op"}),
		writeRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "autocache",
			Name:      "writes_rejected_total",
			Help:      "Writes the backend did not store.",
		}, []string{"backend"}),
	}
	for _, c := range []prometheus.Collector{h.detected, h.rejected, h.errors, h.writeRejected} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return h, nil
}

func (h *Hooks) Detected(n autocache.BackendName) {
	h.detected.WithLabelValues(n.String()).Inc()
}

func (h *Hooks) EntryRejected(n autocache.BackendName, _, reason string) {
	h.rejected.WithLabelValues(n.String(), reason).Inc()
}

// BackendError drops the key; keys are unbounded label values.
func (h *Hooks) BackendError(n autocache.BackendName, op, _ string, _ error) {
	h.errors.WithLabelValues(n.String(), op).Inc()
}

func (h *Hooks) WriteRejected(n autocache.BackendName, _ string) {
	h.writeRejected.WithLabelValues(n.String()).Inc()
}
