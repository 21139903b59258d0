// Package metrics exposes run counters for long-lived invocations.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Set holds the per-run counters. A nil *Set is valid and counts nothing,
// so callers without a scrape listener skip registration entirely.
type Set struct {
	registry *prometheus.Registry
	units    *prometheus.CounterVec
}

// New builds a Set backed by its own registry.
func New() *Set {
	registry := prometheus.NewRegistry()
	units := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vmfleet_units_total",
		Help: "Work units processed, by mode and terminal outcome.",
	}, []string{"mode", "outcome"})
	registry.MustRegister(units)

	return &Set{registry: registry, units: units}
}

// CountUnit records one terminal unit outcome.
func (s *Set) CountUnit(mode, outcome string) {
	if s == nil {
		return
	}
	s.units.WithLabelValues(mode, outcome).Inc()
}

// Serve exposes /metrics on addr until the process exits. Listen errors
// are delivered to errFn; scraping is best-effort and never blocks a run.
func (s *Set) Serve(addr string, errFn func(error)) {
	if s == nil || addr == "" {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errFn(err)
		}
	}()
}
