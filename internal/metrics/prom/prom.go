// Package prom exposes the metrics package through a Prometheus registry
// scraped over HTTP.
package prom

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"locoboard/internal/metrics"
)

// Backend is a Prometheus metrics backend.
type Backend struct {
	reg *prometheus.Registry

	fetchCounter  *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	fetchBytes    *prometheus.HistogramVec
	queryCounter  *prometheus.CounterVec
	editCounter   *prometheus.CounterVec
}

// NewBackend registers the collectors on a fresh registry.
func NewBackend() (*Backend, error) {
	reg := prometheus.NewRegistry()

	b := &Backend{
		reg: reg,
		fetchCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metrics.SourceFetchTotal,
				Help: "Sheet retrievals by sheet and status.",
			},
			[]string{"sheet", "status"},
		),
		fetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metrics.SourceFetchDuration,
				Help:    "Duration of sheet retrievals in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"sheet"},
		),
		fetchBytes: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metrics.SourceFetchBytes,
				Help:    "Payload size of sheet retrievals in bytes.",
				Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
			},
			[]string{"sheet"},
		),
		queryCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metrics.QueryTotal,
				Help: "Dashboard queries by name and status.",
			},
			[]string{"query", "status"},
		),
		editCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metrics.EditRequestsTotal,
				Help: "Edit requests by outcome.",
			},
			[]string{"status"},
		),
	}

	for name, c := range map[string]prometheus.Collector{
		"fetch counter":  b.fetchCounter,
		"fetch duration": b.fetchDuration,
		"fetch bytes":    b.fetchBytes,
		"query counter":  b.queryCounter,
		"edit counter":   b.editCounter,
		"go collector":   collectors.NewGoCollector(),
		"process":        collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("prom: register %s: %w", name, err)
		}
	}
	return b, nil
}

// IncCounter implements metrics.Backend.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case metrics.SourceFetchTotal:
		b.fetchCounter.WithLabelValues(labels["sheet"], labels["status"]).Add(delta)
	case metrics.QueryTotal:
		b.queryCounter.WithLabelValues(labels["query"], labels["status"]).Add(delta)
	case metrics.EditRequestsTotal:
		b.editCounter.WithLabelValues(labels["status"]).Add(delta)
	}
}

// ObserveHistogram implements metrics.Backend.
func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	switch name {
	case metrics.SourceFetchDuration:
		b.fetchDuration.WithLabelValues(labels["sheet"]).Observe(value)
	case metrics.SourceFetchBytes:
		b.fetchBytes.WithLabelValues(labels["sheet"]).Observe(value)
	}
}

// Registry returns the underlying registry.
func (b *Backend) Registry() *prometheus.Registry {
	return b.reg
}

// Handler serves the registry in the Prometheus text format.
func (b *Backend) Handler() http.Handler {
	return promhttp.HandlerFor(b.reg, promhttp.HandlerOpts{Registry: b.reg})
}
