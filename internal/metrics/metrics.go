// Package metrics counts reconciliation outcomes and fetch latency with
// Prometheus collectors on a private registry. A run is a one-shot batch, so
// the registry is exported as a node-exporter textfile rather than served.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

// Option configures a Manager
type Option func(*Manager)

// WithNamespace overrides the metric name prefix
func WithNamespace(ns string) Option {
	return func(m *Manager) { m.namespace = ns }
}

// WithHistogramBuckets overrides the fetch latency buckets
func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Manager) { m.buckets = buckets }
}

// WithConstLabels adds labels to every collector
func WithConstLabels(labels map[string]string) Option {
	return func(m *Manager) { m.constLabels = labels }
}

// Manager owns the collectors of one run. A nil *Manager is valid and
// records nothing.
type Manager struct {
	namespace   string
	buckets     []float64
	constLabels prometheus.Labels
	registry    *prometheus.Registry

	rows          *prometheus.CounterVec
	documents     *prometheus.CounterVec
	documentTime  prometheus.Histogram
	fetchDuration prometheus.Histogram
}

// NewManager creates a Manager with its own registry
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "boxscore",
		buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		registry:  prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.rows = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Name:        "rows_total",
		Help:        "Extracted rows by reconciliation outcome.",
		ConstLabels: m.constLabels,
	}, []string{"outcome"})

	m.documents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Name:        "documents_total",
		Help:        "Source documents by final status.",
		ConstLabels: m.constLabels,
	}, []string{"status"})

	m.documentTime = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Name:        "document_duration_seconds",
		Help:        "Wall time to fetch and reconcile one document.",
		Buckets:     prometheus.ExponentialBuckets(0.5, 2, 8),
		ConstLabels: m.constLabels,
	})

	m.fetchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Name:        "fetch_duration_seconds",
		Help:        "HTTP round trip time per document request.",
		Buckets:     m.buckets,
		ConstLabels: m.constLabels,
	})

	m.registry.MustRegister(m.rows, m.documents, m.documentTime, m.fetchDuration)
	return m
}

// RowOutcome counts one reconciled row
func (m *Manager) RowOutcome(outcome string) {
	if m == nil {
		return
	}
	m.rows.WithLabelValues(outcome).Inc()
}

// Document counts one finished document and its duration
func (m *Manager) Document(status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.documents.WithLabelValues(status).Inc()
	m.documentTime.Observe(elapsed.Seconds())
}

// ObserveFetch records one HTTP round trip
func (m *Manager) ObserveFetch(d time.Duration) {
	if m == nil {
		return
	}
	m.fetchDuration.Observe(d.Seconds())
}

// Registry exposes the underlying registry for gathering
func (m *Manager) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// WriteTextfile writes all collectors to path in the text exposition format.
// The file is replaced atomically.
func (m *Manager) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	log.Debug().Str("path", path).Msg("Metrics written")
	return nil
}
