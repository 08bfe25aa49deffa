// Package metrics exposes Prometheus metrics for the ingestion and
// migration paths.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metricsOnce ensures metrics are only registered once.
var metricsOnce sync.Once

// metricsInstance is the singleton instance of engine metrics.
var metricsInstance *Metrics

// Metrics holds all Prometheus metrics for the label-store engine.
type Metrics struct {
	// Ingestion metrics
	IngestionsTotal   *prometheus.CounterVec   // labelstore_ingestions_total{storage_type,status}
	IngestionDuration *prometheus.HistogramVec // labelstore_ingestion_duration_seconds{storage_type}
	BytesIngested     prometheus.Counter       // labelstore_bytes_ingested_total
	CategoryFanout    prometheus.Histogram     // labelstore_category_fanout

	// Migration metrics
	PairsProcessed *prometheus.CounterVec // labelstore_migration_pairs_total{outcome}
}

// Init registers all engine metrics. Metrics are only registered once;
// subsequent calls return the same instance.
func Init(registry prometheus.Registerer) *Metrics {
	metricsOnce.Do(func() {
		if registry == nil {
			registry = prometheus.DefaultRegisterer
		}
		metricsInstance = &Metrics{
			IngestionsTotal: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
				Name: "labelstore_ingestions_total",
				Help: "Total ingested file pairs by storage type and status",
			}, []string{"storage_type", "status"}),

			IngestionDuration: promauto.With(registry).NewHistogramVec(prometheus.HistogramOpts{
				Name:    "labelstore_ingestion_duration_seconds",
				Help:    "Ingestion placement duration in seconds",
				Buckets: prometheus.DefBuckets,
			}, []string{"storage_type"}),

			BytesIngested: promauto.With(registry).NewCounter(prometheus.CounterOpts{
				Name: "labelstore_bytes_ingested_total",
				Help: "Total file bytes written by the ingestion path",
			}),

			CategoryFanout: promauto.With(registry).NewHistogram(prometheus.HistogramOpts{
				Name:    "labelstore_category_fanout",
				Help:    "Number of category paths written per ingested file",
				Buckets: []float64{1, 2, 3, 4, 5, 8},
			}),

			PairsProcessed: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
				Name: "labelstore_migration_pairs_total",
				Help: "Total migrated file pairs by outcome",
			}, []string{"outcome"}),
		}
	})

	return metricsInstance
}

// Get returns the singleton metrics instance.
// Returns nil if metrics have not been initialized.
func Get() *Metrics {
	return metricsInstance
}

// RecordIngestion records one ingestion attempt.
func (m *Metrics) RecordIngestion(storageType, status string, durationSeconds float64, bytes int64, fanout int) {
	m.IngestionsTotal.WithLabelValues(storageType, status).Inc()
	m.IngestionDuration.WithLabelValues(storageType).Observe(durationSeconds)
	if status == "ok" {
		m.BytesIngested.Add(float64(bytes))
		m.CategoryFanout.Observe(float64(fanout))
	}
}

// RecordPair records one migration pair outcome.
func (m *Metrics) RecordPair(outcome string) {
	m.PairsProcessed.WithLabelValues(outcome).Inc()
}
