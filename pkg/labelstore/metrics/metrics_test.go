package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitIsSingleton(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := Init(registry)
	require.NotNil(t, m)

	// A second Init returns the same instance without re-registering.
	assert.Same(t, m, Init(prometheus.NewRegistry()))
	assert.Same(t, m, Get())
}

func TestRecordIngestion(t *testing.T) {
	m := Init(prometheus.NewRegistry())

	m.RecordIngestion("detection", "ok", 0.25, 1024, 2)
	m.RecordIngestion("detection", "error", 0.1, 0, 0)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.IngestionsTotal.WithLabelValues("detection", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.IngestionsTotal.WithLabelValues("detection", "error")))
	// Bytes only accumulate for successful ingestions.
	assert.Equal(t, 1024.0, testutil.ToFloat64(m.BytesIngested))
}

func TestRecordPair(t *testing.T) {
	m := Init(prometheus.NewRegistry())

	m.RecordPair("migrated")
	m.RecordPair("migrated")
	m.RecordPair("skipped")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.PairsProcessed.WithLabelValues("migrated")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PairsProcessed.WithLabelValues("skipped")))
}
