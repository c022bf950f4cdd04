// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

// Package metrics provides Prometheus metrics of the ingestion loop.
package metrics

import (
	"net/http"
	"time"

	"github.com/livetrainmap/LiveTrainMap/timetable_generator/match"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	CheckpointSaved  = "saved"
	CheckpointFailed = "failed"
)

// Metrics holds all Prometheus metrics of a single ingestion process.
type Metrics struct {
	// Registry is the Prometheus registry for this metrics instance
	Registry *prometheus.Registry

	ObservationsTotal  *prometheus.CounterVec
	FetchFailuresTotal prometheus.Counter

	CheckpointsTotal   *prometheus.CounterVec
	CheckpointDuration prometheus.Histogram

	BlocksTracked prometheus.Gauge
}

// New creates and registers all metrics with a new registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	observationsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ltm_observations_total",
			Help: "Total number of live train records, by classification result",
		},
		[]string{"result"},
	)

	fetchFailuresTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ltm_fetch_failures_total",
		Help: "Total number of failed live feed fetches",
	})

	checkpointsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ltm_checkpoints_total",
			Help: "Total number of block statistics checkpoints, by result",
		},
		[]string{"result"},
	)

	checkpointDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ltm_checkpoint_duration_seconds",
		Help:    "Time spent writing block statistics checkpoints",
		Buckets: prometheus.DefBuckets,
	})

	blocksTracked := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ltm_blocks_tracked",
		Help: "Number of (route, schedule, block) triples with at least one sample",
	})

	registry.MustRegister(
		observationsTotal,
		fetchFailuresTotal,
		checkpointsTotal,
		checkpointDuration,
		blocksTracked,
	)

	// Pre-create labels, so that all series are exported from the start
	for _, r := range match.Results() {
		observationsTotal.WithLabelValues(r.String())
	}
	checkpointsTotal.WithLabelValues(CheckpointSaved)
	checkpointsTotal.WithLabelValues(CheckpointFailed)

	return &Metrics{
		Registry:           registry,
		ObservationsTotal:  observationsTotal,
		FetchFailuresTotal: fetchFailuresTotal,
		CheckpointsTotal:   checkpointsTotal,
		CheckpointDuration: checkpointDuration,
		BlocksTracked:      blocksTracked,
	}
}

// ObserveStats adds per-fetch match statistics to the observation counters.
func (m *Metrics) ObserveStats(s match.Stats) {
	for _, r := range match.Results() {
		if n := s.Count(r); n > 0 {
			m.ObservationsTotal.WithLabelValues(r.String()).Add(float64(n))
		}
	}
}

func (m *Metrics) ObserveCheckpoint(took time.Duration, err error) {
	m.CheckpointDuration.Observe(took.Seconds())
	if err != nil {
		m.CheckpointsTotal.WithLabelValues(CheckpointFailed).Inc()
	} else {
		m.CheckpointsTotal.WithLabelValues(CheckpointSaved).Inc()
	}
}

// Handler serves the metrics of this instance in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
