// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics records batch-run results as Prometheus gauges and writes
// them in the node_exporter textfile format, so a scheduled ranking run can
// be scraped after it exits.
package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ErrNoFile is returned by WriteFile when no path is configured.
var ErrNoFile = errors.New("metrics file not configured")

// Manager owns a registry and the gauges a run updates.
type Manager struct {
	namespace   string
	constLabels map[string]string
	registry    *prometheus.Registry
	now         func() float64

	studentsRanked  *prometheus.GaugeVec
	ingestRows      *prometheus.GaugeVec
	mismatches      *prometheus.GaugeVec
	filterMatchRate prometheus.Gauge
	runDuration     *prometheus.GaugeVec
	runSuccess      *prometheus.GaugeVec
	lastRun         *prometheus.GaugeVec
}

// NewManager creates a manager with its own registry.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "gradebook",
		registry:  prometheus.NewRegistry(),
		now:       func() float64 { return float64(time.Now().Unix()) },
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	factory := promauto.With(m.registry)
	labels := prometheus.Labels(m.constLabels)

	m.studentsRanked = factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Name:        "students_ranked",
		Help:        "Students in the last ranking, by category.",
		ConstLabels: labels,
	}, []string{"category"})

	m.ingestRows = factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Name:        "ingest_rows",
		Help:        "Rows read from each source in the last run, by outcome.",
		ConstLabels: labels,
	}, []string{"source", "outcome"})

	m.mismatches = factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Name:        "compare_mismatches",
		Help:        "Mismatches found by the last comparison, by kind.",
		ConstLabels: labels,
	}, []string{"kind"})

	m.filterMatchRate = factory.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Name:        "filter_match_rate_percent",
		Help:        "Share of year 2 students with a year 1 record in the last filter run.",
		ConstLabels: labels,
	})

	m.runDuration = factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Name:        "run_duration_seconds",
		Help:        "Wall time of the last run of each command.",
		ConstLabels: labels,
	}, []string{"command"})

	m.runSuccess = factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Name:        "run_success",
		Help:        "1 if the last run of each command succeeded, 0 otherwise.",
		ConstLabels: labels,
	}, []string{"command"})

	m.lastRun = factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Name:        "last_run_timestamp_seconds",
		Help:        "Unix time the last run of each command finished.",
		ConstLabels: labels,
	}, []string{"command"})
}

// RecordRanking sets the per-category student counts.
func (m *Manager) RecordRanking(complete, transfer int) {
	m.studentsRanked.WithLabelValues("Complete").Set(float64(complete))
	m.studentsRanked.WithLabelValues("Transfer").Set(float64(transfer))
}

// RecordIngest sets the row counts for one source.
func (m *Manager) RecordIngest(source string, accepted, skipped, duplicates, missing int) {
	m.ingestRows.WithLabelValues(source, "accepted").Set(float64(accepted))
	m.ingestRows.WithLabelValues(source, "skipped").Set(float64(skipped))
	m.ingestRows.WithLabelValues(source, "duplicate").Set(float64(duplicates))
	m.ingestRows.WithLabelValues(source, "missing").Set(float64(missing))
}

// RecordMismatches sets the count of one mismatch kind.
func (m *Manager) RecordMismatches(kind string, n int) {
	m.mismatches.WithLabelValues(kind).Set(float64(n))
}

// RecordMatchRate sets the filter match rate percentage.
func (m *Manager) RecordMatchRate(pct float64) {
	m.filterMatchRate.Set(pct)
}

// RecordRun sets the duration, outcome, and finish time of a command.
func (m *Manager) RecordRun(command string, d time.Duration, err error) {
	m.runDuration.WithLabelValues(command).Set(d.Seconds())
	success := 1.0
	if err != nil {
		success = 0
	}
	m.runSuccess.WithLabelValues(command).Set(success)
	m.lastRun.WithLabelValues(command).Set(m.now())
}

// WriteFile writes every gauge to path in the textfile collector format.
// The file is replaced atomically.
func (m *Manager) WriteFile(path string) error {
	if path == "" {
		return ErrNoFile
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
