// Package metrics exposes run tallies as Prometheus collectors. A nil
// *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/joseph-ayodele/amenity-parser/internal/entity"
)

const namespace = "amenity_parser"

type Metrics struct {
	Runs          prometheus.Counter
	Documents     *prometheus.CounterVec // label: outcome
	Records       *prometheus.CounterVec // label: outcome (extracted|rejected)
	Uploads       *prometheus.CounterVec // label: status (success|skipped|failed)
	DocumentTime  prometheus.Histogram
	LastRunRecord prometheus.Gauge
}

// New builds the collectors and registers them with reg when it is non-nil.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Runs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Pipeline runs started.",
		}),
		Documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_total",
			Help:      "Documents processed, by outcome.",
		}, []string{"outcome"}),
		Records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_total",
			Help:      "Record blocks assembled or rejected.",
		}, []string{"outcome"}),
		Uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Catalog upload outcomes.",
		}, []string{"status"}),
		DocumentTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "document_seconds",
			Help:      "Wall time to fetch, linearize and parse one document.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		LastRunRecord: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_records",
			Help:      "Records extracted by the most recent run.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Runs, m.Documents, m.Records, m.Uploads, m.DocumentTime, m.LastRunRecord)
	}
	return m
}

func (m *Metrics) RunStarted() {
	if m == nil {
		return
	}
	m.Runs.Inc()
}

// Document records one document outcome: ok, failed, no_boundary or skipped.
func (m *Metrics) Document(outcome string, elapsed time.Duration, extracted, rejected int) {
	if m == nil {
		return
	}
	m.Documents.WithLabelValues(outcome).Inc()
	m.DocumentTime.Observe(elapsed.Seconds())
	m.Records.WithLabelValues("extracted").Add(float64(extracted))
	m.Records.WithLabelValues("rejected").Add(float64(rejected))
}

func (m *Metrics) Upload(r entity.UploadReport) {
	if m == nil {
		return
	}
	m.Uploads.WithLabelValues(string(entity.UploadSuccess)).Add(float64(r.Success))
	m.Uploads.WithLabelValues(string(entity.UploadSkipped)).Add(float64(r.Skipped))
	m.Uploads.WithLabelValues(string(entity.UploadFailed)).Add(float64(r.Failed))
}

func (m *Metrics) RunFinished(r entity.RunReport) {
	if m == nil {
		return
	}
	m.LastRunRecord.Set(float64(r.Extracted))
}
