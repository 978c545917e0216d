// Package metrics holds the Prometheus collectors for page view tracking,
// aggregation and CSV export.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "newsdesk"

// Skip reasons for page views that produce no fact.
const (
	SkipNoSlug       = "no_slug"
	SkipNotFound     = "not_found"
	SkipUnpublished  = "unpublished"
	SkipNotSucceeded = "not_succeeded"
)

// Metrics groups every collector. A nil *Metrics is valid and records nothing.
type Metrics struct {
	PageViewsRecorded prometheus.Counter
	PageViewsSkipped  *prometheus.CounterVec
	PageViewFailures  *prometheus.CounterVec
	TrackingQueue     prometheus.Gauge
	Degraded          *prometheus.CounterVec
	CSVRowsExported   prometheus.Counter
}

// New registers all collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		PageViewsRecorded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pageviews_recorded_total",
			Help:      "Page view facts persisted.",
		}),
		PageViewsSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pageviews_skipped_total",
			Help:      "Requests that produced no page view fact, by reason.",
		}, []string{"reason"}),
		PageViewFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pageview_failures_total",
			Help:      "Tracking pipeline failures, by stage.",
		}, []string{"stage"}),
		TrackingQueue: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tracking_queue_depth",
			Help:      "Page view jobs waiting for a worker.",
		}),
		Degraded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analytics_degraded_total",
			Help:      "Aggregations that returned an empty result because of a storage error.",
		}, []string{"operation"}),
		CSVRowsExported: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "csv_rows_exported_total",
			Help:      "Rows written to analytics CSV exports.",
		}),
	}
}

func (m *Metrics) Recorded() {
	if m != nil {
		m.PageViewsRecorded.Inc()
	}
}

func (m *Metrics) Skipped(reason string) {
	if m != nil {
		m.PageViewsSkipped.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) Failed(stage string) {
	if m != nil {
		m.PageViewFailures.WithLabelValues(stage).Inc()
	}
}

func (m *Metrics) QueueDepth(n int) {
	if m != nil {
		m.TrackingQueue.Set(float64(n))
	}
}

func (m *Metrics) DegradedResult(operation string) {
	if m != nil {
		m.Degraded.WithLabelValues(operation).Inc()
	}
}

func (m *Metrics) RowsExported(n int) {
	if m != nil {
		m.CSVRowsExported.Add(float64(n))
	}
}
