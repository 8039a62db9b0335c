package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// reconciliation pipeline.
type Metrics struct {
	// Source fetch metrics.
	FetchRequests *prometheus.CounterVec   // labels: source={archive,feed}, outcome={success,error}
	FetchDuration *prometheus.HistogramVec // labels: source={archive,feed}

	// Normalization metrics.
	RecordsParsed *prometheus.CounterVec // labels: source={archive,feed}
	ParseFailures *prometheus.CounterVec // labels: source={archive,feed}

	// Reconciliation metrics.
	DuplicatesRemoved prometheus.Counter
	RefreshDuration   prometheus.Histogram
	IncidentsCurrent  prometheus.Gauge
	LastRefreshTime   prometheus.Gauge

	// Result cache metrics.
	CacheLookups *prometheus.CounterVec // labels: result={hit,stale,miss}
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.FetchRequests,
		m.FetchDuration,
		m.RecordsParsed,
		m.ParseFailures,
		m.DuplicatesRemoved,
		m.RefreshDuration,
		m.IncidentsCurrent,
		m.LastRefreshTime,
		m.CacheLookups,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crime_map",
			Name:      "source_fetch_total",
			Help:      "Source fetch attempts by source and outcome.",
		}, []string{"source", "outcome"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "crime_map",
			Name:      "source_fetch_duration_seconds",
			Help:      "Source fetch duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"source"}),
		RecordsParsed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crime_map",
			Name:      "records_parsed_total",
			Help:      "Raw records successfully normalized, by source.",
		}, []string{"source"}),
		ParseFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crime_map",
			Name:      "record_parse_failures_total",
			Help:      "Raw records dropped during normalization, by source.",
		}, []string{"source"}),
		DuplicatesRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "crime_map",
			Name:      "duplicates_removed_total",
			Help:      "Records collapsed by cross-source deduplication.",
		}),
		RefreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "crime_map",
			Name:      "refresh_duration_seconds",
			Help:      "Duration of a full fetch-normalize-merge-reconcile pass.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		IncidentsCurrent: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "crime_map",
			Name:      "incidents_reconciled",
			Help:      "Incident count in the most recent reconciled result.",
		}),
		LastRefreshTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "crime_map",
			Name:      "last_refresh_timestamp_seconds",
			Help:      "Unix time of the last successful refresh.",
		}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crime_map",
			Name:      "result_cache_lookups_total",
			Help:      "Reconciled-result cache lookups by result.",
		}, []string{"result"}),
	}
}
