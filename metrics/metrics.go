package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RowsLoaded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "resale_rows_loaded_total",
			Help: "Total transactions accepted into the canonical table",
		},
	)

	RowsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resale_rows_dropped_total",
			Help: "Total malformed rows dropped during load, by offending field",
		},
		[]string{"field"},
	)

	PipelineRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resale_pipeline_runs_total",
			Help: "Total dashboard pipeline runs by outcome",
		},
		[]string{"outcome"},
	)

	PipelineLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "resale_pipeline_latency_seconds",
			Help:    "Filter, derive, score and rank latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	RowsMatched = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "resale_pipeline_rows_matched",
			Help:    "Rows passing the filter per pipeline run",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		},
	)

	DashboardCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resale_dashboard_cache_total",
			Help: "Dashboard cache lookups by result",
		},
		[]string{"result"},
	)
)
