// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	IngestRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_rows_total",
			Help: "Total number of customer rows processed by ingestion",
		},
		[]string{"result"},
	)

	IngestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "ingest_duration_seconds",
			Help: "Duration of full-replace ingestion runs in seconds",
		},
	)

	PredictionsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "predictions_completed_total",
			Help: "Total number of churn predictions by source",
		},
		[]string{"source"},
	)

	PredictionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "prediction_duration_seconds",
			Help: "Duration of per-customer prediction in seconds",
		},
		[]string{"source"},
	)

	StatisticsCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "statistics_cache_lookups_total",
			Help: "Statistics cache lookups by result",
		},
		[]string{"result"},
	)
)
