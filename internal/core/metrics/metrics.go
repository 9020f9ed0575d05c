package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GenAICallsTotal tracks generateContent calls per model
	GenAICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "atelier_genai_calls_total",
			Help: "Total number of generative AI calls",
		},
		[]string{"model"},
	)

	// GenAIErrorsTotal tracks failed generative AI calls by retry class
	GenAIErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "atelier_genai_errors_total",
			Help: "Total number of generative AI errors",
		},
		[]string{"model", "class"},
	)

	// GenAILatency tracks generative AI call latency
	GenAILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "atelier_genai_latency_seconds",
			Help:    "Generative AI call latency in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 80},
		},
		[]string{"model"},
	)

	// RetryAttemptsTotal counts backoff retries per logical operation
	RetryAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "atelier_retry_attempts_total",
			Help: "Total number of retries scheduled after transient failures",
		},
		[]string{"operation"},
	)

	// MediaNormalizeTotal counts normalization outcomes (normalized, passthrough, empty)
	MediaNormalizeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "atelier_media_normalize_total",
			Help: "Total number of image normalizations by outcome",
		},
		[]string{"outcome"},
	)

	// StorageOpsTotal counts facade operations per collection
	StorageOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "atelier_storage_ops_total",
			Help: "Total number of persistence facade operations",
		},
		[]string{"collection", "op"},
	)

	// StorageDegradedTotal counts operations served by a degraded path
	StorageDegradedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "atelier_storage_degraded_total",
			Help: "Total number of persistence operations served by fallback or discarded",
		},
		[]string{"collection", "op", "mode"},
	)

	// ImageUploadsTotal counts image host uploads by outcome
	ImageUploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "atelier_image_uploads_total",
			Help: "Total number of image host uploads",
		},
		[]string{"outcome"},
	)

	// StorageConnState reports the facade connection state (0 uninitialized, 1 opening, 2 ready, 3 failed)
	StorageConnState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "atelier_storage_conn_state",
			Help: "Current persistence facade connection state",
		},
	)

	// DBConnectionPoolUsage tracks database connection pool usage percentage per pool
	DBConnectionPoolUsage = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "atelier_db_connection_pool_usage_percent",
			Help: "Database connection pool usage percentage",
		},
		[]string{"pool"},
	)
)
