package metrics

import "github.com/prometheus/client_golang/prometheus"

// Vector index and recommendation Prometheus metrics.
var (
	IndexSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "recall",
			Name:      "index_products",
			Help:      "Number of products in the vector index",
		},
	)

	IndexReady = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "recall",
			Name:      "index_ready",
			Help:      "Whether the vector index is ready (1) or not (0)",
		},
	)

	IndexBuildDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "recall",
			Name:      "index_build_duration_seconds",
			Help:      "Full index build duration in seconds",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
	)

	IndexBuildProductsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "recall",
			Name:      "index_build_products_total",
			Help:      "Products processed during index builds",
		},
		[]string{"status"}, // "success" / "failed"
	)

	RecommendRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "recall",
			Name:      "recommend_requests_total",
			Help:      "Recommendation requests by retrieval mode",
		},
		[]string{"mode"}, // "hybrid" / "keyword" / "popular"
	)
)

var indexMetricsRegistered bool

// RegisterIndexMetrics registers index and recommendation metrics. Must be called once from main.
func RegisterIndexMetrics() {
	if indexMetricsRegistered {
		return
	}
	prometheus.MustRegister(IndexSize)
	prometheus.MustRegister(IndexReady)
	prometheus.MustRegister(IndexBuildDuration)
	prometheus.MustRegister(IndexBuildProductsTotal)
	prometheus.MustRegister(RecommendRequestsTotal)
	indexMetricsRegistered = true
}
