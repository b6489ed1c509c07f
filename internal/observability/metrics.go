package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Scan pipeline metrics, exposed on /metrics
var (
	// ScansTotal counts resolutions by branch taken and outcome
	ScansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "food_scans_total",
		Help: "Food resolutions by branch (barcode, vision) and outcome (resolved, empty, error).",
	}, []string{"branch", "outcome"})

	// CacheLookups counts nutrition-store lookups on the barcode branch
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "food_nutrition_cache_lookups_total",
		Help: "Nutrition store lookups on the barcode branch by result (hit, miss).",
	}, []string{"result"})

	// ScanDuration observes end-to-end resolution latency
	ScanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "food_scan_duration_seconds",
		Help:    "End-to-end food resolution latency.",
		Buckets: prometheus.DefBuckets,
	})
)
