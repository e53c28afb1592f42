package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	resolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nft_metadata_resolutions_total",
		Help: "Total number of metadata resolutions by source",
	}, []string{"source", "cached"})

	resolutionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "nft_metadata_resolution_seconds",
		Help:    "Time taken to resolve a metadata document",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
	}, []string{"source"})

	gatewayProbesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nft_metadata_gateway_probes_total",
		Help: "Total number of gateway reachability probes by outcome",
	}, []string{"gateway", "outcome"})

	lockContentionTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nft_metadata_lock_contention_total",
		Help: "Total number of resolutions that found the token already being resolved",
	})
)

// ObserveResolution records a finished resolution
func ObserveResolution(source string, cached bool, elapsed time.Duration) {
	resolutionsTotal.WithLabelValues(source, strconv.FormatBool(cached)).Inc()
	resolutionDuration.WithLabelValues(source).Observe(elapsed.Seconds())
}

// ObserveProbe records the outcome of a single gateway probe
func ObserveProbe(gateway string, ok bool) {
	outcome := "failure"
	if ok {
		outcome = "success"
	}
	gatewayProbesTotal.WithLabelValues(gateway, outcome).Inc()
}

// ObserveLockContention records a lost lock race
func ObserveLockContention() {
	lockContentionTotal.Inc()
}
