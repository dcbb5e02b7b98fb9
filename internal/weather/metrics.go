package weather

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type pipelineMetrics struct {
	lookups         *prometheus.CounterVec
	requestDuration prometheus.Histogram
}

// Metrics are registered once per process; tests swap the registerer.
var (
	metricsInstance *pipelineMetrics
	metricsOnce     sync.Once
	defaultRegistry = prometheus.DefaultRegisterer
)

func newPipelineMetrics() *pipelineMetrics {
	metricsOnce.Do(func() {
		metricsInstance = &pipelineMetrics{
			lookups: promauto.With(defaultRegistry).NewCounterVec(prometheus.CounterOpts{
				Name: "wthr_lookups_total",
				Help: "Weather lookups by outcome",
			}, []string{"outcome"}),
			requestDuration: promauto.With(defaultRegistry).NewHistogram(prometheus.HistogramOpts{
				Name:    "wthr_provider_request_duration_seconds",
				Help:    "Latency of current weather requests to the provider",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
			}),
		}
	})
	return metricsInstance
}

// resetMetricsForTesting gives the package a fresh registry.
func resetMetricsForTesting() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	defaultRegistry = reg
	metricsInstance = nil
	metricsOnce = sync.Once{}
	return reg
}
