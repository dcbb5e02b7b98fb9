package widget

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type widgetMetrics struct {
	failures       *prometheus.CounterVec
	staleDiscarded prometheus.Counter
	activeSessions prometheus.Gauge
}

var (
	metricsInstance *widgetMetrics
	metricsOnce     sync.Once
	defaultRegistry = prometheus.DefaultRegisterer
)

func sinkMetrics() *widgetMetrics {
	metricsOnce.Do(func() {
		metricsInstance = &widgetMetrics{
			failures: promauto.With(defaultRegistry).NewCounterVec(prometheus.CounterOpts{
				Name: "wthr_sink_failures_total",
				Help: "Sink errors and panics by sink",
			}, []string{"sink"}),
			staleDiscarded: promauto.With(defaultRegistry).NewCounter(prometheus.CounterOpts{
				Name: "wthr_stale_outcomes_total",
				Help: "Outcomes discarded because a newer lookup was already applied",
			}),
			activeSessions: promauto.With(defaultRegistry).NewGauge(prometheus.GaugeOpts{
				Name: "wthr_active_sessions",
				Help: "Visitor sessions held in memory",
			}),
		}
	})
	return metricsInstance
}

func resetMetricsForTesting() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	defaultRegistry = reg
	metricsInstance = nil
	metricsOnce = sync.Once{}
	return reg
}
