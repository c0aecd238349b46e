// Package metrics holds the handful of process/pipeline Prometheus gauges
// and counters the query surface serves at /metrics, grounded on the
// teacher's daemon/services/api/metrics.go promauto registration style.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	containersTracked = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cgtrace_containers_tracked",
		Help: "Number of containers currently tracked by the registry.",
	})

	batchesPersistedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cgtrace_batches_persisted_total",
		Help: "Total number of stats batches successfully persisted.",
	})

	discoveryEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cgtrace_discovery_events_total",
		Help: "Total number of containerd discovery events observed, by type.",
	}, []string{"event_type"})
)

// RecordTick updates the tracked-container gauge after a registry sample.
func RecordTick(containersInRegistry int) {
	containersTracked.Set(float64(containersInRegistry))
}

// RecordBatchPersisted increments the persisted-batch counter.
func RecordBatchPersisted() {
	batchesPersistedTotal.Inc()
}

// RecordDiscoveryEvent increments the discovery-event counter for eventType.
func RecordDiscoveryEvent(eventType string) {
	discoveryEventsTotal.WithLabelValues(eventType).Inc()
}
