package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the service-specific collectors. Created in main via the
// shared MetricsCollector; every consumer treats a nil *Metrics as a no-op.
type Metrics struct {
	SourceFetches  *prometheus.CounterVec // labels: platform, status
	CommentsStored *prometheus.CounterVec // labels: platform
	CacheLookups   *prometheus.CounterVec // labels: platform, outcome
	Reports        *prometheus.CounterVec // labels: karma_origin
}
