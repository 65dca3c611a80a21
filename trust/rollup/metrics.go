package rollup

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var eventsAggregated = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "trustd_rollup_events_aggregated",
	Help: "Number of score updates accumulated into window buckets",
}, []string{"category"})

var flushedBatches = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "trustd_rollup_flushed_batches",
	Help: "Number of rollup batches published at flush",
}, []string{"category"})

var alertsRaised = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "trustd_rollup_alerts_raised",
	Help: "Number of new (non-deduplicated) risk alerts",
}, []string{"kind"})

var snapshotErrors = promauto.NewCounter(prometheus.CounterOpts{
	Name: "trustd_rollup_snapshot_errors",
	Help: "Number of failed snapshot writes (flush durability degraded)",
})
