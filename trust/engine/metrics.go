package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var eventsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "trustd_engine_events_processed",
	Help: "Number of observation events which produced adjustments",
}, []string{"engine", "type"})

var eventsSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "trustd_engine_events_skipped",
	Help: "Number of observation events skipped (malformed or not applicable)",
}, []string{"engine", "type"})

var entitiesCreated = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "trustd_engine_entities_created",
	Help: "Number of entities lazily created at the neutral baseline",
}, []string{"engine"})

var rollupRecoveries = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "trustd_engine_rollup_recoveries",
	Help: "Number of entities warm-started from rollup batches",
}, []string{"engine"})

var scoreGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Name: "trustd_engine_score",
	Help: "Current derived trust score per entity",
}, []string{"engine", "entity"})
