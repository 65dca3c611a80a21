package router

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var eventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "trustd_router_events_published",
	Help: "Number of events published to the router",
}, []string{"type"})

var handlerErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "trustd_router_handler_errors",
	Help: "Number of subscriber handlers which returned an error",
}, []string{"type", "subscriber"})

var handlerPanics = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "trustd_router_handler_panics",
	Help: "Number of subscriber handlers which panicked during dispatch",
}, []string{"type", "subscriber"})

var historyEvictions = promauto.NewCounter(prometheus.CounterOpts{
	Name: "trustd_router_history_evictions",
	Help: "Number of events evicted from the bounded history buffer",
})

var dispatchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name: "trustd_router_dispatch_duration_sec",
	Help: "Total duration of subscriber dispatch per publish call",
}, []string{"type"})
