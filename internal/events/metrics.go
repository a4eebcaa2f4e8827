package events

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var eventsDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "community_events_dispatched_total",
	Help: "Number of domain events dispatched to handlers",
}, []string{"event"})

var handlerFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "community_event_handler_failures_total",
	Help: "Number of event handler invocations that failed and were swallowed",
}, []string{"event", "handler"})

var handlerDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name: "community_event_handler_duration_sec",
	Help: "Duration of event handler transactions",
}, []string{"event", "handler"})
