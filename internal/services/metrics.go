package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var reportsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "community_reports_submitted_total",
	Help: "Reports accepted, by reason",
}, []string{"reason"})

var reportsDecided = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "community_reports_decided_total",
	Help: "Reports approved or rejected",
}, []string{"status"})

var penaltiesApplied = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "community_penalties_applied_total",
	Help: "Penalties created, by type and source (auto or admin)",
}, []string{"type", "source"})

var penaltiesExpired = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "community_penalties_expired_total",
	Help: "Penalties expired, by source (sweep or admin)",
}, []string{"source"})

var sweepErrors = promauto.NewCounter(prometheus.CounterOpts{
	Name: "community_penalty_sweep_row_errors_total",
	Help: "Rows the penalty sweep failed to expire",
})

var sweepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "community_penalty_sweep_duration_seconds",
	Help:    "Duration of one penalty sweep",
	Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
})

var pointsCredited = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "community_points_credited_total",
	Help: "Reputation points credited, by transaction type",
}, []string{"type"})

var dailyCapRejections = promauto.NewCounter(prometheus.CounterOpts{
	Name: "community_points_daily_cap_rejections_total",
	Help: "Earn attempts refused by the daily cap",
})
