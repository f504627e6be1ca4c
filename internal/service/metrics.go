package service

import (
	"strconv"
	"time"

	"github.com/content-lifecycle-console/internal/lifecycle"
	"github.com/content-lifecycle-console/internal/models"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	operationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lifecycle_operations_total",
			Help: "Lifecycle operations by content kind, action and outcome.",
		},
		[]string{"kind", "action", "outcome"},
	)

	operationErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lifecycle_operation_errors_total",
			Help: "Failed lifecycle operations by error kind.",
		},
		[]string{"kind", "action", "error_kind"},
	)

	remoteRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "remote_request_duration_seconds",
			Help:    "Latency of calls to the remote content API.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"action", "status"},
	)

	viewItems = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "lifecycle_view_items",
			Help: "Number of items in each derived view.",
		},
		[]string{"kind", "view"},
	)

	refreshRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lifecycle_refresh_runs_total",
			Help: "Scheduled and manual refreshes by content kind and result.",
		},
		[]string{"kind", "result"},
	)

	auditDroppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "audit_events_dropped_total",
			Help: "Moderation events that could not be written.",
		},
	)
)

func init() {
	prometheus.MustRegister(operationsTotal, operationErrorsTotal, remoteRequestDuration, viewItems, refreshRunsTotal, auditDroppedTotal)
}

// ObserveRemote records one remote round trip. It matches remote.ObserverFunc.
func ObserveRemote(action string, status int, duration time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status/100) + "xx"
	}
	remoteRequestDuration.WithLabelValues(action, label).Observe(duration.Seconds())
}

func recordOperation(kind models.ContentKind, action models.Action, outcome models.Outcome, errorKind string) {
	operationsTotal.WithLabelValues(string(kind), string(action), string(outcome)).Inc()
	if outcome == models.OutcomeFailure {
		operationErrorsTotal.WithLabelValues(string(kind), string(action), errorKind).Inc()
	}
}

func recordViews(kind models.ContentKind, counts map[lifecycle.View]int) {
	for view, n := range counts {
		viewItems.WithLabelValues(string(kind), string(view)).Set(float64(n))
	}
}
