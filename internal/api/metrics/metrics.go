// Package metrics defines and registers all custom Prometheus metrics of the
// AtongAni client. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "atongani"

// ── Backend API metrics ───────────────────────────────────────────────────────

// APIRequestDuration measures outbound calls to the marketplace backend.
// Labels:
//   - route: the endpoint template (e.g. "/api/orders/{id}/approve/")
//   - code: the HTTP status code, or "error" when no response was received
var APIRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "api_request_duration_seconds",
		Help:      "Duration of requests to the marketplace backend.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"route", "code"},
)

// ── Poll metrics ──────────────────────────────────────────────────────────────

// PollsTotal counts completed polls.
// Labels:
//   - resource: the polled list (e.g. "my_orders")
//   - result: "applied", "stale" (superseded by a newer poll), "discarded"
//     (arrived after the view was closed) or "error"
var PollsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "polls_total",
		Help:      "Total number of completed polls, by outcome.",
	},
	[]string{"resource", "result"},
)

// PollsInFlight tracks polls that have been started but not yet completed.
var PollsInFlight = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "polls_in_flight",
		Help:      "Current number of poll requests awaiting a response.",
	},
	[]string{"resource"},
)

// PollDuration measures a single poll fetch.
var PollDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "poll_duration_seconds",
		Help:      "Duration of a single poll fetch.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"resource"},
)

// ── Order notification metrics ────────────────────────────────────────────────

// OrderTransitionsTotal counts announced order status changes.
// Label:
//   - status: the new order status
var OrderTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_transitions_total",
		Help:      "Total number of order status changes announced.",
	},
	[]string{"status"},
)

// NotificationDedupTotal counts deduplication decisions.
// Label:
//   - result: "hit" (already announced, skipped) or "miss"
var NotificationDedupTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notification_dedup_total",
		Help:      "Total number of notification deduplication checks, by result.",
	},
	[]string{"result"},
)

// NotificationQueueDepth tracks pending transitions per dispatcher worker.
var NotificationQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notification_queue_depth",
		Help:      "Current number of transitions pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionsInvalidatedTotal counts sessions cleared because the backend
// rejected the token.
var SessionsInvalidatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_invalidated_total",
		Help:      "Total number of sessions cleared after an identity check failed.",
	},
)
