// Package metrics defines all custom Prometheus metrics for the console
// gateway. It is the single source of truth for metric names, labels, and
// help strings. Metrics register themselves with the default registry at
// package init via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "console"

// ── Session metrics ───────────────────────────────────────────────────────────

// LoginsTotal counts login attempts by outcome.
// Label:
//   - result: "success", "invalid_credentials", "role_rejected",
//     "duplicate", "malformed_payload", "upstream_error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by outcome.",
	},
	[]string{"result"},
)

// SessionRehydrationsTotal counts startup rehydration outcomes.
// Label:
//   - result: "restored" or "empty"
var SessionRehydrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_rehydrations_total",
		Help:      "Total number of startup session rehydrations, by outcome.",
	},
	[]string{"result"},
)

// GuardDecisionsTotal counts route guard evaluations.
// Labels:
//   - guard: "session" or "role"
//   - decision: "allowed" or "denied"
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of route guard decisions.",
	},
	[]string{"guard", "decision"},
)

// ── Notice metrics ────────────────────────────────────────────────────────────

// NoticesProcessedTotal counts notices persisted to the activity trail.
// Label:
//   - severity: "error", "success", "warn"
var NoticesProcessedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notices_processed_total",
		Help:      "Total number of notices successfully persisted.",
	},
	[]string{"severity"},
)

// NoticesErrorsTotal counts notices that failed processing.
// Label:
//   - reason: short description of the failure (e.g. "persist_failed")
var NoticesErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notices_errors_total",
		Help:      "Total number of notices that failed processing.",
	},
	[]string{"reason"},
)

// NoticesDroppedTotal counts notices discarded because a worker queue was full.
var NoticesDroppedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notices_dropped_total",
		Help:      "Total number of notices dropped due to backpressure.",
	},
	[]string{"severity"},
)

// NoticesQueueDepth tracks the current number of notices waiting per worker.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var NoticesQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notices_queue_depth",
		Help:      "Current number of notices pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// ── Upstream metrics ──────────────────────────────────────────────────────────

// UpstreamProxyDuration measures proxied feature calls end-to-end.
// Label:
//   - area: console feature area ("users", "profiles", "configurations",
//     "analytics", "account")
var UpstreamProxyDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upstream_proxy_duration_seconds",
		Help:      "Duration of proxied upstream feature calls.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
	[]string{"area"},
)
