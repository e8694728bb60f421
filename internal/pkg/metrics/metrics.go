// Package metrics defines and registers all custom Prometheus metrics for the
// ticketing auth API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ticketing"

// ── Credential metrics ───────────────────────────────────────────────────────

// AuthAttemptsTotal counts register and login attempts.
// Labels:
//   - operation: "register" or "login"
//   - result: "success", "failure", "invalid", "duplicate" or "error"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of registration and login attempts, by outcome.",
	},
	[]string{"operation", "result"},
)

// PasswordHashDuration measures bcrypt cost on the request path.
// Label:
//   - op: "hash" or "verify"
var PasswordHashDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "auth_password_hash_duration_seconds",
		Help:      "Duration of password hashing and verification.",
		Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5},
	},
	[]string{"op"},
)

// ── Gate metrics ─────────────────────────────────────────────────────────────

// TokenRejectionsTotal counts requests rejected by the authentication gate.
// Label:
//   - reason: "missing_header", "malformed_header", "invalid_signature" or "expired"
var TokenRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_token_rejections_total",
		Help:      "Total number of requests rejected by the authentication gate.",
	},
	[]string{"reason"},
)

// AuthorizationDenialsTotal counts requests rejected by the role gate.
// Label:
//   - reason: "unauthenticated" or "insufficient_role"
var AuthorizationDenialsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_authorization_denials_total",
		Help:      "Total number of requests rejected by the role authorization gate.",
	},
	[]string{"reason"},
)

// RateLimitedTotal counts requests refused by the Redis rate limiter.
// Label:
//   - route: logical route name (e.g. "login")
var RateLimitedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_rate_limited_total",
		Help:      "Total number of requests refused by the rate limiter.",
	},
	[]string{"route"},
)

// ── Audit metrics ────────────────────────────────────────────────────────────

// AuditEventsTotal counts audit events handled by the audit workers.
// Labels:
//   - type: the audit event type (e.g. "login_failure")
//   - result: "stored" or "error"
var AuditEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_total",
		Help:      "Total number of audit events processed, by type and result.",
	},
	[]string{"type", "result"},
)

// AuditEventsDroppedTotal counts events discarded because a worker queue was full.
var AuditEventsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_dropped_total",
		Help:      "Total number of audit events dropped because the queue was full.",
	},
)

// AuditQueueDepth tracks the current number of events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of events pending in each audit worker channel.",
	},
	[]string{"worker_id"},
)
