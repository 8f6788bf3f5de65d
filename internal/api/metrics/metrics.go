// Package metrics defines and registers all custom Prometheus metrics for the
// SIMS API security core. It is the single source of truth for metric names,
// labels, and help strings. Metrics register with the default registry at
// package init; the /metrics endpoint is mounted by the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "sims"

// SecurityEventsTotal counts security events emitted by the request gate and
// the auth service.
// Labels:
//   - event: event name (e.g. "ip_blocked", "api_request")
//   - severity: "low", "medium", or "high"
var SecurityEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "security_events_total",
		Help:      "Total number of security events recorded, by event name and severity.",
	},
	[]string{"event", "severity"},
)

// RequestsRejectedTotal counts requests terminated by the security gate.
// Label:
//   - reason: "ip_blocked", "rate_limited", "suspicious_input", or "store_error"
var RequestsRejectedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "requests_rejected_total",
		Help:      "Total number of requests rejected by the security gate, by reason.",
	},
	[]string{"reason"},
)

// RateLimitRejectionsTotal counts rate-limit rejections by budget name.
// Label:
//   - action: "api_call" or the endpoint action ("login", "register", ...)
var RateLimitRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limit_rejections_total",
		Help:      "Total number of requests rejected by a rate-limit budget.",
	},
	[]string{"action"},
)

// TokenVerificationsTotal counts token verification outcomes.
// Labels:
//   - kind: "access" or "refresh"
//   - result: "valid", "invalid", or "wrong_type"
var TokenVerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_verifications_total",
		Help:      "Total number of token verifications, by token kind and outcome.",
	},
	[]string{"kind", "result"},
)
