// Package metrics defines all custom Prometheus metrics for the auth system.
// It is the single source of truth for metric names, labels, and help
// strings; promauto registers everything with the default registry at init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pvauth"

// LoginsTotal counts password logins.
// Label:
//   - result: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of password login attempts, by result.",
	},
	[]string{"result"},
)

// RegistrationsTotal counts account registrations.
// Label:
//   - result: "success", "conflict" or "failure"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, by result.",
	},
	[]string{"result"},
)

// RefreshRotationsTotal counts refresh-token rotations.
// Label:
//   - result: "success" or "rejected" (missing/invalid/expired/revoked)
var RefreshRotationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "refresh_rotations_total",
		Help:      "Total number of refresh-token rotation attempts, by result.",
	},
	[]string{"result"},
)

// DemoRedemptionsTotal counts demo-key redemptions.
// Label:
//   - result: "success" or "rejected" (scope/revoked/expired/limit)
var DemoRedemptionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "demo_redemptions_total",
		Help:      "Total number of demo-key redemption attempts, by result.",
	},
	[]string{"result"},
)

// RateLimitRejectionsTotal counts demo-login attempts denied by the per-IP
// rate limiter before any state was touched.
var RateLimitRejectionsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limit_rejections_total",
		Help:      "Total number of demo-login attempts denied by the rate limiter.",
	},
)
