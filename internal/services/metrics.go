// Package services – cache metrics
//
// Prometheus instrumentation for the tiered cache. Label cardinality is
// bounded: tier is one of volatile|durable|upstream, outcome is one of
// hit|miss|stale|error.
package services

import "github.com/prometheus/client_golang/prometheus"

var (
	// cacheLookups counts tier consultations by outcome.
	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prayersync_cache_lookups_total",
			Help: "Cache tier lookups by tier and outcome.",
		},
		[]string{"tier", "outcome"},
	)

	// fallbackServed counts requests answered with the static degraded set.
	fallbackServed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "prayersync_fallback_served_total",
			Help: "Requests answered with the static fallback prayer times.",
		},
	)
)

func init() {
	prometheus.MustRegister(cacheLookups, fallbackServed)
}

const (
	tierVolatile = "volatile"
	tierDurable  = "durable"
	tierUpstream = "upstream"

	outcomeHit   = "hit"
	outcomeMiss  = "miss"
	outcomeStale = "stale"
	outcomeError = "error"
)
