// Package services implements the prayer-time engine: timezone resolution,
// the tiered time cache, and calendar export orchestration. This file
// centralizes the service-level error values so they can be consistently
// returned by service methods and checked by callers with errors.Is.
//
// Translation into HTTP status codes or CLI exit codes happens at the
// handler layer, never here.
package services

import (
	"errors"

	"github.com/gfarooqi/prayersync-sub001/internal/upstream"
)

var (
	// ErrUpstreamUnavailable indicates the timings provider could not be
	// reached. Recovered locally by falling through to cached data; never
	// fatal on its own.
	ErrUpstreamUnavailable = upstream.ErrUnavailable

	// ErrInvalidUpstreamPayload indicates the provider answered but the
	// payload was structurally unusable. Handled like an outage for
	// fallback purposes, logged distinctly because it suggests a provider
	// contract change.
	ErrInvalidUpstreamPayload = upstream.ErrInvalidPayload

	// ErrAllTiersExhausted is returned when no cache tier could supply
	// data: volatile and durable are empty (or unreadable) and the fetch
	// failed. Callers substitute domain.FallbackTimes() so an export still
	// succeeds, clearly degraded.
	ErrAllTiersExhausted = errors.New("all cache tiers exhausted")

	// ErrMetadataMissing is returned when a timings lookup succeeds but the
	// payload omits the IANA zone identifier. The resolver refuses to guess
	// a default zone.
	ErrMetadataMissing = errors.New("upstream omitted timezone metadata")

	// ErrInvalidCoordinate is returned for coordinates outside the WGS84
	// range before any cache or network work happens.
	ErrInvalidCoordinate = errors.New("coordinate out of range")

	// ErrUnknownMethod is returned for calculation-method identifiers
	// outside the supported upstream enumeration.
	ErrUnknownMethod = errors.New("unknown calculation method")
)
