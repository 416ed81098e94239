// Package handlers defines the HTTP-layer error codes used by all API
// endpoints.
//
// Codes are lowercase snake_case and stable: clients branch on them for
// programmatic error handling, supplementing the human-readable message.
// Generic codes mirror common HTTP status semantics; the domain-specific
// ones distinguish upstream failures the status alone cannot convey.
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeMethodNotAllowed = "method_not_allowed"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeInternal         = "internal_error"

	// Domain-specific:
	ErrCodeUpstreamUnavailable = "upstream_unavailable"
	ErrCodeUpstreamPayload     = "upstream_payload_invalid"
	ErrCodeTimesUnavailable    = "times_unavailable"
)
