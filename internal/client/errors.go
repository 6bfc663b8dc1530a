package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound         = errors.New("resource not found")
	ErrUpstream         = errors.New("upstream request failed")
	ErrUnavailable      = errors.New("upstream temporarily unavailable")
	ErrNotConfigured    = errors.New("client not configured")
	ErrInvalidSignature = errors.New("invalid webhook signature")

	// ErrRejected is a 4xx answer to one caller's input. It still matches
	// ErrUpstream but never counts against a breaker.
	ErrRejected = fmt.Errorf("%w: request rejected", ErrUpstream)
)

// statusError classifies a non-2xx answer. Auth, timeout and throttling
// answers count as upstream failures.
func statusError(upstream string, status int, body []byte) error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusRequestTimeout, http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s status %d: %s", ErrUpstream, upstream, status, truncate(body, 512))
	}
	if status >= 400 && status < 500 {
		return fmt.Errorf("%w: %s status %d: %s", ErrRejected, upstream, status, truncate(body, 512))
	}
	return fmt.Errorf("%w: %s status %d: %s", ErrUpstream, upstream, status, truncate(body, 512))
}
