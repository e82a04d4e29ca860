// Package httpc builds the HTTP clients shared by the catalog and transfer
// layers and classifies response statuses into sentinel errors.
package httpc

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Common errors.
var (
	ErrNotFound     = errors.New("httpc: resource not found")
	ErrForbidden    = errors.New("httpc: access forbidden")
	ErrUnauthorized = errors.New("httpc: unauthorized")
	ErrServer       = errors.New("httpc: server error")
)

// Options configures the shared transport.
type Options struct {
	// MaxIdleConnsPerHost sets the maximum idle connections per host.
	// Default: 100
	MaxIdleConnsPerHost int
}

// DefaultOptions returns options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		MaxIdleConnsPerHost: 100,
	}
}

// New creates an HTTP client tuned for repeated requests against a single
// data store host. No client-level timeout is set: callers bound each
// request through its context, so one deadline never spans retry attempts.
func New(opts Options) *http.Client {
	if opts.MaxIdleConnsPerHost <= 0 {
		opts.MaxIdleConnsPerHost = DefaultOptions().MaxIdleConnsPerHost
	}
	transport := &http.Transport{
		MaxIdleConnsPerHost: opts.MaxIdleConnsPerHost,
		MaxIdleConns:        opts.MaxIdleConnsPerHost * 2,
		IdleConnTimeout:     90 * time.Second,
	}
	return &http.Client{Transport: transport}
}

// CheckStatus returns an appropriate error for non-success status codes.
func CheckStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusForbidden:
		return ErrForbidden
	case code == http.StatusUnauthorized:
		return ErrUnauthorized
	case code >= 500:
		return fmt.Errorf("%w: status %d", ErrServer, code)
	default:
		return fmt.Errorf("unexpected status code: %d", code)
	}
}

// Retryable reports whether a status code indicates a transient server-side
// condition worth another attempt.
func Retryable(code int) bool {
	return code >= 500 || code == http.StatusTooManyRequests
}
