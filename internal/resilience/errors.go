// Package resilience provides the failure taxonomy and backoff policy shared
// by the fetch and analysis orchestrators.
package resilience

import (
	"context"
	"errors"
	"net"
	"strings"
	"syscall"
)

// FailureKind classifies how an external call failed. The orchestrators use
// the kind, not the error text, to decide whether to retry, skip, or disable.
type FailureKind int

const (
	// KindUnavailable covers transient failures: network errors, timeouts,
	// 5xx responses. Safe to retry.
	KindUnavailable FailureKind = iota
	// KindBlocked covers access denial (401/403). Likely permanent for the
	// run; not worth retrying against the same source.
	KindBlocked
	// KindRateLimited covers 429-class failures. Tracked separately so a
	// provider can be skipped for the rest of the run.
	KindRateLimited
	// KindSchema covers responses that arrived but could not be parsed into
	// the expected structure.
	KindSchema
)

func (k FailureKind) String() string {
	switch k {
	case KindUnavailable:
		return "unavailable"
	case KindBlocked:
		return "blocked"
	case KindRateLimited:
		return "rate_limited"
	case KindSchema:
		return "schema_error"
	default:
		return "unknown"
	}
}

// Failure wraps an error with its classification and, when the failure came
// from an HTTP response, the status code.
type Failure struct {
	Kind       FailureKind
	Err        error
	StatusCode int
}

func (f *Failure) Error() string {
	return f.Err.Error()
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Unavailable wraps err as a transient failure.
func Unavailable(err error) *Failure {
	return &Failure{Kind: KindUnavailable, Err: err}
}

// Blocked wraps err as an access-denied failure.
func Blocked(err error, statusCode int) *Failure {
	return &Failure{Kind: KindBlocked, Err: err, StatusCode: statusCode}
}

// RateLimited wraps err as a rate-limit failure.
func RateLimited(err error) *Failure {
	return &Failure{Kind: KindRateLimited, Err: err, StatusCode: 429}
}

// SchemaError wraps err as a malformed-response failure.
func SchemaError(err error) *Failure {
	return &Failure{Kind: KindSchema, Err: err}
}

// FromHTTPStatus classifies an HTTP error response by status code.
func FromHTTPStatus(err error, statusCode int) *Failure {
	f := &Failure{Err: err, StatusCode: statusCode}
	switch {
	case statusCode == 429:
		f.Kind = KindRateLimited
	case statusCode == 401 || statusCode == 403:
		f.Kind = KindBlocked
	default:
		f.Kind = KindUnavailable
	}
	return f
}

// KindOf returns the classification of err. Errors without an explicit
// Failure in their chain are classified by inspection: timeouts, connection
// failures, and context deadlines all count as unavailable.
func KindOf(err error) FailureKind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return KindUnavailable
}

// IsRateLimited reports whether err carries a rate-limit classification.
func IsRateLimited(err error) bool {
	var f *Failure
	return errors.As(err, &f) && f.Kind == KindRateLimited
}

// IsBlocked reports whether err carries an access-denied classification.
func IsBlocked(err error) bool {
	var f *Failure
	return errors.As(err, &f) && f.Kind == KindBlocked
}

// IsSchemaError reports whether err carries a malformed-response classification.
func IsSchemaError(err error) bool {
	var f *Failure
	return errors.As(err, &f) && f.Kind == KindSchema
}

// IsTransient reports whether err looks safe to retry against the same
// endpoint: an explicit unavailable classification, a network timeout, a
// connection-level failure, or a deadline expiry.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var f *Failure
	if errors.As(err, &f) {
		return f.Kind == KindUnavailable
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	// String-based heuristics for wrapped errors from HTTP clients.
	msg := strings.ToLower(err.Error())
	transientPatterns := []string{
		"connection reset by peer",
		"broken pipe",
		"temporary failure in name resolution",
		"no such host",
		"tls handshake timeout",
		"i/o timeout",
		"server closed idle connection",
		"transport connection broken",
	}
	for _, p := range transientPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}

	return false
}
