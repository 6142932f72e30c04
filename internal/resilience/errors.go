// Package resilience classifies failures from remote calls so callers can
// report whether a skipped item is worth re-running.
package resilience

import (
	"context"
	"errors"
	"net"
	"strings"
	"syscall"
)

// Class describes how a failure should be read by an operator.
type Class string

const (
	// ClassNone is returned for a nil error.
	ClassNone Class = ""
	// ClassTransient covers timeouts, resets, 429 and 5xx responses.
	ClassTransient Class = "transient"
	// ClassPermanent covers everything a re-run would not fix (4xx, bad XML).
	ClassPermanent Class = "permanent"
	// ClassCanceled means the caller's context ended first.
	ClassCanceled Class = "canceled"
)

// TransientError marks an error as transient, optionally carrying the HTTP
// status that caused it.
type TransientError struct {
	Err        error
	StatusCode int
}

func (e *TransientError) Error() string {
	return e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// NewTransientError wraps err as transient.
func NewTransientError(err error, statusCode int) *TransientError {
	return &TransientError{Err: err, StatusCode: statusCode}
}

// transientPatterns catch transport errors that lost their type while being
// wrapped by HTTP clients.
var transientPatterns = []string{
	"connection reset by peer",
	"broken pipe",
	"temporary failure in name resolution",
	"tls handshake timeout",
	"i/o timeout",
	"server closed idle connection",
	"client.timeout exceeded",
}

// transienter is implemented by errors that classify themselves, such as
// fetch and backend API errors.
type transienter interface {
	Transient() bool
}

// Classify returns the Class of err.
func Classify(err error) Class {
	if err == nil {
		return ClassNone
	}
	if errors.Is(err, context.Canceled) {
		return ClassCanceled
	}
	if IsTransient(err) {
		return ClassTransient
	}
	return ClassPermanent
}

// IsTransient reports whether err (or anything in its chain) is a
// TransientError, a network timeout, a connection reset/refusal, or matches a
// known transient message.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var te *TransientError
	if errors.As(err, &te) {
		return true
	}

	var tr transienter
	if errors.As(err, &tr) {
		return tr.Transient()
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

	msg := strings.ToLower(err.Error())
	for _, p := range transientPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// IsTransientHTTPStatus reports whether an HTTP status is a server-side or
// throttling condition.
func IsTransientHTTPStatus(statusCode int) bool {
	switch statusCode {
	case 408, 425, 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}
