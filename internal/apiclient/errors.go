package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrorKind classifies a [TransportError].
type ErrorKind int

const (
	// KindTimeout means the per-request deadline expired.
	KindTimeout ErrorKind = iota + 1

	// KindConnection covers refused connections, DNS failures, resets and
	// anything else below HTTP.
	KindConnection

	// KindStatus means the API answered with an HTTP status >= 400.
	KindStatus

	// KindCanceled means the caller's context was canceled mid-request.
	KindCanceled
)

// String returns a short name for the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindConnection:
		return "connection"
	case KindStatus:
		return "status"
	case KindCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// TransportError is returned for every failed exchange with the remote API.
type TransportError struct {
	Kind ErrorKind

	// Code and Body are set for KindStatus.
	Code int
	Body string

	// Detail describes the failure for the other kinds.
	Detail string

	Err error
}

func (e *TransportError) Error() string {
	if e.Kind == KindStatus {
		return fmt.Sprintf("API Error: %d - %s", e.Code, e.Body)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Detail)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Transient reports whether retrying the same request may succeed.
func (e *TransportError) Transient() bool {
	return e.Kind == KindTimeout || e.Kind == KindConnection
}

// classify maps an error from http.Client.Do or a body read into a
// [TransportError].
func classify(err error) *TransportError {
	te := &TransportError{Detail: err.Error(), Err: err}

	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		te.Kind = KindTimeout
	case errors.Is(err, context.Canceled):
		te.Kind = KindCanceled
	case errors.As(err, &netErr) && netErr.Timeout():
		te.Kind = KindTimeout
	default:
		te.Kind = KindConnection
	}
	return te
}
