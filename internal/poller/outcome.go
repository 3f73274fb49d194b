package poller

import (
	"errors"
	"time"

	"github.com/jpalmerr/genrelay/internal/normalize"
)

// PendingMessage is attached to timeout-pending outcomes.
const PendingMessage = "Task is still processing, please call this tool again"

var (
	// ErrMissingRequestID is the precondition failure for a blank request id.
	ErrMissingRequestID = errors.New("request ID is required")

	// ErrMissingCredential is the precondition failure for a missing API key.
	ErrMissingCredential = errors.New("API key is required. Please set ETERNAL_AI_API_KEY environment variable")
)

// PreconditionError reports a request that was rejected before any waiting
// or network call.
type PreconditionError struct {
	Err error
}

func (e *PreconditionError) Error() string { return e.Err.Error() }

func (e *PreconditionError) Unwrap() error { return e.Err }

// Kind classifies an [Outcome].
type Kind string

const (
	// KindSucceeded: the job reported success or completed.
	KindSucceeded Kind = "succeeded"

	// KindFailed: the job reported failed or error. This is the job's own
	// verdict, not a transport problem.
	KindFailed Kind = "failed"

	// KindTimeoutPending: the budget ran out while the job was still
	// processing. Not an error; the caller should poll again.
	KindTimeoutPending Kind = "timeout_pending"

	// KindError: a non-retryable API rejection, a malformed body, or
	// transient failures that outlasted the budget.
	KindError Kind = "error"

	// KindPrecondition: the request id or credential was missing.
	KindPrecondition Kind = "precondition_failed"

	// KindCanceled: the caller's context ended the invocation.
	KindCanceled Kind = "canceled"
)

// Outcome is the single result of one [Poller.Poll] call.
type Outcome struct {
	Kind Kind

	// PollID identifies this invocation in logs and observations.
	PollID string

	RequestID string

	// Response is the terminal response, or the last one seen for
	// timeout-pending, error and canceled outcomes. nil if no query
	// produced a response.
	Response *normalize.PollResponse

	// Err is set for error, precondition and canceled outcomes.
	Err error

	// Attempts is the number of queries issued.
	Attempts int

	// Elapsed is measured from the first query.
	Elapsed time.Duration
}

// Terminal reports whether the job itself finished.
func (o Outcome) Terminal() bool {
	return o.Kind == KindSucceeded || o.Kind == KindFailed
}

// IsError reports whether the outcome should be surfaced as a failed call.
// Job failures and timeout-pending are reported results, not errors.
func (o Outcome) IsError() bool {
	return o.Kind == KindError || o.Kind == KindPrecondition || o.Kind == KindCanceled
}

// Payload renders the outcome as a JSON-ready map.
//
// Terminal outcomes pass the normalized response through. Timeout-pending
// carries the last seen status and progress plus [PendingMessage]. Error
// kinds carry the request id and the error text.
func (o Outcome) Payload() map[string]any {
	switch o.Kind {
	case KindSucceeded, KindFailed:
		if o.Response != nil {
			return o.Response.Payload()
		}
	case KindTimeoutPending:
		return o.pendingPayload()
	}

	payload := map[string]any{
		normalize.FieldRequestID: o.RequestID,
		"outcome":                string(o.Kind),
	}
	if o.Err != nil {
		payload["error"] = o.Err.Error()
	}
	if o.Response != nil {
		payload[normalize.FieldStatus] = o.Response.Status.String()
		payload[normalize.FieldProgress] = o.Response.Progress
	}
	return payload
}

func (o Outcome) pendingPayload() map[string]any {
	resp := normalize.PollResponse{Status: normalize.StatusPending}
	if o.Response != nil {
		resp = *o.Response
	}

	requestID := resp.RequestID
	if requestID == "" {
		requestID = o.RequestID
	}

	return map[string]any{
		normalize.FieldRequestID:  requestID,
		normalize.FieldStatus:     resp.Status.String(),
		normalize.FieldProgress:   resp.Progress,
		normalize.FieldResultURL:  resp.ResultURL,
		normalize.FieldEffectType: resp.EffectType,
		"message":                 PendingMessage,
	}
}
