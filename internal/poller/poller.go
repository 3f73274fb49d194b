package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jpalmerr/genrelay/internal/normalize"
)

// Querier performs one status query for a generation job.
//
// Errors that implement Transient() bool and report true are retried
// within the budget. Every other error ends the invocation.
type Querier interface {
	QueryResult(ctx context.Context, requestID, credential string) (normalize.PollResponse, error)
}

// Request is the input of one poll invocation.
type Request struct {
	RequestID  string
	Credential string
}

// Observation describes one query attempt.
type Observation struct {
	PollID    string
	RequestID string
	Attempt   int
	Status    normalize.Status
	Progress  int
	Elapsed   time.Duration
	CheckedAt time.Time

	// Err is set when the attempt failed.
	Err error
}

// Poller runs poll invocations.
//
// A Poller carries only configuration. Every call to [Poller.Poll] keeps its
// own timers and counters, so concurrent calls, including calls for the same
// request id, are independent and need no locking.
type Poller struct {
	querier Querier
	policy  Policy
	clock   Clock
	logger  *slog.Logger
	observe func(Observation)
}

// Option configures a [Poller].
type Option func(*Poller)

// WithClock replaces the real clock, typically with a fake in tests.
func WithClock(c Clock) Option {
	return func(p *Poller) { p.clock = c }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(p *Poller) { p.logger = l }
}

// WithObserver registers fn to be called after every query attempt.
// fn runs on the polling goroutine and must not block for long.
func WithObserver(fn func(Observation)) Option {
	return func(p *Poller) { p.observe = fn }
}

// New creates a [Poller] that queries q under policy.
func New(q Querier, policy Policy, opts ...Option) *Poller {
	p := &Poller{
		querier: q,
		policy:  policy,
		clock:   RealClock(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Poll observes one generation job until it finishes, the budget runs out,
// or ctx is done. It returns exactly one [Outcome] and never panics on
// querier errors.
//
// A response with a terminal status wins over the deadline check in the
// same iteration, so a late success is still reported as a success.
func (p *Poller) Poll(ctx context.Context, req Request) Outcome {
	out := Outcome{
		PollID:    uuid.NewString(),
		RequestID: strings.TrimSpace(req.RequestID),
	}
	logger := p.logger.With("poll_id", out.PollID, "request_id", out.RequestID)

	if out.RequestID == "" {
		return out.with(KindPrecondition, &PreconditionError{Err: ErrMissingRequestID})
	}
	credential := strings.TrimSpace(req.Credential)
	if credential == "" {
		return out.with(KindPrecondition, &PreconditionError{Err: ErrMissingCredential})
	}
	if err := ctx.Err(); err != nil {
		return out.with(KindCanceled, canceled(err))
	}

	logger.Debug("waiting before first poll", "initial_delay", p.policy.InitialDelay.String())
	if err := p.clock.Sleep(ctx, p.policy.InitialDelay); err != nil {
		logger.Info("poll canceled during initial wait")
		return out.with(KindCanceled, canceled(err))
	}

	start := p.clock.Now()

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return out.with(KindCanceled, canceled(err))
		}

		resp, err := p.querier.QueryResult(ctx, out.RequestID, credential)
		elapsed := p.clock.Now().Sub(start)
		out.Attempts = attempt
		out.Elapsed = elapsed

		// the caller's cancellation outranks whatever the in-flight query
		// reported, including its own timeout
		if ctxErr := ctx.Err(); ctxErr != nil {
			logger.Info("poll canceled during query", "attempt", attempt)
			return out.with(KindCanceled, canceled(ctxErr))
		}

		obs := Observation{
			PollID:    out.PollID,
			RequestID: out.RequestID,
			Attempt:   attempt,
			Elapsed:   elapsed,
			CheckedAt: p.clock.Now(),
		}

		if err != nil {
			obs.Err = err
			if out.Response != nil {
				obs.Status = out.Response.Status
				obs.Progress = out.Response.Progress
			}
			p.safeObserve(logger, obs)

			if !isTransient(err) {
				logger.Warn("poll failed", "attempt", attempt, "error", err)
				return out.with(KindError, err)
			}
			if elapsed >= p.policy.MaxDuration {
				logger.Warn("poll error after budget exhausted", "attempt", attempt, "error", err)
				return out.with(KindError, fmt.Errorf("request error after timeout: %w", err))
			}
			logger.Warn("poll error, will retry", "attempt", attempt, "error", err)
		} else {
			out.Response = &resp
			obs.Status = resp.Status
			obs.Progress = resp.Progress
			p.safeObserve(logger, obs)

			if resp.Status.IsTerminal() {
				out.Kind = KindFailed
				if resp.Status.IsSuccess() {
					out.Kind = KindSucceeded
				}
				logger.Info("task finished", "attempt", attempt, "status", resp.Status.String(), "elapsed", elapsed.String())
				return out
			}

			logger.Debug("still processing", "attempt", attempt, "status", resp.Status.String(), "progress", resp.Progress)

			if elapsed >= p.policy.MaxDuration {
				logger.Info("polling budget reached", "max_duration", p.policy.MaxDuration.String(), "progress", resp.Progress)
				out.Kind = KindTimeoutPending
				return out
			}
		}

		if err := p.clock.Sleep(ctx, p.policy.Interval); err != nil {
			logger.Info("poll canceled between attempts", "attempt", attempt)
			return out.with(KindCanceled, canceled(err))
		}
	}
}

func (o Outcome) with(kind Kind, err error) Outcome {
	o.Kind = kind
	o.Err = err
	return o
}

func canceled(err error) error {
	return fmt.Errorf("polling canceled: %w", err)
}

// isTransient reports whether err asks to be retried.
func isTransient(err error) bool {
	var t interface{ Transient() bool }
	return errors.As(err, &t) && t.Transient()
}

// safeObserve calls the observer with panic recovery. A panicking observer
// is logged with a correlation ID and otherwise ignored.
func (p *Poller) safeObserve(logger *slog.Logger, obs Observation) {
	if p.observe == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Error("observer panic",
				"correlation_id", uuid.NewString(),
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
		}
	}()
	p.observe(obs)
}
