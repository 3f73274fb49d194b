package poller

import (
	"errors"
	"fmt"
	"time"
)

const (
	DefaultInitialDelay = 30 * time.Second
	DefaultInterval     = 15 * time.Second
	DefaultMaxDuration  = 120 * time.Second
)

// Policy controls the timing of one poll invocation.
type Policy struct {
	// InitialDelay is the quiet period before the first query.
	InitialDelay time.Duration

	// Interval is the wait between consecutive queries.
	Interval time.Duration

	// MaxDuration is the polling budget, measured from the first query.
	MaxDuration time.Duration
}

// DefaultPolicy returns 30s initial delay, 15s interval and a 120s budget.
func DefaultPolicy() Policy {
	return Policy{
		InitialDelay: DefaultInitialDelay,
		Interval:     DefaultInterval,
		MaxDuration:  DefaultMaxDuration,
	}
}

// Validate reports the first invalid field.
func (p Policy) Validate() error {
	if p.InitialDelay < 0 {
		return fmt.Errorf("initial delay cannot be negative, got %s", p.InitialDelay)
	}
	if p.Interval <= 0 {
		return errors.New("poll interval must be positive")
	}
	if p.MaxDuration <= 0 {
		return errors.New("max duration must be positive")
	}
	return nil
}
