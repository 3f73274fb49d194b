package genrelay

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/jpalmerr/genrelay/internal/poller"
)

// relayConfig holds mutable state during Relay construction.
type relayConfig struct {
	apiBase           string
	credential        string
	port              int
	logger            *slog.Logger
	policy            PollPolicy
	requestTimeout    time.Duration
	generateTimeout   time.Duration
	downloadTimeout   time.Duration
	maxDownloadSize   int64
	storeCapacity     int
	progressCallbacks []func(Progress)
}

// Option configures a [Relay] during construction.
// Options return an error if validation fails.
type Option func(*relayConfig) error

// PollPolicy sets the timing of smart_poll_result.
type PollPolicy struct {
	// InitialDelay is waited once before the first query.
	InitialDelay time.Duration

	// Interval is waited between queries.
	Interval time.Duration

	// MaxDuration is the budget measured from the first query.
	MaxDuration time.Duration
}

// WithAPIBase sets the root URL of the remote API.
// Defaults to https://open.eternalai.org.
//
// Returns an error if the URL is not absolute http or https.
func WithAPIBase(base string) Option {
	return func(cfg *relayConfig) error {
		u, err := url.Parse(base)
		if err != nil {
			return fmt.Errorf("invalid api base: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("api base scheme must be http or https, got %q", u.Scheme)
		}
		if u.Host == "" {
			return errors.New("api base must have a host")
		}
		cfg.apiBase = base
		return nil
	}
}

// WithCredential sets the default API key.
//
// Tools that require a key report a missing-key result when neither this nor
// a per-call credential is set.
func WithCredential(key string) Option {
	return func(cfg *relayConfig) error {
		cfg.credential = key
		return nil
	}
}

// WithPort sets the HTTP port used by [Relay.Start]. Defaults to 8080.
//
// Returns an error if the port is outside the valid range (1-65535).
func WithPort(port int) Option {
	return func(cfg *relayConfig) error {
		if port < 1 || port > 65535 {
			return errors.New("port must be between 1 and 65535")
		}
		cfg.port = port
		return nil
	}
}

// WithLogger sets a custom [slog.Logger]. If not specified, [slog.Default]
// is used.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *relayConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithPollPolicy overrides the polling timing.
//
// Returns an error if the initial delay is negative or if the interval or
// budget is not positive.
func WithPollPolicy(p PollPolicy) Option {
	return func(cfg *relayConfig) error {
		if err := p.toPoller().Validate(); err != nil {
			return fmt.Errorf("invalid poll policy: %w", err)
		}
		cfg.policy = p
		return nil
	}
}

func (p PollPolicy) toPoller() poller.Policy {
	return poller.Policy{InitialDelay: p.InitialDelay, Interval: p.Interval, MaxDuration: p.MaxDuration}
}

// WithRequestTimeout bounds listing and poll queries. Defaults to 30s.
func WithRequestTimeout(d time.Duration) Option {
	return func(cfg *relayConfig) error {
		if d <= 0 {
			return errors.New("request timeout must be positive")
		}
		cfg.requestTimeout = d
		return nil
	}
}

// WithGenerateTimeout bounds the generate calls. Defaults to 60s.
func WithGenerateTimeout(d time.Duration) Option {
	return func(cfg *relayConfig) error {
		if d <= 0 {
			return errors.New("generate timeout must be positive")
		}
		cfg.generateTimeout = d
		return nil
	}
}

// WithDownloadTimeout bounds media downloads of display_media. Defaults to 30s.
func WithDownloadTimeout(d time.Duration) Option {
	return func(cfg *relayConfig) error {
		if d <= 0 {
			return errors.New("download timeout must be positive")
		}
		cfg.downloadTimeout = d
		return nil
	}
}

// WithMaxDownloadSize caps the size of images inlined by display_media.
// Defaults to 20MB.
func WithMaxDownloadSize(n int64) Option {
	return func(cfg *relayConfig) error {
		if n <= 0 {
			return errors.New("max download size must be positive")
		}
		cfg.maxDownloadSize = n
		return nil
	}
}

// WithProgressHistory sets how many polls the progress store keeps.
// Defaults to 256.
func WithProgressHistory(n int) Option {
	return func(cfg *relayConfig) error {
		if n <= 0 {
			return errors.New("progress history must be positive")
		}
		cfg.storeCapacity = n
		return nil
	}
}

// WithProgressCallback registers a function called after every poll query.
//
// Multiple callbacks may be registered; they execute in registration order
// on the polling goroutine, so they must not block. Panics within callbacks
// are recovered and logged.
//
// Nil callbacks are silently ignored.
func WithProgressCallback(cb func(Progress)) Option {
	return func(cfg *relayConfig) error {
		if cb == nil {
			return nil
		}
		cfg.progressCallbacks = append(cfg.progressCallbacks, cb)
		return nil
	}
}

// DefaultPollPolicy returns the polling timing used when [WithPollPolicy] is
// not given: 30s initial delay, 15s interval, 120s budget.
func DefaultPollPolicy() PollPolicy {
	p := poller.DefaultPolicy()
	return PollPolicy{InitialDelay: p.InitialDelay, Interval: p.Interval, MaxDuration: p.MaxDuration}
}
