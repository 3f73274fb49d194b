package genrelay

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/google/uuid"

	"github.com/jpalmerr/genrelay/dashboard"
	"github.com/jpalmerr/genrelay/internal/apiclient"
	"github.com/jpalmerr/genrelay/internal/poller"
	"github.com/jpalmerr/genrelay/internal/server"
	"github.com/jpalmerr/genrelay/internal/store"
	"github.com/jpalmerr/genrelay/internal/tools"
)

const (
	// DefaultAPIBase is the public endpoint of the remote API.
	DefaultAPIBase = "https://open.eternalai.org"

	defaultPort = 8080
)

// Relay is the main orchestrator: it owns the API client, the poller, the
// tool catalogue and the progress store.
//
// The typical lifecycle is:
//
//	relay, err := genrelay.New(genrelay.WithCredential(key))
//	if err != nil {
//	    slog.Error("failed to create relay", "error", err)
//	    os.Exit(1)
//	}
//
//	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer cancel()
//
//	relay.Start(ctx) // blocks until context cancelled
//
// A Relay is safe for concurrent use.
type Relay struct {
	apiBase           string
	port              int
	policy            PollPolicy
	logger            *slog.Logger
	progressCallbacks []func(Progress)

	api      *apiclient.API
	poller   *poller.Poller
	registry *tools.Registry
	store    *store.MemoryStore
}

// New creates a new [Relay] with the given options.
//
// Defaults:
//   - API base: https://open.eternalai.org
//   - Port: 8080
//   - Poll policy: 30s initial delay, 15s interval, 120s budget
//
// Returns an error if any option is invalid.
func New(opts ...Option) (*Relay, error) {
	cfg := &relayConfig{
		apiBase:         DefaultAPIBase,
		port:            defaultPort,
		policy:          DefaultPollPolicy(),
		requestTimeout:  apiclient.DefaultRequestTimeout,
		generateTimeout: apiclient.DefaultGenerateTimeout,
		downloadTimeout: apiclient.DefaultDownloadTimeout,
		maxDownloadSize: apiclient.DefaultMaxDownloadSize,
		storeCapacity:   store.DefaultCapacity,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	r := &Relay{
		apiBase:           cfg.apiBase,
		port:              cfg.port,
		policy:            cfg.policy,
		logger:            logger,
		progressCallbacks: cfg.progressCallbacks,
		store:             store.NewMemoryStore(cfg.storeCapacity),
	}

	r.api = apiclient.NewAPI(cfg.apiBase,
		apiclient.WithRequestTimeout(cfg.requestTimeout),
		apiclient.WithGenerateTimeout(cfg.generateTimeout),
		apiclient.WithDownloadTimeout(cfg.downloadTimeout),
		apiclient.WithMaxDownloadSize(cfg.maxDownloadSize),
		apiclient.WithLogger(logger.With("component", "apiclient")),
	)

	r.poller = poller.New(r.api,
		cfg.policy.toPoller(),
		poller.WithLogger(logger.With("component", "poller")),
		poller.WithObserver(r.observe),
	)

	r.registry = tools.NewRegistry(r.api, r.poller,
		tools.WithDefaultCredential(cfg.credential),
		tools.WithLogger(logger.With("component", "tools")),
	)

	return r, nil
}

// Tools returns the declarations of every tool, sorted by name.
func (r *Relay) Tools() []Declaration {
	return r.registry.Declarations()
}

// Call runs the named tool with args.
//
// Failures of the remote API are reported in the [Result] with IsError set.
// The error return is reserved for [ErrUnknownTool] and
// [ErrInvalidArguments]. smart_poll_result blocks until the poll ends or
// ctx is done.
func (r *Relay) Call(ctx context.Context, name string, args map[string]any) (Result, error) {
	return r.registry.Call(ctx, name, args)
}

// WithCallCredential returns a copy of ctx that makes [Relay.Call] use key
// instead of the configured credential.
func WithCallCredential(ctx context.Context, key string) context.Context {
	return tools.WithCredential(ctx, key)
}

// Start serves the tool catalogue over HTTP until ctx is cancelled.
//
// Start is a blocking call. Returns nil on graceful shutdown and an error if
// the HTTP server fails to start.
func (r *Relay) Start(ctx context.Context) error {
	r.logger.Info("genrelay starting",
		"api_base", r.apiBase,
		"tools", len(r.registry.Declarations()),
	)
	r.logger.Info("polling configured",
		"initial_delay", r.policy.InitialDelay.String(),
		"interval", r.policy.Interval.String(),
		"max_duration", r.policy.MaxDuration.String(),
	)

	if ctx.Err() != nil {
		return nil
	}

	httpServer := server.NewServer(r.registry, r.store, dashboard.Assets, r.port, r.logger.With("component", "server"))
	if err := httpServer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	r.logger.Info("tool API available", "url", fmt.Sprintf("http://localhost:%d/api/tools", r.port))

	<-ctx.Done()
	r.logger.Info("genrelay stopped")
	return nil
}

// Progress returns the latest record of each recent poll, oldest first.
func (r *Relay) Progress() []Progress {
	records := r.store.GetAll()
	out := make([]Progress, len(records))
	for i, rec := range records {
		out[i] = recordToProgress(rec)
	}
	return out
}

// APIBase returns the configured API root.
func (r *Relay) APIBase() string {
	return r.apiBase
}

// Port returns the configured HTTP port.
func (r *Relay) Port() int {
	return r.port
}

// PollPolicy returns the configured polling timing.
func (r *Relay) PollPolicy() PollPolicy {
	return r.policy
}

// Close releases idle API connections.
func (r *Relay) Close() {
	r.api.Close()
}

// observe records a poll attempt and fans it out to callbacks.
// The store is updated before callbacks run.
func (r *Relay) observe(obs poller.Observation) {
	rec := observationToRecord(obs)
	r.store.Update(rec)

	if len(r.progressCallbacks) == 0 {
		return
	}
	p := Progress{
		PollID:    obs.PollID,
		RequestID: obs.RequestID,
		Attempt:   obs.Attempt,
		Status:    obs.Status.String(),
		Percent:   obs.Progress,
		Elapsed:   obs.Elapsed,
		CheckedAt: obs.CheckedAt,
		Err:       obs.Err,
	}
	for _, cb := range r.progressCallbacks {
		invokeCallbackSafe(cb, p, r.logger)
	}
}

func observationToRecord(obs poller.Observation) store.ProgressRecord {
	var errStr *string
	if obs.Err != nil {
		s := obs.Err.Error()
		errStr = &s
	}
	return store.ProgressRecord{
		PollID:    obs.PollID,
		RequestID: obs.RequestID,
		Attempt:   obs.Attempt,
		Status:    obs.Status.String(),
		Progress:  obs.Progress,
		ElapsedMs: obs.Elapsed.Milliseconds(),
		CheckedAt: obs.CheckedAt,
		Error:     errStr,
	}
}

func recordToProgress(rec store.ProgressRecord) Progress {
	p := Progress{
		PollID:    rec.PollID,
		RequestID: rec.RequestID,
		Attempt:   rec.Attempt,
		Status:    rec.Status,
		Percent:   rec.Progress,
		Elapsed:   msToDuration(rec.ElapsedMs),
		CheckedAt: rec.CheckedAt,
	}
	if rec.Error != nil {
		p.Err = recordedError(*rec.Error)
	}
	return p
}

// recordedError is an error restored from its message.
type recordedError string

func (e recordedError) Error() string { return string(e) }

// invokeCallbackSafe calls a progress callback with panic recovery.
// Panics are logged with a correlation ID but do not propagate.
func invokeCallbackSafe(cb func(Progress), p Progress, logger *slog.Logger) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("progress callback panicked",
				"correlation_id", uuid.NewString(),
				"panic", fmt.Sprintf("%v", rec),
				"poll_id", p.PollID,
				"request_id", p.RequestID,
				"stack", string(debug.Stack()),
			)
		}
	}()
	cb(p)
}
