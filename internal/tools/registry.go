package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/jpalmerr/genrelay/internal/apiclient"
	"github.com/jpalmerr/genrelay/internal/normalize"
	"github.com/jpalmerr/genrelay/internal/poller"
)

var (
	// ErrUnknownTool is returned by [Registry.Call] for a name not in the
	// catalogue.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrInvalidArguments is returned when arguments cannot be decoded into
	// the tool's request.
	ErrInvalidArguments = errors.New("invalid arguments")
)

// MissingCredentialMessage is the result text of tools that need a
// credential and got none.
const MissingCredentialMessage = "API key is required. Please set ETERNAL_AI_API_KEY environment variable."

// API is the remote API surface used by the tools.
type API interface {
	ListEffects(ctx context.Context, effectType string, page int, credential string) (any, error)
	GenerateWithEffect(ctx context.Context, credential string, req apiclient.EffectRequest) (normalize.GenerateResponse, error)
	GenerateCustom(ctx context.Context, credential string, req apiclient.CustomRequest) (normalize.GenerateResponse, error)
	Download(ctx context.Context, url string) (apiclient.Media, error)
}

// Poller waits for a generation job.
type Poller interface {
	Poll(ctx context.Context, req poller.Request) poller.Outcome
}

// Registry holds the catalogue and dispatches calls by name.
type Registry struct {
	api        API
	poller     Poller
	credential string
	logger     *slog.Logger
	tools      map[string]Tool
}

// Option configures a [Registry].
type Option func(*Registry)

// WithDefaultCredential sets the credential used when the call context
// carries none.
func WithDefaultCredential(credential string) Option {
	return func(r *Registry) { r.credential = credential }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// NewRegistry builds the full catalogue on top of api and p.
func NewRegistry(api API, p Poller, opts ...Option) *Registry {
	r := &Registry{
		api:    api,
		poller: p,
		logger: slog.Default(),
		tools:  make(map[string]Tool),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.register(r.visualEffectsTool())
	r.register(r.generateWithEffectTool())
	r.register(r.generateCustomTool())
	r.register(r.smartPollTool())
	r.register(r.displayMediaTool())
	return r
}

func (r *Registry) register(t Tool) {
	r.tools[t.Declaration().Name] = t
}

// Declarations returns every tool declaration sorted by name.
func (r *Registry) Declarations() []Declaration {
	decls := make([]Declaration, 0, len(r.tools))
	for _, t := range r.tools {
		decls = append(decls, t.Declaration())
	}
	sort.Slice(decls, func(i, j int) bool { return decls[i].Name < decls[j].Name })
	return decls
}

// Call runs the named tool.
//
// The returned error is reserved for calls that could not be dispatched:
// [ErrUnknownTool] and [ErrInvalidArguments]. Failures of the remote API are
// reported as a [Result] with IsError set.
func (r *Registry) Call(ctx context.Context, name string, args map[string]any) (Result, error) {
	t, ok := r.tools[name]
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}

	start := time.Now()
	r.logger.Debug("tool call", "tool", name)

	res, err := t.Call(ctx, args)
	if err != nil {
		r.logger.Warn("tool call rejected", "tool", name, "error", err)
		return Result{}, err
	}

	r.logger.Info("tool call finished",
		"tool", name,
		"is_error", res.IsError,
		"duration", time.Since(start).String(),
	)
	return res, nil
}

// credentialFor picks the call's credential, falling back to the default.
func (r *Registry) credentialFor(ctx context.Context) string {
	if c, ok := CredentialFrom(ctx); ok {
		return c
	}
	return r.credential
}
