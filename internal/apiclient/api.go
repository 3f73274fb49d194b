package apiclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/jpalmerr/genrelay/internal/normalize"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Remote API routes.
const (
	EffectsPath        = "/uncensored-ai/effects"
	GeneratePath       = "/generate"
	GenerateCustomPath = "/base/generate"
	PollResultPath     = "/poll-result"

	// HeaderAPIKey carries the credential on every authenticated call.
	HeaderAPIKey = "x-api-key"
)

const (
	DefaultRequestTimeout  = 30 * time.Second
	DefaultGenerateTimeout = 60 * time.Second
	DefaultDownloadTimeout = 30 * time.Second
	DefaultMaxDownloadSize = 20 << 20 // 20MB
)

// ErrEmptyRequestID is returned by [API.QueryResult] for a blank id.
var ErrEmptyRequestID = errors.New("request id is required")

// EffectRequest is the body of POST /generate.
type EffectRequest struct {
	EffectID string   `json:"effect_id"`
	Images   []string `json:"images,omitempty"`
}

// CustomRequest is the body of POST /base/generate.
type CustomRequest struct {
	Prompt string   `json:"prompt"`
	Type   string   `json:"type"`
	Images []string `json:"images,omitempty"`
}

// Media is a downloaded file.
type Media struct {
	Data []byte
}

// API is the typed client for the remote generation API.
//
// API holds no per-call state: the credential is an argument of every
// method, so one API value serves concurrent calls with different keys.
type API struct {
	client          *Client
	baseURL         string
	requestTimeout  time.Duration
	generateTimeout time.Duration
	downloadTimeout time.Duration
	maxDownloadSize int64
	logger          *slog.Logger
}

// Option configures an [API].
type Option func(*API)

// WithRequestTimeout bounds list and poll calls.
func WithRequestTimeout(d time.Duration) Option {
	return func(a *API) { a.requestTimeout = d }
}

// WithGenerateTimeout bounds the two generate calls.
func WithGenerateTimeout(d time.Duration) Option {
	return func(a *API) { a.generateTimeout = d }
}

// WithDownloadTimeout bounds media downloads.
func WithDownloadTimeout(d time.Duration) Option {
	return func(a *API) { a.downloadTimeout = d }
}

// WithMaxDownloadSize caps media downloads.
func WithMaxDownloadSize(n int64) Option {
	return func(a *API) { a.maxDownloadSize = n }
}

// WithLogger sets the logger for per-call debug lines.
func WithLogger(l *slog.Logger) Option {
	return func(a *API) { a.logger = l }
}

// NewAPI creates an [API] rooted at baseURL.
func NewAPI(baseURL string, opts ...Option) *API {
	a := &API{
		client:          NewClient(),
		baseURL:         strings.TrimRight(baseURL, "/"),
		requestTimeout:  DefaultRequestTimeout,
		generateTimeout: DefaultGenerateTimeout,
		downloadTimeout: DefaultDownloadTimeout,
		maxDownloadSize: DefaultMaxDownloadSize,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ListEffects calls GET /uncensored-ai/effects and returns the decoded body.
//
// effectType is omitted when empty and page when not positive. The
// credential is optional for this route and sent only when set.
func (a *API) ListEffects(ctx context.Context, effectType string, page int, credential string) (any, error) {
	q := url.Values{}
	if effectType != "" {
		q.Set("effect_type", effectType)
	}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}

	target := a.baseURL + EffectsPath
	if len(q) > 0 {
		target += "?" + q.Encode()
	}

	resp := a.fetch(ctx, http.MethodGet, target, credential, nil, a.requestTimeout)
	if resp.Error != nil {
		return nil, resp.Error
	}

	var out any
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return nil, &normalize.FormatError{Reason: fmt.Sprintf("invalid JSON: %v", err), Body: resp.Body}
	}
	return out, nil
}

// GenerateWithEffect calls POST /generate.
func (a *API) GenerateWithEffect(ctx context.Context, credential string, req EffectRequest) (normalize.GenerateResponse, error) {
	return a.generate(ctx, GeneratePath, credential, req)
}

// GenerateCustom calls POST /base/generate.
func (a *API) GenerateCustom(ctx context.Context, credential string, req CustomRequest) (normalize.GenerateResponse, error) {
	return a.generate(ctx, GenerateCustomPath, credential, req)
}

func (a *API) generate(ctx context.Context, path, credential string, payload any) (normalize.GenerateResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return normalize.GenerateResponse{}, fmt.Errorf("failed to encode request: %w", err)
	}

	resp := a.fetch(ctx, http.MethodPost, a.baseURL+path, credential, body, a.generateTimeout)
	if resp.Error != nil {
		return normalize.GenerateResponse{}, resp.Error
	}
	return normalize.ParseGenerate(resp.Body)
}

// QueryResult calls GET /poll-result/{requestID} once and normalizes the
// answer.
//
// Errors are a *TransportError for exchange failures or a
// *normalize.FormatError for a body that is not a JSON object.
func (a *API) QueryResult(ctx context.Context, requestID, credential string) (normalize.PollResponse, error) {
	if strings.TrimSpace(requestID) == "" {
		return normalize.PollResponse{}, ErrEmptyRequestID
	}

	target := a.baseURL + PollResultPath + "/" + url.PathEscape(requestID)
	resp := a.fetch(ctx, http.MethodGet, target, credential, nil, a.requestTimeout)
	if resp.Error != nil {
		return normalize.PollResponse{}, resp.Error
	}
	return normalize.Normalize(resp.Body)
}

// Download fetches media from an arbitrary http(s) URL. No credential is
// sent: result URLs point at public storage.
func (a *API) Download(ctx context.Context, mediaURL string) (Media, error) {
	resp := a.client.Download(ctx, mediaURL, a.downloadTimeout, a.maxDownloadSize)
	a.logger.Debug("media download", "status", resp.StatusCode, "latency", resp.Latency.String(), "bytes", len(resp.Body))
	if resp.Error != nil {
		return Media{}, resp.Error
	}
	return Media{Data: resp.Body}, nil
}

// fetch runs one authenticated exchange and logs its outcome. The target
// query string is left out of the log line.
func (a *API) fetch(ctx context.Context, method, target, credential string, body []byte, timeout time.Duration) Response {
	resp := a.client.Fetch(ctx, method, target, authHeaders(credential), body, timeout)
	path := target
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	a.logger.Debug("upstream call",
		"method", method,
		"path", strings.TrimPrefix(path, a.baseURL),
		"status", resp.StatusCode,
		"latency", resp.Latency.String(),
	)
	return resp
}

// Close releases idle connections.
func (a *API) Close() {
	if a == nil {
		return
	}
	a.client.Close()
}

func authHeaders(credential string) map[string]string {
	if credential == "" {
		return nil
	}
	return map[string]string{HeaderAPIKey: credential}
}
