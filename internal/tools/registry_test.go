package tools

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpalmerr/genrelay/internal/apiclient"
	"github.com/jpalmerr/genrelay/internal/normalize"
	"github.com/jpalmerr/genrelay/internal/poller"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeAPI records calls and returns canned answers.
type fakeAPI struct {
	mu sync.Mutex

	effectsBody any
	generate    normalize.GenerateResponse
	media       apiclient.Media
	err         error

	lastCredential string
	lastEffectType string
	lastPage       int
	lastEffect     apiclient.EffectRequest
	lastCustom     apiclient.CustomRequest
	downloads      []string
	calls          int
}

func (f *fakeAPI) record(credential string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastCredential = credential
}

func (f *fakeAPI) ListEffects(_ context.Context, effectType string, page int, credential string) (any, error) {
	f.record(credential)
	f.lastEffectType = effectType
	f.lastPage = page
	return f.effectsBody, f.err
}

func (f *fakeAPI) GenerateWithEffect(_ context.Context, credential string, req apiclient.EffectRequest) (normalize.GenerateResponse, error) {
	f.record(credential)
	f.lastEffect = req
	return f.generate, f.err
}

func (f *fakeAPI) GenerateCustom(_ context.Context, credential string, req apiclient.CustomRequest) (normalize.GenerateResponse, error) {
	f.record(credential)
	f.lastCustom = req
	return f.generate, f.err
}

func (f *fakeAPI) Download(_ context.Context, url string) (apiclient.Media, error) {
	f.record("")
	f.downloads = append(f.downloads, url)
	return f.media, f.err
}

// fakePoller returns a fixed outcome and records the request.
type fakePoller struct {
	out  poller.Outcome
	last poller.Request
}

func (f *fakePoller) Poll(_ context.Context, req poller.Request) poller.Outcome {
	f.last = req
	out := f.out
	out.RequestID = req.RequestID
	return out
}

func newTestRegistry(api *fakeAPI, p *fakePoller, opts ...Option) *Registry {
	if p == nil {
		p = &fakePoller{}
	}
	opts = append([]Option{WithLogger(testLogger())}, opts...)
	return NewRegistry(api, p, opts...)
}

func TestRegistry_DeclarationsSorted(t *testing.T) {
	r := newTestRegistry(&fakeAPI{}, nil)

	decls := r.Declarations()
	names := make([]string, len(decls))
	for i, d := range decls {
		names[i] = d.Name
		assert.NotEmpty(t, d.Description, d.Name)
		require.NotNil(t, d.InputSchema, d.Name)
		assert.Equal(t, "object", d.InputSchema.Type)
	}

	assert.Equal(t, []string{
		"display_media",
		"generate_custom_advanced",
		"generate_with_effect",
		"get_visual_effects",
		"smart_poll_result",
	}, names)
}

func TestRegistry_UnknownTool(t *testing.T) {
	r := newTestRegistry(&fakeAPI{}, nil)

	_, err := r.Call(context.Background(), "make_coffee", nil)

	assert.ErrorIs(t, err, ErrUnknownTool)
	assert.Contains(t, err.Error(), "make_coffee")
}

func TestRegistry_InvalidArguments(t *testing.T) {
	r := newTestRegistry(&fakeAPI{}, nil)

	_, err := r.Call(context.Background(), "generate_with_effect", map[string]any{
		"effect_id": "fx",
		"images":    map[string]any{"not": "a list"},
	})

	assert.ErrorIs(t, err, ErrInvalidArguments)
}

func TestCredentialResolution(t *testing.T) {
	api := &fakeAPI{generate: normalize.GenerateResponse{RequestID: "r"}}
	r := newTestRegistry(api, nil, WithDefaultCredential("configured"))
	args := map[string]any{"effect_id": "fx"}

	_, err := r.Call(context.Background(), "generate_with_effect", args)
	require.NoError(t, err)
	assert.Equal(t, "configured", api.lastCredential)

	_, err = r.Call(WithCredential(context.Background(), "per-call"), "generate_with_effect", args)
	require.NoError(t, err)
	assert.Equal(t, "per-call", api.lastCredential)

	_, err = r.Call(WithCredential(context.Background(), ""), "generate_with_effect", args)
	require.NoError(t, err)
	assert.Equal(t, "configured", api.lastCredential, "empty credential falls back")
}

func TestGetVisualEffects(t *testing.T) {
	api := &fakeAPI{effectsBody: map[string]any{"effects": []any{"a"}}}
	r := newTestRegistry(api, nil)

	res, err := r.Call(context.Background(), "get_visual_effects", map[string]any{"effect_type": "video", "page": "3"})
	require.NoError(t, err)

	assert.False(t, res.IsError)
	assert.Equal(t, "video", api.lastEffectType)
	assert.Equal(t, 3, api.lastPage, "weakly typed page")
	assert.Equal(t, "", api.lastCredential, "no credential configured")
	assert.Equal(t, "{\n  \"effects\": [\n    \"a\"\n  ]\n}", res.Text())
}

func TestGetVisualEffects_DefaultPage(t *testing.T) {
	api := &fakeAPI{effectsBody: map[string]any{}}
	r := newTestRegistry(api, nil)

	_, err := r.Call(context.Background(), "get_visual_effects", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, api.lastPage)
	assert.Equal(t, "", api.lastEffectType)
}

func TestGetVisualEffects_BadType(t *testing.T) {
	api := &fakeAPI{}
	r := newTestRegistry(api, nil)

	res, err := r.Call(context.Background(), "get_visual_effects", map[string]any{"effect_type": "audio"})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Zero(t, api.calls)
}

func TestGenerate_MissingCredential(t *testing.T) {
	for _, name := range []string{"generate_with_effect", "generate_custom_advanced"} {
		t.Run(name, func(t *testing.T) {
			api := &fakeAPI{}
			r := newTestRegistry(api, nil)

			res, err := r.Call(context.Background(), name, map[string]any{
				"effect_id": "fx", "prompt": "p", "type": "image",
			})
			require.NoError(t, err)

			assert.True(t, res.IsError)
			assert.Equal(t, MissingCredentialMessage, res.Text())
			assert.Zero(t, api.calls)
		})
	}
}

func TestGenerate_Validation(t *testing.T) {
	tests := []struct {
		name string
		tool string
		args map[string]any
		want string
	}{
		{"missing effect", "generate_with_effect", map[string]any{}, "Effect ID is required"},
		{"missing prompt", "generate_custom_advanced", map[string]any{"type": "image"}, "Prompt is required"},
		{"missing type", "generate_custom_advanced", map[string]any{"prompt": "p"}, "Type is required (image or video)"},
		{"bad type", "generate_custom_advanced", map[string]any{"prompt": "p", "type": "gif"}, "Type must be 'image' or 'video'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{}
			r := newTestRegistry(api, nil, WithDefaultCredential("k"))

			res, err := r.Call(context.Background(), tt.tool, tt.args)
			require.NoError(t, err)
			assert.True(t, res.IsError)
			assert.Equal(t, tt.want, res.Text())
			assert.Zero(t, api.calls)
		})
	}
}

func TestGenerateWithEffect(t *testing.T) {
	code := 1
	api := &fakeAPI{generate: normalize.GenerateResponse{
		RequestID:  "req-7",
		Status:     "pending",
		StatusCode: &code,
	}}
	r := newTestRegistry(api, nil, WithDefaultCredential("k"))

	res, err := r.Call(context.Background(), "generate_with_effect", map[string]any{
		"effect_id": "fx-1",
		"images":    []any{"https://img/1.png"},
	})
	require.NoError(t, err)

	assert.False(t, res.IsError)
	assert.Equal(t, apiclient.EffectRequest{EffectID: "fx-1", Images: []string{"https://img/1.png"}}, api.lastEffect)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.Text()), &got))
	assert.Equal(t, "req-7", got["request_id"])
	assert.Equal(t, float64(1), got["status_code"])
	assert.Equal(t, "", got["result"])
}

func TestGenerateCustom(t *testing.T) {
	api := &fakeAPI{generate: normalize.GenerateResponse{RequestID: "req-8"}}
	r := newTestRegistry(api, nil, WithDefaultCredential("k"))

	res, err := r.Call(context.Background(), "generate_custom_advanced", map[string]any{
		"prompt": "a fox",
		"type":   "video",
	})
	require.NoError(t, err)

	assert.False(t, res.IsError)
	assert.Equal(t, apiclient.CustomRequest{Prompt: "a fox", Type: "video"}, api.lastCustom)
	assert.Contains(t, res.Text(), `"request_id": "req-8"`)
}

func TestAPIErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			"status",
			&apiclient.TransportError{Kind: apiclient.KindStatus, Code: 401, Body: `{"error":"bad key"}`},
			`API Error: 401 - {"error":"bad key"}`,
		},
		{
			"connection",
			&apiclient.TransportError{Kind: apiclient.KindConnection, Detail: "connection refused"},
			"Request Error: connection error: connection refused",
		},
		{
			"other",
			errors.New("boom"),
			"Request Error: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{err: tt.err}
			r := newTestRegistry(api, nil, WithDefaultCredential("k"))

			res, err := r.Call(context.Background(), "generate_with_effect", map[string]any{"effect_id": "fx"})
			require.NoError(t, err)
			assert.True(t, res.IsError)
			assert.Equal(t, tt.want, res.Text())
		})
	}
}

func TestSmartPoll(t *testing.T) {
	tests := []struct {
		name      string
		out       poller.Outcome
		wantError bool
		wantText  string
	}{
		{
			name: "succeeded",
			out: poller.Outcome{Kind: poller.KindSucceeded, Response: &normalize.PollResponse{
				RequestID: "req-1", Status: normalize.StatusSuccess, Progress: 100, ResultURL: "https://cdn/x.png",
			}},
			wantText: `"result_url": "https://cdn/x.png"`,
		},
		{
			name: "failed is a result",
			out: poller.Outcome{Kind: poller.KindFailed, Response: &normalize.PollResponse{
				RequestID: "req-1", Status: normalize.StatusFailed,
			}},
			wantText: `"status": "failed"`,
		},
		{
			name:     "timeout pending is a result",
			out:      poller.Outcome{Kind: poller.KindTimeoutPending},
			wantText: poller.PendingMessage,
		},
		{
			name:      "precondition",
			out:       poller.Outcome{Kind: poller.KindPrecondition, Err: poller.ErrMissingCredential},
			wantError: true,
			wantText:  `"outcome": "precondition_failed"`,
		},
		{
			name:      "error",
			out:       poller.Outcome{Kind: poller.KindError, Err: errors.New("API Error: 404 - gone")},
			wantError: true,
			wantText:  `"error": "API Error: 404 - gone"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakePoller{out: tt.out}
			r := newTestRegistry(&fakeAPI{}, p, WithDefaultCredential("k"))

			res, err := r.Call(context.Background(), "smart_poll_result", map[string]any{"request_id": "req-1"})
			require.NoError(t, err)

			assert.Equal(t, tt.wantError, res.IsError)
			assert.Contains(t, res.Text(), tt.wantText)
			assert.Equal(t, poller.Request{RequestID: "req-1", Credential: "k"}, p.last)
		})
	}
}

func TestSmartPoll_PassesBlankIDToPoller(t *testing.T) {
	p := &fakePoller{out: poller.Outcome{Kind: poller.KindPrecondition, Err: poller.ErrMissingRequestID}}
	r := newTestRegistry(&fakeAPI{}, p)

	res, err := r.Call(WithCredential(context.Background(), "ctx-key"), "smart_poll_result", map[string]any{})
	require.NoError(t, err)

	assert.True(t, res.IsError)
	assert.Equal(t, "", p.last.RequestID)
	assert.Equal(t, "ctx-key", p.last.Credential)
}

func TestSmartPoll_NestedPayloadIndented(t *testing.T) {
	resp, err := normalize.Normalize([]byte(`{"status": 200, "request_id": "req-9", "data": {"status": "success", "progress": 100, "result": {"urls": ["a", "b"]}}}`))
	require.NoError(t, err)
	p := &fakePoller{out: poller.Outcome{Kind: poller.KindSucceeded, RequestID: "req-9", Response: &resp}}
	r := newTestRegistry(&fakeAPI{}, p, WithDefaultCredential("k"))

	res, err := r.Call(context.Background(), "smart_poll_result", map[string]any{"request_id": "req-9"})
	require.NoError(t, err)

	want := `{
  "effect_type": "",
  "progress": 100,
  "request_id": "req-9",
  "result": {
    "urls": [
      "a",
      "b"
    ]
  },
  "result_url": "",
  "status": "success",
  "status_code": 200
}`
	assert.False(t, res.IsError)
	assert.Equal(t, want, res.Text())
}

func TestMarshalIndent_NestedLevels(t *testing.T) {
	out, err := MarshalIndent(map[string]any{"a": []any{map[string]any{"b": []any{1}}}})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": [\n    {\n      \"b\": [\n        1\n      ]\n    }\n  ]\n}", string(out))
}

func TestDisplayMedia_Image(t *testing.T) {
	api := &fakeAPI{media: apiclient.Media{Data: []byte("png-bytes")}}
	r := newTestRegistry(api, nil)

	res, err := r.Call(context.Background(), "display_media", map[string]any{"url": "https://cdn.example.com/a/b.PNG?sig=1"})
	require.NoError(t, err)

	require.Len(t, res.Content, 1)
	block := res.Content[0]
	assert.Equal(t, ContentImage, block.Type)
	assert.Equal(t, "image/png", block.MimeType)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("png-bytes")), block.Data)
	assert.Equal(t, []string{"https://cdn.example.com/a/b.PNG?sig=1"}, api.downloads)
}

func TestDisplayMedia_VideoIsLinked(t *testing.T) {
	api := &fakeAPI{}
	r := newTestRegistry(api, nil)
	u := "https://cdn.example.com/clip.mp4"

	res, err := r.Call(context.Background(), "display_media", map[string]any{"url": u})
	require.NoError(t, err)

	assert.False(t, res.IsError)
	assert.Equal(t, "![Media]("+u+")\n\nMedia URL: "+u, res.Text())
	assert.Empty(t, api.downloads)
}

func TestDisplayMedia_Errors(t *testing.T) {
	tests := []struct {
		name string
		url  string
		err  error
		want string
	}{
		{"missing url", "", nil, "URL is required"},
		{"bad scheme", "ftp://host/x.png", nil, "URL must use http or https protocol"},
		{"download status", "https://h/x.jpg", &apiclient.TransportError{Kind: apiclient.KindStatus, Code: 403}, "Failed to download image: 403"},
		{"download failure", "https://h/x.jpg", errors.New("reset"), "Failed to download image: reset"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRegistry(&fakeAPI{err: tt.err}, nil)

			res, err := r.Call(context.Background(), "display_media", map[string]any{"url": tt.url})
			require.NoError(t, err)
			assert.True(t, res.IsError)
			assert.Equal(t, tt.want, res.Text())
		})
	}
}
