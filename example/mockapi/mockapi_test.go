package mockapi

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpalmerr/genrelay"
	"github.com/jpalmerr/genrelay/internal/normalize"
)

type fakeNow struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeNow) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeNow) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func do(t *testing.T, srv *httptest.Server, method, path, key, body string) (int, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if key != "" {
		req.Header.Set("x-api-key", key)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.Unmarshal(raw, &out), "body: %s", raw)
	}
	return resp.StatusCode, out
}

func TestEffects_FilterAndPage(t *testing.T) {
	srv := httptest.NewServer(New(WithLogger(quietLogger())).Handler())
	defer srv.Close()

	code, body := do(t, srv, http.MethodGet, "/uncensored-ai/effects?effect_type=image&page=2", "", "")
	require.Equal(t, http.StatusOK, code)

	effects := body["effects"].([]any)
	require.Len(t, effects, 1)
	assert.Equal(t, "neon-glow", effects[0].(map[string]any)["id"])
	assert.EqualValues(t, 3, body["total"])
	assert.EqualValues(t, 2, body["page"])
}

func TestEffects_PagePastEnd(t *testing.T) {
	srv := httptest.NewServer(New(WithLogger(quietLogger())).Handler())
	defer srv.Close()

	code, body := do(t, srv, http.MethodGet, "/uncensored-ai/effects?page=9", "", "")
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, body["effects"])
}

func TestGenerate_RequiresKey(t *testing.T) {
	srv := httptest.NewServer(New(WithAPIKey("right"), WithLogger(quietLogger())).Handler())
	defer srv.Close()

	code, _ := do(t, srv, http.MethodPost, "/generate", "", `{"effect_id":"watercolor"}`)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = do(t, srv, http.MethodPost, "/generate", "wrong", `{"effect_id":"watercolor"}`)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = do(t, srv, http.MethodPost, "/generate", "right", `{"effect_id":"watercolor"}`)
	assert.Equal(t, http.StatusOK, code)
}

func TestGenerateCustom_Validation(t *testing.T) {
	srv := httptest.NewServer(New(WithLogger(quietLogger())).Handler())
	defer srv.Close()

	code, _ := do(t, srv, http.MethodPost, "/base/generate", "k", `{"type":"image"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, srv, http.MethodPost, "/base/generate", "k", `{"prompt":"p","type":"audio"}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestPollResult_ProgressAndShapes(t *testing.T) {
	clock := &fakeNow{now: time.Unix(1_700_000_000, 0)}
	srv := httptest.NewServer(New(
		WithJobDuration(100*time.Second),
		WithNow(clock.Now),
		WithLogger(quietLogger()),
	).Handler())
	defer srv.Close()

	code, gen := do(t, srv, http.MethodPost, "/base/generate", "k", `{"prompt":"a fox","type":"video"}`)
	require.Equal(t, http.StatusOK, code)
	id, _ := gen["request_id"].(string)
	require.NotEmpty(t, id)

	clock.Advance(40 * time.Second)
	_, first := do(t, srv, http.MethodGet, "/poll-result/"+id, "k", "")
	resp, err := normalize.NormalizeValue(first)
	require.NoError(t, err)
	assert.Equal(t, normalize.ShapeFlat, resp.Shape)
	assert.Equal(t, normalize.Status("processing"), resp.Status)
	assert.Equal(t, 40, resp.Progress)

	clock.Advance(70 * time.Second)
	_, second := do(t, srv, http.MethodGet, "/poll-result/"+id, "k", "")
	resp, err = normalize.NormalizeValue(second)
	require.NoError(t, err)
	assert.Equal(t, normalize.ShapeNested, resp.Shape)
	assert.Equal(t, normalize.StatusSuccess, resp.Status)
	assert.Equal(t, 100, resp.Progress)
	assert.Equal(t, id, resp.RequestID)
	assert.True(t, strings.HasSuffix(resp.ResultURL, ".mp4"), resp.ResultURL)
}

func TestPollResult_UnknownRequest(t *testing.T) {
	srv := httptest.NewServer(New(WithLogger(quietLogger())).Handler())
	defer srv.Close()

	code, _ := do(t, srv, http.MethodGet, "/poll-result/nope", "k", "")
	assert.Equal(t, http.StatusNotFound, code)
}

// TestRelayEndToEnd drives the real relay against the fake API.
func TestRelayEndToEnd(t *testing.T) {
	srv := httptest.NewServer(New(WithJobDuration(0), WithLogger(quietLogger())).Handler())
	defer srv.Close()

	var mu sync.Mutex
	var seen []genrelay.Progress

	relay, err := genrelay.New(
		genrelay.WithAPIBase(srv.URL),
		genrelay.WithCredential("k"),
		genrelay.WithLogger(quietLogger()),
		genrelay.WithPollPolicy(genrelay.PollPolicy{
			InitialDelay: 0,
			Interval:     10 * time.Millisecond,
			MaxDuration:  5 * time.Second,
		}),
		genrelay.WithProgressCallback(func(p genrelay.Progress) {
			mu.Lock()
			seen = append(seen, p)
			mu.Unlock()
		}),
	)
	require.NoError(t, err)
	defer relay.Close()

	ctx := context.Background()

	tests := []struct {
		name       string
		prompt     string
		wantStatus string
	}{
		{"success", "a lighthouse", "success"},
		{"failure", "please fail", "failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen, err := relay.Call(ctx, "generate_custom_advanced", map[string]any{
				"prompt": tt.prompt,
				"type":   "image",
			})
			require.NoError(t, err)
			require.False(t, gen.IsError, gen.Text())

			var started map[string]any
			require.NoError(t, json.Unmarshal([]byte(gen.Text()), &started))
			id, _ := started["request_id"].(string)
			require.NotEmpty(t, id)
			assert.EqualValues(t, 200, started["status_code"])

			res, err := relay.Call(ctx, "smart_poll_result", map[string]any{"request_id": id})
			require.NoError(t, err)
			assert.False(t, res.IsError, res.Text())

			var final map[string]any
			require.NoError(t, json.Unmarshal([]byte(res.Text()), &final))
			assert.Equal(t, tt.wantStatus, final["status"])
			assert.Equal(t, id, final["request_id"])
		})
	}

	mu.Lock()
	defer mu.Unlock()
	assert.NotEmpty(t, seen)
	assert.NotEmpty(t, relay.Progress())
}
