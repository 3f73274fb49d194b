// Package mockapi is a local fake of the remote generation API for manual
// runs and end-to-end tests.
//
// Jobs advance linearly from 0 to 100 percent over a fixed duration and then
// succeed. Prompts containing "fail" end in the failed status instead.
// Poll responses alternate between the flat and the nested wire shape.
package mockapi

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/jpalmerr/genrelay/internal/apiclient"
	"github.com/jpalmerr/genrelay/internal/normalize"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultJobDuration is how long a job takes to reach 100 percent.
const DefaultJobDuration = 45 * time.Second

// Effect is one entry of the effects listing.
type Effect struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

var catalogue = []Effect{
	{ID: "vintage-film", Name: "Vintage Film", Type: "image"},
	{ID: "watercolor", Name: "Watercolor", Type: "image"},
	{ID: "neon-glow", Name: "Neon Glow", Type: "image"},
	{ID: "slow-zoom", Name: "Slow Zoom", Type: "video"},
	{ID: "parallax", Name: "Parallax", Type: "video"},
}

const pageSize = 2

type job struct {
	effectType string
	fail       bool
	createdAt  time.Time
	polls      int
}

// Server holds the fake API's jobs.
type Server struct {
	mu          sync.Mutex
	jobs        map[string]*job
	jobDuration time.Duration
	now         func() time.Time
	apiKey      string
	logger      *slog.Logger
}

// Option configures a [Server].
type Option func(*Server)

// WithJobDuration sets how long jobs take to finish.
func WithJobDuration(d time.Duration) Option {
	return func(s *Server) { s.jobDuration = d }
}

// WithNow replaces the time source, typically with a fake in tests.
func WithNow(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithAPIKey makes authenticated routes accept only key. By default any
// non-empty key is accepted.
func WithAPIKey(key string) Option {
	return func(s *Server) { s.apiKey = key }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// New creates a fake API server.
func New(opts ...Option) *Server {
	s := &Server{
		jobs:        make(map[string]*job),
		jobDuration: DefaultJobDuration,
		now:         time.Now,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+apiclient.EffectsPath, s.handleEffects)
	mux.HandleFunc("POST "+apiclient.GeneratePath, s.handleGenerateWithEffect)
	mux.HandleFunc("POST "+apiclient.GenerateCustomPath, s.handleGenerateCustom)
	mux.HandleFunc("GET "+apiclient.PollResultPath+"/{id}", s.handlePollResult)
	return mux
}

func (s *Server) handleEffects(w http.ResponseWriter, r *http.Request) {
	effectType := r.URL.Query().Get("effect_type")
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	var matching []Effect
	for _, e := range catalogue {
		if effectType == "" || e.Type == effectType {
			matching = append(matching, e)
		}
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > len(matching) {
		start = len(matching)
	}
	if end > len(matching) {
		end = len(matching)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"effects": matching[start:end],
		"page":    page,
		"total":   len(matching),
	})
}

func (s *Server) handleGenerateWithEffect(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(w, r) {
		return
	}

	var req apiclient.EffectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.EffectID == "" {
		http.Error(w, "effect_id is required", http.StatusBadRequest)
		return
	}

	effectType := "image"
	for _, e := range catalogue {
		if e.ID == req.EffectID {
			effectType = e.Type
		}
	}

	id := s.startJob(effectType, false)
	s.logger.Info("job started", "request_id", id, "effect_id", req.EffectID)

	// the effect endpoint answers in the flat shape
	writeJSON(w, http.StatusOK, map[string]any{
		normalize.FieldRequestID: id,
		normalize.FieldStatus:    "pending",
		normalize.FieldProgress:  0,
		"result":                 "",
	})
}

func (s *Server) handleGenerateCustom(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(w, r) {
		return
	}

	var req apiclient.CustomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Prompt == "" {
		http.Error(w, "prompt is required", http.StatusBadRequest)
		return
	}
	if req.Type != "image" && req.Type != "video" {
		http.Error(w, "type must be image or video", http.StatusBadRequest)
		return
	}

	fail := strings.Contains(strings.ToLower(req.Prompt), "fail")
	id := s.startJob(req.Type, fail)
	s.logger.Info("job started", "request_id", id, "type", req.Type)

	// the custom endpoint answers in the nested shape
	writeJSON(w, http.StatusOK, map[string]any{
		normalize.FieldStatus:    http.StatusOK,
		normalize.FieldRequestID: id,
		"data": map[string]any{
			normalize.FieldStatus:   "pending",
			normalize.FieldProgress: 0,
		},
	})
}

func (s *Server) handlePollResult(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(w, r) {
		return
	}

	id := r.PathValue("id")

	s.mu.Lock()
	j, ok := s.jobs[id]
	if !ok {
		s.mu.Unlock()
		http.Error(w, "request not found", http.StatusNotFound)
		return
	}
	j.polls++
	polls := j.polls
	fields := s.jobFields(id, j)
	s.mu.Unlock()

	s.logger.Debug("poll", "request_id", id, "status", fields[normalize.FieldStatus], "progress", fields[normalize.FieldProgress])

	if polls%2 == 0 {
		writeJSON(w, http.StatusOK, map[string]any{
			normalize.FieldStatus:    http.StatusOK,
			normalize.FieldRequestID: id,
			"data":                   fields,
		})
		return
	}
	writeJSON(w, http.StatusOK, fields)
}

// jobFields renders the current state of j. s.mu must be held.
func (s *Server) jobFields(id string, j *job) map[string]any {
	progress := 100
	if s.jobDuration > 0 {
		progress = int(s.now().Sub(j.createdAt) * 100 / s.jobDuration)
	}
	if progress > 100 {
		progress = 100
	}

	fields := map[string]any{
		normalize.FieldRequestID:  id,
		normalize.FieldEffectType: j.effectType,
		normalize.FieldProgress:   progress,
	}

	switch {
	case progress < 100:
		fields[normalize.FieldStatus] = "processing"
	case j.fail:
		fields[normalize.FieldStatus] = "failed"
	default:
		fields[normalize.FieldStatus] = "success"
		fields[normalize.FieldResultURL] = "https://media.example.com/" + id + extensionFor(j.effectType)
	}
	return fields
}

func (s *Server) startJob(effectType string, fail bool) string {
	id := uuid.NewString()
	s.mu.Lock()
	s.jobs[id] = &job{effectType: effectType, fail: fail, createdAt: s.now()}
	s.mu.Unlock()
	return id
}

// authorized rejects requests without an acceptable key.
func (s *Server) authorized(w http.ResponseWriter, r *http.Request) bool {
	key := r.Header.Get(apiclient.HeaderAPIKey)
	if key == "" || (s.apiKey != "" && key != s.apiKey) {
		http.Error(w, "invalid api key", http.StatusUnauthorized)
		return false
	}
	return true
}

func extensionFor(effectType string) string {
	if effectType == "video" {
		return ".mp4"
	}
	return ".png"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
