package config

import (
	"io"
	"log/slog"
	"testing"
	"time"
)

func TestBuild_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(``))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	relay, err := Build(cfg, nil)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	defer relay.Close()

	if relay.APIBase() != "https://open.eternalai.org" {
		t.Errorf("APIBase() = %q, want default", relay.APIBase())
	}
	if relay.Port() != 8080 {
		t.Errorf("Port() = %d, want 8080", relay.Port())
	}
	if relay.PollPolicy().Interval != 15*time.Second {
		t.Errorf("PollPolicy().Interval = %v, want 15s", relay.PollPolicy().Interval)
	}
}

func TestBuild_FullConfig(t *testing.T) {
	yaml := `
api_base: http://localhost:9000
api_key: key-123
port: 9090
request_timeout: 10s
generate_timeout: 45s
download_timeout: 20s
max_download_size: 4096
progress_history: 8

poll:
  initial_delay: 0s
  interval: 2s
  max_duration: 10s
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	relay, err := Build(cfg, logger)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	defer relay.Close()

	if relay.APIBase() != "http://localhost:9000" {
		t.Errorf("APIBase() = %q, want http://localhost:9000", relay.APIBase())
	}
	if relay.Port() != 9090 {
		t.Errorf("Port() = %d, want 9090", relay.Port())
	}

	p := relay.PollPolicy()
	if p.InitialDelay != 0 {
		t.Errorf("InitialDelay = %v, want 0", p.InitialDelay)
	}
	if p.Interval != 2*time.Second {
		t.Errorf("Interval = %v, want 2s", p.Interval)
	}
	if p.MaxDuration != 10*time.Second {
		t.Errorf("MaxDuration = %v, want 10s", p.MaxDuration)
	}
}

func TestBuildOptions_SkipsZeroValues(t *testing.T) {
	cfg := &Config{APIBase: "https://example.com", Port: 8080}

	// api base, port and poll policy are always present
	if got := len(BuildOptions(cfg, nil)); got != 3 {
		t.Errorf("len(BuildOptions()) = %d, want 3", got)
	}

	cfg.APIKey = "k"
	cfg.RequestTimeout = Duration(5 * time.Second)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if got := len(BuildOptions(cfg, logger)); got != 6 {
		t.Errorf("len(BuildOptions()) = %d, want 6", got)
	}
}

func TestBuild_InvalidConfigRejectedByRelay(t *testing.T) {
	// bypasses Parse validation to confirm the relay options validate too
	cfg := &Config{APIBase: "ftp://example.com", Port: 8080}

	if _, err := Build(cfg, nil); err == nil {
		t.Fatal("Build() expected error for ftp api base, got nil")
	}
}
