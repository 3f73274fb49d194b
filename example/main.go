package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/jpalmerr/genrelay"
	"github.com/jpalmerr/genrelay/example/mockapi"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func main() {
	// start the fake generation API (see mockapi)
	api := mockapi.New(mockapi.WithJobDuration(20 * time.Second))
	go func() {
		if err := http.ListenAndServe(":9999", api.Handler()); err != nil {
			slog.Error("mock api error", "error", err)
			os.Exit(1)
		}
	}()
	time.Sleep(100 * time.Millisecond)

	// short timings so the demo job finishes within one poll call
	relay, err := genrelay.New(
		genrelay.WithAPIBase("http://localhost:9999"),
		genrelay.WithCredential("demo-key"),
		genrelay.WithPort(8080),
		genrelay.WithPollPolicy(genrelay.PollPolicy{
			InitialDelay: 2 * time.Second,
			Interval:     3 * time.Second,
			MaxDuration:  time.Minute,
		}),
		genrelay.WithProgressCallback(func(p genrelay.Progress) {
			fmt.Printf("  poll %s attempt %d: %s %d%%\n", p.RequestID, p.Attempt, p.Status, p.Percent)
		}),
	)
	if err != nil {
		slog.Error("failed to create relay", "error", err)
		os.Exit(1)
	}
	defer relay.Close()

	// set up context with signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := runDemo(ctx, relay); err != nil {
		slog.Error("demo failed", "error", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("  genrelay demo")
	fmt.Println()
	fmt.Println("  Progress page: http://localhost:8080")
	fmt.Println("  Tools:     curl http://localhost:8080/api/tools")
	fmt.Println("  Progress:  curl -N http://localhost:8080/api/sse")
	fmt.Println("  Call:      curl -d '{\"name\":\"get_visual_effects\"}' http://localhost:8080/api/tools/call")
	fmt.Println()
	fmt.Println("  Press Ctrl+C to stop")
	fmt.Println()

	if err := relay.Start(ctx); err != nil {
		slog.Error("relay error", "error", err)
		os.Exit(1)
	}
}

// runDemo starts one generation and polls it to completion.
func runDemo(ctx context.Context, relay *genrelay.Relay) error {
	fmt.Println("Starting a generation...")
	res, err := relay.Call(ctx, "generate_custom_advanced", map[string]any{
		"prompt": "a lighthouse at dusk",
		"type":   "video",
	})
	if err != nil {
		return err
	}
	if res.IsError {
		return fmt.Errorf("generate: %s", res.Text())
	}

	var started struct {
		RequestID string `json:"request_id"`
	}
	if err := json.Unmarshal([]byte(res.Text()), &started); err != nil {
		return fmt.Errorf("decode generate result: %w", err)
	}
	fmt.Printf("Started %s, polling...\n", started.RequestID)

	res, err = relay.Call(ctx, "smart_poll_result", map[string]any{"request_id": started.RequestID})
	if err != nil {
		return err
	}
	fmt.Println(indent(res.Text()))

	var final struct {
		ResultURL string `json:"result_url"`
	}
	if err := json.Unmarshal([]byte(res.Text()), &final); err == nil && final.ResultURL != "" {
		// videos are returned as a link, so the mock's made-up media host
		// is never contacted
		shown, err := relay.Call(ctx, "display_media", map[string]any{"url": final.ResultURL})
		if err != nil {
			return err
		}
		fmt.Println(indent(shown.Text()))
	}
	return nil
}

func indent(s string) string {
	return "  " + strings.ReplaceAll(s, "\n", "\n  ")
}
