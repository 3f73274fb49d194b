// Standalone mock of the generation API for trying the CLI.
//
// Usage:
//
//	go run ./example/cmd/mockserver
//
// Then in another terminal:
//
//	ETERNAL_AI_API_BASE=http://localhost:9999 ETERNAL_AI_API_KEY=dev go run ./cmd/genrelay serve
package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/jpalmerr/genrelay/example/mockapi"
)

func main() {
	fmt.Println("Mock generation API starting on :9999")
	fmt.Printf("Jobs finish after %s; prompts containing \"fail\" end failed\n", mockapi.DefaultJobDuration)
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	api := mockapi.New(mockapi.WithLogger(logger))

	if err := http.ListenAndServe(":9999", api.Handler()); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
