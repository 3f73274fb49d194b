package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/genrelay/config"
)

const (
	shutdownTimeout = 10 * time.Second
)

// serveCmd starts the genrelay HTTP transport.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP transport",
	Long: `Start the genrelay HTTP transport.

The server will:
  - Load configuration from the YAML file, or from the environment
  - Serve tool declarations and tool calls over HTTP
  - Stream polling progress over Server-Sent Events

The server runs until interrupted (Ctrl+C) or receives SIGTERM.

Example:
  genrelay serve
  genrelay serve -c config.yaml
  genrelay serve --env-file /etc/genrelay/.env`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	addConfigFlags(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := newLogger(cmd)

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	policy := cfg.PollPolicy()
	logger.Info("config loaded",
		"api_base", cfg.APIBase,
		"credential_set", cfg.APIKey != "",
	)
	logger.Info("starting server",
		"port", cfg.Port,
		"initial_delay", policy.InitialDelay.String(),
		"poll_interval", policy.Interval.String(),
		"max_duration", policy.MaxDuration.String(),
	)
	if cfg.APIKey == "" {
		logger.Warn("no default API key configured; calls must send X-Api-Key")
	}

	relay, err := config.Build(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create relay: %w", err)
	}
	defer relay.Close()

	// cancel on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start blocks until ctx is cancelled
	errChan := make(chan error, 1)
	go func() {
		errChan <- relay.Start(ctx)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		logger.Info("shutdown complete")
		return nil

	case <-ctx.Done():
		// signal received, wait for graceful shutdown with timeout
		select {
		case err := <-errChan:
			if err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			logger.Info("shutdown complete")
			return nil
		case <-time.After(shutdownTimeout):
			logger.Warn("shutdown timed out",
				"timeout", shutdownTimeout.String(),
				"action", "forcing exit",
			)
			return nil
		}
	}
}
