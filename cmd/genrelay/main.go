// Package main is the entry point for the genrelay CLI.
//
// genrelay can be embedded as a library or run as a standalone binary with
// YAML or environment configuration. This CLI provides the standalone binary.
//
// Usage:
//
//	genrelay serve -c config.yaml                 # Start the HTTP transport
//	genrelay call get_visual_effects --arg page=2 # Run one tool call
//	genrelay tools                                # Print tool declarations
//	genrelay validate -c config.yaml              # Validate configuration
//	genrelay version                              # Show version info
package main

import (
	"fmt"
	"log/slog"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Version information, set at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
// It just displays help; actual functionality is in subcommands.
var rootCmd = &cobra.Command{
	Use:   "genrelay",
	Short: "A tool relay for an asynchronous media generation API",
	Long: `genrelay exposes an image and video generation API as a small set of
tools: listing visual effects, starting generations, polling them to
completion and displaying the resulting media.

Quick start:
  1. export ETERNAL_AI_API_KEY=...   (or put it in a .env file)
  2. Run: genrelay serve
  3. POST {"name": "get_visual_effects"} to http://localhost:8080/api/tools/call

Example config:
  api_key: ${ETERNAL_AI_API_KEY}
  port: 8080
  poll:
    initial_delay: 30s
    interval: 15s
    max_duration: 2m`,
	SilenceUsage: true,
}

// Execute runs the root command.
// This is the main entry point called from main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this genrelay binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "genrelay %s\n", version)
		fmt.Fprintf(cmd.OutOrStdout(), "  commit: %s\n", commit)
		fmt.Fprintf(cmd.OutOrStdout(), "  built:  %s\n", date)
	},
}

func init() {
	rootCmd.PersistentFlags().Bool("debug", false, "log at debug level")
	rootCmd.AddCommand(versionCmd)
}

// newLogger creates a JSON logger on stderr for CLI use.
func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}
