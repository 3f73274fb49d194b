package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/genrelay"
	"github.com/jpalmerr/genrelay/config"
)

// errToolFailed is returned when the tool ran but reported an error result,
// so the process exits non-zero.
var errToolFailed = errors.New("tool reported an error")

// callCmd runs one tool call and prints the result.
var callCmd = &cobra.Command{
	Use:   "call <tool>",
	Short: "Run a single tool call",
	Long: `Run a single tool call and print its result.

Arguments are given as repeated --arg key=value pairs, as a JSON object with
--json, or both. --arg values override keys from --json. Values are strings;
numeric fields such as page accept "2".

Image results are summarized rather than printed.

Example:
  genrelay call get_visual_effects --arg effect_type=video --arg page=2
  genrelay call generate_custom_advanced --json '{"prompt":"a cat","type":"image"}'
  genrelay call smart_poll_result --arg request_id=abc123`,
	Args: cobra.ExactArgs(1),
	RunE: runCall,
}

func init() {
	rootCmd.AddCommand(callCmd)
	addConfigFlags(callCmd)

	callCmd.Flags().StringArray("arg", nil, "tool argument as key=value (repeatable)")
	callCmd.Flags().String("json", "", "tool arguments as a JSON object")
}

func runCall(cmd *cobra.Command, args []string) error {
	logger := newLogger(cmd)

	rawJSON, _ := cmd.Flags().GetString("json")
	pairs, _ := cmd.Flags().GetStringArray("arg")
	toolArgs, err := parseToolArgs(rawJSON, pairs)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	relay, err := config.Build(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create relay: %w", err)
	}
	defer relay.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := relay.Call(ctx, args[0], toolArgs)
	if err != nil {
		return err
	}

	printResult(cmd.OutOrStdout(), result)
	if result.IsError {
		return errToolFailed
	}
	return nil
}

// parseToolArgs merges a JSON object and key=value pairs into one argument
// map. Pairs win over JSON keys.
func parseToolArgs(rawJSON string, pairs []string) (map[string]any, error) {
	toolArgs := map[string]any{}

	if strings.TrimSpace(rawJSON) != "" {
		if err := json.Unmarshal([]byte(rawJSON), &toolArgs); err != nil {
			return nil, fmt.Errorf("invalid --json: %w", err)
		}
		// a JSON null leaves the map nil
		if toolArgs == nil {
			toolArgs = map[string]any{}
		}
	}

	for i, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("--arg[%d]: expected key=value, got %q", i, pair)
		}
		toolArgs[key] = value
	}

	return toolArgs, nil
}

// printResult writes text blocks verbatim and a one-line summary for
// image blocks.
func printResult(w io.Writer, result genrelay.Result) {
	for _, block := range result.Content {
		switch block.Type {
		case genrelay.ContentImage:
			fmt.Fprintf(w, "[image %s, %d base64 bytes]\n", block.MimeType, len(block.Data))
		default:
			fmt.Fprintln(w, block.Text)
		}
	}
}
