package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/genrelay"
	"github.com/jpalmerr/genrelay/internal/tools"
)

// toolsCmd prints the tool declarations.
var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Print tool declarations as JSON",
	Long: `Print the name, description and input schema of every tool as a JSON
array, sorted by name. No configuration or network access is needed.`,
	Args: cobra.NoArgs,
	RunE: runTools,
}

func init() {
	rootCmd.AddCommand(toolsCmd)
}

func runTools(cmd *cobra.Command, args []string) error {
	relay, err := genrelay.New(genrelay.WithLogger(newLogger(cmd)))
	if err != nil {
		return fmt.Errorf("failed to create relay: %w", err)
	}
	defer relay.Close()

	out, err := tools.MarshalIndent(relay.Tools())
	if err != nil {
		return fmt.Errorf("failed to encode declarations: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
