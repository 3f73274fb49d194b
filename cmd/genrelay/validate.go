package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/genrelay/config"
)

// validateCmd validates a config file without starting the server.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a genrelay configuration file without starting the server.

This command parses the YAML, expands environment variables, and validates
all fields. It's useful for CI/CD pipelines or pre-deployment checks.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  genrelay validate -c config.yaml
  genrelay validate --config /etc/genrelay/config.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	credential := "not set"
	if cfg.APIKey != "" {
		credential = "set"
	}
	policy := cfg.PollPolicy()

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Config is valid!\n")
	fmt.Fprintf(w, "  API base:      %s\n", cfg.APIBase)
	fmt.Fprintf(w, "  API key:       %s\n", credential)
	fmt.Fprintf(w, "  Port:          %d\n", cfg.Port)
	fmt.Fprintf(w, "  Poll timing:   wait %s, every %s, up to %s\n",
		policy.InitialDelay, policy.Interval, policy.MaxDuration)

	return nil
}
