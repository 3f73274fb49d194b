package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/genrelay/config"
)

// addConfigFlags registers the flags shared by commands that build a relay.
func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("config", "c", "", "path to config file (defaults to environment variables)")
	cmd.Flags().String("env-file", "", "path to a .env file (defaults to ./.env if present)")
}

// loadConfig reads the .env file, then the YAML file if one was given,
// otherwise the environment.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	if err := config.LoadDotEnv(envFile); err != nil {
		return nil, err
	}

	configFile, _ := cmd.Flags().GetString("config")
	if configFile == "" {
		cfg, err := config.FromEnv()
		if err != nil {
			return nil, fmt.Errorf("invalid environment: %w", err)
		}
		return cfg, nil
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}
