package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
)

// DefaultEnvFile is read by [LoadDotEnv] when no path is given.
const DefaultEnvFile = ".env"

// LoadDotEnv loads KEY=VALUE pairs from a .env file into the process
// environment. Variables already set are not overridden.
//
// With an empty path the default .env file is read if it exists. An
// explicit path that cannot be read is an error.
func LoadDotEnv(path string) error {
	if path == "" {
		err := godotenv.Load(DefaultEnvFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", DefaultEnvFile, err)
		}
		return nil
	}

	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}
