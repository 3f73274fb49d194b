// Package config provides YAML and environment configuration for genrelay.
//
// This package enables running genrelay as a standalone binary, as an
// alternative to configuring a [genrelay.Relay] in code.
//
// Example configuration:
//
//	api_base: https://open.eternalai.org
//	api_key: ${ETERNAL_AI_API_KEY}
//	port: 8080
//	request_timeout: 30s
//	generate_timeout: 60s
//
//	poll:
//	  initial_delay: 30s
//	  interval: 15s
//	  max_duration: 2m
package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jpalmerr/genrelay"
)

// Environment variables read by [FromEnv].
const (
	EnvAPIBase = "ETERNAL_AI_API_BASE"
	EnvAPIKey  = "ETERNAL_AI_API_KEY"
)

const defaultPort = 8080

// minPollInterval is the minimum allowed interval between result queries.
// This prevents accidental hammering of the API with a misconfigured file.
const minPollInterval = 1 * time.Second

// Config is the root configuration structure for genrelay.
//
// It maps directly to the YAML configuration file structure.
// Use [Load], [Parse] or [FromEnv] to create a Config.
type Config struct {
	// APIBase is the root URL of the remote API.
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}
	APIBase string `yaml:"api_base"`

	// APIKey is the default credential. Supports environment variable
	// substitution; prefer ${ETERNAL_AI_API_KEY} over a literal key.
	APIKey string `yaml:"api_key"`

	// Port is the HTTP server port. Defaults to 8080.
	Port int `yaml:"port"`

	// RequestTimeout bounds listing and poll queries. Defaults to 30s.
	RequestTimeout Duration `yaml:"request_timeout"`

	// GenerateTimeout bounds the generate calls. Defaults to 60s.
	GenerateTimeout Duration `yaml:"generate_timeout"`

	// DownloadTimeout bounds media downloads. Defaults to 30s.
	DownloadTimeout Duration `yaml:"download_timeout"`

	// MaxDownloadSize caps inlined image size in bytes. Defaults to 20MB.
	MaxDownloadSize int64 `yaml:"max_download_size"`

	// ProgressHistory is how many polls the progress store keeps.
	ProgressHistory int `yaml:"progress_history"`

	// Poll sets the timing of smart_poll_result.
	Poll PollConfig `yaml:"poll"`
}

// PollConfig sets the timing of result polling.
type PollConfig struct {
	// InitialDelay is waited before the first query. nil means the default
	// of 30s; an explicit 0s disables the wait.
	InitialDelay *Duration `yaml:"initial_delay"`

	// Interval is waited between queries. Defaults to 15s.
	Interval Duration `yaml:"interval"`

	// MaxDuration is the budget measured from the first query.
	// Defaults to 120s.
	MaxDuration Duration `yaml:"max_duration"`
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// PollPolicy returns the effective polling timing.
func (c *Config) PollPolicy() genrelay.PollPolicy {
	p := genrelay.DefaultPollPolicy()
	if c.Poll.InitialDelay != nil {
		p.InitialDelay = c.Poll.InitialDelay.Duration()
	}
	if c.Poll.Interval != 0 {
		p.Interval = c.Poll.Interval.Duration()
	}
	if c.Poll.MaxDuration != 0 {
		p.MaxDuration = c.Poll.MaxDuration.Duration()
	}
	return p
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
//
// Environment variables in the file are expanded before validation.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Environment variables are expanded in api_base and api_key. Defaults are
// applied for APIBase and Port.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FromEnv builds a configuration from ETERNAL_AI_API_BASE and
// ETERNAL_AI_API_KEY, with defaults for everything else.
func FromEnv() (*Config, error) {
	cfg := Config{
		APIBase: os.Getenv(EnvAPIBase),
		APIKey:  os.Getenv(EnvAPIKey),
	}
	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// expandAndValidate expands environment variables, applies defaults and
// validates the config.
func (c *Config) expandAndValidate() error {
	expanded, err := expandEnvVars(c.APIBase)
	if err != nil {
		return fmt.Errorf("api_base: %w", err)
	}
	c.APIBase = expanded

	expanded, err = expandEnvVars(c.APIKey)
	if err != nil {
		return fmt.Errorf("api_key: %w", err)
	}
	c.APIKey = expanded

	if c.APIBase == "" {
		c.APIBase = genrelay.DefaultAPIBase
	}
	if c.Port == 0 {
		c.Port = defaultPort
	}

	parsedURL, err := url.Parse(c.APIBase)
	if err != nil {
		return fmt.Errorf("api_base: invalid url: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("api_base: url scheme must be http or https, got %q", parsedURL.Scheme)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("api_base: url must have a host")
	}

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}

	timeouts := []struct {
		name  string
		value Duration
	}{
		{"request_timeout", c.RequestTimeout},
		{"generate_timeout", c.GenerateTimeout},
		{"download_timeout", c.DownloadTimeout},
	}
	for _, to := range timeouts {
		if to.value == 0 {
			continue
		}
		if to.value.Duration() < time.Second {
			return fmt.Errorf("%s must be at least 1s if specified, got %s", to.name, to.value.Duration())
		}
	}

	if c.MaxDownloadSize < 0 {
		return fmt.Errorf("max_download_size cannot be negative, got %d", c.MaxDownloadSize)
	}
	if c.ProgressHistory < 0 {
		return fmt.Errorf("progress_history cannot be negative, got %d", c.ProgressHistory)
	}

	if c.Poll.InitialDelay != nil && c.Poll.InitialDelay.Duration() < 0 {
		return fmt.Errorf("poll.initial_delay cannot be negative, got %s", c.Poll.InitialDelay.Duration())
	}
	if c.Poll.Interval != 0 && c.Poll.Interval.Duration() < minPollInterval {
		return fmt.Errorf("poll.interval must be at least %s, got %s", minPollInterval, c.Poll.Interval.Duration())
	}
	if c.Poll.MaxDuration != 0 && c.Poll.MaxDuration.Duration() < 0 {
		return fmt.Errorf("poll.max_duration cannot be negative, got %s", c.Poll.MaxDuration.Duration())
	}

	policy := c.PollPolicy()
	if policy.MaxDuration < policy.Interval {
		return fmt.Errorf("poll.max_duration (%s) must not be shorter than poll.interval (%s)",
			policy.MaxDuration, policy.Interval)
	}

	return nil
}
