package config

import (
	"log/slog"

	"github.com/jpalmerr/genrelay"
)

// BuildOptions converts parsed configuration into relay options.
//
// Zero-valued settings are left out so the relay's defaults apply.
func BuildOptions(cfg *Config, logger *slog.Logger) []genrelay.Option {
	opts := []genrelay.Option{
		genrelay.WithAPIBase(cfg.APIBase),
		genrelay.WithPort(cfg.Port),
		genrelay.WithPollPolicy(cfg.PollPolicy()),
	}

	if cfg.APIKey != "" {
		opts = append(opts, genrelay.WithCredential(cfg.APIKey))
	}
	if logger != nil {
		opts = append(opts, genrelay.WithLogger(logger))
	}
	if cfg.RequestTimeout != 0 {
		opts = append(opts, genrelay.WithRequestTimeout(cfg.RequestTimeout.Duration()))
	}
	if cfg.GenerateTimeout != 0 {
		opts = append(opts, genrelay.WithGenerateTimeout(cfg.GenerateTimeout.Duration()))
	}
	if cfg.DownloadTimeout != 0 {
		opts = append(opts, genrelay.WithDownloadTimeout(cfg.DownloadTimeout.Duration()))
	}
	if cfg.MaxDownloadSize != 0 {
		opts = append(opts, genrelay.WithMaxDownloadSize(cfg.MaxDownloadSize))
	}
	if cfg.ProgressHistory != 0 {
		opts = append(opts, genrelay.WithProgressHistory(cfg.ProgressHistory))
	}

	return opts
}

// Build creates the relay described by cfg.
func Build(cfg *Config, logger *slog.Logger) (*genrelay.Relay, error) {
	return genrelay.New(BuildOptions(cfg, logger)...)
}
