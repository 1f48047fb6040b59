// Package config holds CLI-level configuration and logger setup.
package config

import (
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds application configuration, taken from environment variables
// with the prefix "FEDI". Example: FEDI_INSTANCE_URL=https://example.social .
type Config struct {
	InstanceURL  string `envconfig:"INSTANCE_URL" default:"http://localhost:4000"`
	StreamingURL string `envconfig:"STREAMING_URL"`
	AccessToken  string `envconfig:"ACCESS_TOKEN"`
	LogLevel     string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load populates Config from the environment.
func Load() (*Config, error) {
	var c Config
	if err := envconfig.Process("FEDI", &c); err != nil {
		return nil, err
	}
	if c.StreamingURL == "" {
		c.StreamingURL = deriveStreamingURL(c.InstanceURL)
	}
	return &c, nil
}

// Init initializes the logger according to the configuration.
func (c *Config) Init() {
	InitLogger()
	SetLogLevel(parseLogLevel(c.LogLevel))

	log.Info().
		Str("instance_url", c.InstanceURL).
		Str("streaming_url", c.StreamingURL).
		Str("log_level", c.LogLevel).
		Msg("configuration loaded")
}

// deriveStreamingURL swaps the http(s) scheme for ws(s).
func deriveStreamingURL(instanceURL string) string {
	switch {
	case len(instanceURL) >= 8 && instanceURL[:8] == "https://":
		return "wss://" + instanceURL[8:]
	case len(instanceURL) >= 7 && instanceURL[:7] == "http://":
		return "ws://" + instanceURL[7:]
	default:
		return instanceURL
	}
}

func parseLogLevel(s string) zerolog.Level {
	switch s {
	case "debug", "DEBUG":
		return zerolog.DebugLevel
	case "info", "INFO":
		return zerolog.InfoLevel
	case "warn", "WARN":
		return zerolog.WarnLevel
	case "error", "ERROR":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
