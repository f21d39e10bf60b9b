// Package config provides configuration for the aazan server.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// ModeMock replaces the model provider with a canned local gateway.
const ModeMock = "MOCK"

// Config holds the server configuration.
type Config struct {
	// Server settings
	HTTPPort       int      `env:"HTTP_PORT" envDefault:"8080"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:8081,http://127.0.0.1:8081"`
	StaticDir      string   `env:"STATIC_DIR" envDefault:"dist"`

	// Database
	DatabaseURL string `env:"DATABASE_URL" envDefault:"file:aazan.db?cache=shared&mode=rwc&_busy_timeout=5000&_foreign_keys=on"`
	DBMaxConns  int    `env:"DB_MAX_CONNS" envDefault:"5"`

	// Model provider
	GeminiAPIKey  string `env:"GEMINI_API_KEY"`
	GeminiBaseURL string `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com/v1beta"`
	GeminiModel   string `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	Mode          string `env:"AAZAN_MODE"`

	// Timeouts
	LLMTimeoutMs      int `env:"LLM_TIMEOUT_MS" envDefault:"120000"`
	StreamKeepAliveMs int `env:"STREAM_KEEPALIVE_MS" envDefault:"10000"`

	// Limits
	MaxUploadBytes  int64 `env:"MAX_UPLOAD_BYTES" envDefault:"20971520"`
	MaxContentChars int   `env:"MAX_CONTENT_CHARS" envDefault:"65536"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
}

// Load reads envFile (or ./.env when envFile is empty and the file exists)
// into the process environment, then parses the environment.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, errors.Wrapf(err, "error loading env file %q", envFile)
		}
	} else if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, continuing with environment variables")
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, errors.Wrap(err, "error parsing config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field requirements.
func (c *Config) Validate() error {
	if !c.IsMock() && strings.TrimSpace(c.GeminiAPIKey) == "" {
		return errors.New("GEMINI_API_KEY must be set (or AAZAN_MODE=MOCK)")
	}
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP_PORT %d", c.HTTPPort)
	}
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return errors.New("DATABASE_URL must not be empty")
	}
	return nil
}

// IsMock reports whether the mock model gateway is selected.
func (c *Config) IsMock() bool {
	return strings.EqualFold(c.Mode, ModeMock)
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLMTimeoutMs) * time.Millisecond
}

func (c *Config) StreamKeepAlive() time.Duration {
	return time.Duration(c.StreamKeepAliveMs) * time.Millisecond
}
