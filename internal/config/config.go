// Package config loads server settings from the environment
package config

import (
	stderrors "errors"
	"io/fs"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"github.com/KirkDiggler/party-generator/internal/errors"
)

// DefaultEnvFile is read when present
const DefaultEnvFile = ".env"

// Config is the server configuration
type Config struct {
	Port int `env:"PORT" envDefault:"3000"`

	GeneratorURL     string        `env:"PARTY_GENERATOR_URL" envDefault:"http://localhost:5000"`
	GeneratorTimeout time.Duration `env:"PARTY_GENERATOR_TIMEOUT" envDefault:"10m"`

	// RedisAddr selects the Redis page store; empty keeps pages in memory
	RedisAddr string        `env:"REDIS_ADDR"`
	PageTTL   time.Duration `env:"PAGE_TTL" envDefault:"30m"`

	// ClassIconsDir is served under /class_icons when set
	ClassIconsDir    string `env:"CLASS_ICONS_DIR"`
	CORSAllowOrigins string `env:"CORS_ALLOW_ORIGINS" envDefault:"*"`

	LogLevel        slog.Level    `env:"LOG_LEVEL" envDefault:"info"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

// Load reads envFiles (DefaultEnvFile when none are given) into the process
// environment and parses the result. Missing files are skipped. Variables
// already set win over file values.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{DefaultEnvFile}
	}

	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil {
			if stderrors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, errors.WrapWithCodef(err, errors.CodeInvalidArgument, "failed to read %s", file)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "failed to parse environment")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the settings are usable
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	errors.ValidateRange("PORT", c.Port, 1, 65535, vb)
	errors.ValidateHTTPURL("PARTY_GENERATOR_URL", c.GeneratorURL, vb)

	if c.GeneratorTimeout <= 0 {
		vb.InvalidField("PARTY_GENERATOR_TIMEOUT", "must be positive")
	}
	if c.PageTTL <= 0 {
		vb.InvalidField("PAGE_TTL", "must be positive")
	}
	if c.ShutdownTimeout <= 0 {
		vb.InvalidField("SHUTDOWN_TIMEOUT", "must be positive")
	}

	return vb.Build()
}
