package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Config holds process configuration read from the environment
type Config struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// OpenRouterToken selects the remote evaluator; the offline one is used when empty
	OpenRouterURL        string `env:"OPENROUTER_URL" envDefault:"https://openrouter.ai/api/v1"`
	OpenRouterToken      string `env:"OPENROUTER_TOKEN"`
	OpenRouterModel      string `env:"OPENROUTER_MODEL" envDefault:"openai/gpt-4o-mini"`
	OpenRouterMaxRetries int    `env:"OPENROUTER_MAX_RETRIES" envDefault:"2"`

	EvaluationTimeout     time.Duration `env:"EVALUATION_TIMEOUT" envDefault:"60s"`
	EvaluationConcurrency int           `env:"EVALUATION_CONCURRENCY" envDefault:"4"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty bool   `env:"LOG_PRETTY" envDefault:"false"`

	StatsvizEnabled bool `env:"STATSVIZ_ENABLED" envDefault:"true"`
}

// Load reads the given dotenv files, if they exist, then parses the environment.
// Variables already set in the environment win over the files.
func Load(files ...string) (*Config, error) {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.EvaluationConcurrency < 1 {
		return nil, ErrInvalidConcurrency
	}

	if cfg.EvaluationTimeout <= 0 {
		return nil, ErrInvalidTimeout
	}

	return cfg, nil
}

// NewLogger builds the root logger. Pretty output goes to a console writer.
func (c *Config) NewLogger(w io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("parse log level: %w", err)
	}

	if w == nil {
		w = os.Stderr
	}
	if c.LogPretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}
