package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.Equal(t, "https://openrouter.ai/api/v1", cfg.OpenRouterURL)
	assert.Empty(t, cfg.OpenRouterToken)
	assert.Equal(t, 2, cfg.OpenRouterMaxRetries)
	assert.Equal(t, 60*time.Second, cfg.EvaluationTimeout)
	assert.Equal(t, 4, cfg.EvaluationConcurrency)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.LogPretty)
	assert.True(t, cfg.StatsvizEnabled)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("EVALUATION_TIMEOUT", "5s")
	t.Setenv("LOG_PRETTY", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, 5*time.Second, cfg.EvaluationTimeout)
	assert.True(t, cfg.LogPretty)
}

func TestLoadReadsDotenvWithoutOverriding(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("OPENROUTER_MODEL=from-file\nREDIS_ADDR=file:6379\n"), 0o600))

	t.Setenv("REDIS_ADDR", "env:6379")
	// godotenv sets variables it loads; register them for cleanup
	t.Setenv("OPENROUTER_MODEL", "")
	require.NoError(t, os.Unsetenv("OPENROUTER_MODEL"))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.OpenRouterModel)
	assert.Equal(t, "env:6379", cfg.RedisAddr)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		check func(t *testing.T, err error)
	}{
		{
			name:  "bad integer",
			key:   "REDIS_DB",
			value: "not-an-int",
			check: func(t *testing.T, err error) {
				assert.Contains(t, err.Error(), "parse env:")
			},
		},
		{
			name:  "zero concurrency",
			key:   "EVALUATION_CONCURRENCY",
			value: "0",
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrInvalidConcurrency)
			},
		},
		{
			name:  "negative timeout",
			key:   "EVALUATION_TIMEOUT",
			value: "-1s",
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrInvalidTimeout)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := &Config{LogLevel: "warn"}

	logger, err := cfg.NewLogger(&buf)
	require.NoError(t, err)
	assert.Equal(t, zerolog.WarnLevel, logger.GetLevel())

	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"message":"shown"`)

	_, err = (&Config{LogLevel: "loud"}).NewLogger(&buf)
	assert.Error(t, err)
}
