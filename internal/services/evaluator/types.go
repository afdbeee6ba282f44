package evaluator

import (
	"net/http"
	"time"

	"github.com/KirkDiggler/outlast/internal/models"
	"github.com/rs/zerolog"
)

// EvaluateInput contains the scenario and one player's answer
type EvaluateInput struct {
	Prompt string
	Answer string
}

// EvaluateOutput contains the judgement for one answer
type EvaluateOutput struct {
	Verdict    models.Verdict
	Commentary string
}

// OpenRouterConfig holds configuration for the OpenRouter evaluator
type OpenRouterConfig struct {
	// BaseURL is the OpenAI-compatible API root, e.g. https://openrouter.ai/api/v1
	BaseURL string

	// Token is the bearer token sent with every request
	Token string

	// Model is the model identifier passed through to OpenRouter
	Model string

	// MaxRetries is how many times a failed request is retried
	MaxRetries int

	// RequestTimeout bounds a single attempt; zero means no per-attempt limit
	RequestTimeout time.Duration

	// HTTPClient is optional
	HTTPClient *http.Client

	Logger zerolog.Logger
}

// RandomConfig holds configuration for the offline evaluator
type RandomConfig struct {
	// Seed makes verdicts reproducible in tests; zero seeds from the clock
	Seed int64
}
