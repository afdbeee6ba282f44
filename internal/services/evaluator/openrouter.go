package evaluator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/KirkDiggler/outlast/internal/models"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

const evaluationTask = `You are the narrator of a comedy game called "Survive If You Can". ` +
	`Players are given an unusual, absurd or dangerous situation and describe how they would survive it. ` +
	`Invent a funny, creative outcome based on the situation and the player's answer. ` +
	`Reply strictly with a JSON object with two fields: "status" set to "Survived" or "Not survived", ` +
	`and "comment", a vivid humorous comment of 3-5 sentences that explains the outcome and sticks closely to the player's answer. ` +
	`Do not add anything except the JSON. Example: {"status": "Not survived", "comment": "..."}`

// UnparsableCommentary is the commentary used when the model's reply is not the expected JSON
const UnparsableCommentary = "could not parse the evaluator response"

type openRouter struct {
	client openai.Client
	model  string
	logger zerolog.Logger
}

// NewOpenRouter creates an evaluator backed by an OpenAI-compatible chat completions API
func NewOpenRouter(cfg *OpenRouterConfig) (*openRouter, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	if cfg.BaseURL == "" {
		return nil, ErrMissingURL
	}

	if cfg.Token == "" {
		return nil, ErrMissingToken
	}

	if cfg.Model == "" {
		return nil, ErrMissingModel
	}

	baseURL := cfg.BaseURL
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	opts := []option.RequestOption{
		option.WithBaseURL(baseURL),
		option.WithAPIKey(cfg.Token),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.RequestTimeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.RequestTimeout))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	return &openRouter{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
		logger: cfg.Logger.With().Str("component", "openrouter").Logger(),
	}, nil
}

// Evaluate sends one answer to the model and parses its verdict
func (o *openRouter) Evaluate(ctx context.Context, input *EvaluateInput) (*EvaluateOutput, error) {
	content, err := buildContent(input)
	if err != nil {
		return nil, fmt.Errorf("failed to build evaluation request: %w", err)
	}

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(content),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to call evaluator: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	raw := resp.Choices[0].Message.Content
	output := ParseReply(raw)
	if output.Commentary == UnparsableCommentary {
		o.logger.Warn().Str("reply", raw).Msg("evaluator reply was not valid JSON")
	}

	return output, nil
}

func buildContent(input *EvaluateInput) (string, error) {
	b, err := json.Marshal(struct {
		Task      string `json:"task"`
		Situation string `json:"situation"`
		Answer    string `json:"playerAnswer"`
	}{
		Task:      evaluationTask,
		Situation: input.Prompt,
		Answer:    input.Answer,
	})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ParseReply extracts the verdict and commentary from a model reply.
// Replies wrapped in a markdown code fence are accepted.
func ParseReply(raw string) *EvaluateOutput {
	body := strings.TrimSpace(raw)
	body = strings.TrimPrefix(body, "```json")
	body = strings.TrimPrefix(body, "```")
	body = strings.TrimSuffix(body, "```")
	body = strings.TrimSpace(body)

	if !gjson.Valid(body) || !gjson.Parse(body).IsObject() {
		return &EvaluateOutput{
			Verdict:    models.VerdictUnknown,
			Commentary: UnparsableCommentary,
		}
	}

	fields := gjson.GetMany(body, "status", "comment")
	return &EvaluateOutput{
		Verdict:    models.ParseVerdict(fields[0].String()),
		Commentary: fields[1].String(),
	}
}
