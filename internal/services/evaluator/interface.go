package evaluator

import "context"

//go:generate mockgen -package=mocks -destination=mocks/mock_evaluator.go github.com/KirkDiggler/outlast/internal/services/evaluator Evaluator

// Evaluator judges whether a player's answer gets them through a scenario
type Evaluator interface {
	// Evaluate returns a verdict and a short commentary for one answer
	Evaluate(ctx context.Context, input *EvaluateInput) (*EvaluateOutput, error)
}
