package evaluator

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/KirkDiggler/outlast/internal/models"
)

var survivedComments = []string{
	"Against all odds and most laws of physics, it worked.",
	"Nobody is sure how, least of all you, but you walk away whistling.",
	"The plan was terrible. The luck was spectacular.",
}

var diedComments = []string{
	"It was a bold plan. Boldness was not enough.",
	"Witnesses describe the attempt as brief but memorable.",
	"You made it surprisingly far before the inevitable happened.",
}

// random is an offline evaluator that flips a coin for every answer
type random struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandom creates an evaluator that needs no network access
func NewRandom(cfg *RandomConfig) *random {
	var seed int64
	if cfg != nil && cfg.Seed != 0 {
		seed = cfg.Seed
	} else {
		seed = time.Now().UnixNano()
	}

	return &random{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// Evaluate picks a verdict and a canned comment
func (r *random) Evaluate(ctx context.Context, input *EvaluateInput) (*EvaluateOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.rng.Intn(2) == 0 {
		return &EvaluateOutput{
			Verdict:    models.VerdictSurvived,
			Commentary: survivedComments[r.rng.Intn(len(survivedComments))],
		}, nil
	}

	return &EvaluateOutput{
		Verdict:    models.VerdictDied,
		Commentary: diedComments[r.rng.Intn(len(diedComments))],
	}, nil
}
