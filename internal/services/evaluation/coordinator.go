package evaluation

import (
	"context"
	"fmt"
	"time"

	"github.com/KirkDiggler/outlast/internal/models"
	"github.com/KirkDiggler/outlast/internal/services/evaluator"
	"github.com/KirkDiggler/outlast/internal/services/room"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	defaultTimeout     = 60 * time.Second
	defaultConcurrency = 4
)

// FailedCommentary is recorded for a player whose answer could not be evaluated
const FailedCommentary = "the evaluator did not respond"

// Service evaluates a claimed round and records the results
type Service interface {
	// EvaluateRound scores every answer on the ticket and applies the results to the room
	EvaluateRound(ctx context.Context, ticket *room.EvaluationTicket) (*room.ApplyRoundResultsOutput, error)
}

// Config holds configuration for the coordinator
type Config struct {
	Rooms     room.Service
	Evaluator evaluator.Evaluator

	// Timeout bounds the whole round; answers still pending when it expires are unknown
	Timeout time.Duration

	// Concurrency caps in-flight evaluator calls per round
	Concurrency int

	Logger zerolog.Logger
}

// Coordinator is the only writer of round results and survival stats
type Coordinator struct {
	rooms       room.Service
	evaluator   evaluator.Evaluator
	timeout     time.Duration
	concurrency int
	logger      zerolog.Logger
}

// New creates a new evaluation coordinator
func New(cfg *Config) (*Coordinator, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	if cfg.Rooms == nil {
		return nil, ErrNilRooms
	}

	if cfg.Evaluator == nil {
		return nil, ErrNilEvaluator
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	return &Coordinator{
		rooms:       cfg.Rooms,
		evaluator:   cfg.Evaluator,
		timeout:     timeout,
		concurrency: concurrency,
		logger:      cfg.Logger.With().Str("component", "evaluation").Logger(),
	}, nil
}

// EvaluateRound runs the evaluator once per player on the ticket without holding
// the room lock, then hands the results back to the room manager
func (c *Coordinator) EvaluateRound(ctx context.Context, ticket *room.EvaluationTicket) (*room.ApplyRoundResultsOutput, error) {
	if ticket == nil {
		return nil, ErrNilTicket
	}

	log := c.logger.With().Str("room_id", ticket.RoomID).Int("round", ticket.Round).Logger()

	evalCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	results := make([]models.RoundResult, len(ticket.PlayerIDs))

	g := new(errgroup.Group)
	g.SetLimit(c.concurrency)

	start := time.Now()
	for i, playerID := range ticket.PlayerIDs {
		answer := ticket.Answers[playerID]
		g.Go(func() error {
			results[i] = c.evaluateOne(evalCtx, log, ticket.Prompt, playerID, answer)
			return nil
		})
	}
	// evaluateOne never fails; errors become unknown verdicts
	_ = g.Wait()

	byPlayer := make(map[string]models.RoundResult, len(results))
	for i, playerID := range ticket.PlayerIDs {
		byPlayer[playerID] = results[i]
	}

	log.Info().
		Int("players", len(ticket.PlayerIDs)).
		Dur("elapsed", time.Since(start)).
		Msg("round evaluated")

	output, err := c.rooms.ApplyRoundResults(ctx, &room.ApplyRoundResultsInput{
		RoomID:  ticket.RoomID,
		Round:   ticket.Round,
		Results: byPlayer,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to apply round results: %w", err)
	}

	return output, nil
}

func (c *Coordinator) evaluateOne(ctx context.Context, log zerolog.Logger, prompt, playerID, answer string) models.RoundResult {
	output, err := c.evaluator.Evaluate(ctx, &evaluator.EvaluateInput{
		Prompt: prompt,
		Answer: answer,
	})
	if err != nil {
		log.Warn().Err(err).Str("player_id", playerID).Msg("evaluation failed")
		return models.RoundResult{
			AnswerText: answer,
			Verdict:    models.VerdictUnknown,
			Commentary: FailedCommentary,
		}
	}

	return models.RoundResult{
		AnswerText: answer,
		Verdict:    output.Verdict,
		Commentary: output.Commentary,
	}
}
