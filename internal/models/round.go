package models

import "strings"

// Verdict is the evaluator's judgement of a player's answer
type Verdict string

const (
	// VerdictSurvived means the player made it through the scenario
	VerdictSurvived Verdict = "survived"

	// VerdictDied means the player did not make it
	VerdictDied Verdict = "not survived"

	// VerdictUnknown is used when the evaluator failed or answered nonsense
	VerdictUnknown Verdict = "unknown"
)

// ParseVerdict maps free-form evaluator output onto a Verdict
func ParseVerdict(raw string) Verdict {
	v := strings.ToLower(strings.TrimSpace(raw))
	v = strings.Trim(v, ".!")
	switch v {
	case "survived", "survive", "alive", "выжил":
		return VerdictSurvived
	case "not survived", "did not survive", "died", "dead", "не выжил":
		return VerdictDied
	}
	return VerdictUnknown
}

// RoundResult is the evaluated outcome of one player's answer
type RoundResult struct {
	// AnswerText is what the player submitted, empty if they never answered
	AnswerText string `json:"userAnswer"`

	// Verdict is the evaluator's judgement
	Verdict Verdict `json:"result"`

	// Commentary is the evaluator's explanation of the outcome
	Commentary string `json:"gptAnswer"`
}
