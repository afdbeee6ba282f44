package evaluation

// EvaluationError is a custom error type for evaluation errors
type EvaluationError string

// Error implements the error interface
func (e EvaluationError) Error() string {
	return string(e)
}

const (
	ErrNilConfig    EvaluationError = "config cannot be nil"
	ErrNilRooms     EvaluationError = "room service cannot be nil"
	ErrNilEvaluator EvaluationError = "evaluator cannot be nil"
	ErrNilTicket    EvaluationError = "evaluation ticket cannot be nil"
)
