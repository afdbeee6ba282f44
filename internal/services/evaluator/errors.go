package evaluator

// EvaluatorError is a custom error type for evaluator errors
type EvaluatorError string

// Error implements the error interface
func (e EvaluatorError) Error() string {
	return string(e)
}

const (
	ErrNilConfig     EvaluatorError = "config cannot be nil"
	ErrMissingURL    EvaluatorError = "base URL cannot be empty"
	ErrMissingToken  EvaluatorError = "token cannot be empty"
	ErrMissingModel  EvaluatorError = "model cannot be empty"
	ErrEmptyResponse EvaluatorError = "evaluator returned no choices"
)
