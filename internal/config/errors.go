package config

// ConfigError is a custom error type for configuration errors
type ConfigError string

// Error implements the error interface
func (e ConfigError) Error() string {
	return string(e)
}

const (
	ErrInvalidConcurrency ConfigError = "EVALUATION_CONCURRENCY must be at least 1"
	ErrInvalidTimeout     ConfigError = "EVALUATION_TIMEOUT must be positive"
)
