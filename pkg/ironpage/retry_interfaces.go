package ironpage

import "time"

// ErrorClassifier decides whether an error is worth retrying.
type ErrorClassifier interface {
	// IsTransient returns true if the error is temporary and the operation may succeed on retry.
	IsTransient(err error) bool
}

// BackoffStrategy controls the delay between retry attempts.
type BackoffStrategy interface {
	// NextDelay returns the delay before retry attempt number attempt (0-based).
	NextDelay(attempt int) time.Duration

	// MaxAttempts returns the maximum number of retries (-1 means unlimited).
	MaxAttempts() int
}
