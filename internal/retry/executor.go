package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/io7m/ironpage-sub000/internal/logging"
	"github.com/io7m/ironpage-sub000/pkg/ironpage"
)

// Executor runs an operation until it succeeds, fails fatally, or the
// strategy runs out of attempts.
type Executor struct {
	classifier ironpage.ErrorClassifier
	strategy   ironpage.BackoffStrategy
	logger     ironpage.Logger
	onRetry    func(attempt int, err error, delay time.Duration)
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithLogger reports each retry through logger.Verbose.
func WithLogger(logger ironpage.Logger) ExecutorOption {
	return func(e *Executor) { e.logger = logger }
}

// WithOnRetry calls fn before sleeping ahead of each retry.
func WithOnRetry(fn func(attempt int, err error, delay time.Duration)) ExecutorOption {
	return func(e *Executor) { e.onRetry = fn }
}

// NewExecutor panics if classifier or strategy is nil.
func NewExecutor(classifier ironpage.ErrorClassifier, strategy ironpage.BackoffStrategy, opts ...ExecutorOption) *Executor {
	if classifier == nil {
		panic("retry: classifier cannot be nil")
	}
	if strategy == nil {
		panic("retry: strategy cannot be nil")
	}
	e := &Executor{
		classifier: classifier,
		strategy:   strategy,
		logger:     logging.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewDefaultExecutor retries PostgreSQL operations with the ironpage
// default attempts and delays.
func NewDefaultExecutor(logger ironpage.Logger) *Executor {
	strategy := NewExponentialBackoff(ironpage.DefaultRetryMaxAttempts,
		WithInitialDelay(ironpage.DefaultRetryInitialDelay),
		WithMaxDelay(ironpage.DefaultRetryMaxDelay),
	)
	return NewExecutor(NewPostgreSQLErrorClassifier(), strategy, WithLogger(logger))
}

// Execute runs operation. A fatal error is returned as is; when attempts
// are exhausted the last transient error is returned wrapped.
func (e *Executor) Execute(ctx context.Context, operation func(ctx context.Context) error) error {
	err := operation(ctx)
	if err == nil || !e.classifier.IsTransient(err) {
		return err
	}

	maxAttempts := e.strategy.MaxAttempts()
	for attempt := 0; maxAttempts < 0 || attempt < maxAttempts; attempt++ {
		delay := e.strategy.NextDelay(attempt)
		e.logger.Verbose("Transient failure (%v), retry %d in %v", err, attempt+1, delay)
		if e.onRetry != nil {
			e.onRetry(attempt, err, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		err = operation(ctx)
		if err == nil || !e.classifier.IsTransient(err) {
			return err
		}
	}

	if maxAttempts == 0 {
		return err
	}
	return fmt.Errorf("giving up after %d retries: %w", maxAttempts, err)
}

// Do is Execute for operations that produce a value.
func Do[T any](ctx context.Context, e *Executor, operation func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := e.Execute(ctx, func(ctx context.Context) error {
		value, err := operation(ctx)
		if err != nil {
			return err
		}
		result = value
		return nil
	})
	return result, err
}
