// Package retry re-runs store operations that fail with transient
// PostgreSQL or network errors.
//
//	executor := retry.NewExecutor(
//	    retry.NewPostgreSQLErrorClassifier(),
//	    retry.NewExponentialBackoff(3),
//	    retry.WithLogger(logger),
//	)
//	ids, err := retry.Do(ctx, executor, func(ctx context.Context) ([]names.SchemaIdentifier, error) {
//	    return queryIdentifiers(ctx, pool)
//	})
//
// Classification and timing are pluggable through ironpage.ErrorClassifier
// and ironpage.BackoffStrategy. Executors are safe for concurrent use.
package retry
