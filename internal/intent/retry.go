package intent

import (
	"context"

	"github.com/lerianstudio/eventledger/internal/platform/apperr"
)

// maxConcurrencyRetries bounds the "rehydrate and retry" recovery spec.md
// §7 requires for CONCURRENCY_CONFLICT: "recovered locally ... up to a
// small bounded number of times; surfaced only if retries exhaust."
const maxConcurrencyRetries = 5

// WithConcurrencyRetry calls fn up to maxConcurrencyRetries+1 times,
// retrying only on apperr.CodeConcurrencyConflict. Handlers that append
// to a freshly-rehydrated next version use this to absorb the race
// between another actor's concurrent append and their own (spec.md §8
// scenario 3: "on retry, the second succeeds").
func WithConcurrencyRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	var err error

	for attempt := 0; attempt <= maxConcurrencyRetries; attempt++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}

		appErr, ok := apperr.As(err)
		if !ok || appErr.Code != apperr.CodeConcurrencyConflict {
			return err
		}
	}

	return err
}
