package usecase

import (
	"context"
	"errors"
	"log/slog"
	"reservation-service/app/domain"
	"time"
)

const (
	retryAttempts  = 3
	retryBaseDelay = 100 * time.Millisecond
)

// withRetry re-runs fn on ErrStoreUnavailable with doubling backoff, bounded
// to retryAttempts. Any other outcome is returned as-is. On exhaustion the
// operation fails closed; stock state is never assumed.
func withRetry(ctx context.Context, fn func() error) error {
	var err error
	delay := retryBaseDelay
	for attempt := 1; attempt <= retryAttempts; attempt++ {
		err = fn()
		if err == nil || !errors.Is(err, domain.ErrStoreUnavailable) {
			return err
		}
		if attempt == retryAttempts {
			break
		}

		slog.WarnContext(ctx, "[withRetry] store unavailable, retrying", "attempt", attempt, "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return err
}
