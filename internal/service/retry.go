package service

import (
	"context"
	"fmt"
	"time"

	"github.com/dukerupert/mercato/internal/domain"
	"github.com/sethvargo/go-retry"
)

// RetryPolicy bounds how often a transaction is re-run after a transient
// conflict: an active-cart insert race, a serialization failure or a
// deadlock.
type RetryPolicy struct {
	MaxRetries uint64
	Delay      time.Duration
}

var DefaultRetryPolicy = RetryPolicy{MaxRetries: 3, Delay: 25 * time.Millisecond}

// run calls fn until it succeeds, fails permanently, or the policy is
// exhausted. fn must be safe to repeat from the start, which holds for a
// whole ExecTx call since a failed transaction leaves nothing behind.
// An exhausted retry surfaces as ErrConflictRetry.
func (d Deps) run(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	delay := d.Retry.Delay
	if delay <= 0 {
		delay = time.Millisecond
	}
	backoff := retry.WithMaxRetries(d.Retry.MaxRetries, retry.WithJitterPercent(50, retry.NewConstant(delay)))

	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if attempt > 1 {
			d.Metrics.RecordConflictRetry(op)
			d.Logger.Debug("Retrying after transient conflict", "op", op, "attempt", attempt)
		}

		err := fn(ctx)
		if domain.IsRetryable(err) {
			return retry.RetryableError(err)
		}
		return err
	})

	if err != nil && domain.IsRetryable(err) {
		return &domain.Error{
			Code:    domain.ECONFLICT,
			Op:      op,
			Message: domain.ErrConflictRetry.Message,
			Err:     fmt.Errorf("%w after %d attempts: %w", domain.ErrConflictRetry, attempt, err),
		}
	}
	return err
}
