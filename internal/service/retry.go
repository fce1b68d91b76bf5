package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/kanban-api/internal/platform/logger"
	"github.com/phrazzld/kanban-api/internal/store"
	"github.com/sethvargo/go-retry"
)

// RetryConfig bounds how a conflicting operation is re-run.
type RetryConfig struct {
	// MaxRetries is the number of re-runs after the first attempt. Zero
	// disables retries.
	MaxRetries int
	// BaseDelay is the first backoff interval; it doubles on each retry.
	BaseDelay time.Duration
}

// DefaultRetryConfig returns the settings used when none are configured.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{MaxRetries: 3, BaseDelay: 25 * time.Millisecond}
}

func (c RetryConfig) backoff() retry.Backoff {
	base := c.BaseDelay
	if base <= 0 {
		base = time.Millisecond
	}
	retries := c.MaxRetries
	if retries < 0 {
		retries = 0
	}
	return retry.WithJitterPercent(10, retry.WithMaxRetries(uint64(retries), retry.NewExponential(base)))
}

// runInTx runs fn in a fresh transaction, re-running it from scratch while the
// store reports a conflict. Every attempt rereads its state, so fn must not
// keep results from an earlier attempt.
func (s *boardServiceImpl) runInTx(ctx context.Context, operation string, fn store.StoresFn) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	attempt := 0
	err := retry.Do(ctx, s.retry.backoff(), func(ctx context.Context) error {
		attempt++
		err := s.uow.RunInTx(ctx, fn)
		if store.IsConflictError(err) {
			log.Debug("operation conflicted with a concurrent change",
				slog.String("operation", operation),
				slog.Int("attempt", attempt),
				slog.String("error", err.Error()))
			return retry.RetryableError(err)
		}
		return err
	})
	if err == nil {
		return nil
	}

	if store.IsConflictError(err) {
		log.Warn("giving up after repeated conflicts",
			slog.String("operation", operation),
			slog.Int("attempts", attempt))
		return fmt.Errorf("%w: %w", ErrRetriesExhausted, err)
	}
	if isExpected(err) {
		return err
	}

	log.Error("operation failed",
		slog.String("operation", operation),
		slog.String("error", err.Error()))
	return NewServiceError(operation, "transaction failed", err)
}
