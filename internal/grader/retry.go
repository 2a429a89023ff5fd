package grader

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"time"
)

// IsRetryable checks if an error is worth retrying.
func IsRetryable(err error) bool {
	var retryErr *RetryableError
	return errors.As(err, &retryErr)
}

// maxBackoff caps the base delay; 2^5s already exceeds it.
const maxBackoff = 30 * time.Second

// Backoff returns a duration for attempt n (0-indexed) with jitter.
func Backoff(attempt int) time.Duration {
	base := maxBackoff
	if attempt >= 0 && attempt < 5 {
		base = time.Duration(1<<uint(attempt)) * time.Second
	}
	jitter := time.Duration(rand.Int64N(int64(base) / 2))
	return base + jitter
}

type retrying struct {
	next       Grader
	maxRetries int
	log        *slog.Logger
	backoff    func(int) time.Duration
}

// WithRetry retries RetryableError failures up to maxRetries extra times.
func WithRetry(g Grader, maxRetries int, log *slog.Logger) Grader {
	if log == nil {
		log = slog.Default()
	}
	return &retrying{next: g, maxRetries: maxRetries, log: log, backoff: Backoff}
}

func (r *retrying) Grade(ctx context.Context, system, payload string) (string, error) {
	var (
		out string
		err error
	)
	for attempt := 0; ; attempt++ {
		out, err = r.next.Grade(ctx, system, payload)
		if err == nil || !IsRetryable(err) || attempt >= r.maxRetries {
			return out, err
		}
		r.log.Warn("retryable grading error", "attempt", attempt, "error", err)
		select {
		case <-time.After(r.backoff(attempt)):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
}
