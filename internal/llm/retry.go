package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonathan/docstudio/internal/metrics"
)

// Retry defaults
const (
	DefaultMaxAttempts    = 3
	DefaultInitialBackoff = 2 * time.Second
)

// Sleeper waits for d or until ctx is done, whichever comes first.
type Sleeper func(ctx context.Context, d time.Duration) error

// ContextSleep is the production Sleeper.
func ContextSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RetryingClient wraps a Client and retries calls that failed with KindRateLimit.
// The delay before attempt n+1 is InitialBackoff * 2^(n-1). Other failures are returned immediately.
type RetryingClient struct {
	next           Client
	maxAttempts    int
	initialBackoff time.Duration
	sleep          Sleeper
	logger         *slog.Logger
}

// RetryOption configures a RetryingClient
type RetryOption func(*RetryingClient)

// WithMaxAttempts sets the total number of attempts, including the first one.
func WithMaxAttempts(n int) RetryOption {
	return func(r *RetryingClient) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}

// WithInitialBackoff sets the delay before the second attempt.
func WithInitialBackoff(d time.Duration) RetryOption {
	return func(r *RetryingClient) {
		r.initialBackoff = d
	}
}

// WithSleeper replaces the wait function, mainly for tests.
func WithSleeper(s Sleeper) RetryOption {
	return func(r *RetryingClient) {
		r.sleep = s
	}
}

// WithLogger sets the logger used for retry diagnostics.
func WithLogger(l *slog.Logger) RetryOption {
	return func(r *RetryingClient) {
		r.logger = l
	}
}

// NewRetryingClient wraps next with the default retry policy
func NewRetryingClient(next Client, opts ...RetryOption) *RetryingClient {
	r := &RetryingClient{
		next:           next,
		maxAttempts:    DefaultMaxAttempts,
		initialBackoff: DefaultInitialBackoff,
		sleep:          ContextSleep,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Backoff returns the wait before the attempt following attempt (1-based).
func (r *RetryingClient) Backoff(attempt int) time.Duration {
	return r.initialBackoff * time.Duration(1<<(attempt-1))
}

// Generate calls the wrapped client, retrying rate-limited attempts.
// When every attempt is rate limited the returned *Error has KindRateLimit and wraps ErrRateLimitExhausted.
func (r *RetryingClient) Generate(ctx context.Context, req Request) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		text, err := r.next.Generate(ctx, req)
		if err == nil {
			metrics.LLMAttempt("ok")
			return text, nil
		}

		kind := KindOf(err)
		metrics.LLMAttempt(string(kind))
		if kind != KindRateLimit {
			r.logger.Error("llm call failed", "attempt", attempt, "kind", kind, "error", err)
			return "", err
		}

		lastErr = err
		if attempt == r.maxAttempts {
			break
		}

		delay := r.Backoff(attempt)
		r.logger.Warn("llm rate limited, retrying",
			"attempt", attempt, "max_attempts", r.maxAttempts, "delay", delay)
		metrics.LLMRetry()
		if err := r.sleep(ctx, delay); err != nil {
			return "", &Error{Kind: KindTransport, Message: "retry wait interrupted", Cause: err}
		}
	}

	r.logger.Error("llm rate limit persisted after retries", "attempts", r.maxAttempts, "error", lastErr)
	return "", &Error{
		Kind:    KindRateLimit,
		Message: fmt.Sprintf("rate limited on all %d attempts", r.maxAttempts),
		Cause:   fmt.Errorf("%w: %w", ErrRateLimitExhausted, lastErr),
	}
}

// Close closes the wrapped client
func (r *RetryingClient) Close() error {
	return r.next.Close()
}
