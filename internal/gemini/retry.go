package gemini

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// RetryConfig bounds how often a Gemini call is repeated after a transient
// failure (rate limit, 5xx, dropped connection) and how long to wait between
// attempts.
type RetryConfig struct {
	MaxRetries     int
	InitialDelay   time.Duration
	MaxDelay       time.Duration
	BackoffFactor  float64
	JitterFraction float64 // share of each wait randomized, 0 to 1
}

// NoRetry makes exactly one attempt.
var NoRetry = RetryConfig{}

// DefaultRetryConfig keeps a week of seven parallel day requests inside the
// HTTP write timeout when the API throttles.
var DefaultRetryConfig = RetryConfig{
	MaxRetries:     2,
	InitialDelay:   1 * time.Second,
	MaxDelay:       10 * time.Second,
	BackoffFactor:  2.0,
	JitterFraction: 0.2,
}

// WithMaxRetries returns DefaultRetryConfig capped at n retries.
func WithMaxRetries(n int) RetryConfig {
	if n <= 0 {
		return NoRetry
	}
	cfg := DefaultRetryConfig
	cfg.MaxRetries = n
	return cfg
}

// backoff is the wait before retry number attempt+1, before jitter.
func (c RetryConfig) backoff(attempt int) time.Duration {
	d := float64(c.InitialDelay) * math.Pow(c.BackoffFactor, float64(attempt))
	if c.MaxDelay > 0 && d > float64(c.MaxDelay) {
		d = float64(c.MaxDelay)
	}
	return time.Duration(d)
}

func (c RetryConfig) jittered(d time.Duration) time.Duration {
	if c.JitterFraction <= 0 {
		return d
	}
	j := time.Duration(float64(d) * c.JitterFraction * (rand.Float64()*2 - 1))
	if d+j < 0 {
		return c.InitialDelay
	}
	return d + j
}

type retryable interface {
	IsRetryable() bool
}

// permanent reports whether err carries a retryable classification that
// rules out another attempt. Unclassified errors are retried.
func permanent(err error) bool {
	var r retryable
	return errors.As(err, &r) && !r.IsRetryable()
}

// WithRetry calls fn until it succeeds, returns a permanent error, ctx ends,
// or cfg.MaxRetries retries have been spent. The last error is returned.
func WithRetry[T any](ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	for attempt := 0; ; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		if permanent(err) || attempt >= cfg.MaxRetries {
			return zero, err
		}

		timer := time.NewTimer(cfg.jittered(cfg.backoff(attempt)))
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
}
