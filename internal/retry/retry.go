// Package retry wraps outbound calls in a bounded, jittered exponential
// backoff. Fatal errors short-circuit via backoff.Permanent.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	DefaultMaxRetries = 3

	initialInterval = 500 * time.Millisecond
	maxInterval     = 10 * time.Second
)

// Operation is one retryable attempt; nil means success.
type Operation func() error

// ShouldRetryFunc reports whether an error is transient.
type ShouldRetryFunc func(error) bool

type Config struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxRetries:      DefaultMaxRetries,
		InitialInterval: initialInterval,
		MaxInterval:     maxInterval,
	}
}

// Do runs op with backoff until it succeeds, exhausts cfg.MaxRetries, hits a
// non-transient error, or ctx ends.
func Do(ctx context.Context, cfg Config, name string, op Operation, shouldRetry ShouldRetryFunc) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = cfg.InitialInterval
	b.MaxInterval = cfg.MaxInterval

	bo := backoff.WithContext(backoff.WithMaxRetries(b, cfg.MaxRetries), ctx)

	var lastErr error
	attempt := func() error {
		err := op()
		if err == nil {
			return nil
		}
		lastErr = err
		if shouldRetry != nil && shouldRetry(err) {
			return err
		}
		return backoff.Permanent(err)
	}

	err := backoff.Retry(attempt, bo)
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", name, err)
	}
	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		return perm.Err
	}
	return fmt.Errorf("%s failed after %d retries: %w", name, cfg.MaxRetries, lastErr)
}
