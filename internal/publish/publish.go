// Package publish sends finished posts to the social platform. Errors carry
// a Kind so the pipeline can tell transient throttling from credential
// problems.
package publish

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Kind classifies publish failures.
type Kind int

const (
	KindNetwork Kind = iota
	KindRateLimited
	KindAuth
	KindRejected
)

func (k Kind) String() string {
	switch k {
	case KindRateLimited:
		return "rate_limited"
	case KindAuth:
		return "auth"
	case KindRejected:
		return "rejected"
	default:
		return "network"
	}
}

// Error is a publish failure. RateLimited errors may carry the platform's
// cooldown hint; honoring it means not retrying within the same run.
type Error struct {
	Kind       Kind
	StatusCode int
	RetryAfter time.Duration
	Err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("publish %s (status %d): %v", e.Kind, e.StatusCode, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether an error may be retried within the run. Auth and
// rejection failures need operator attention; rate-limit responses defer to
// the next scheduled run per the platform's cooldown.
func Retryable(err error) bool {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind == KindNetwork
	}
	return true
}

// Publisher is the remote publish API. Image is optional; nil publishes
// text-only.
type Publisher interface {
	Publish(ctx context.Context, text string, image []byte) (postID string, err error)
}
