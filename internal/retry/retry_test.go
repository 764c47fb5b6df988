package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func fastConfig() Config {
	return Config{
		MaxRetries:      3,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
	}
}

func TestDoSucceedsFirstTry(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(), "op", func() error {
		calls++
		return nil
	}, nil)

	require.NoError(t, err)
	require.Equal(t, 1, calls)
}

func TestDoRetriesTransientError(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(), "op", func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}, func(error) bool { return true })

	require.NoError(t, err)
	require.Equal(t, 3, calls)
}

func TestDoStopsOnPermanentError(t *testing.T) {
	permanent := errors.New("credentials rejected")
	calls := 0
	err := Do(context.Background(), fastConfig(), "op", func() error {
		calls++
		return permanent
	}, func(error) bool { return false })

	require.ErrorIs(t, err, permanent)
	require.Equal(t, 1, calls)
}

func TestDoExhaustsRetries(t *testing.T) {
	transient := errors.New("still down")
	calls := 0
	err := Do(context.Background(), fastConfig(), "op", func() error {
		calls++
		return transient
	}, func(error) bool { return true })

	require.ErrorIs(t, err, transient)
	// Initial attempt plus MaxRetries retries.
	require.Equal(t, 4, calls)
}

func TestDoHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Do(ctx, fastConfig(), "op", func() error {
		return errors.New("transient")
	}, func(error) bool { return true })

	require.Error(t, err)
	require.ErrorIs(t, err, context.Canceled)
}
