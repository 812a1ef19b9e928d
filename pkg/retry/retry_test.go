package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Do(context.Background(), Strategy{Attempts: 3, Delay: time.Millisecond}, func(ctx context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := Do(context.Background(), Strategy{Attempts: 3, Delay: time.Millisecond}, func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	cause := errors.New("predicate never matched")
	calls := 0
	err := Do(context.Background(), Strategy{Attempts: 3, Delay: time.Millisecond}, func(ctx context.Context) error {
		calls++
		return cause
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.ErrorIs(t, err, ErrAttemptsExhausted)
	assert.ErrorIs(t, err, cause)
}

func TestDo_PermanentStopsImmediately(t *testing.T) {
	cause := errors.New("booking is closed")
	calls := 0
	err := Do(context.Background(), Strategy{Attempts: 5, Delay: time.Millisecond}, func(ctx context.Context) error {
		calls++
		return Permanent(cause)
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, cause, err)
	assert.NotErrorIs(t, err, ErrAttemptsExhausted)
}

func TestDo_ContextCanceledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := Do(ctx, Strategy{Attempts: 10, Delay: time.Second}, func(ctx context.Context) error {
		calls++
		return errors.New("transient")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestDo_ContextAlreadyExpired(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Do(ctx, Strategy{}, func(ctx context.Context) error {
		calls++
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, calls)
}

func TestDo_BackoffDoubles(t *testing.T) {
	var gaps []time.Duration
	last := time.Now()

	_ = Do(context.Background(), Strategy{Attempts: 3, Delay: 20 * time.Millisecond, Backoff: 2}, func(ctx context.Context) error {
		now := time.Now()
		gaps = append(gaps, now.Sub(last))
		last = now
		return errors.New("transient")
	})

	require.Len(t, gaps, 3)
	// First gap is immediate, then ~20ms, then ~40ms.
	assert.GreaterOrEqual(t, gaps[1], 20*time.Millisecond)
	assert.GreaterOrEqual(t, gaps[2], 40*time.Millisecond)
}
