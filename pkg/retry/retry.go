package retry

import (
	"context"
	"errors"
	"time"
)

// ErrAttemptsExhausted is returned when fn never produced a definitive
// outcome within the attempt budget.
var ErrAttemptsExhausted = errors.New("retry: attempts exhausted")

// Permanent marks an error as not worth retrying. Do returns it unwrapped
// to the caller immediately.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }

func (e *permanentError) Unwrap() error { return e.err }

func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Strategy describes a bounded retry schedule with exponential backoff:
// Delay before the second attempt, Delay*Backoff before the third, and so on.
type Strategy struct {
	Attempts int
	Delay    time.Duration
	Backoff  float64
}

func (s Strategy) withDefaults() Strategy {
	if s.Attempts <= 0 {
		s.Attempts = 3
	}
	if s.Delay <= 0 {
		s.Delay = 100 * time.Millisecond
	}
	if s.Backoff < 1 {
		s.Backoff = 2
	}
	return s
}

// Do runs fn up to s.Attempts times, sleeping between attempts. It stops early
// when fn succeeds, when fn returns a Permanent error, or when ctx is done.
// On exhaustion the last error is wrapped in ErrAttemptsExhausted so callers
// can tell "gave up" apart from a terminal failure.
func Do(ctx context.Context, s Strategy, fn func(ctx context.Context) error) error {
	s = s.withDefaults()

	var lastErr error
	delay := s.Delay

	for attempt := 1; attempt <= s.Attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}

		lastErr = err

		if attempt == s.Attempts {
			break
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay = time.Duration(float64(delay) * s.Backoff)
	}

	return errors.Join(ErrAttemptsExhausted, lastErr)
}
