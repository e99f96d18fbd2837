package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry(opts ...Option) Retry {
	return New(append([]Option{
		WithDelay(time.Millisecond),
		WithMaxDelay(2 * time.Millisecond),
	}, opts...)...)
}

func TestRetry_Execute(t *testing.T) {
	t.Run("should call a successful operation once", func(t *testing.T) {
		calls := 0

		err := fastRetry().Execute(t.Context(), func() error {
			calls++
			return nil
		})

		assert.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("should retry until the operation succeeds", func(t *testing.T) {
		calls := 0

		err := fastRetry(WithAttempts(4)).Execute(t.Context(), func() error {
			calls++
			if calls < 3 {
				return errors.New("sidecar unavailable")
			}
			return nil
		})

		assert.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("should return the last error once attempts are exhausted", func(t *testing.T) {
		calls := 0
		errFetch := errors.New("block not found")

		err := fastRetry(WithAttempts(3)).Execute(t.Context(), func() error {
			calls++
			return errFetch
		})

		assert.ErrorIs(t, err, errFetch)
		assert.Equal(t, 3, calls)
	})

	t.Run("should join every attempt error when requested", func(t *testing.T) {
		err := fastRetry(WithAttempts(2), WithLastErrorOnly(false)).Execute(t.Context(), func() error {
			return errors.New("timeout")
		})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "#1: timeout")
		assert.Contains(t, err.Error(), "#2: timeout")
	})

	t.Run("should stop at errors rejected by the predicate", func(t *testing.T) {
		calls := 0
		errPermanent := errors.New("malformed block")

		r := fastRetry(
			WithAttempts(5),
			WithRetryIf(func(err error) bool { return !errors.Is(err, errPermanent) }),
		)

		err := r.Execute(t.Context(), func() error {
			calls++
			return errPermanent
		})

		assert.ErrorIs(t, err, errPermanent)
		assert.Equal(t, 1, calls)
	})

	t.Run("should stop when the context is canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		calls := 0

		r := New(WithAttempts(5), WithDelay(200*time.Millisecond))
		go func() {
			time.Sleep(10 * time.Millisecond)
			cancel()
		}()

		err := r.Execute(ctx, func() error {
			calls++
			return errors.New("retryable")
		})

		assert.Error(t, err)
		assert.Equal(t, 1, calls)
	})
}

func TestUnrecoverable(t *testing.T) {
	t.Run("should stop at an unrecoverable error and return it unwrapped", func(t *testing.T) {
		calls := 0
		errFatal := errors.New("consistency violation")

		err := fastRetry(WithAttempts(5)).Execute(t.Context(), func() error {
			calls++
			return Unrecoverable(errFatal)
		})

		assert.ErrorIs(t, err, errFatal)
		assert.Equal(t, 1, calls)
	})
}

func TestNew(t *testing.T) {
	t.Run("should apply defaults", func(t *testing.T) {
		r, ok := New().(*retrier)
		require.True(t, ok)

		assert.Equal(t, uint(3), r.cfg.attempts)
		assert.Equal(t, time.Second, r.cfg.delay)
		assert.Equal(t, 5*time.Second, r.cfg.maxDelay)
		assert.True(t, r.cfg.lastErrOnly)
		assert.True(t, r.cfg.retryIf(errors.New("any")))
	})

	t.Run("should apply options in order", func(t *testing.T) {
		r, ok := New(WithAttempts(7), WithAttempts(2), WithMaxDelay(time.Minute)).(*retrier)
		require.True(t, ok)

		assert.Equal(t, uint(2), r.cfg.attempts)
		assert.Equal(t, time.Minute, r.cfg.maxDelay)
	})
}
