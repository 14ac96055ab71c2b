package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noSleep(delays *[]time.Duration) func(ctx context.Context, d time.Duration) error {
	return func(ctx context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	}
}

func TestExponentialSchedule(t *testing.T) {
	backoff := Exponential(500 * time.Millisecond)

	want := []time.Duration{
		500 * time.Millisecond,
		1 * time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		16 * time.Second,
	}
	for n, expected := range want {
		assert.Equal(t, expected, backoff(n), "backoff(%d)", n)
	}
}

func TestDoSucceedsFirstTry(t *testing.T) {
	var delays []time.Duration
	p := Default()
	p.sleep = noSleep(&delays)

	calls := 0
	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, delays)
}

func TestDoExhaustsAttempts(t *testing.T) {
	var delays []time.Duration
	p := Default()
	p.sleep = noSleep(&delays)

	calls := 0
	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return fmt.Errorf("write failed on attempt %d", calls)
	})

	require.Error(t, err)
	assert.Equal(t, 7, calls)

	var rerr *Error
	require.ErrorAs(t, err, &rerr)
	assert.Len(t, rerr.Attempts, 7)
	assert.EqualError(t, rerr.Last(), "write failed on attempt 7")

	// Six delays before attempts 2..7, cumulative 31.5s.
	want := []time.Duration{
		500 * time.Millisecond,
		1 * time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		16 * time.Second,
	}
	assert.Equal(t, want, delays)
}

func TestDoRecoversMidway(t *testing.T) {
	var delays []time.Duration
	p := Default()
	p.sleep = noSleep(&delays)

	calls := 0
	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Len(t, delays, 2)
}

func TestDoStopsOnNonRetryable(t *testing.T) {
	permanent := errors.New("permanent")

	var delays []time.Duration
	p := Default()
	p.sleep = noSleep(&delays)
	p.Retryable = func(err error) bool { return !errors.Is(err, permanent) }

	calls := 0
	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls == 2 {
			return permanent
		}
		return errors.New("transient")
	})

	require.Error(t, err)
	assert.Equal(t, 2, calls)

	var rerr *Error
	require.ErrorAs(t, err, &rerr)
	assert.Len(t, rerr.Attempts, 2)
	assert.ErrorIs(t, err, permanent)
}

func TestDoHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	p := Default()
	p.sleep = func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}

	calls := 0
	err := p.Do(ctx, func(ctx context.Context) error {
		calls++
		return errors.New("transient")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, context.Canceled)
}
