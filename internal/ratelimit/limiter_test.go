package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWait_EnforcesMinimumSpacing(t *testing.T) {
	l := New(50*time.Millisecond, 0)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, l.Wait(ctx, "example.com"))
	}
	elapsed := time.Since(start)

	// Three grants on one key need at least two full intervals.
	assert.GreaterOrEqual(t, elapsed, 100*time.Millisecond)
}

func TestWait_DistinctKeysDoNotSerialize(t *testing.T) {
	l := New(200*time.Millisecond, 0)
	ctx := context.Background()

	start := time.Now()
	var wg sync.WaitGroup
	for _, key := range []string{"a.com", "b.com", "c.com"} {
		key := key
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, l.Wait(ctx, key))
		}()
	}
	wg.Wait()

	// First grant on each key is immediate.
	assert.Less(t, time.Since(start), 150*time.Millisecond)
}

func TestWait_ConcurrentSameKeySpacing(t *testing.T) {
	l := New(30*time.Millisecond, 0)
	ctx := context.Background()

	const n = 4
	times := make([]time.Time, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			require.NoError(t, l.Wait(ctx, "example.com"))
			times[i] = time.Now()
		}()
	}
	wg.Wait()

	var earliest, latest time.Time
	for _, ts := range times {
		if earliest.IsZero() || ts.Before(earliest) {
			earliest = ts
		}
		if ts.After(latest) {
			latest = ts
		}
	}
	// N grants span at least (N-1) intervals.
	assert.GreaterOrEqual(t, latest.Sub(earliest), (n-1)*30*time.Millisecond)
}

func TestWait_CancelledWhileWaiting(t *testing.T) {
	l := New(time.Hour, 0)
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, l.Wait(ctx, "example.com"))

	done := make(chan error, 1)
	go func() { done <- l.Wait(ctx, "example.com") }()

	cancel()
	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(time.Second):
		t.Fatal("wait did not return after cancel")
	}
}

func TestWait_JitterRespectsContext(t *testing.T) {
	l := New(time.Millisecond, time.Hour)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := l.Wait(ctx, "example.com")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestInterval(t *testing.T) {
	l := New(1500*time.Millisecond, 0)
	assert.Equal(t, 1500*time.Millisecond, l.Interval())
}
