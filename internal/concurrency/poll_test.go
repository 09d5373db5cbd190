// Copyright 2025 momentics@gmail.com
// Licensed under the Apache License, Version 2.0.

// poll_test.go: chunked waits with timeout, cancellation and stop.
package concurrency

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sleeper(calls *atomic.Int32) WaitFunc {
	return func(d time.Duration) (bool, error) {
		calls.Add(1)
		time.Sleep(d)
		return false, nil
	}
}

func TestPollUntilTimeout(t *testing.T) {
	var calls atomic.Int32
	interval := func() time.Duration { return 20 * time.Millisecond }

	start := time.Now()
	err := PollUntil(context.Background(), 100*time.Millisecond, interval, nil, sleeper(&calls))
	elapsed := time.Since(start)

	assert.ErrorIs(t, err, ErrPollTimeout)
	assert.GreaterOrEqual(t, elapsed, 100*time.Millisecond)
	assert.Less(t, elapsed, 400*time.Millisecond)
	assert.GreaterOrEqual(t, calls.Load(), int32(5))
}

func TestPollUntilClampsLastChunk(t *testing.T) {
	var chunks []time.Duration
	_ = PollUntil(context.Background(), 30*time.Millisecond,
		func() time.Duration { return time.Second }, nil,
		func(d time.Duration) (bool, error) {
			chunks = append(chunks, d)
			time.Sleep(d)
			return false, nil
		})
	require.NotEmpty(t, chunks)
	assert.LessOrEqual(t, chunks[0], 30*time.Millisecond)
}

func TestPollUntilSuccess(t *testing.T) {
	n := 0
	err := PollUntil(context.Background(), 0, nil, nil, func(time.Duration) (bool, error) {
		n++
		return n == 3, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestPollUntilContextCanceled(t *testing.T) {
	var calls atomic.Int32
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := PollUntil(ctx, 0, func() time.Duration { return 10 * time.Millisecond }, nil, sleeper(&calls))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPollUntilStopped(t *testing.T) {
	var (
		calls atomic.Int32
		stop  atomic.Bool
	)
	go func() {
		time.Sleep(30 * time.Millisecond)
		stop.Store(true)
	}()
	err := PollUntil(context.Background(), time.Minute, func() time.Duration { return 10 * time.Millisecond }, stop.Load, sleeper(&calls))
	assert.ErrorIs(t, err, ErrPollStopped)
}

func TestPollUntilWaitError(t *testing.T) {
	boom := errors.New("boom")
	err := PollUntil(context.Background(), time.Second, nil, nil, func(time.Duration) (bool, error) {
		return false, boom
	})
	assert.ErrorIs(t, err, boom)
}
