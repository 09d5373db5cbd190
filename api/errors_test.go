// Copyright 2025 momentics@gmail.com
// Licensed under the Apache License, Version 2.0.

// errors_test.go: error kinds, code matching and listener aggregation.
package api

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	err := NewConcurrentWaitError(KindInput, "TestSubscriber::TestReader")
	assert.ErrorIs(t, err, ErrConcurrentWait)
	assert.NotErrorIs(t, err, ErrEntityClosed)

	wrapped := fmt.Errorf("input: %w", err)
	assert.ErrorIs(t, wrapped, ErrConcurrentWait)

	var apiErr *Error
	require.ErrorAs(t, wrapped, &apiErr)
	assert.Equal(t, "TestSubscriber::TestReader", apiErr.Context["entity"])
}

func TestConcurrentWaitMessages(t *testing.T) {
	assert.Equal(t, "can not concurrently wait on the same Input", NewConcurrentWaitError(KindInput, "r").Message)
	assert.Equal(t, "can not concurrently wait on the same Connector object", NewConcurrentWaitError(KindConnector, "c").Message)
}

func TestErrorConstructors(t *testing.T) {
	assert.ErrorIs(t, NewUnsupportedEventError("on_foo"), ErrUnsupportedEvent)
	assert.ErrorIs(t, NewEntityClosedError(KindOutput, "w"), ErrEntityClosed)
	assert.ErrorIs(t, NewNotFoundError(KindInput, "x"), ErrNotFound)

	timeout := NewWaitTimeoutError("r", 500*time.Millisecond)
	assert.ErrorIs(t, timeout, ErrWaitTimeout)
	assert.Equal(t, "500ms", timeout.Context["timeout"])
	assert.Contains(t, timeout.Error(), "timeout waiting for data")
}

func TestErrorCodeString(t *testing.T) {
	assert.Equal(t, "concurrent_wait", ErrCodeConcurrentWait.String())
	assert.Equal(t, "entity_closed", ErrCodeEntityClosed.String())
}

func TestListenerErrorAggregates(t *testing.T) {
	assert.Nil(t, NewListenerError(EventDataAvailable, nil))

	boom := errors.New("boom")
	other := errors.New("other")
	lerr := NewListenerError(EventDataAvailable, []error{boom, other})
	require.NotNil(t, lerr)

	assert.Equal(t, 2, lerr.Len())
	assert.ErrorIs(t, lerr, ErrListener)
	assert.ErrorIs(t, lerr, boom)
	assert.ErrorIs(t, lerr, other)
	assert.Contains(t, lerr.Error(), "2 listener(s) failed on on_data_available")
	assert.Contains(t, lerr.Error(), "boom; other")
}

func TestSupportedEvents(t *testing.T) {
	assert.True(t, EventDataAvailable.Supported())
	assert.False(t, EventName("on_subscription_matched").Supported())
	assert.Equal(t, []EventName{EventDataAvailable}, SupportedEvents())
}

func TestListenerIdentity(t *testing.T) {
	calls := 0
	a := NewListener(func(ctx context.Context) error { calls++; return nil })
	b := NewListener(nil)
	assert.NotEqual(t, a.ID(), b.ID())
	require.NoError(t, a.Invoke(context.Background()))
	require.NoError(t, b.Invoke(context.Background()))
	assert.Equal(t, 1, calls)
}

func TestWaitStateString(t *testing.T) {
	assert.Equal(t, "idle", WaitIdle.String())
	assert.Equal(t, "stop_requested", WaitStopRequested.String())
}
