// Copyright 2025 momentics@gmail.com
// Licensed under the Apache License, Version 2.0.

// registry_test.go: listener bookkeeping and fan-out semantics.
package emitter

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-connector/api"
)

const ev = api.EventDataAvailable

func TestRegistryCountFollowsAddRemove(t *testing.T) {
	r := NewRegistry()
	a := api.NewListener(nil)
	b := api.NewListener(nil)

	assert.Equal(t, a.ID(), r.Add(ev, a, false))
	r.Add(ev, b, false)
	r.Add(ev, a, false)
	assert.Equal(t, 3, r.Count(ev))

	assert.True(t, r.Remove(ev, a))
	assert.Equal(t, 2, r.Count(ev))
	assert.False(t, r.Remove(ev, api.NewListener(nil)))

	assert.Equal(t, 2, r.RemoveAll(ev))
	assert.Zero(t, r.Count(ev))
	assert.Zero(t, r.RemoveAll(ev))
}

func TestRegistryRemoveFirstMatchOnly(t *testing.T) {
	r := NewRegistry()
	var order []string
	a := api.NewListener(func(context.Context) error { order = append(order, "a"); return nil })
	b := api.NewListener(func(context.Context) error { order = append(order, "b"); return nil })

	r.Add(ev, a, false)
	r.Add(ev, b, false)
	r.Add(ev, a, false)
	require.True(t, r.Remove(ev, a))

	require.NoError(t, r.Fire(context.Background(), ev))
	assert.Equal(t, []string{"b", "a"}, order)
}

func TestRegistryOnceRemovedAfterPass(t *testing.T) {
	r := NewRegistry()
	var seen []int
	once := api.NewListener(func(context.Context) error {
		seen = append(seen, r.Count(ev))
		return nil
	})
	plain := api.NewListener(func(context.Context) error {
		seen = append(seen, r.Count(ev))
		return nil
	})
	r.Add(ev, once, true)
	r.Add(ev, plain, false)

	require.NoError(t, r.Fire(context.Background(), ev))
	assert.Equal(t, []int{2, 2}, seen)
	assert.Equal(t, 1, r.Count(ev))

	require.NoError(t, r.Fire(context.Background(), ev))
	assert.Equal(t, []int{2, 2, 1}, seen)
}

func TestRegistryAddDuringPassRunsNextPass(t *testing.T) {
	r := NewRegistry()
	late := 0
	lateL := api.NewListener(func(context.Context) error { late++; return nil })
	r.Add(ev, api.NewListener(func(context.Context) error {
		if r.Count(ev) == 1 {
			r.Add(ev, lateL, false)
		}
		return nil
	}), false)

	require.NoError(t, r.Fire(context.Background(), ev))
	assert.Zero(t, late)
	require.NoError(t, r.Fire(context.Background(), ev))
	assert.Equal(t, 1, late)
}

func TestRegistryCollectsFailures(t *testing.T) {
	r := NewRegistry()
	boom := errors.New("boom")
	ran := false
	r.Add(ev, api.NewListener(func(context.Context) error { return boom }), false)
	r.Add(ev, api.NewListener(func(context.Context) error { panic("kaboom") }), false)
	r.Add(ev, api.NewListener(func(context.Context) error { ran = true; return nil }), false)

	err := r.Fire(context.Background(), ev)
	require.Error(t, err)
	assert.True(t, ran)

	var lerr *api.ListenerError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, 2, lerr.Len())
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, err, api.ErrListener)
	assert.Contains(t, err.Error(), "panicked: kaboom")
}

func TestRegistryClear(t *testing.T) {
	r := NewRegistry()
	r.Add(ev, api.NewListener(nil), false)
	r.Add("other", api.NewListener(nil), false)
	assert.Equal(t, 2, r.Clear())
	assert.Zero(t, r.Count(ev))
	assert.NoError(t, r.Fire(context.Background(), ev))
}
