// File: connector/events.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package connector

import (
	"context"

	"github.com/momentics/hioload-connector/api"
	"github.com/momentics/hioload-connector/internal/emitter"
)

// events is the listener surface shared by Connector and Input.
//
// Registering the first on_data_available listener starts a background wait
// loop on the entity; removing the last one stops it within one polling
// interval. While the loop runs, explicit waits on the same entity fail with
// api.ErrConcurrentWait. Listeners run on the loop goroutine, one fan-out at
// a time, in registration order. They may call Take, Read, On and Off on the
// entity, but must not call Close on it.
type events struct {
	em *emitter.Emitter
}

// On registers l for event. Registering the same handle twice yields two
// registrations.
func (e events) On(event api.EventName, l *api.Listener) error {
	return e.em.On(event, l)
}

// Once registers l for the next fan-out of event only.
func (e events) Once(event api.EventName, l *api.Listener) error {
	return e.em.Once(event, l)
}

// OnFunc wraps cb in a new handle, registers it and returns the handle.
func (e events) OnFunc(event api.EventName, cb api.Callback) (*api.Listener, error) {
	return e.em.OnFunc(event, cb)
}

// OnceFunc is OnFunc for a single fan-out.
func (e events) OnceFunc(event api.EventName, cb api.Callback) (*api.Listener, error) {
	return e.em.OnceFunc(event, cb)
}

// Off removes the first registration of l for event.
func (e events) Off(event api.EventName, l *api.Listener) error {
	return e.em.Off(event, l)
}

// RemoveListener is an alias of Off.
func (e events) RemoveListener(event api.EventName, l *api.Listener) error {
	return e.em.RemoveListener(event, l)
}

// RemoveAllListeners clears the given events, or all of them.
func (e events) RemoveAllListeners(names ...api.EventName) error {
	return e.em.RemoveAllListeners(names...)
}

// ListenerCount returns the number of registrations for event.
func (e events) ListenerCount(event api.EventName) int {
	return e.em.ListenerCount(event)
}

// Emit fans event out synchronously on the caller's goroutine.
func (e events) Emit(ctx context.Context, event api.EventName) error {
	return e.em.Emit(ctx, event)
}

// WaitState returns the entity's wait state.
func (e events) WaitState() api.WaitState {
	return e.em.WaitState()
}

// TakeErrors drains errors raised by the entity's wait loop.
func (e events) TakeErrors() []error {
	return e.em.TakeErrors()
}
