// File: api/handler.go
// Package api defines listener handles.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

import (
	"context"

	"github.com/oklog/ulid/v2"
)

// Callback is invoked on every fan-out of the event it is registered for.
// No payload is passed: the callback re-queries the entity (Take, Read).
type Callback func(ctx context.Context) error

// Listener is a registered callback. Registries match listeners by handle
// identity, so the same *Listener may be registered more than once and each
// Off removes one registration.
type Listener struct {
	id ulid.ULID
	fn Callback
}

// NewListener wraps cb in a new handle.
func NewListener(cb Callback) *Listener {
	return &Listener{id: ulid.Make(), fn: cb}
}

// ID returns the handle identity, stable for the lifetime of the listener.
func (l *Listener) ID() string {
	return l.id.String()
}

// Invoke calls the callback.
func (l *Listener) Invoke(ctx context.Context) error {
	if l.fn == nil {
		return nil
	}
	return l.fn(ctx)
}
