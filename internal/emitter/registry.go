// File: internal/emitter/registry.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Registry is the per-entity listener list, keyed by event name. Records
// keep insertion order, which is the fan-out order.

package emitter

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/momentics/hioload-connector/api"
)

// record is one registration. The same listener may back several records.
type record struct {
	listener *api.Listener
	once     bool
	fired    atomic.Bool // once records only; guards against overlapping passes
}

// Registry is safe for concurrent use. Fan-out runs without holding the
// lock so callbacks may register or remove listeners.
type Registry struct {
	mu     sync.RWMutex
	events map[api.EventName][]*record
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		events: make(map[api.EventName][]*record),
	}
}

// Add appends a registration and returns the listener identity.
func (r *Registry) Add(event api.EventName, l *api.Listener, once bool) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[event] = append(r.events[event], &record{listener: l, once: once})
	return l.ID()
}

// Remove drops the first registration of l for event, if any.
func (r *Registry) Remove(event api.EventName, l *api.Listener) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	records := r.events[event]
	for i, rec := range records {
		if rec.listener == l {
			r.events[event] = append(records[:i:i], records[i+1:]...)
			r.compactLocked(event)
			return true
		}
	}
	return false
}

// RemoveAll drops every registration for event and returns how many there were.
func (r *Registry) RemoveAll(event api.EventName) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.events[event])
	delete(r.events, event)
	return n
}

// Clear drops every registration for every event.
func (r *Registry) Clear() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for event, records := range r.events {
		n += len(records)
		delete(r.events, event)
	}
	return n
}

// Count returns the number of registrations for event.
func (r *Registry) Count(event api.EventName) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.events[event])
}

// Fire invokes every registration for event in insertion order. Records
// flagged once are removed after the whole pass, so every callback of the
// pass sees the registry as it was when the pass began. A failing or
// panicking callback does not stop the pass; failures come back as one
// *api.ListenerError.
func (r *Registry) Fire(ctx context.Context, event api.EventName) error {
	r.mu.RLock()
	snapshot := make([]*record, len(r.events[event]))
	copy(snapshot, r.events[event])
	r.mu.RUnlock()

	var errs []error
	for _, rec := range snapshot {
		if rec.once && !rec.fired.CompareAndSwap(false, true) {
			continue
		}
		if err := invoke(ctx, rec.listener); err != nil {
			errs = append(errs, err)
		}
	}

	r.dropOnce(event, snapshot)

	if lerr := api.NewListenerError(event, errs); lerr != nil {
		return lerr
	}
	return nil
}

// dropOnce removes the once records of a finished pass. Records already
// removed during the pass are skipped.
func (r *Registry) dropOnce(event api.EventName, fired []*record) {
	var once map[*record]struct{}
	for _, rec := range fired {
		if rec.once {
			if once == nil {
				once = make(map[*record]struct{})
			}
			once[rec] = struct{}{}
		}
	}
	if once == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	records := r.events[event]
	kept := records[:0:0]
	for _, rec := range records {
		if _, ok := once[rec]; !ok {
			kept = append(kept, rec)
		}
	}
	r.events[event] = kept
	r.compactLocked(event)
}

func (r *Registry) compactLocked(event api.EventName) {
	if len(r.events[event]) == 0 {
		delete(r.events, event)
	}
}

func invoke(ctx context.Context, l *api.Listener) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("listener %s panicked: %v", l.ID(), rec)
		}
	}()
	if err := l.Invoke(ctx); err != nil {
		return fmt.Errorf("listener %s: %w", l.ID(), err)
	}
	return nil
}
