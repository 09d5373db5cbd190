// File: internal/emitter/emitter.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Emitter is the event surface shared by Inputs and the Connector. It owns
// the entity's listener registry, its WaitGuard and, while listeners for
// on_data_available exist, one WaitLoop that bridges the entity's blocking
// wait into fan-outs.
//
// Lock order: Emitter.mu before Registry.mu. Fan-out never holds Emitter.mu,
// so callbacks may call back into the entity (Take, Off, On, Emit).

package emitter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/momentics/hioload-connector/api"
	"github.com/momentics/hioload-connector/control"
	"github.com/momentics/hioload-connector/internal/concurrency"
)

// Config wires an Emitter to its entity.
type Config struct {
	Kind   api.EntityKind
	Name   string
	Target api.Waitable

	// Interval returns the current polling interval. Nil means
	// concurrency.DefaultPollInterval.
	Interval func() time.Duration
	Logger   *zap.Logger
	Metrics  *control.MetricsRegistry
	Errors   *concurrency.ErrorSink
}

// Emitter implements on/once/off/removeAllListeners/listenerCount/emit and
// the explicit wait of one entity.
type Emitter struct {
	kind     api.EntityKind
	name     string
	target   api.Waitable
	interval func() time.Duration
	log      *zap.Logger
	metrics  *control.MetricsRegistry
	errs     *concurrency.ErrorSink
	prefix   string

	registry *Registry
	guard    concurrency.WaitGuard

	mu      sync.Mutex
	loop    *concurrency.WaitLoop
	active  sync.WaitGroup // running loop or explicit wait
	closing atomic.Bool
	closed  bool
	done    chan struct{} // closed when shutdown completed

	// ctx is handed to loop-driven callbacks; canceled on Close.
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates an Emitter with an empty registry in the Idle state.
func New(cfg Config) *Emitter {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	errs := cfg.Errors
	if errs == nil {
		errs = concurrency.NewErrorSink(concurrency.DefaultErrorBacklog, nil)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Emitter{
		kind:     cfg.Kind,
		name:     cfg.Name,
		target:   cfg.Target,
		interval: cfg.Interval,
		log:      log.With(zap.Stringer("kind", cfg.Kind), zap.String("entity", cfg.Name)),
		metrics:  cfg.Metrics,
		errs:     errs,
		prefix:   MetricPrefix(cfg.Kind, cfg.Name),
		registry: NewRegistry(),
		done:     make(chan struct{}),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// MetricPrefix is the metrics key prefix used for an entity.
func MetricPrefix(kind api.EntityKind, name string) string {
	if kind == api.KindConnector {
		return "connector"
	}
	return strings.ToLower(kind.String()) + "." + name
}

// On registers l for event and starts the wait loop if l is the first
// on_data_available listener.
func (e *Emitter) On(event api.EventName, l *api.Listener) error {
	return e.add(event, l, false)
}

// Once is On with a registration that is dropped after its first fan-out.
func (e *Emitter) Once(event api.EventName, l *api.Listener) error {
	return e.add(event, l, true)
}

// OnFunc registers cb under a new handle and returns the handle.
func (e *Emitter) OnFunc(event api.EventName, cb api.Callback) (*api.Listener, error) {
	l := api.NewListener(cb)
	if err := e.On(event, l); err != nil {
		return nil, err
	}
	return l, nil
}

// OnceFunc registers cb for a single fan-out and returns the handle.
func (e *Emitter) OnceFunc(event api.EventName, cb api.Callback) (*api.Listener, error) {
	l := api.NewListener(cb)
	if err := e.Once(event, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (e *Emitter) add(event api.EventName, l *api.Listener, once bool) error {
	if !event.Supported() {
		return api.NewUnsupportedEventError(event)
	}
	if l == nil {
		return api.NewError(api.ErrCodeInvalidArgument, "nil listener").WithContext("entity", e.name)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return api.NewEntityClosedError(e.kind, e.name)
	}
	id := e.registry.Add(event, l, once)
	e.log.Debug("listener added", zap.String("event", string(event)), zap.String("listener", id), zap.Bool("once", once))
	e.ensureLoopLocked()
	return nil
}

// Off removes the first registration of l for event. Removing the last
// on_data_available listener asks the loop to stop.
func (e *Emitter) Off(event api.EventName, l *api.Listener) error {
	if !event.Supported() {
		return api.NewUnsupportedEventError(event)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return api.NewEntityClosedError(e.kind, e.name)
	}
	if l != nil && e.registry.Remove(event, l) {
		e.log.Debug("listener removed", zap.String("event", string(event)), zap.String("listener", l.ID()))
	}
	e.stopIfIdleLocked()
	return nil
}

// RemoveListener is an alias of Off.
func (e *Emitter) RemoveListener(event api.EventName, l *api.Listener) error {
	return e.Off(event, l)
}

// RemoveAllListeners clears the given events, or every event when none is given.
func (e *Emitter) RemoveAllListeners(events ...api.EventName) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return api.NewEntityClosedError(e.kind, e.name)
	}
	n := 0
	if len(events) == 0 {
		n = e.registry.Clear()
	} else {
		for _, event := range events {
			n += e.registry.RemoveAll(event)
		}
	}
	if n > 0 {
		e.log.Debug("listeners removed", zap.Int("count", n))
	}
	e.stopIfIdleLocked()
	return nil
}

// ListenerCount returns the number of registrations for event.
func (e *Emitter) ListenerCount(event api.EventName) int {
	return e.registry.Count(event)
}

// Emit runs a fan-out for event on the caller's goroutine, bypassing the
// wait mechanism. Callback failures come back as *api.ListenerError.
func (e *Emitter) Emit(ctx context.Context, event api.EventName) error {
	if !event.Supported() {
		return api.NewUnsupportedEventError(event)
	}
	if e.Closed() {
		return api.NewEntityClosedError(e.kind, e.name)
	}
	err := e.registry.Fire(ctx, event)
	e.afterFire(err)
	return err
}

// WaitState returns the entity's current wait state.
func (e *Emitter) WaitState() api.WaitState {
	return e.guard.State()
}

// TakeErrors drains the errors reported by the entity's wait loop: wait
// failures and listener failures of loop-driven fan-outs.
func (e *Emitter) TakeErrors() []error {
	return e.errs.Drain()
}

// Wait blocks until data is available, timeout elapses (api.ErrWaitTimeout)
// or ctx is done. timeout <= 0 waits until ctx is done. Fails with
// api.ErrConcurrentWait while another wait, including a wait loop, is
// outstanding on the entity.
func (e *Emitter) Wait(ctx context.Context, timeout time.Duration) error {
	return e.Exclusive(ctx, timeout, e.target.WaitForData)
}

// Exclusive runs poll in chunks of at most one polling interval while holding
// the entity's wait claim, until poll reports success, timeout elapses, ctx
// is done or the entity closes.
func (e *Emitter) Exclusive(ctx context.Context, timeout time.Duration, poll concurrency.WaitFunc) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return api.NewEntityClosedError(e.kind, e.name)
	}
	if err := e.guard.Acquire(); err != nil {
		e.mu.Unlock()
		e.count("concurrent_wait_rejections", 1)
		return api.NewConcurrentWaitError(e.kind, e.name)
	}
	e.active.Add(1)
	e.mu.Unlock()
	defer e.finishWait()

	err := concurrency.PollUntil(ctx, timeout, e.pollInterval, e.closing.Load, func(d time.Duration) (bool, error) {
		ok, err := poll(d)
		e.count("waits", 1)
		return ok, err
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, concurrency.ErrPollTimeout):
		e.count("timeouts", 1)
		return api.NewWaitTimeoutError(e.name, timeout)
	case errors.Is(err, concurrency.ErrPollStopped):
		return api.NewEntityClosedError(e.kind, e.name)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		e.count("wait_errors", 1)
		return fmt.Errorf("%s %s: wait: %w", e.kind, e.name, err)
	}
}

// finishWait ends an explicit wait. If listeners were registered meanwhile
// the claim is handed to a new loop instead of being released.
func (e *Emitter) finishWait() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.closing.Load() && e.loop == nil && e.registry.Count(api.EventDataAvailable) > 0 {
		e.startLoopLocked()
	} else {
		e.guard.Release()
	}
	e.active.Done()
}

// Close is Shutdown without a deadline.
func (e *Emitter) Close() {
	_ = e.Shutdown(context.Background())
}

// Shutdown stops the wait loop, waits until no wait is outstanding, then
// moves the entity to the terminal Closed state. The first call starts the
// shutdown; every call waits for it to finish or for ctx to end, whichever
// comes first. Once started, a shutdown cannot be withdrawn. Shutdown must
// not be called from a listener of the same entity.
func (e *Emitter) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	if !e.closed {
		e.closed = true
		e.closing.Store(true)
		e.guard.RequestStop()
		e.cancel()
		e.log.Debug("closing, waiting for outstanding wait")
		go func() {
			e.active.Wait()
			e.guard.Close()
			e.registry.Clear()
			e.log.Debug("closed")
			close(e.done)
		}()
	}
	e.mu.Unlock()

	select {
	case <-e.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%s %s: shutdown: %w", e.kind, e.name, ctx.Err())
	}
}

// Done is closed once a shutdown has completed.
func (e *Emitter) Done() <-chan struct{} {
	return e.done
}

// Closed reports whether a shutdown has started.
func (e *Emitter) Closed() bool {
	return e.closing.Load()
}

// ensureLoopLocked starts or resumes the loop when on_data_available has
// listeners. While an explicit wait holds the claim, finishWait hands over.
func (e *Emitter) ensureLoopLocked() {
	if e.registry.Count(api.EventDataAvailable) == 0 {
		return
	}
	switch e.guard.State() {
	case api.WaitIdle:
		if e.guard.Acquire() == nil {
			e.startLoopLocked()
		}
	case api.WaitStopRequested:
		if e.loop != nil && e.guard.Resume() {
			e.log.Debug("wait loop stop withdrawn")
		}
	}
}

// stopIfIdleLocked asks the loop to stop once on_data_available is empty.
func (e *Emitter) stopIfIdleLocked() {
	if e.loop == nil || e.registry.Count(api.EventDataAvailable) > 0 {
		return
	}
	if e.guard.RequestStop() {
		e.log.Debug("wait loop stop requested")
	}
}

// startLoopLocked starts a loop; the caller already holds the claim.
func (e *Emitter) startLoopLocked() {
	loop := concurrency.NewWaitLoop(concurrency.LoopHooks{
		Wait:     e.loopWait,
		Interval: e.pollInterval,
		Fire:     e.loopFire,
		Timeout:  func() { e.count("timeouts", 1) },
		Exit:     e.loopExit,
		Fail:     e.loopFail,
	})
	e.loop = loop
	e.active.Add(1)
	e.count("loop_starts", 1)
	e.log.Debug("wait loop started", zap.Duration("poll_interval", e.pollInterval()))
	loop.Start()
}

func (e *Emitter) loopWait(timeout time.Duration) (bool, error) {
	ok, err := e.target.WaitForData(timeout)
	e.count("waits", 1)
	return ok, err
}

func (e *Emitter) loopFire() {
	err := e.registry.Fire(e.ctx, api.EventDataAvailable)
	if err != nil {
		e.errs.Push(err)
	}
	e.afterFire(err)
}

// afterFire records a fan-out and stops the loop if once removals emptied
// the registry.
func (e *Emitter) afterFire(err error) {
	e.count("fires", 1)
	if err != nil {
		if lerr, ok := err.(*api.ListenerError); ok {
			e.count("listener_errors", int64(lerr.Len()))
		}
		e.log.Error("listener failed", zap.Error(err))
	}
	e.mu.Lock()
	e.stopIfIdleLocked()
	e.mu.Unlock()
}

// loopExit runs at every iteration boundary of the loop.
func (e *Emitter) loopExit() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.closing.Load() && !e.guard.StopRequested() && e.registry.Count(api.EventDataAvailable) > 0 {
		return false
	}
	e.guard.Release()
	e.loop = nil
	e.count("loop_stops", 1)
	e.log.Debug("wait loop stopped")
	e.active.Done()
	return true
}

func (e *Emitter) loopFail(err error) {
	err = fmt.Errorf("%s %s: wait loop: %w", e.kind, e.name, err)
	e.count("wait_errors", 1)
	e.log.Warn("wait loop failed, stopping", zap.Error(err))
	// Reported before the release, so the error is visible once the entity
	// is Idle again.
	e.errs.Push(err)

	e.mu.Lock()
	e.guard.Release()
	e.loop = nil
	e.count("loop_stops", 1)
	e.active.Done()
	e.mu.Unlock()
}

func (e *Emitter) pollInterval() time.Duration {
	if e.interval != nil {
		if d := e.interval(); d > 0 {
			return d
		}
	}
	return concurrency.DefaultPollInterval
}

func (e *Emitter) count(name string, delta int64) {
	if e.metrics != nil {
		e.metrics.Add(e.prefix+"."+name, delta)
	}
}
