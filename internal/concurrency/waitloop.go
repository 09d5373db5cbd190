// File: internal/concurrency/waitloop.go
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// WaitLoop bridges a blocking, single-shot wait primitive into a repeating
// notification stream. Each iteration performs one bounded wait (the polling
// interval) so that a stop request is observed within one interval even if
// no data ever arrives. The in-flight wait itself is never preempted.

package concurrency

import (
	"sync/atomic"
	"time"
)

// DefaultPollInterval bounds the stop latency of a WaitLoop.
const DefaultPollInterval = time.Second

// WaitFunc performs one blocking wait of at most timeout.
type WaitFunc func(timeout time.Duration) (bool, error)

// LoopHooks connect a WaitLoop to the entity that owns it.
type LoopHooks struct {
	// Wait is called once per iteration.
	Wait WaitFunc
	// Interval returns the polling interval; it is re-read every iteration.
	// Nil means DefaultPollInterval.
	Interval func() time.Duration
	// Fire runs the fan-out after a successful wait. The next wait starts
	// only after Fire returns.
	Fire func()
	// Timeout is notified when a wait returned without data. Optional.
	Timeout func()
	// Exit is consulted at every iteration boundary; returning true ends
	// the loop. Exit owns the state transition that goes with leaving.
	Exit func() bool
	// Fail receives a wait error. The loop ends after Fail returns.
	Fail func(error)
}

// WaitLoop runs LoopHooks until Exit or Fail. A WaitLoop runs once.
type WaitLoop struct {
	hooks   LoopHooks
	doneCh  chan struct{} // closed after Run() exits
	running atomic.Bool
	waits   atomic.Uint64
	fires   atomic.Uint64
}

// NewWaitLoop creates a loop; call Start or Run to execute it.
func NewWaitLoop(hooks LoopHooks) *WaitLoop {
	return &WaitLoop{
		hooks:  hooks,
		doneCh: make(chan struct{}),
	}
}

// Start runs the loop on its own goroutine. The loop counts as running as
// soon as Start returns, so a following Join always waits for it.
func (l *WaitLoop) Start() {
	if !l.running.CompareAndSwap(false, true) {
		return // Already running
	}
	go l.run()
}

// Run executes the loop on the calling goroutine until it exits.
func (l *WaitLoop) Run() {
	if !l.running.CompareAndSwap(false, true) {
		return // Already running
	}
	l.run()
}

func (l *WaitLoop) run() {
	defer close(l.doneCh)

	for {
		if l.hooks.Exit != nil && l.hooks.Exit() {
			return
		}

		ok, err := l.hooks.Wait(l.interval())
		l.waits.Add(1)
		if err != nil {
			if l.hooks.Fail != nil {
				l.hooks.Fail(err)
			}
			return
		}
		if !ok {
			if l.hooks.Timeout != nil {
				l.hooks.Timeout()
			}
			continue
		}

		l.fires.Add(1)
		if l.hooks.Fire != nil {
			l.hooks.Fire()
		}
	}
}

func (l *WaitLoop) interval() time.Duration {
	if l.hooks.Interval == nil {
		return DefaultPollInterval
	}
	if d := l.hooks.Interval(); d > 0 {
		return d
	}
	return DefaultPollInterval
}

// Done is closed once the loop has exited.
func (l *WaitLoop) Done() <-chan struct{} {
	return l.doneCh
}

// Join blocks until the loop has exited. It returns immediately for a loop
// that was never started.
func (l *WaitLoop) Join() {
	if !l.running.Load() {
		return
	}
	<-l.doneCh
}

// Waits returns the number of completed wait calls.
func (l *WaitLoop) Waits() uint64 { return l.waits.Load() }

// Fires returns the number of fan-outs triggered.
func (l *WaitLoop) Fires() uint64 { return l.fires.Load() }
