// File: internal/concurrency/waitguard.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// WaitGuard is the per-entity exclusivity flag for blocking waits.
//
// State machine:
//
//	Idle          -> Waiting        [Acquire]
//	Waiting       -> Idle           [Release]
//	Waiting       -> StopRequested  [RequestStop]
//	StopRequested -> Waiting        [Resume]
//	StopRequested -> Idle           [Release]
//	any           -> Closed         [Close]
//
// Temporary states move by CompareAndSwap only; Closed is stored and never left.

package concurrency

import (
	"sync/atomic"

	"github.com/momentics/hioload-connector/api"
)

// WaitGuard is safe for concurrent use. The zero value is Idle.
type WaitGuard struct {
	state atomic.Int32
}

// State returns the current state.
func (g *WaitGuard) State() api.WaitState {
	return api.WaitState(g.state.Load())
}

// Acquire moves Idle to Waiting. It fails with api.ErrConcurrentWait when a
// wait is already outstanding and with api.ErrEntityClosed after Close.
func (g *WaitGuard) Acquire() error {
	if g.state.CompareAndSwap(int32(api.WaitIdle), int32(api.WaitWaiting)) {
		return nil
	}
	if g.State() == api.WaitClosed {
		return api.ErrEntityClosed
	}
	return api.ErrConcurrentWait
}

// Release returns to Idle from Waiting or StopRequested.
// It reports false if the guard was not held (or is closed).
func (g *WaitGuard) Release() bool {
	for {
		cur := g.state.Load()
		switch api.WaitState(cur) {
		case api.WaitWaiting, api.WaitStopRequested:
			if g.state.CompareAndSwap(cur, int32(api.WaitIdle)) {
				return true
			}
		default:
			return false
		}
	}
}

// RequestStop moves Waiting to StopRequested.
func (g *WaitGuard) RequestStop() bool {
	return g.state.CompareAndSwap(int32(api.WaitWaiting), int32(api.WaitStopRequested))
}

// Resume withdraws a pending stop request.
func (g *WaitGuard) Resume() bool {
	return g.state.CompareAndSwap(int32(api.WaitStopRequested), int32(api.WaitWaiting))
}

// StopRequested reports whether the holder should exit.
func (g *WaitGuard) StopRequested() bool {
	s := g.State()
	return s == api.WaitStopRequested || s == api.WaitClosed
}

// Close makes the guard terminal. Acquire fails afterwards.
func (g *WaitGuard) Close() {
	g.state.Store(int32(api.WaitClosed))
}
