// File: reactor/notifier.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral notifier interface and the channel backend.

package reactor

import (
	"errors"
	"sync"
	"time"
)

// ErrClosed is returned by Wait and Signal after Close.
var ErrClosed = errors.New("reactor: notifier closed")

// Notifier is a coalescing, edge-like condition: any number of Signal calls
// before a Wait are observed by one Wait, which consumes them.
type Notifier interface {
	// Signal raises the condition and wakes a waiter.
	Signal() error

	// Wait blocks up to timeout for the condition and consumes it.
	// It returns false on timeout.
	Wait(timeout time.Duration) (bool, error)

	// Clear drops a raised condition without waiting.
	Clear()

	// Close releases the backend. No Wait may be outstanding.
	Close() error
}

// NewNotifier returns the best notifier for the platform.
func NewNotifier() (Notifier, error) {
	return newPlatformNotifier()
}

// Backend names the notifier NewNotifier returns on this platform.
func Backend() string {
	return platformBackend
}

// chanNotifier is the portable backend.
type chanNotifier struct {
	ch        chan struct{}
	closed    chan struct{}
	closeOnce sync.Once
}

// NewChannelNotifier returns the portable channel-based notifier.
func NewChannelNotifier() Notifier {
	return &chanNotifier{
		ch:     make(chan struct{}, 1),
		closed: make(chan struct{}),
	}
}

func (n *chanNotifier) Signal() error {
	select {
	case <-n.closed:
		return ErrClosed
	default:
	}
	select {
	case n.ch <- struct{}{}:
	default: // already raised
	}
	return nil
}

func (n *chanNotifier) Wait(timeout time.Duration) (bool, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-n.ch:
		return true, nil
	case <-n.closed:
		return false, ErrClosed
	case <-timer.C:
		return false, nil
	}
}

func (n *chanNotifier) Clear() {
	select {
	case <-n.ch:
	default:
	}
}

func (n *chanNotifier) Close() error {
	n.closeOnce.Do(func() { close(n.closed) })
	return nil
}
