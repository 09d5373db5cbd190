// File: api/shutdown.go
// Package api defines unified graceful shutdown contract.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// GracefulShutdown is implemented by entities whose Close first joins any
// background wait before releasing native resources.
type GracefulShutdown interface {
	// Close stops background waits, then releases resources.
	// Calling Close more than once is a no-op.
	Close() error
}
