// File: api/types.go
// Author: momentics <momentics@gmail.com>
//
// Shared API-level type declarations, DTOs, and constants.

package api

import "time"

// WaitState is the per-entity exclusivity state of blocking waits.
type WaitState int32

const (
	// WaitIdle means no wait is outstanding.
	WaitIdle WaitState = iota
	// WaitWaiting means a blocking wait (explicit or loop-driven) is outstanding.
	WaitWaiting
	// WaitStopRequested means the running loop exits after its current call returns.
	WaitStopRequested
	// WaitClosed is terminal; the entity was closed.
	WaitClosed
)

func (s WaitState) String() string {
	switch s {
	case WaitIdle:
		return "idle"
	case WaitWaiting:
		return "waiting"
	case WaitStopRequested:
		return "stop_requested"
	case WaitClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// EntityKind names the kind of entity in errors and logs.
type EntityKind int

const (
	KindConnector EntityKind = iota
	KindInput
	KindOutput
)

func (k EntityKind) String() string {
	switch k {
	case KindConnector:
		return "Connector"
	case KindInput:
		return "Input"
	case KindOutput:
		return "Output"
	default:
		return "Entity"
	}
}

// Sample is one data sample as delivered by the middleware. Encoding of
// Data is owned by the middleware and opaque here.
type Sample struct {
	Data      []byte
	Valid     bool      // false for meta samples (e.g. disposed instances)
	Source    string    // name of the writer that published the sample
	Timestamp time.Time // source timestamp
}
