// File: api/events.go
// Package api defines the event names entities can emit.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// EventName identifies an event an entity can emit.
type EventName string

// EventDataAvailable is emitted when new samples arrive on an Input, or on
// any Input of a Connector.
const EventDataAvailable EventName = "on_data_available"

// Supported reports whether listeners may be registered for e.
func (e EventName) Supported() bool {
	return e == EventDataAvailable
}

// SupportedEvents lists every event name entities can emit.
func SupportedEvents() []EventName {
	return []EventName{EventDataAvailable}
}
