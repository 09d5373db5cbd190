// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error types and error handling utilities for hioload-connector.

package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
)

// ErrorCode represents specific error conditions in the library.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeInvalidArgument
	ErrCodeConcurrentWait
	ErrCodeUnsupportedEvent
	ErrCodeEntityClosed
	ErrCodeTimeout
	ErrCodeListener
	ErrCodeNotFound
	ErrCodeInternal
)

func (c ErrorCode) String() string {
	switch c {
	case ErrCodeOK:
		return "ok"
	case ErrCodeInvalidArgument:
		return "invalid_argument"
	case ErrCodeConcurrentWait:
		return "concurrent_wait"
	case ErrCodeUnsupportedEvent:
		return "unsupported_event"
	case ErrCodeEntityClosed:
		return "entity_closed"
	case ErrCodeTimeout:
		return "timeout"
	case ErrCodeListener:
		return "listener"
	case ErrCodeNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// Sentinel errors, one per kind. Use errors.Is against these; errors built
// with the New*Error constructors carry extra context but match by code.
var (
	ErrInvalidArgument  = NewError(ErrCodeInvalidArgument, "invalid argument")
	ErrConcurrentWait   = NewError(ErrCodeConcurrentWait, "can not concurrently wait on the same entity")
	ErrUnsupportedEvent = NewError(ErrCodeUnsupportedEvent, "unsupported event")
	ErrEntityClosed     = NewError(ErrCodeEntityClosed, "entity is closed")
	ErrWaitTimeout      = NewError(ErrCodeTimeout, "timeout waiting for data")
	ErrListener         = NewError(ErrCodeListener, "listener failed")
	ErrNotFound         = NewError(ErrCodeNotFound, "entity not found")
)

// Error represents a structured error with code and context.
type Error struct {
	Code    ErrorCode
	Message string
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Context) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (context: %+v)", e.Message, e.Context)
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// NewError creates a new structured error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Context: make(map[string]any),
	}
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// NewConcurrentWaitError reports a second wait on an entity that is already
// waiting. kind is the entity kind as shown to users ("Input", "Connector").
func NewConcurrentWaitError(kind EntityKind, name string) *Error {
	msg := "can not concurrently wait on the same " + kind.String()
	if kind == KindConnector {
		msg += " object"
	}
	return NewError(ErrCodeConcurrentWait, msg).WithContext("entity", name)
}

// NewUnsupportedEventError reports a registration for an unknown event name.
func NewUnsupportedEventError(event EventName) *Error {
	return NewError(ErrCodeUnsupportedEvent, fmt.Sprintf("unsupported event %q", string(event))).
		WithContext("event", string(event))
}

// NewEntityClosedError reports an operation on a closed entity.
func NewEntityClosedError(kind EntityKind, name string) *Error {
	return NewError(ErrCodeEntityClosed, kind.String()+" is closed").WithContext("entity", name)
}

// NewWaitTimeoutError reports an explicit wait that ran out of time.
func NewWaitTimeoutError(name string, timeout time.Duration) *Error {
	return NewError(ErrCodeTimeout, "timeout waiting for data").
		WithContext("entity", name).
		WithContext("timeout", timeout.String())
}

// NewNotFoundError reports a lookup of an entity name the session does not define.
func NewNotFoundError(kind EntityKind, name string) *Error {
	return NewError(ErrCodeNotFound, kind.String()+" not found").WithContext("entity", name)
}

// ListenerError aggregates the callback failures of one fan-out pass.
// The remaining callbacks of the pass still ran.
type ListenerError struct {
	Event EventName
	errs  *multierror.Error
}

// NewListenerError builds a ListenerError out of the failures of one pass.
// It returns nil when errs is empty.
func NewListenerError(event EventName, errs []error) *ListenerError {
	if len(errs) == 0 {
		return nil
	}
	merr := multierror.Append(nil, errs...)
	merr.ErrorFormat = func(es []error) string {
		parts := make([]string, len(es))
		for i, err := range es {
			parts[i] = err.Error()
		}
		return strings.Join(parts, "; ")
	}
	return &ListenerError{Event: event, errs: merr}
}

// Error implements the error interface.
func (e *ListenerError) Error() string {
	return fmt.Sprintf("%d listener(s) failed on %s: %s", e.Len(), e.Event, e.errs.Error())
}

// Len returns the number of failed callbacks.
func (e *ListenerError) Len() int {
	return e.errs.Len()
}

// Unwrap exposes the individual callback errors to errors.Is/As.
func (e *ListenerError) Unwrap() []error {
	return e.errs.WrappedErrors()
}

// Is matches ErrListener.
func (e *ListenerError) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == ErrCodeListener
}
