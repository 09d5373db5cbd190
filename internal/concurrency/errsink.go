// File: internal/concurrency/errsink.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// ErrorSink keeps errors raised by detached wait loops until someone drains
// them. The backlog is bounded; once full the oldest error is dropped.

package concurrency

import (
	"sync"

	"github.com/eapache/queue"
)

// DefaultErrorBacklog is the backlog size used when none is configured.
const DefaultErrorBacklog = 64

// ErrorSink is a bounded FIFO of errors plus an optional handler invoked on
// every push.
type ErrorSink struct {
	mu      sync.Mutex
	q       *queue.Queue
	limit   int
	dropped uint64
	handler func(error)
}

// NewErrorSink creates a sink holding at most limit errors.
func NewErrorSink(limit int, handler func(error)) *ErrorSink {
	if limit <= 0 {
		limit = DefaultErrorBacklog
	}
	return &ErrorSink{
		q:       queue.New(),
		limit:   limit,
		handler: handler,
	}
}

// Push records err and hands it to the handler. Nil errors are ignored.
// The handler runs on the caller's goroutine, outside the sink's lock.
func (s *ErrorSink) Push(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	if s.q.Length() >= s.limit {
		s.q.Remove()
		s.dropped++
	}
	s.q.Add(err)
	handler := s.handler
	s.mu.Unlock()

	if handler != nil {
		handler(err)
	}
}

// Drain removes and returns every stored error, oldest first.
func (s *ErrorSink) Drain() []error {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]error, 0, s.q.Length())
	for s.q.Length() > 0 {
		out = append(out, s.q.Remove().(error))
	}
	return out
}

// Len returns the number of stored errors.
func (s *ErrorSink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.q.Length()
}

// Dropped returns how many errors were discarded because the backlog was full.
func (s *ErrorSink) Dropped() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}
