// File: internal/concurrency/poll.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// PollUntil turns a bounded wait primitive into a wait with an overall
// timeout, context cancellation and a stop predicate, each observed within
// one polling interval.

package concurrency

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrPollTimeout is returned when the overall timeout elapsed.
	ErrPollTimeout = errors.New("poll timeout")
	// ErrPollStopped is returned when the stop predicate fired.
	ErrPollStopped = errors.New("poll stopped")
)

// PollUntil calls poll with chunks of at most interval() until it reports
// true. timeout <= 0 means no overall timeout. Errors from poll are returned
// as is; ctx errors are returned as ctx.Err().
func PollUntil(ctx context.Context, timeout time.Duration, interval func() time.Duration, stopped func() bool, poll WaitFunc) error {
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	for {
		if stopped != nil && stopped() {
			return ErrPollStopped
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		chunk := DefaultPollInterval
		if interval != nil {
			if d := interval(); d > 0 {
				chunk = d
			}
		}
		if timeout > 0 {
			remaining := time.Until(deadline)
			if remaining <= 0 {
				return ErrPollTimeout
			}
			if remaining < chunk {
				chunk = remaining
			}
		}
		ok, err := poll(chunk)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
}
