// File: connector/input.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package connector

import (
	"context"
	"fmt"
	"time"

	"github.com/momentics/hioload-connector/api"
	"github.com/momentics/hioload-connector/internal/emitter"
)

// Input reads samples of one topic. Its on_data_available fires when new
// samples arrive; listeners usually call Take.
type Input struct {
	events

	name   string
	conn   *Connector
	handle api.ReaderHandle
}

// Name returns the reader name the Input was looked up with.
func (in *Input) Name() string {
	return in.name
}

// Take removes and returns the pending samples. It is allowed while a wait
// loop runs, including from a listener.
func (in *Input) Take() ([]api.Sample, error) {
	if in.em.Closed() {
		return nil, api.NewEntityClosedError(api.KindInput, in.name)
	}
	samples, err := in.handle.Take()
	if err != nil {
		return nil, fmt.Errorf("input %s: take: %w", in.name, err)
	}
	in.conn.metrics.Add(emitter.MetricPrefix(api.KindInput, in.name)+".samples_taken", int64(len(samples)))
	return samples, nil
}

// Read returns the pending samples without removing them.
func (in *Input) Read() ([]api.Sample, error) {
	if in.em.Closed() {
		return nil, api.NewEntityClosedError(api.KindInput, in.name)
	}
	samples, err := in.handle.Read()
	if err != nil {
		return nil, fmt.Errorf("input %s: read: %w", in.name, err)
	}
	return samples, nil
}

// Wait blocks until the Input has data, timeout elapses (api.ErrWaitTimeout)
// or ctx is done. timeout <= 0 waits until ctx is done. It fails with
// api.ErrConcurrentWait while listeners are registered.
func (in *Input) Wait(ctx context.Context, timeout time.Duration) error {
	return in.em.Wait(ctx, timeout)
}

// WaitForPublications blocks until at least one writer matches the Input
// and returns the number of writers matched since the previous call.
func (in *Input) WaitForPublications(ctx context.Context, timeout time.Duration) (int, error) {
	var matched int
	err := in.em.Exclusive(ctx, timeout, func(d time.Duration) (bool, error) {
		n, err := in.handle.WaitForMatching(d)
		matched = n
		return n > 0, err
	})
	if err != nil {
		return 0, err
	}
	return matched, nil
}
