// File: connector/output.go
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

// Output publishes samples of one topic.
type Output struct {
	em *emitter.Emitter

	name   string
	conn   *Connector
	handle api.WriterHandle
}

// Name returns the writer name the Output was looked up with.
func (out *Output) Name() string {
	return out.name
}

// Write publishes s to every matched Input. Write is never blocked by
// waits, on this or any other entity.
func (out *Output) Write(s api.Sample) error {
	if out.em.Closed() {
		return api.NewEntityClosedError(api.KindOutput, out.name)
	}
	if err := out.handle.Write(s); err != nil {
		return fmt.Errorf("output %s: write: %w", out.name, err)
	}
	out.conn.metrics.Add(emitter.MetricPrefix(api.KindOutput, out.name)+".writes", 1)
	return nil
}

// WaitForSubscriptions blocks until at least one reader matches the Output
// and returns the number of readers matched since the previous call. Only
// one such wait may be outstanding per Output.
func (out *Output) WaitForSubscriptions(ctx context.Context, timeout time.Duration) (int, error) {
	var matched int
	err := out.em.Exclusive(ctx, timeout, func(d time.Duration) (bool, error) {
		n, err := out.handle.WaitForMatching(d)
		matched = n
		return n > 0, err
	})
	if err != nil {
		return 0, err
	}
	return matched, nil
}

// WaitState returns the Output's wait state.
func (out *Output) WaitState() api.WaitState {
	return out.em.WaitState()
}
