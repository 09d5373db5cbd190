// File: connector/stats.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package connector

import (
	"github.com/momentics/hioload-connector/api"
	"github.com/momentics/hioload-connector/internal/emitter"
)

// Stats returns metric counters merged with the current value of every
// debug probe. Probe keys carry a "debug." prefix.
//
// Counters per entity prefix ("connector", "input.<name>", "output.<name>"):
// waits, timeouts, fires, listener_errors, wait_errors, loop_starts,
// loop_stops, concurrent_wait_rejections, samples_taken, writes.
func (c *Connector) Stats() map[string]any {
	out := c.metrics.GetSnapshot()
	for k, v := range c.probes.DumpState() {
		out["debug."+k] = v
	}
	return out
}

// RegisterDebugProbe adds a probe reported by Stats.
func (c *Connector) RegisterDebugProbe(name string, fn func() any) {
	c.probes.RegisterProbe(name, fn)
}

func (c *Connector) registerEntityProbes(kind api.EntityKind, name string, em *emitter.Emitter) {
	prefix := emitter.MetricPrefix(kind, name)
	c.probes.RegisterProbe(prefix+".wait_state", func() any {
		return em.WaitState().String()
	})
	if kind == api.KindOutput {
		return
	}
	c.probes.RegisterProbe(prefix+".listeners", func() any {
		return em.ListenerCount(api.EventDataAvailable)
	})
}
