// Copyright 2025 momentics@gmail.com
// Licensed under the Apache License, Version 2.0.

// metrics_test.go: counters, snapshots and debug probes.
package control

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetricsRegistryCounters(t *testing.T) {
	reg := NewMetricsRegistry()
	assert.True(t, reg.Updated().IsZero())

	reg.Add("input.r.waits", 2)
	reg.Add("input.r.waits", 3)
	reg.Set("connector.state", "idle")

	assert.EqualValues(t, 5, reg.Counter("input.r.waits"))
	assert.Zero(t, reg.Counter("missing"))
	assert.Zero(t, reg.Counter("connector.state"))
	assert.False(t, reg.Updated().IsZero())

	snap := reg.GetSnapshot()
	snap["input.r.waits"] = int64(0)
	assert.EqualValues(t, 5, reg.Counter("input.r.waits"))
}

func TestDebugProbes(t *testing.T) {
	dp := NewDebugProbes()
	RegisterPlatformProbes(dp, "eventfd")
	dp.RegisterProbe("custom", func() any { return 42 })

	state := dp.DumpState()
	assert.Equal(t, runtime.NumCPU(), state["platform.cpus"])
	assert.Equal(t, runtime.GOOS, state["platform.os"])
	assert.Equal(t, "eventfd", state["platform.notifier"])
	assert.Equal(t, 42, state["custom"])

	dp.UnregisterProbe("custom")
	assert.NotContains(t, dp.DumpState(), "custom")
}
