// control/platform.go
// Author: momentics <momentics@gmail.com>
//
// Platform probes registered on every connector.

package control

import (
	"runtime"
)

// RegisterPlatformProbes sets platform debug probes. notifier names the
// data-available backend in use.
func RegisterPlatformProbes(dp *DebugProbes, notifier string) {
	dp.RegisterProbe("platform.cpus", func() any {
		return runtime.NumCPU()
	})
	dp.RegisterProbe("platform.os", func() any {
		return runtime.GOOS
	})
	dp.RegisterProbe("platform.notifier", func() any {
		return notifier
	})
}
