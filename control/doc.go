// Package control
// Author: momentics <momentics@gmail.com>
//
// Configuration, hot-reload, runtime metrics and debug introspection for
// hioload-connector.
//
// Provides concurrent-safe state handling primitives including:
//   - Typed configuration with YAML loading and validation
//   - Snapshot config reads, atomic updates and reload hooks
//   - Counters for wait loops and fan-outs
//   - State export through named debug probes
package control
