// File: internal/concurrency/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Wait exclusivity and wait loop primitives shared by every connector entity:
// the atomic WaitGuard state machine, the WaitLoop that turns a bounded
// blocking wait into repeated fan-outs, chunked polling for explicit waits,
// and the bounded ErrorSink that carries loop failures to the user.
package concurrency
