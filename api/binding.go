// File: api/binding.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Contract of the native middleware layer. Implementations wrap the
// external library; none of them may be waited on by more than one caller
// at a time, and none may be destroyed while a wait is outstanding. The
// connector package enforces both rules on their behalf.

package api

import "time"

// Waitable blocks until data is available.
type Waitable interface {
	// WaitForData blocks up to timeout and reports whether new data arrived
	// since the previous successful wait or take. A successful wait consumes
	// the condition. timeout must be positive.
	WaitForData(timeout time.Duration) (bool, error)
}

// MatchWaitable blocks until remote entities match.
type MatchWaitable interface {
	// WaitForMatching blocks up to timeout and returns the number of remote
	// entities matched since the previous call. Zero means timeout.
	WaitForMatching(timeout time.Duration) (int, error)
}

// ReaderHandle is the native side of an Input.
type ReaderHandle interface {
	Waitable
	MatchWaitable

	// Take drains pending samples and clears the data-available condition.
	Take() ([]Sample, error)
	// Read returns pending samples without removing them.
	Read() ([]Sample, error)
}

// WriterHandle is the native side of an Output.
type WriterHandle interface {
	MatchWaitable

	// Write publishes a sample to every matched reader.
	Write(s Sample) error
}

// Session is the native side of a Connector. Its WaitForData is the
// aggregate wait over all of the session's readers.
type Session interface {
	Waitable

	Reader(name string) (ReaderHandle, error)
	Writer(name string) (WriterHandle, error)

	// Destroy releases every native resource of the session, readers and
	// writers included.
	Destroy() error
}

// Binding opens sessions. profile and configPath are passed through to the
// middleware untouched.
type Binding interface {
	Open(profile, configPath string) (Session, error)
}
