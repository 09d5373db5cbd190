//go:build !linux

// File: reactor/notifier_other.go
// Author: momentics <momentics@gmail.com>
//
// Non-Linux platforms use the channel backend.

package reactor

const platformBackend = "channel"

func newPlatformNotifier() (Notifier, error) {
	return NewChannelNotifier(), nil
}
