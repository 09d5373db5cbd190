//go:build linux
// +build linux

// File: reactor/notifier_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux eventfd(2) notifier, waited on through epoll(7).

package reactor

import (
	"encoding/binary"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sys/unix"
)

const platformBackend = "eventfd"

// eventfdNotifier keeps the condition in an eventfd counter; reading the
// counter consumes it.
type eventfdNotifier struct {
	efd    int
	epfd   int
	closed atomic.Bool
}

func newPlatformNotifier() (Notifier, error) {
	efd, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("eventfd: %w", err)
	}
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		_ = unix.Close(efd)
		return nil, fmt.Errorf("epoll create: %w", err)
	}
	ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(efd)}
	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, efd, &ev); err != nil {
		_ = unix.Close(epfd)
		_ = unix.Close(efd)
		return nil, fmt.Errorf("epoll ctl add: %w", err)
	}
	return &eventfdNotifier{efd: efd, epfd: epfd}, nil
}

func (n *eventfdNotifier) Signal() error {
	if n.closed.Load() {
		return ErrClosed
	}
	var buf [8]byte
	binary.NativeEndian.PutUint64(buf[:], 1)
	if _, err := unix.Write(n.efd, buf[:]); err != nil && err != unix.EAGAIN {
		// EAGAIN means the counter is saturated, i.e. already raised.
		return fmt.Errorf("eventfd write: %w", err)
	}
	return nil
}

func (n *eventfdNotifier) Wait(timeout time.Duration) (bool, error) {
	if n.closed.Load() {
		return false, ErrClosed
	}
	deadline := time.Now().Add(timeout)
	var events [1]unix.EpollEvent
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return false, nil
		}
		// Round up so a sub-millisecond remainder does not become a busy poll.
		ms := int((remaining + time.Millisecond - 1) / time.Millisecond)
		nev, err := unix.EpollWait(n.epfd, events[:], ms)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return false, fmt.Errorf("epoll wait: %w", err)
		}
		if nev == 0 {
			return false, nil
		}
		if n.consume() {
			return true, nil
		}
		// Another caller consumed the condition first; keep waiting.
	}
}

func (n *eventfdNotifier) consume() bool {
	var buf [8]byte
	_, err := unix.Read(n.efd, buf[:])
	return err == nil
}

func (n *eventfdNotifier) Clear() {
	if !n.closed.Load() {
		n.consume()
	}
}

func (n *eventfdNotifier) Close() error {
	if !n.closed.CompareAndSwap(false, true) {
		return nil
	}
	err1 := unix.Close(n.epfd)
	err2 := unix.Close(n.efd)
	if err1 != nil {
		return fmt.Errorf("close epoll: %w", err1)
	}
	if err2 != nil {
		return fmt.Errorf("close eventfd: %w", err2)
	}
	return nil
}
