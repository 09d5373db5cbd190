// Package fake
// Author: momentics <momentics@gmail.com>
//
// Writer: the native side of an Output.

package fake

import (
	"sync"
	"time"

	"github.com/momentics/hioload-connector/api"
	"github.com/momentics/hioload-connector/reactor"
)

type writer struct {
	session *session
	name    string
	topic   string
	match   reactor.Notifier
	waits   waitTracker

	mu         sync.Mutex
	newMatches int
	destroyed  bool
}

var _ api.WriterHandle = (*writer)(nil)

func newWriter(s *session, name, topic string) (*writer, error) {
	match, err := s.domain.newNotifier()
	if err != nil {
		return nil, err
	}
	return &writer{session: s, name: name, topic: topic, match: match}, nil
}

// Write delivers s to every reader on the topic, stamping source and time.
func (w *writer) Write(s api.Sample) error {
	w.mu.Lock()
	destroyed := w.destroyed
	w.mu.Unlock()
	if destroyed {
		return api.NewEntityClosedError(api.KindOutput, w.name)
	}

	s.Source = w.name
	if s.Timestamp.IsZero() {
		s.Timestamp = time.Now()
	}
	for _, r := range w.session.domain.readersOf(w.topic) {
		r.deliver(s)
	}
	return nil
}

func (w *writer) WaitForMatching(timeout time.Duration) (int, error) {
	w.waits.enter(w.session.domain, w.name)
	defer w.waits.exit()
	ok, err := w.match.Wait(timeout)
	if err != nil || !ok {
		return 0, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	n := w.newMatches
	w.newMatches = 0
	return n, nil
}

func (w *writer) matchedBy(n int) {
	w.mu.Lock()
	w.newMatches += n
	w.mu.Unlock()
	_ = w.match.Signal()
}

func (w *writer) destroy() {
	w.mu.Lock()
	w.destroyed = true
	w.mu.Unlock()
	if w.waits.busy() {
		w.session.domain.violate("destroy of %s during a wait", w.name)
	}
	_ = w.match.Close()
}
