// Package fake
// Author: momentics <momentics@gmail.com>
//
// Session: the native side of one connector.

package fake

import (
	"sync"
	"time"

	"github.com/momentics/hioload-connector/api"
	"github.com/momentics/hioload-connector/reactor"
)

type session struct {
	domain  *Domain
	profile string
	defs    Profile
	data    reactor.Notifier // raised on delivery to any of the session's readers
	waits   waitTracker

	mu        sync.Mutex
	readers   map[string]*reader
	writers   map[string]*writer
	destroyed bool
}

var _ api.Session = (*session)(nil)

// WaitForData is the aggregate wait over all readers of the session.
func (s *session) WaitForData(timeout time.Duration) (bool, error) {
	s.waits.enter(s.domain, s.profile)
	defer s.waits.exit()
	if err := s.domain.injectedErr(); err != nil {
		return false, err
	}
	return s.data.Wait(timeout)
}

func (s *session) Reader(name string) (api.ReaderHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return nil, api.NewEntityClosedError(api.KindConnector, s.profile)
	}
	if r, ok := s.readers[name]; ok {
		return r, nil
	}
	topic, ok := s.defs.Readers[name]
	if !ok {
		return nil, api.NewNotFoundError(api.KindInput, name)
	}
	r, err := newReader(s, name, topic)
	if err != nil {
		return nil, err
	}
	s.readers[name] = r
	s.domain.linkReader(r)
	return r, nil
}

func (s *session) Writer(name string) (api.WriterHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return nil, api.NewEntityClosedError(api.KindConnector, s.profile)
	}
	if w, ok := s.writers[name]; ok {
		return w, nil
	}
	topic, ok := s.defs.Writers[name]
	if !ok {
		return nil, api.NewNotFoundError(api.KindOutput, name)
	}
	w, err := newWriter(s, name, topic)
	if err != nil {
		return nil, err
	}
	s.writers[name] = w
	s.domain.linkWriter(w)
	return w, nil
}

// Destroy releases every handle. Destroying while any wait is in flight is
// recorded as a violation; resources are released regardless.
func (s *session) Destroy() error {
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return nil
	}
	s.destroyed = true
	readers := s.readers
	writers := s.writers
	s.readers = nil
	s.writers = nil
	s.mu.Unlock()

	if s.waits.busy() {
		s.domain.violate("destroy of %s during a wait", s.profile)
	}
	for _, r := range readers {
		s.domain.unlinkReader(r)
		r.destroy()
	}
	for _, w := range writers {
		s.domain.unlinkWriter(w)
		w.destroy()
	}
	return s.data.Close()
}
