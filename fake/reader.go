// Package fake
// Author: momentics <momentics@gmail.com>
//
// Reader: the native side of an Input.

package fake

import (
	"sync"
	"time"

	"github.com/eapache/queue"

	"github.com/momentics/hioload-connector/api"
	"github.com/momentics/hioload-connector/reactor"
)

type reader struct {
	session *session
	name    string
	topic   string
	data    reactor.Notifier
	match   reactor.Notifier
	waits   waitTracker

	mu         sync.Mutex
	samples    *queue.Queue // of api.Sample
	newMatches int
	destroyed  bool
}

var _ api.ReaderHandle = (*reader)(nil)

func newReader(s *session, name, topic string) (*reader, error) {
	data, err := s.domain.newNotifier()
	if err != nil {
		return nil, err
	}
	match, err := s.domain.newNotifier()
	if err != nil {
		_ = data.Close()
		return nil, err
	}
	return &reader{
		session: s,
		name:    name,
		topic:   topic,
		data:    data,
		match:   match,
		samples: queue.New(),
	}, nil
}

func (r *reader) WaitForData(timeout time.Duration) (bool, error) {
	r.waits.enter(r.session.domain, r.name)
	defer r.waits.exit()
	if err := r.session.domain.injectedErr(); err != nil {
		return false, err
	}
	return r.data.Wait(timeout)
}

func (r *reader) WaitForMatching(timeout time.Duration) (int, error) {
	r.waits.enter(r.session.domain, r.name)
	defer r.waits.exit()
	ok, err := r.match.Wait(timeout)
	if err != nil || !ok {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	n := r.newMatches
	r.newMatches = 0
	return n, nil
}

func (r *reader) Take() ([]api.Sample, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.destroyed {
		return nil, api.NewEntityClosedError(api.KindInput, r.name)
	}
	out := make([]api.Sample, 0, r.samples.Length())
	for r.samples.Length() > 0 {
		out = append(out, r.samples.Remove().(api.Sample))
	}
	r.data.Clear()
	return out, nil
}

func (r *reader) Read() ([]api.Sample, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.destroyed {
		return nil, api.NewEntityClosedError(api.KindInput, r.name)
	}
	out := make([]api.Sample, r.samples.Length())
	for i := range out {
		out[i] = r.samples.Get(i).(api.Sample)
	}
	return out, nil
}

func (r *reader) deliver(s api.Sample) {
	r.mu.Lock()
	if r.destroyed {
		r.mu.Unlock()
		return
	}
	r.samples.Add(s)
	r.mu.Unlock()

	_ = r.data.Signal()
	_ = r.session.data.Signal()
}

func (r *reader) matchedBy(n int) {
	r.mu.Lock()
	r.newMatches += n
	r.mu.Unlock()
	_ = r.match.Signal()
}

func (r *reader) destroy() {
	r.mu.Lock()
	r.destroyed = true
	r.mu.Unlock()
	if r.waits.busy() {
		r.session.domain.violate("destroy of %s during a wait", r.name)
	}
	_ = r.data.Close()
	_ = r.match.Close()
}
