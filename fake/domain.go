// Package fake
// Author: momentics <momentics@gmail.com>
//
// In-process implementation of the middleware binding for testing and
// development. A Domain plays the role of the data space: writers and readers
// opened on the same topic match and exchange samples, waits block on real
// timed conditions, and the domain records contract violations (concurrent
// waits on one handle, destroy under a wait) so tests can assert on them.

package fake

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/momentics/hioload-connector/api"
	"github.com/momentics/hioload-connector/reactor"
)

// Profile maps entity names of one participant profile to topics.
type Profile struct {
	Readers map[string]string // reader name -> topic
	Writers map[string]string // writer name -> topic
}

// Names used by NewTestDomain.
const (
	TestProfile = "MyParticipantLibrary::DataAccessTest"
	TestReader  = "TestSubscriber::TestReader"
	TestReader2 = "TestSubscriber::TestReader2"
	TestWriter  = "TestPublisher::TestWriter"
	TestWriter2 = "TestPublisher::TestWriter2"
)

// Option configures a Domain.
type Option func(*Domain)

// WithChannelNotifier forces the portable notifier backend.
func WithChannelNotifier() Option {
	return func(d *Domain) {
		d.newNotifier = func() (reactor.Notifier, error) {
			return reactor.NewChannelNotifier(), nil
		}
	}
}

// Domain is a set of profiles plus the readers and writers opened from them.
type Domain struct {
	mu          sync.Mutex
	profiles    map[string]Profile
	readers     map[string][]*reader // topic -> readers
	writers     map[string][]*writer // topic -> writers
	newNotifier func() (reactor.Notifier, error)

	waitErr    atomic.Pointer[error]
	waits      atomic.Uint64
	violMu     sync.Mutex
	violations []string
}

// NewDomain creates an empty domain.
func NewDomain(opts ...Option) *Domain {
	d := &Domain{
		profiles:    make(map[string]Profile),
		readers:     make(map[string][]*reader),
		writers:     make(map[string][]*writer),
		newNotifier: reactor.NewNotifier,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NewTestDomain creates a domain defining TestProfile with two topics, each
// with one reader and one writer.
func NewTestDomain(opts ...Option) *Domain {
	d := NewDomain(opts...)
	d.DefineProfile(TestProfile, Profile{
		Readers: map[string]string{TestReader: "Square", TestReader2: "Circle"},
		Writers: map[string]string{TestWriter: "Square", TestWriter2: "Circle"},
	})
	return d
}

// DefineProfile adds or replaces a profile.
func (d *Domain) DefineProfile(name string, p Profile) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.profiles[name] = p
}

// Open implements api.Binding. configPath is accepted and ignored.
func (d *Domain) Open(profile, configPath string) (api.Session, error) {
	d.mu.Lock()
	p, ok := d.profiles[profile]
	d.mu.Unlock()
	if !ok {
		return nil, api.NewError(api.ErrCodeNotFound, "profile not found").
			WithContext("profile", profile).
			WithContext("config", configPath)
	}
	data, err := d.newNotifier()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", profile, err)
	}
	return &session{
		domain:  d,
		profile: profile,
		defs:    p,
		data:    data,
		readers: make(map[string]*reader),
		writers: make(map[string]*writer),
	}, nil
}

// FailWaits makes every following data wait fail with err. Nil restores
// normal behavior.
func (d *Domain) FailWaits(err error) {
	if err == nil {
		d.waitErr.Store(nil)
		return
	}
	d.waitErr.Store(&err)
}

// Waits returns the number of data and matching waits issued so far.
func (d *Domain) Waits() uint64 {
	return d.waits.Load()
}

// Violations returns every contract violation observed so far.
func (d *Domain) Violations() []string {
	d.violMu.Lock()
	defer d.violMu.Unlock()
	out := make([]string, len(d.violations))
	copy(out, d.violations)
	return out
}

func (d *Domain) violate(format string, args ...any) {
	d.violMu.Lock()
	defer d.violMu.Unlock()
	d.violations = append(d.violations, fmt.Sprintf(format, args...))
}

func (d *Domain) injectedErr() error {
	if p := d.waitErr.Load(); p != nil {
		return *p
	}
	return nil
}

// linkReader matches r with every writer on its topic.
func (d *Domain) linkReader(r *reader) {
	d.mu.Lock()
	d.readers[r.topic] = append(d.readers[r.topic], r)
	writers := append([]*writer(nil), d.writers[r.topic]...)
	d.mu.Unlock()

	for _, w := range writers {
		r.matchedBy(1)
		w.matchedBy(1)
	}
}

func (d *Domain) linkWriter(w *writer) {
	d.mu.Lock()
	d.writers[w.topic] = append(d.writers[w.topic], w)
	readers := append([]*reader(nil), d.readers[w.topic]...)
	d.mu.Unlock()

	for _, r := range readers {
		r.matchedBy(1)
		w.matchedBy(1)
	}
}

func (d *Domain) unlinkReader(r *reader) {
	d.mu.Lock()
	defer d.mu.Unlock()
	list := d.readers[r.topic]
	for i, cur := range list {
		if cur == r {
			d.readers[r.topic] = append(list[:i:i], list[i+1:]...)
			break
		}
	}
}

func (d *Domain) unlinkWriter(w *writer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	list := d.writers[w.topic]
	for i, cur := range list {
		if cur == w {
			d.writers[w.topic] = append(list[:i:i], list[i+1:]...)
			break
		}
	}
}

func (d *Domain) readersOf(topic string) []*reader {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*reader(nil), d.readers[topic]...)
}

// waitTracker counts waits in flight on one handle.
type waitTracker struct {
	inflight atomic.Int32
}

func (t *waitTracker) enter(d *Domain, name string) {
	d.waits.Add(1)
	if n := t.inflight.Add(1); n > 1 {
		d.violate("concurrent wait on %s (%d in flight)", name, n)
	}
}

func (t *waitTracker) exit() {
	t.inflight.Add(-1)
}

func (t *waitTracker) busy() bool {
	return t.inflight.Load() > 0
}
