// File: connector/connector.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Connector owns one middleware session together with the Inputs and
// Outputs looked up through it. It is itself an event source: its
// on_data_available fires when any of its Inputs has data.

package connector

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/momentics/hioload-connector/api"
	"github.com/momentics/hioload-connector/control"
	"github.com/momentics/hioload-connector/internal/concurrency"
	"github.com/momentics/hioload-connector/internal/emitter"
	"github.com/momentics/hioload-connector/reactor"
)

// Connector is safe for concurrent use.
type Connector struct {
	events

	profile string
	session api.Session
	opts    options
	log     *zap.Logger
	metrics *control.MetricsRegistry
	probes  *control.DebugProbes

	interval    atomic.Int64 // time.Duration
	unsubscribe func()

	mu      sync.Mutex
	inputs  map[string]*Input
	outputs map[string]*Output
	closed  bool

	destroyOnce sync.Once
	destroyErr  error
}

var (
	_ api.GracefulShutdown = (*Connector)(nil)
	_ api.Control          = (*Connector)(nil)
)

// New opens profile through binding and returns a Connector on the
// resulting session. configPath is handed to the binding untouched.
func New(binding api.Binding, profile, configPath string, opts ...Option) (*Connector, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if binding == nil {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "nil binding").WithContext("profile", profile)
	}
	if err := o.config.Validate(); err != nil {
		return nil, fmt.Errorf("connector %s: %w", profile, err)
	}

	session, err := binding.Open(profile, configPath)
	if err != nil {
		return nil, fmt.Errorf("connector %s: open: %w", profile, err)
	}

	metrics := o.metrics
	if metrics == nil {
		metrics = control.NewMetricsRegistry()
	}
	c := &Connector{
		profile: profile,
		session: session,
		opts:    o,
		log:     o.logger,
		metrics: metrics,
		probes:  control.NewDebugProbes(),
		inputs:  make(map[string]*Input),
		outputs: make(map[string]*Output),
	}
	c.interval.Store(int64(o.config.PollInterval))
	if o.store != nil {
		c.unsubscribe = o.store.OnReload(c.applyConfig)
	}

	c.em = c.newEmitter(api.KindConnector, profile, session, c.log.Named("connector"))
	control.RegisterPlatformProbes(c.probes, reactor.Backend())
	c.registerEntityProbes(api.KindConnector, profile, c.em)

	c.log.Info("connector created",
		zap.String("profile", profile),
		zap.String("config", configPath),
		zap.Duration("poll_interval", o.config.PollInterval),
		zap.String("notifier", reactor.Backend()))
	return c, nil
}

// Profile returns the participant profile the connector was opened with.
func (c *Connector) Profile() string {
	return c.profile
}

// PollInterval returns the interval currently bounding each blocking wait.
func (c *Connector) PollInterval() time.Duration {
	return time.Duration(c.interval.Load())
}

// Input returns the Input named name, creating it on first use.
func (c *Connector) Input(name string) (*Input, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, api.NewEntityClosedError(api.KindConnector, c.profile)
	}
	if in, ok := c.inputs[name]; ok {
		return in, nil
	}
	h, err := c.session.Reader(name)
	if err != nil {
		return nil, fmt.Errorf("connector %s: input %q: %w", c.profile, name, err)
	}
	in := &Input{name: name, conn: c, handle: h}
	in.em = c.newEmitter(api.KindInput, name, h, c.log.Named("input"))
	c.inputs[name] = in
	c.registerEntityProbes(api.KindInput, name, in.em)
	c.log.Debug("input created", zap.String("input", name))
	return in, nil
}

// Output returns the Output named name, creating it on first use.
func (c *Connector) Output(name string) (*Output, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, api.NewEntityClosedError(api.KindConnector, c.profile)
	}
	if out, ok := c.outputs[name]; ok {
		return out, nil
	}
	h, err := c.session.Writer(name)
	if err != nil {
		return nil, fmt.Errorf("connector %s: output %q: %w", c.profile, name, err)
	}
	out := &Output{name: name, conn: c, handle: h}
	// Outputs carry no listeners; the emitter only serializes their
	// matching waits and drives their shutdown.
	out.em = c.newEmitter(api.KindOutput, name, nil, c.log.Named("output"))
	c.outputs[name] = out
	c.registerEntityProbes(api.KindOutput, name, out.em)
	c.log.Debug("output created", zap.String("output", name))
	return out, nil
}

// WaitForData blocks until any Input of the connector has data, timeout
// elapses (api.ErrWaitTimeout) or ctx is done. timeout <= 0 waits until ctx
// is done. The connector's wait is independent of waits on its Inputs.
func (c *Connector) WaitForData(ctx context.Context, timeout time.Duration) error {
	return c.em.Wait(ctx, timeout)
}

// Close is Shutdown without a deadline.
func (c *Connector) Close() error {
	return c.Shutdown(context.Background())
}

// Shutdown closes the connector and every Input and Output looked up
// through it. Each entity's wait loop is asked to stop; once every loop and
// explicit wait has returned the session is destroyed. If ctx ends first,
// Shutdown returns its error and leaves the session alive; calling Shutdown
// again resumes waiting. Entity operations fail with api.ErrEntityClosed as
// soon as Shutdown starts. Shutdown must not be called from a listener.
func (c *Connector) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		if c.unsubscribe != nil {
			c.unsubscribe()
		}
		c.log.Info("connector closing",
			zap.String("profile", c.profile),
			zap.Int("inputs", len(c.inputs)),
			zap.Int("outputs", len(c.outputs)))
	}
	ems := make([]*emitter.Emitter, 0, 1+len(c.inputs)+len(c.outputs))
	ems = append(ems, c.em)
	for _, in := range c.inputs {
		ems = append(ems, in.em)
	}
	for _, out := range c.outputs {
		ems = append(ems, out.em)
	}
	c.mu.Unlock()

	var (
		errMu  sync.Mutex
		result *multierror.Error
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, em := range ems {
		em := em
		g.Go(func() error {
			err := em.Shutdown(gctx)
			if err != nil {
				errMu.Lock()
				result = multierror.Append(result, err)
				errMu.Unlock()
			}
			return err
		})
	}
	_ = g.Wait()
	if err := result.ErrorOrNil(); err != nil {
		c.log.Warn("connector close interrupted, session kept", zap.Error(err))
		return err
	}

	c.destroyOnce.Do(func() {
		if err := c.session.Destroy(); err != nil {
			c.destroyErr = fmt.Errorf("connector %s: destroy: %w", c.profile, err)
			c.log.Error("session destroy failed", zap.Error(err))
			return
		}
		c.log.Info("connector closed", zap.String("profile", c.profile))
	})
	return c.destroyErr
}

func (c *Connector) newEmitter(kind api.EntityKind, name string, target api.Waitable, log *zap.Logger) *emitter.Emitter {
	var handler func(error)
	if h := c.opts.onError; h != nil {
		handler = func(err error) { h(name, err) }
	}
	return emitter.New(emitter.Config{
		Kind:     kind,
		Name:     name,
		Target:   target,
		Interval: c.PollInterval,
		Logger:   log,
		Metrics:  c.metrics,
		Errors:   concurrency.NewErrorSink(c.opts.config.ErrorBacklog, handler),
	})
}

func (c *Connector) applyConfig(cfg control.Config) {
	prev := time.Duration(c.interval.Swap(int64(cfg.PollInterval)))
	if prev != cfg.PollInterval {
		c.log.Info("poll interval changed",
			zap.Duration("from", prev),
			zap.Duration("to", cfg.PollInterval))
	}
}
