// File: connector/options.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package connector

import (
	"time"

	"go.uber.org/zap"

	"github.com/momentics/hioload-connector/control"
)

// Option configures a Connector.
type Option func(*options)

// ErrorHandler receives errors raised by detached wait loops: wait failures
// (the loop stops) and listener failures of loop-driven fan-outs (the loop
// continues). It runs on the loop goroutine and must not block.
type ErrorHandler func(entity string, err error)

type options struct {
	config  control.Config
	store   *control.ConfigStore
	logger  *zap.Logger
	metrics *control.MetricsRegistry
	onError ErrorHandler
}

func defaultOptions() options {
	return options{
		config: control.DefaultConfig(),
		logger: zap.NewNop(),
	}
}

// WithConfig replaces the whole configuration.
func WithConfig(cfg control.Config) Option {
	return func(o *options) {
		o.config = cfg
	}
}

// WithConfigStore takes the configuration from store and follows its
// reloads: a new poll interval applies from the next wait iteration.
func WithConfigStore(store *control.ConfigStore) Option {
	return func(o *options) {
		o.store = store
		o.config = store.Get()
	}
}

// WithPollInterval sets the bound of every blocking wait, and therefore the
// latency with which wait loops observe stop requests.
func WithPollInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.config.PollInterval = d
		}
	}
}

// WithLogger sets the logger. Entities log through named children of it.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics makes the connector count into an existing registry.
func WithMetrics(m *control.MetricsRegistry) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithErrorHandler installs the error reporting callback of wait loops.
func WithErrorHandler(h ErrorHandler) Option {
	return func(o *options) {
		o.onError = h
	}
}
