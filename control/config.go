// control/config.go
// Author: momentics <momentics@gmail.com>
//
// Connector configuration and a thread-safe store with hot-reload propagation.

package control

import (
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/momentics/hioload-connector/api"
)

// Config holds the tunables of a connector. Profile and XML descriptor are
// not part of it; they go to the middleware untouched.
type Config struct {
	// PollInterval bounds every blocking wait issued by wait loops and
	// explicit waits, and therefore the latency of stop requests.
	PollInterval time.Duration `yaml:"poll_interval"`
	// ErrorBacklog is how many loop errors each entity keeps for TakeErrors.
	ErrorBacklog int `yaml:"error_backlog"`
	// LogLevel is the minimum level for loggers built from this config.
	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns default configuration values.
func DefaultConfig() Config {
	return Config{
		PollInterval: time.Second, // stop requests are observed within 1s
		ErrorBacklog: 64,
		LogLevel:     "info",
	}
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.PollInterval <= 0 {
		return api.NewError(api.ErrCodeInvalidArgument, "poll_interval must be positive").
			WithContext("poll_interval", c.PollInterval.String())
	}
	if c.ErrorBacklog <= 0 {
		return api.NewError(api.ErrCodeInvalidArgument, "error_backlog must be positive").
			WithContext("error_backlog", c.ErrorBacklog)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c Config) Level() (zapcore.Level, error) {
	if c.LogLevel == "" {
		return zapcore.InfoLevel, nil
	}
	lvl, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return lvl, api.NewError(api.ErrCodeInvalidArgument, "invalid log_level").
			WithContext("log_level", c.LogLevel)
	}
	return lvl, nil
}

// ParseConfig decodes YAML on top of DefaultConfig and validates the result.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads and parses a YAML config file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	return ParseConfig(data)
}

// ConfigStore holds the live Config and notifies listeners on change.
type ConfigStore struct {
	mu        sync.RWMutex
	config    Config
	listeners []*reloadHook
}

type reloadHook struct {
	fn func(Config)
}

// NewConfigStore initializes a store with cfg.
func NewConfigStore(cfg Config) *ConfigStore {
	return &ConfigStore{
		config:    cfg,
		listeners: make([]*reloadHook, 0),
	}
}

// Get returns the current config.
func (cs *ConfigStore) Get() Config {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.config
}

// SetConfig validates and installs cfg, then dispatches reload hooks
// synchronously, in registration order, outside the store lock.
func (cs *ConfigStore) SetConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	cs.mu.Lock()
	cs.config = cfg
	listeners := make([]*reloadHook, len(cs.listeners))
	copy(listeners, cs.listeners)
	cs.mu.Unlock()

	for _, h := range listeners {
		h.fn(cfg)
	}
	return nil
}

// OnReload registers a listener hook called on config changes. The returned
// function unregisters it.
func (cs *ConfigStore) OnReload(fn func(Config)) (cancel func()) {
	h := &reloadHook{fn: fn}
	cs.mu.Lock()
	cs.listeners = append(cs.listeners, h)
	cs.mu.Unlock()

	return func() {
		cs.mu.Lock()
		defer cs.mu.Unlock()
		for i, cur := range cs.listeners {
			if cur == h {
				cs.listeners = append(cs.listeners[:i:i], cs.listeners[i+1:]...)
				return
			}
		}
	}
}
