// Copyright 2025 momentics@gmail.com
// Licensed under the Apache License, Version 2.0.

// config_test.go: YAML loading, validation and hot reload.
package control

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/momentics/hioload-connector/api"
)

func TestParseConfigOverridesDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte("poll_interval: 250ms\nlog_level: debug\n"))
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, DefaultConfig().ErrorBacklog, cfg.ErrorBacklog)

	lvl, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, lvl)
}

func TestParseConfigRejectsInvalid(t *testing.T) {
	for name, doc := range map[string]string{
		"zero interval": "poll_interval: 0s\n",
		"backlog":       "error_backlog: -1\n",
		"level":         "log_level: loud\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseConfig([]byte(doc))
			assert.ErrorIs(t, err, api.ErrInvalidArgument)
		})
	}

	_, err := ParseConfig([]byte("poll_interval: [1, 2]\n"))
	assert.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "connector.yaml")
	require.NoError(t, os.WriteFile(path, []byte("poll_interval: 2s\nerror_backlog: 8\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, cfg.PollInterval)
	assert.Equal(t, 8, cfg.ErrorBacklog)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestConfigStoreReload(t *testing.T) {
	store := NewConfigStore(DefaultConfig())
	var got []time.Duration
	cancel := store.OnReload(func(c Config) { got = append(got, c.PollInterval) })

	next := DefaultConfig()
	next.PollInterval = 100 * time.Millisecond
	require.NoError(t, store.SetConfig(next))
	assert.Equal(t, next, store.Get())
	assert.Equal(t, []time.Duration{100 * time.Millisecond}, got)

	bad := next
	bad.PollInterval = 0
	assert.Error(t, store.SetConfig(bad))
	assert.Equal(t, next, store.Get())

	cancel()
	require.NoError(t, store.SetConfig(DefaultConfig()))
	assert.Len(t, got, 1)
}
