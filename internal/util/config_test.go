package util

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 30*time.Second, cfg.RefreshInterval)
	assert.Equal(t, 3, cfg.MaxPasswordRetries)
	assert.True(t, cfg.WarnOpenNetworks)
	assert.NotNil(t, cfg.VPNBindings)
	require.NoError(t, cfg.Validate())
}

func TestRuntimeDirFallsBackToTmp(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "")
	assert.Equal(t, "/tmp", RuntimeDir())

	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
	assert.Equal(t, "/run/user/1000", RuntimeDir())
}

func TestPaths(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RunDir = "/run/user/1000"

	assert.Equal(t, filepath.Join("/run/user/1000", "wifimenu-cache.json"), cfg.CachePath())
	assert.Equal(t, filepath.Join("/run/user/1000", "wifimenu-daemon.pid"), cfg.LockPath())
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero interval", func(c *Config) { c.RefreshInterval = 0 }},
		{"zero retries", func(c *Config) { c.MaxPasswordRetries = 0 }},
		{"negative retries", func(c *Config) { c.MaxPasswordRetries = -1 }},
		{"tiny connect timeout", func(c *Config) { c.ConnectTimeout = time.Millisecond }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
