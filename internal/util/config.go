// Package util provides configuration and logging for wifimenu.
package util

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	RunDir   string `mapstructure:"run_dir"`
	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`

	// Daemon refresh cadence.
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`

	// Connect behaviour.
	ConnectTimeout     time.Duration `mapstructure:"connect_timeout"`
	MaxPasswordRetries int           `mapstructure:"max_password_retries"`
	WarnOpenNetworks   bool          `mapstructure:"warn_open_networks"`

	// scan verb: how long to wait for the daemon's fresh snapshot.
	ScanWait time.Duration `mapstructure:"scan_wait"`

	// Connectivity probe for the details view and post-connect check.
	PingHost  string `mapstructure:"ping_host"`
	PingCount int    `mapstructure:"ping_count"`

	// VPN bindings: network identifier -> VPN profile to auto-start.
	VPNBindings map[string]string `mapstructure:"vpn_bindings"`

	// Menu settings.
	MaxMenuRows int `mapstructure:"max_menu_rows"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		RunDir:   RuntimeDir(),
		LogLevel: "info",
		LogFile:  "",

		RefreshInterval: 30 * time.Second,

		ConnectTimeout:     15 * time.Second,
		MaxPasswordRetries: 3,
		WarnOpenNetworks:   true,

		ScanWait: 20 * time.Second,

		PingHost:  "1.1.1.1",
		PingCount: 2,

		VPNBindings: map[string]string{},

		MaxMenuRows: 14,
	}
}

// LoadConfig loads configuration from file and defaults. The search order
// is fixed: a wifimenu.yaml next to the working directory wins, then the
// user config directory. A malformed file is fatal: the error is returned
// before any network action can happen.
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	viper.SetConfigName("wifimenu")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	if confDir, err := os.UserConfigDir(); err == nil {
		viper.AddConfigPath(filepath.Join(confDir, "wifimenu"))
	}

	viper.SetDefault("run_dir", cfg.RunDir)
	viper.SetDefault("log_level", cfg.LogLevel)
	viper.SetDefault("refresh_interval", cfg.RefreshInterval)
	viper.SetDefault("connect_timeout", cfg.ConnectTimeout)
	viper.SetDefault("max_password_retries", cfg.MaxPasswordRetries)
	viper.SetDefault("warn_open_networks", cfg.WarnOpenNetworks)
	viper.SetDefault("scan_wait", cfg.ScanWait)
	viper.SetDefault("ping_host", cfg.PingHost)
	viper.SetDefault("ping_count", cfg.PingCount)
	viper.SetDefault("max_menu_rows", cfg.MaxMenuRows)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the rest of the program relies on being sane.
func (c *Config) Validate() error {
	if c.RefreshInterval < time.Second {
		return fmt.Errorf("refresh_interval must be at least 1s, got %s", c.RefreshInterval)
	}
	if c.MaxPasswordRetries < 1 {
		return fmt.Errorf("max_password_retries must be at least 1, got %d", c.MaxPasswordRetries)
	}
	if c.ConnectTimeout < time.Second {
		return fmt.Errorf("connect_timeout must be at least 1s, got %s", c.ConnectTimeout)
	}
	return nil
}

// CachePath returns the snapshot file path.
func (c *Config) CachePath() string {
	return filepath.Join(c.RunDir, "wifimenu-cache.json")
}

// LockPath returns the daemon lock file path.
func (c *Config) LockPath() string {
	return filepath.Join(c.RunDir, "wifimenu-daemon.pid")
}

// RuntimeDir returns the per-user runtime directory, falling back to /tmp.
func RuntimeDir() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return dir
	}
	return "/tmp"
}
