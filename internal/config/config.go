package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	// Global settings
	Format  string `mapstructure:"format"`
	Quiet   bool   `mapstructure:"quiet"`
	Verbose bool   `mapstructure:"verbose"`

	// Request timing
	Timeout      string `mapstructure:"timeout"`
	PollInterval string `mapstructure:"poll_interval"`
	MaxLines     int    `mapstructure:"max_lines"`

	// Session discovery
	Session SessionConfig `mapstructure:"session"`
}

// SessionConfig controls how the debugger pane is located
type SessionConfig struct {
	// Tmux session name to scan; empty scans all sessions
	Tmux string `mapstructure:"tmux"`
	// Foreground process names recognized as the debugger
	ProcessNames []string `mapstructure:"process_names"`
	// How long a located pane is trusted before re-verification
	TTL string `mapstructure:"ttl"`
}

// Default returns a Config with default values
func Default() *Config {
	return &Config{
		Format:       "text",
		Quiet:        false,
		Verbose:      false,
		Timeout:      "3s",
		PollInterval: "50ms",
		MaxLines:     80,
		Session: SessionConfig{
			ProcessNames: []string{"gdb"},
			TTL:          "5s",
		},
	}
}

// TimeoutDuration returns the reply timeout, falling back to the default on
// a malformed value
func (c *Config) TimeoutDuration() time.Duration {
	return parseDuration(c.Timeout, 3*time.Second)
}

// PollIntervalDuration returns the scrollback poll interval
func (c *Config) PollIntervalDuration() time.Duration {
	return parseDuration(c.PollInterval, 50*time.Millisecond)
}

// TTLDuration returns how long a located pane is trusted
func (s SessionConfig) TTLDuration() time.Duration {
	return parseDuration(s.TTL, 5*time.Second)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// Load loads configuration from files and environment
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("gdbtap")
	v.SetConfigType("yaml")

	// Config paths, lowest precedence first
	v.AddConfigPath("/etc/gdbtap/")
	if configDir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(configDir, "gdbtap"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
		v.SetConfigName(".gdbtap")
	}
	v.AddConfigPath(".")

	// Environment variables
	v.SetEnvPrefix("GDBTAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.BindEnv("format", "GDBTAP_FORMAT")
	v.BindEnv("quiet", "GDBTAP_QUIET")
	v.BindEnv("verbose", "GDBTAP_VERBOSE")
	v.BindEnv("timeout", "GDBTAP_TIMEOUT")
	v.BindEnv("poll_interval", "GDBTAP_POLL_INTERVAL")

	cfg := Default()
	v.SetDefault("format", cfg.Format)
	v.SetDefault("quiet", cfg.Quiet)
	v.SetDefault("verbose", cfg.Verbose)
	v.SetDefault("timeout", cfg.Timeout)
	v.SetDefault("poll_interval", cfg.PollInterval)
	v.SetDefault("max_lines", cfg.MaxLines)
	v.SetDefault("session.process_names", cfg.Session.ProcessNames)
	v.SetDefault("session.ttl", cfg.Session.TTL)

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// applyEnvOverrides handles the overrides viper cannot express: with
// AutomaticEnv and the GDBTAP prefix, a set GDBTAP_SESSION resolves as the
// whole "session" section and shadows every nested key under it, so the
// session filter is read by hand.
func applyEnvOverrides(cfg *Config) {
	if s := os.Getenv("GDBTAP_SESSION"); s != "" {
		cfg.Session.Tmux = s
	}
}

// LoadFromFile loads configuration from a specific file
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ConfigFile returns the path to the config file that was loaded
func ConfigFile() string {
	v := viper.New()

	v.SetConfigName(".gdbtap")
	v.SetConfigType("yaml")

	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err == nil {
		return v.ConfigFileUsed()
	}
	return ""
}
