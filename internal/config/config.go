// Package config loads the notes client configuration.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// UserConfigDir is the directory for user-level config, under $HOME.
	UserConfigDir = ".config/notes"
	// UserConfigFile is the name of the user-level config file.
	UserConfigFile = "config.yaml"

	DefaultBaseURL = "https://backapp-xmhk.onrender.com"
)

// Config is the complete client configuration.
type Config struct {
	// BaseURL is the notes API host, without a trailing slash.
	BaseURL string `yaml:"base_url"`
	// FlushInterval is how often buffered edits are sent.
	FlushInterval time.Duration `yaml:"flush_interval"`
	// RequestTimeout bounds every API request, including the final flush on quit.
	RequestTimeout time.Duration `yaml:"request_timeout"`

	LogLevel string `yaml:"log_level"`
	// LogFile receives logs while the TUI owns the terminal. Empty discards them.
	LogFile string `yaml:"log_file"`

	Theme       string `yaml:"theme"`
	MetricsAddr string `yaml:"metrics_addr"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:        DefaultBaseURL,
		FlushInterval:  100 * time.Millisecond,
		RequestTimeout: 10 * time.Second,
		LogLevel:       "info",
		Theme:          "classic",
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("base_url is required")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("base_url %q is not an absolute URL", c.BaseURL)
	}
	if c.FlushInterval <= 0 {
		return errors.New("flush_interval must be positive")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("request_timeout must be positive")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch strings.ToLower(c.Theme) {
	case "", "classic", "neon", "mono":
	default:
		return fmt.Errorf("unknown theme %q (classic|neon|mono)", c.Theme)
	}
	return nil
}

// Merge copies the non-zero values of other into c.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}
	if other.BaseURL != "" {
		c.BaseURL = other.BaseURL
	}
	if other.FlushInterval != 0 {
		c.FlushInterval = other.FlushInterval
	}
	if other.RequestTimeout != 0 {
		c.RequestTimeout = other.RequestTimeout
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.LogFile != "" {
		c.LogFile = other.LogFile
	}
	if other.Theme != "" {
		c.Theme = other.Theme
	}
	if other.MetricsAddr != "" {
		c.MetricsAddr = other.MetricsAddr
	}
}

// ApplyEnv overrides values from NOTES_* environment variables.
func (c *Config) ApplyEnv() {
	c.Merge(&Config{
		BaseURL:     strings.TrimSpace(os.Getenv("NOTES_BASE_URL")),
		LogLevel:    strings.TrimSpace(os.Getenv("NOTES_LOG_LEVEL")),
		LogFile:     strings.TrimSpace(os.Getenv("NOTES_LOG_FILE")),
		MetricsAddr: strings.TrimSpace(os.Getenv("NOTES_METRICS_ADDR")),
	})
}

// LoadFromFile reads a YAML file on top of the defaults.
func LoadFromFile(path string) (*Config, error) {
	fileCfg, err := readFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	cfg.Merge(fileCfg)
	return cfg, nil
}

// readFile returns only the values set in the file, for layering.
func readFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return &cfg, nil
}

// SaveToFile writes c as YAML, creating parent directories.
func (c *Config) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// UserConfigPath returns ~/.config/notes/config.yaml.
func UserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home: %w", err)
	}
	return filepath.Join(home, UserConfigDir, UserConfigFile), nil
}

// Load resolves configuration with layered precedence:
// defaults, user config, the explicit file (if any), then environment.
// A missing user config is fine; a missing explicit file is an error.
func Load(explicitPath string, logger *slog.Logger) (*Config, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cfg := DefaultConfig()

	if p, err := UserConfigPath(); err == nil {
		if userCfg, err := readFile(p); err == nil {
			logger.Debug("Loaded user config", slog.String("path", p))
			cfg.Merge(userCfg)
		} else if !errors.Is(err, os.ErrNotExist) {
			logger.Warn("Failed to load user config", slog.String("path", p), slog.String("error", err.Error()))
		}
	}

	if explicitPath != "" {
		fileCfg, err := readFile(explicitPath)
		if err != nil {
			return nil, err
		}
		logger.Debug("Loaded config", slog.String("path", explicitPath))
		cfg.Merge(fileCfg)
	}

	cfg.ApplyEnv()
	return cfg, nil
}

// ParseLevel maps a level name to slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q (debug|info|warn|error)", s)
}
