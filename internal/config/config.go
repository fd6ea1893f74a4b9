// Package config loads and stores CLI configuration in the XDG config dir.
// Only non-secret settings are kept here; the bearer token goes to the OS keychain.
package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"insightst/cli/internal/xdg"
)

// Defaults applied when the config file or a field is missing.
const (
	DefaultBaseURL         = "http://localhost:8000"
	DefaultLogLevel        = "info"
	DefaultRequestTimeout  = 15
	DefaultMinSecretLength = 8
)

// Config holds non-sensitive CLI settings.
type Config struct {
	BaseURL string `json:"base_url"`
	// ManifestURL optionally points to a JSON endpoint table served by the backend.
	ManifestURL string `json:"manifest_url,omitempty"`
	LogLevel    string `json:"log_level"`
	// RequestTimeoutSeconds bounds every call made through the request pipeline.
	RequestTimeoutSeconds int           `json:"request_timeout_seconds"`
	MinSecretLength       int           `json:"min_secret_length"`
	Keyring               KeyringConfig `json:"keyring"`
}

// KeyringConfig selects the credential store backends.
type KeyringConfig struct {
	// Backends lists keyring backend names in preference order
	// (e.g. "keychain", "wincred", "secret-service", "kwallet", "pass", "file").
	// Empty means the platform default.
	Backends []string `json:"backends,omitempty"`
	// FileDir is used by the "file" backend. Empty means the XDG state dir.
	FileDir string `json:"file_dir,omitempty"`
}

// RequestTimeout returns the configured pipeline timeout.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		BaseURL:               DefaultBaseURL,
		LogLevel:              DefaultLogLevel,
		RequestTimeoutSeconds: DefaultRequestTimeout,
		MinSecretLength:       DefaultMinSecretLength,
	}
}

// path returns the path to the config file.
func path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads configuration; missing file returns defaults.
// Environment variables override file values.
func Load() (Config, error) {
	p, err := path()
	if err != nil {
		return Config{}, err
	}
	return LoadFile(p)
}

// LoadFile reads configuration from an explicit path.
func LoadFile(p string) (Config, error) {
	c := Default()
	data, err := os.ReadFile(p)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return c, err
	}
	if err == nil {
		if err := json.Unmarshal(data, &c); err != nil {
			return c, err
		}
	}
	applyEnv(&c)
	normalize(&c)
	return c, nil
}

func applyEnv(c *Config) {
	if v := strings.TrimSpace(os.Getenv("INSIGHTST_BASE_URL")); v != "" {
		c.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("INSIGHTST_MANIFEST_URL")); v != "" {
		c.ManifestURL = v
	}
	if v := strings.TrimSpace(os.Getenv("INSIGHTST_LOG_LEVEL")); v != "" {
		c.LogLevel = v
	}
}

// normalize fills zero values left by partial config files.
func normalize(c *Config) {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.RequestTimeoutSeconds <= 0 {
		c.RequestTimeoutSeconds = DefaultRequestTimeout
	}
	if c.MinSecretLength <= 0 {
		c.MinSecretLength = DefaultMinSecretLength
	}
}

// Save writes configuration with 0600 permissions.
func Save(c Config) error {
	p, err := path()
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o600)
}
