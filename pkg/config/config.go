// Package config provides configuration management.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds all client settings.
type Config struct {
	// API settings
	APIBaseURL string `json:"api_base_url"`
	APIKey     string `json:"api_key"`
	Model      string `json:"model"`

	// LLM behavior settings
	MaxTokens   *int     `json:"max_tokens,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	TopP        *float64 `json:"top_p,omitempty"`
	Stream      bool     `json:"stream"`

	// Extra request parameters merged verbatim into the body.
	ExtraParams map[string]any `json:"extra_params,omitempty"`

	// Retry settings
	MaxRetries     int `json:"max_retries,omitempty"`
	RetryBaseDelay int `json:"retry_base_delay_ms,omitempty"` // milliseconds

	// Outbound rate limit; zero disables limiting.
	RequestsPerSecond float64 `json:"requests_per_second,omitempty"`

	// Logging
	LogLevel string `json:"log_level,omitempty"`
	LogFile  string `json:"log_file,omitempty"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		APIBaseURL:     "http://localhost:11434/v1",
		Model:          "qwen3:8b",
		Stream:         true,
		MaxRetries:     3,
		RetryBaseDelay: 1000,
		LogLevel:       "INFO",
	}
}

// GetConfigPaths returns the candidate config locations, most specific
// first.
func GetConfigPaths(cliPath string) []string {
	var paths []string
	if cliPath != "" {
		paths = append(paths, cliPath)
	}
	paths = append(paths, ".halochat/config.json")
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".halochat", "config.json"))
	}
	return paths
}

// Load reads the first config file found among the candidate paths,
// applies environment overrides, and validates. With no file present it
// returns validated defaults and the path a Save would use.
func Load(cliPath string) (*Config, string, error) {
	paths := GetConfigPaths(cliPath)

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		cfg := DefaultConfig()
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, path, fmt.Errorf("invalid JSON in config file %s: %w", path, err)
		}
		applyEnvOverrides(cfg)
		if err := cfg.Validate(); err != nil {
			return nil, path, fmt.Errorf("configuration validation failed in %s: %w", path, err)
		}
		return cfg, path, nil
	}

	defaultPath := ".halochat/config.json"
	cfg := DefaultConfig()
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, defaultPath, fmt.Errorf("default configuration validation failed: %w", err)
	}
	return cfg, defaultPath, nil
}

// Save writes the configuration as indented JSON.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// Validate checks that the settings can produce a working request.
func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("api_base_url is required")
	}
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api_base_url %q is not a valid http(s) URL", c.APIBaseURL)
	}
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must not be negative")
	}
	if c.RetryBaseDelay < 0 {
		return fmt.Errorf("retry_base_delay_ms must not be negative")
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("requests_per_second must not be negative")
	}
	return nil
}

// RetryDelay returns the base retry delay as a duration.
func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.RetryBaseDelay) * time.Millisecond
}

// applyEnvOverrides lets environment variables win over file values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HALOCHAT_API_BASE_URL"); v != "" {
		cfg.APIBaseURL = v
	}
	if v := os.Getenv("HALOCHAT_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("HALOCHAT_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("HALOCHAT_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("HALOCHAT_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxRetries = n
		}
	}
}
