package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
	if cfg.APIBaseURL != "http://localhost:11434/v1" {
		t.Errorf("unexpected default base URL %q", cfg.APIBaseURL)
	}
	if !cfg.Stream {
		t.Error("streaming should default on")
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("default max_retries = %d, want 3", cfg.MaxRetries)
	}
	if cfg.RetryDelay() != time.Second {
		t.Errorf("default retry delay = %v, want 1s", cfg.RetryDelay())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "defaults pass",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "empty base URL",
			mutate:  func(c *Config) { c.APIBaseURL = "" },
			wantErr: true,
		},
		{
			name:    "non-http scheme",
			mutate:  func(c *Config) { c.APIBaseURL = "ftp://example.com/v1" },
			wantErr: true,
		},
		{
			name:    "URL without host",
			mutate:  func(c *Config) { c.APIBaseURL = "http://" },
			wantErr: true,
		},
		{
			name:    "empty model",
			mutate:  func(c *Config) { c.Model = "" },
			wantErr: true,
		},
		{
			name:    "negative retries",
			mutate:  func(c *Config) { c.MaxRetries = -1 },
			wantErr: true,
		},
		{
			name:    "negative delay",
			mutate:  func(c *Config) { c.RetryBaseDelay = -100 },
			wantErr: true,
		},
		{
			name:    "negative rate limit",
			mutate:  func(c *Config) { c.RequestsPerSecond = -1 },
			wantErr: true,
		},
		{
			name:    "https passes",
			mutate:  func(c *Config) { c.APIBaseURL = "https://api.example.com/v1" },
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	data := `{
  "api_base_url": "https://api.example.com/v1",
  "api_key": "test-key",
  "model": "deepseek-chat",
  "stream": false,
  "max_retries": 5,
  "retry_base_delay_ms": 250
}`
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, usedPath, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if usedPath != path {
		t.Errorf("used path = %q, want %q", usedPath, path)
	}
	if cfg.APIBaseURL != "https://api.example.com/v1" {
		t.Errorf("base URL = %q", cfg.APIBaseURL)
	}
	if cfg.Model != "deepseek-chat" {
		t.Errorf("model = %q", cfg.Model)
	}
	if cfg.Stream {
		t.Error("stream should be false")
	}
	if cfg.MaxRetries != 5 {
		t.Errorf("max_retries = %d, want 5", cfg.MaxRetries)
	}
	if cfg.RetryDelay() != 250*time.Millisecond {
		t.Errorf("retry delay = %v, want 250ms", cfg.RetryDelay())
	}
	// Fields not present in the file keep their defaults.
	if cfg.LogLevel != "INFO" {
		t.Errorf("log level = %q, want INFO", cfg.LogLevel)
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, _, err := Load(path); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("HALOCHAT_API_BASE_URL", "https://override.example.com/v1")
	t.Setenv("HALOCHAT_MODEL", "nemotron-nano")
	t.Setenv("HALOCHAT_MAX_RETRIES", "7")

	cfg := DefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.APIBaseURL != "https://override.example.com/v1" {
		t.Errorf("base URL = %q", cfg.APIBaseURL)
	}
	if cfg.Model != "nemotron-nano" {
		t.Errorf("model = %q", cfg.Model)
	}
	if cfg.MaxRetries != 7 {
		t.Errorf("max_retries = %d, want 7", cfg.MaxRetries)
	}
}

func TestEnvOverridesIgnoreBadValues(t *testing.T) {
	t.Setenv("HALOCHAT_MAX_RETRIES", "not-a-number")

	cfg := DefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.MaxRetries != 3 {
		t.Errorf("max_retries = %d, want default 3", cfg.MaxRetries)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.json")

	cfg := DefaultConfig()
	cfg.Model = "qwq-32b"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, _, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Model != "qwq-32b" {
		t.Errorf("model = %q, want qwq-32b", loaded.Model)
	}
}
