// Copyright 2026 The Chirp Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Environment != Development {
		t.Errorf("expected environment 'development', got %q", cfg.Environment)
	}
	if cfg.API.BaseURL != "https://api.twitter.com/1.1" {
		t.Errorf("unexpected base URL: %s", cfg.API.BaseURL)
	}
	if cfg.Timeline.PageSize != 20 {
		t.Errorf("expected page size 20, got %d", cfg.Timeline.PageSize)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
	if cfg.RequestTimeout() != 30*time.Second {
		t.Errorf("expected 30s timeout, got %s", cfg.RequestTimeout())
	}
}

func TestLoadFile_YAML(t *testing.T) {
	path := writeConfig(t, "chirp.yaml", `
environment: production
api:
  base_url: https://api.example.test/1.1
  timeout: 5s
log:
  level: debug
timeline:
  page_size: 50
production:
  api:
    user_agent: chirp-prod/1
    disable_compression: true
  log:
    format: json
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Environment != Production {
		t.Errorf("expected production, got %q", cfg.Environment)
	}
	if cfg.API.BaseURL != "https://api.example.test/1.1" {
		t.Errorf("unexpected base URL: %s", cfg.API.BaseURL)
	}
	if cfg.API.UserAgent != "chirp-prod/1" {
		t.Errorf("production override not applied to user agent: %q", cfg.API.UserAgent)
	}
	if !cfg.API.DisableCompression {
		t.Error("production override not applied to disable_compression")
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("unexpected log config: %+v", cfg.Log)
	}
	if cfg.Timeline.PageSize != 50 {
		t.Errorf("expected page size 50, got %d", cfg.Timeline.PageSize)
	}
	if cfg.RequestTimeout() != 5*time.Second {
		t.Errorf("expected 5s timeout, got %s", cfg.RequestTimeout())
	}
}

func TestLoadFile_DevelopmentOverridesIgnoredInProduction(t *testing.T) {
	path := writeConfig(t, "chirp.yaml", `
environment: production
development:
  api:
    base_url: https://localhost:8443/1.1
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.API.BaseURL != "https://api.twitter.com/1.1" {
		t.Errorf("development override leaked into production: %s", cfg.API.BaseURL)
	}
}

func TestLoadFile_JSONC(t *testing.T) {
	path := writeConfig(t, "chirp.jsonc", `{
	// Local mock server.
	"api": {
		"base_url": "https://localhost:8443/1.1",
		"timeout": "2s",
	},
	/* Token lives next to the config. */
	"auth": {"token_env": "CHIRP_TEST_TOKEN"},
	"timeline": {"page_size": 5},
}`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.API.BaseURL != "https://localhost:8443/1.1" {
		t.Errorf("unexpected base URL: %s", cfg.API.BaseURL)
	}
	if cfg.Auth.TokenEnv != "CHIRP_TEST_TOKEN" {
		t.Errorf("unexpected token env: %q", cfg.Auth.TokenEnv)
	}
	if cfg.Timeline.PageSize != 5 {
		t.Errorf("expected page size 5, got %d", cfg.Timeline.PageSize)
	}
	// Unset fields keep their defaults.
	if cfg.Log.Level != "info" {
		t.Errorf("expected default log level, got %q", cfg.Log.Level)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}

	path := writeConfig(t, "broken.yaml", "api: [unterminated\n")
	if _, err := LoadFile(path); err == nil || !strings.Contains(err.Error(), "parsing") {
		t.Errorf("expected parse error, got %v", err)
	}

	path = writeConfig(t, "broken.json", `{"timeline": {"page_size": "many"}}`)
	if _, err := LoadFile(path); err == nil {
		t.Error("expected type error for string page_size")
	}
}

func TestLoad_EnvironmentVariable(t *testing.T) {
	t.Setenv(EnvironmentVariable, "")
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), EnvironmentVariable) {
		t.Errorf("expected error naming %s, got %v", EnvironmentVariable, err)
	}

	path := writeConfig(t, "chirp.yaml", "timeline:\n  page_size: 7\n")
	t.Setenv(EnvironmentVariable, path)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Timeline.PageSize != 7 {
		t.Errorf("expected page size 7, got %d", cfg.Timeline.PageSize)
	}
}

func TestExpandVars(t *testing.T) {
	t.Setenv("CHIRP_TEST_DIR", "/srv/chirp")
	t.Setenv("CHIRP_TEST_EMPTY", "")

	vars := map[string]string{"HOME": "/home/tester"}
	tests := []struct {
		input string
		want  string
	}{
		{"${HOME}/.chirp/token", "/home/tester/.chirp/token"},
		{"${CHIRP_TEST_DIR}/token", "/srv/chirp/token"},
		{"${CHIRP_TEST_EMPTY:-/tmp}/token", "/tmp/token"},
		{"${CHIRP_TEST_UNSET_VARIABLE:-fallback}", "fallback"},
		{"${CHIRP_TEST_UNSET_VARIABLE}", ""},
		{"plain/path", "plain/path"},
	}
	for _, test := range tests {
		if got := expandVars(test.input, vars); got != test.want {
			t.Errorf("expandVars(%q) = %q, want %q", test.input, got, test.want)
		}
	}
}

func TestToken(t *testing.T) {
	t.Run("inline", func(t *testing.T) {
		cfg := Default()
		cfg.Auth.BearerToken = "inline-token"
		token, err := cfg.Token()
		if err != nil || token != "inline-token" {
			t.Errorf("Token() = %q, %v", token, err)
		}
	})

	t.Run("file", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)
		if err := os.WriteFile(filepath.Join(home, "token"), []byte("  file-token\n"), 0600); err != nil {
			t.Fatal(err)
		}
		path := writeConfig(t, "chirp.yaml", "auth:\n  token_file: ${HOME}/token\n")
		cfg, err := LoadFile(path)
		if err != nil {
			t.Fatalf("LoadFile failed: %v", err)
		}
		token, err := cfg.Token()
		if err != nil || token != "file-token" {
			t.Errorf("Token() = %q, %v", token, err)
		}
	})

	t.Run("empty file", func(t *testing.T) {
		cfg := Default()
		cfg.Auth.TokenFile = writeConfig(t, "token", "\n")
		if _, err := cfg.Token(); err == nil {
			t.Error("expected error for empty token file")
		}
	})

	t.Run("environment", func(t *testing.T) {
		t.Setenv("CHIRP_TEST_TOKEN", "env-token")
		cfg := Default()
		cfg.Auth.TokenEnv = "CHIRP_TEST_TOKEN"
		token, err := cfg.Token()
		if err != nil || token != "env-token" {
			t.Errorf("Token() = %q, %v", token, err)
		}
	})

	t.Run("none", func(t *testing.T) {
		if _, err := Default().Token(); !errors.Is(err, ErrNoToken) {
			t.Errorf("expected ErrNoToken, got %v", err)
		}
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"environment", func(c *Config) { c.Environment = "staging" }, "invalid environment"},
		{"http base URL", func(c *Config) { c.API.BaseURL = "http://api.example.test" }, "must use https"},
		{"bad timeout", func(c *Config) { c.API.Timeout = "soon" }, "api.timeout"},
		{"zero timeout", func(c *Config) { c.API.Timeout = "0s" }, "must be positive"},
		{"two token sources", func(c *Config) {
			c.Auth.BearerToken = "a"
			c.Auth.TokenEnv = "B"
		}, "at most one"},
		{"log level", func(c *Config) { c.Log.Level = "trace" }, "invalid log.level"},
		{"log format", func(c *Config) { c.Log.Format = "xml" }, "invalid log.format"},
		{"page size", func(c *Config) { c.Timeline.PageSize = 0 }, "page_size"},
		{"page size too large", func(c *Config) { c.Timeline.PageSize = 201 }, "page_size"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := Default()
			test.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), test.want) {
				t.Errorf("Validate() = %v, want error containing %q", err, test.want)
			}
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "loud"
	cfg.Timeline.PageSize = -1
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"log.level", "page_size"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}
