// Copyright 2026 The Chirp Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// EnvironmentVariable names the variable Load reads the config path from.
const EnvironmentVariable = "CHIRP_CONFIG"

// Environment selects which override section applies.
type Environment string

const (
	// Development is for local use against test endpoints.
	Development Environment = "development"
	// Production is for real accounts.
	Production Environment = "production"
)

// Config is the complete client configuration.
type Config struct {
	// Environment selects the override section (development, production).
	Environment Environment `yaml:"environment" json:"environment"`

	// API configures the HTTP client.
	API APIConfig `yaml:"api" json:"api"`

	// Auth configures where credentials come from.
	Auth AuthConfig `yaml:"auth" json:"auth"`

	// Log configures the command logger.
	Log LogConfig `yaml:"log" json:"log"`

	// Timeline configures pagination defaults.
	Timeline TimelineConfig `yaml:"timeline" json:"timeline"`

	Development *Overrides `yaml:"development,omitempty" json:"development,omitempty"`
	Production  *Overrides `yaml:"production,omitempty" json:"production,omitempty"`
}

// Overrides holds the fields an environment section may replace.
type Overrides struct {
	API *APIConfig `yaml:"api,omitempty" json:"api,omitempty"`
	Log *LogConfig `yaml:"log,omitempty" json:"log,omitempty"`
}

// APIConfig configures the HTTP client.
type APIConfig struct {
	// BaseURL is the API root. Must use HTTPS.
	// Default: https://api.twitter.com/1.1
	BaseURL string `yaml:"base_url" json:"base_url"`

	// UserAgent overrides the User-Agent header.
	UserAgent string `yaml:"user_agent" json:"user_agent"`

	// Timeout bounds each request, as a Go duration string.
	// Default: 30s
	Timeout string `yaml:"timeout" json:"timeout"`

	// DisableCompression stops the client from asking for gzip bodies.
	DisableCompression bool `yaml:"disable_compression" json:"disable_compression"`
}

// AuthConfig configures credentials. At most one of BearerToken,
// TokenFile and TokenEnv may be set; with none set the CLI prompts.
type AuthConfig struct {
	// BearerToken is an app-only bearer token, inline.
	BearerToken string `yaml:"bearer_token" json:"bearer_token"`

	// TokenFile is a file whose trimmed content is the bearer token.
	TokenFile string `yaml:"token_file" json:"token_file"`

	// TokenEnv names an environment variable holding the bearer token.
	TokenEnv string `yaml:"token_env" json:"token_env"`
}

// LogConfig configures the command logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	// Default: info
	Level string `yaml:"level" json:"level"`

	// Format is text, json, or auto (text on a terminal).
	// Default: auto
	Format string `yaml:"format" json:"format"`
}

// TimelineConfig configures pagination.
type TimelineConfig struct {
	// PageSize is the count sent with each page.
	// Default: 20
	PageSize int `yaml:"page_size" json:"page_size"`
}

// Default returns the configuration a file is merged over.
func Default() *Config {
	return &Config{
		Environment: Development,
		API: APIConfig{
			BaseURL: "https://api.twitter.com/1.1",
			Timeout: "30s",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
		Timeline: TimelineConfig{
			PageSize: 20,
		},
	}
}

// Load loads configuration from the file named by CHIRP_CONFIG.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return nil, fmt.Errorf("config: %s environment variable not set; "+
			"set it to the path of your chirp.yaml config file, or use --config flag", EnvironmentVariable)
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from path.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()
	return cfg, nil
}

// loadFile merges the file at path into c.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), c); err != nil {
			return fmt.Errorf("config: parsing %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("config: parsing %s: %w", path, err)
		}
	}
	return nil
}

// applyEnvironmentOverrides applies the section matching Environment.
func (c *Config) applyEnvironmentOverrides() {
	var overrides *Overrides
	switch c.Environment {
	case Development:
		overrides = c.Development
	case Production:
		overrides = c.Production
	}
	if overrides == nil {
		return
	}

	if overrides.API != nil {
		if overrides.API.BaseURL != "" {
			c.API.BaseURL = overrides.API.BaseURL
		}
		if overrides.API.UserAgent != "" {
			c.API.UserAgent = overrides.API.UserAgent
		}
		if overrides.API.Timeout != "" {
			c.API.Timeout = overrides.API.Timeout
		}
		// A bool cannot be "unset", so the override always wins.
		c.API.DisableCompression = overrides.API.DisableCompression
	}

	if overrides.Log != nil {
		if overrides.Log.Level != "" {
			c.Log.Level = overrides.Log.Level
		}
		if overrides.Log.Format != "" {
			c.Log.Format = overrides.Log.Format
		}
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} in path fields.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}
	c.Auth.TokenFile = expandVars(c.Auth.TokenFile, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// RequestTimeout returns API.Timeout parsed. Call Validate first.
func (c *Config) RequestTimeout() time.Duration {
	timeout, _ := time.ParseDuration(c.API.Timeout)
	return timeout
}

// ErrNoToken is returned by Token when no credential source is
// configured.
var ErrNoToken = errors.New("config: no bearer token configured")

// Token resolves the bearer token from whichever source is configured.
func (c *Config) Token() (string, error) {
	switch {
	case c.Auth.BearerToken != "":
		return c.Auth.BearerToken, nil
	case c.Auth.TokenFile != "":
		data, err := os.ReadFile(c.Auth.TokenFile)
		if err != nil {
			return "", fmt.Errorf("config: reading token file: %w", err)
		}
		token := strings.TrimSpace(string(data))
		if token == "" {
			return "", fmt.Errorf("config: token file %s is empty", c.Auth.TokenFile)
		}
		return token, nil
	case c.Auth.TokenEnv != "":
		token := os.Getenv(c.Auth.TokenEnv)
		if token == "" {
			return "", fmt.Errorf("config: environment variable %s is empty", c.Auth.TokenEnv)
		}
		return token, nil
	}
	return "", ErrNoToken
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	if !strings.HasPrefix(c.API.BaseURL, "https://") {
		errs = append(errs, fmt.Errorf("api.base_url must use https (got %q)", c.API.BaseURL))
	}

	if timeout, err := time.ParseDuration(c.API.Timeout); err != nil {
		errs = append(errs, fmt.Errorf("api.timeout: %w", err))
	} else if timeout <= 0 {
		errs = append(errs, fmt.Errorf("api.timeout must be positive (got %s)", c.API.Timeout))
	}

	sources := 0
	for _, source := range []string{c.Auth.BearerToken, c.Auth.TokenFile, c.Auth.TokenEnv} {
		if source != "" {
			sources++
		}
	}
	if sources > 1 {
		errs = append(errs, fmt.Errorf("auth: set at most one of bearer_token, token_file, token_env"))
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("invalid log.level: %s", c.Log.Level))
	}

	switch c.Log.Format {
	case "auto", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("invalid log.format: %s", c.Log.Format))
	}

	if c.Timeline.PageSize < 1 || c.Timeline.PageSize > 200 {
		errs = append(errs, fmt.Errorf("timeline.page_size must be between 1 and 200 (got %d)", c.Timeline.PageSize))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}
