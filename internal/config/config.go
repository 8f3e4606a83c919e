// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for promptline.
//
// Configuration sources (highest precedence first):
//   - Command-line flags (applied by the cli package)
//   - Environment variables (PROMPTLINE_*, OPENAI_*)
//   - A .env file in the working directory
//   - ~/.promptline/config.toml
//   - Built-in defaults
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/jeranaias/promptline/internal/util"
)

// Environment variable names.
const (
	EnvAPIKey        = "PROMPTLINE_API_KEY"
	EnvAPIBase       = "PROMPTLINE_API_BASE"
	EnvModel         = "PROMPTLINE_MODEL"
	EnvTimeout       = "PROMPTLINE_TIMEOUT"
	EnvHistory       = "PROMPTLINE_HISTORY"
	EnvDebug         = "PROMPTLINE_DEBUG"
	EnvOpenAIAPIKey  = "OPENAI_API_KEY"
	EnvOpenAIAPIBase = "OPENAI_API_BASE"
)

// Limits enforced by Validate.
const (
	MinTimeoutSecs = 1
	MaxTimeoutSecs = 600
	MinHistoryCap  = 1
	MaxHistoryCap  = 10000
	MaxDebounceMS  = 5000
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete promptline configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	API  APIConfig  `toml:"api" json:"api"`
	Chat ChatConfig `toml:"chat" json:"chat"`
	UI   UIConfig   `toml:"ui" json:"ui"`
}

// APIConfig holds settings for the completion endpoint.
type APIConfig struct {
	// Key is the bearer token. Prefer the environment over the config file.
	Key string `toml:"key" json:"key"`
	// BaseURL is the API root; "/chat/completions" is appended.
	BaseURL string `toml:"base_url" json:"base_url"`
	Model   string `toml:"model" json:"model"`
	// TimeoutSecs aborts a request that has not finished in time.
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
	// MaxRetries is the number of retries for 5xx responses.
	MaxRetries int `toml:"max_retries" json:"max_retries"`
	// RequestsPerMinute throttles outgoing requests; 0 disables.
	RequestsPerMinute int  `toml:"requests_per_minute" json:"requests_per_minute"`
	Stream            bool `toml:"stream" json:"stream"`
}

// ChatConfig holds settings for the chat session.
type ChatConfig struct {
	// HistoryCap is the maximum number of messages kept in memory.
	HistoryCap int `toml:"history_cap" json:"history_cap"`
	// DebounceMS is how long the input must be idle before it is applied.
	DebounceMS int `toml:"debounce_ms" json:"debounce_ms"`
}

// UIConfig holds display settings.
type UIConfig struct {
	// Theme is "auto", "dark" or "light".
	Theme string `toml:"theme" json:"theme"`
	// Markdown renders bot replies as markdown.
	Markdown bool `toml:"markdown" json:"markdown"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1",
		API: APIConfig{
			BaseURL:     "https://api.openai.com/v1",
			Model:       "gpt-4o-mini",
			TimeoutSecs: 30,
			MaxRetries:  2,
			Stream:      true,
		},
		Chat: ChatConfig{
			HistoryCap: 50,
			DebounceMS: 300,
		},
		UI: UIConfig{
			Theme:    "auto",
			Markdown: true,
		},
	}
}

// SetDefaults fills zero values with defaults. Booleans are left alone.
func (c *Config) SetDefaults() {
	d := Default()
	if c.Version == "" {
		c.Version = d.Version
	}
	if c.API.BaseURL == "" {
		c.API.BaseURL = d.API.BaseURL
	}
	if c.API.Model == "" {
		c.API.Model = d.API.Model
	}
	if c.API.TimeoutSecs == 0 {
		c.API.TimeoutSecs = d.API.TimeoutSecs
	}
	if c.Chat.HistoryCap == 0 {
		c.Chat.HistoryCap = d.Chat.HistoryCap
	}
	if c.UI.Theme == "" {
		c.UI.Theme = d.UI.Theme
	}
}

// Timeout returns the request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.API.TimeoutSecs) * time.Second
}

// Debounce returns the input debounce interval as a duration.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Chat.DebounceMS) * time.Millisecond
}

// Redacted returns a copy with the API key replaced, for display.
func (c *Config) Redacted() *Config {
	cp := *c
	if cp.API.Key != "" {
		cp.API.Key = fmt.Sprintf("[REDACTED, length=%d]", len(c.API.Key))
	}
	return &cp
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the promptline configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".promptline"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// ensureSecurePermissions tightens a config file to 0600 since it may hold
// an API key.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode&0077 != 0 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load builds the effective configuration. path selects the TOML file; an
// empty path means ConfigPath(). A missing file is not an error.
// The .env file in the working directory is read before the environment
// overrides are applied; variables already set in the environment win.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	if err := LoadDotEnv(".env"); err != nil {
		return nil, err
	}

	cfg := Default()
	if _, err := os.Stat(path); err == nil {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load config %s: %w", path, err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat config %s: %w", path, err)
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes the TOML file at path on top of cfg.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		// Not fatal: some filesystems do not support chmod.
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		fmt.Fprintf(os.Stderr, "Warning: unknown config keys in %s: %s\n", path, strings.Join(keys, ", "))
	}
	return nil
}

// LoadDotEnv loads KEY=value pairs from path into the process environment
// without overriding variables that are already set. A missing file is
// ignored.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// SaveTOML writes cfg to path with 0600 permissions. The API key is never
// written; it belongs in the environment.
func SaveTOML(cfg *Config, path string) error {
	cp := *cfg
	cp.API.Key = ""

	var buf bytes.Buffer
	buf.WriteString("# promptline configuration file\n")
	buf.WriteString("# Set the API key with PROMPTLINE_API_KEY or OPENAI_API_KEY.\n\n")
	if err := toml.NewEncoder(&buf).Encode(&cp); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides:
//   - PROMPTLINE_API_KEY (or OPENAI_API_KEY): api.key
//   - PROMPTLINE_API_BASE (or OPENAI_API_BASE): api.base_url
//   - PROMPTLINE_MODEL: api.model
//   - PROMPTLINE_TIMEOUT: api.timeout_secs
//   - PROMPTLINE_HISTORY: chat.history_cap
//
// Unparseable numbers are ignored so Validate sees the file value.
func (c *Config) ApplyEnvOverrides() {
	if key := firstEnv(EnvAPIKey, EnvOpenAIAPIKey); key != "" {
		c.API.Key = key
	}
	if base := firstEnv(EnvAPIBase, EnvOpenAIAPIBase); base != "" {
		c.API.BaseURL = base
	}
	if model := os.Getenv(EnvModel); model != "" {
		c.API.Model = model
	}
	if n, ok := envInt(EnvTimeout); ok {
		c.API.TimeoutSecs = n
	}
	if n, ok := envInt(EnvHistory); ok {
		c.Chat.HistoryCap = n
	}
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return ""
}

func envInt(key string) (int, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// DebugEnabled reports whether PROMPTLINE_DEBUG is set to a true value.
func DebugEnabled() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(EnvDebug)))
	return v == "1" || v == "true" || v == "yes"
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors as
// ValidateErrors. The API key is not required here; a missing key is
// reported when a request is made.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if u, err := url.Parse(c.API.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "api.base_url",
			Message: fmt.Sprintf("invalid URL '%s', must be an absolute http(s) URL", c.API.BaseURL),
		})
	}

	if strings.TrimSpace(c.API.Model) == "" {
		errs = append(errs, ValidationError{Field: "api.model", Message: "must not be empty"})
	}

	if c.API.TimeoutSecs < MinTimeoutSecs || c.API.TimeoutSecs > MaxTimeoutSecs {
		errs = append(errs, ValidationError{
			Field:   "api.timeout_secs",
			Message: fmt.Sprintf("must be between %d and %d, got %d", MinTimeoutSecs, MaxTimeoutSecs, c.API.TimeoutSecs),
		})
	}

	if c.API.MaxRetries < 0 || c.API.MaxRetries > 10 {
		errs = append(errs, ValidationError{
			Field:   "api.max_retries",
			Message: fmt.Sprintf("must be between 0 and 10, got %d", c.API.MaxRetries),
		})
	}

	if c.API.RequestsPerMinute < 0 {
		errs = append(errs, ValidationError{Field: "api.requests_per_minute", Message: "must not be negative"})
	}

	if c.Chat.HistoryCap < MinHistoryCap || c.Chat.HistoryCap > MaxHistoryCap {
		errs = append(errs, ValidationError{
			Field:   "chat.history_cap",
			Message: fmt.Sprintf("must be between %d and %d, got %d", MinHistoryCap, MaxHistoryCap, c.Chat.HistoryCap),
		})
	}

	if c.Chat.DebounceMS < 0 || c.Chat.DebounceMS > MaxDebounceMS {
		errs = append(errs, ValidationError{
			Field:   "chat.debounce_ms",
			Message: fmt.Sprintf("must be between 0 and %d, got %d", MaxDebounceMS, c.Chat.DebounceMS),
		})
	}

	switch strings.ToLower(c.UI.Theme) {
	case "auto", "dark", "light":
	default:
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: auto, dark, light", c.UI.Theme),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
