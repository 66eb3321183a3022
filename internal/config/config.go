// Package config handles configuration loading and study home resolution.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Config types
// ---------------------------------------------------------------------------

// StorageConfig selects and tunes the persistence backend.
type StorageConfig struct {
	Backend      string        `yaml:"backend"`  // "file" | "sqlite"
	Identity     string        `yaml:"identity"` // snapshot name (file) or user email (sqlite)
	DSN          string        `yaml:"dsn"`
	MaxOpenConns int           `yaml:"max_open_conns"`
	PoolTimeout  time.Duration `yaml:"pool_timeout"`
}

// AIConfig holds settings for the local inference backend.
type AIConfig struct {
	Provider       string        `yaml:"provider"` // "ollama" | "openai" | "openrouter" | "none"
	BaseURL        string        `yaml:"base_url"`
	APIKey         string        `yaml:"api_key"` // #nosec G117 -- token for the openai-compatible providers
	DefaultModel   string        `yaml:"default_model"`
	FlashcardModel string        `yaml:"flashcard_model"`
	Timeout        time.Duration `yaml:"timeout"`
}

// ServerConfig controls the HTTP page server.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "console" | "json"
	// Development makes DPanic entries panic.
	Development bool `yaml:"development"`
}

// Config is the root per-home configuration.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	AI      AIConfig      `yaml:"ai"`
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
}

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend:      "file",
			Identity:     "default",
			MaxOpenConns: 4,
			PoolTimeout:  2 * time.Second,
		},
		AI: AIConfig{
			Provider:       "ollama",
			BaseURL:        "http://localhost:11434",
			DefaultModel:   "gemma:2b",
			FlashcardModel: "mistral",
			Timeout:        60 * time.Second,
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8501",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads a per-home config.yaml from path.
// If the file does not exist it returns Default() with no error.
// Missing keys retain their default values.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	if st, ok := raw["storage"].(map[string]any); ok {
		if v, ok := st["backend"].(string); ok && v != "" {
			cfg.Storage.Backend = v
		}
		if v, ok := st["identity"].(string); ok && v != "" {
			cfg.Storage.Identity = v
		}
		if v, ok := st["dsn"].(string); ok {
			cfg.Storage.DSN = v
		}
		if v, ok := st["max_open_conns"].(int); ok && v > 0 {
			cfg.Storage.MaxOpenConns = v
		}
		if v, ok := st["pool_timeout"]; ok {
			d, err := parseDuration(v)
			if err != nil {
				return nil, fmt.Errorf("storage.pool_timeout: %w", err)
			}
			cfg.Storage.PoolTimeout = d
		}
	}

	if ai, ok := raw["ai"].(map[string]any); ok {
		if v, ok := ai["provider"].(string); ok && v != "" {
			cfg.AI.Provider = v
		}
		if v, ok := ai["base_url"].(string); ok && v != "" {
			cfg.AI.BaseURL = v
		}
		if v, ok := ai["api_key"].(string); ok {
			cfg.AI.APIKey = v
		}
		if v, ok := ai["default_model"].(string); ok && v != "" {
			cfg.AI.DefaultModel = v
		}
		if v, ok := ai["flashcard_model"].(string); ok && v != "" {
			cfg.AI.FlashcardModel = v
		}
		if v, ok := ai["timeout"]; ok {
			d, err := parseDuration(v)
			if err != nil {
				return nil, fmt.Errorf("ai.timeout: %w", err)
			}
			cfg.AI.Timeout = d
		}
	}

	if srv, ok := raw["server"].(map[string]any); ok {
		if v, ok := srv["addr"].(string); ok && v != "" {
			cfg.Server.Addr = v
		}
	}

	if lg, ok := raw["log"].(map[string]any); ok {
		if v, ok := lg["level"].(string); ok && v != "" {
			cfg.Log.Level = v
		}
		if v, ok := lg["format"].(string); ok && v != "" {
			cfg.Log.Format = v
		}
		if v, ok := lg["development"].(bool); ok {
			cfg.Log.Development = v
		}
	}

	return cfg, nil
}

// parseDuration accepts "2s"-style strings or a bare number of seconds.
func parseDuration(v any) (time.Duration, error) {
	switch t := v.(type) {
	case string:
		d, err := time.ParseDuration(t)
		if err != nil {
			return 0, err
		}
		if d <= 0 {
			return 0, fmt.Errorf("must be positive, got %q", t)
		}
		return d, nil
	case int:
		if t <= 0 {
			return 0, fmt.Errorf("must be positive, got %d", t)
		}
		return time.Duration(t) * time.Second, nil
	default:
		return 0, fmt.Errorf("unsupported value %v", v)
	}
}

// DatabasePath returns the SQLite DSN for home, honouring an explicit dsn.
func (c *Config) DatabasePath(home string) string {
	if c.Storage.DSN != "" {
		return c.Storage.DSN
	}
	return filepath.Join(home, "edusync.db")
}

// Marshal renders the config as YAML.
func (c *Config) Marshal() ([]byte, error) {
	type plain struct {
		Storage map[string]any `yaml:"storage"`
		AI      map[string]any `yaml:"ai"`
		Server  ServerConfig   `yaml:"server"`
		Log     LogConfig      `yaml:"log"`
	}
	return yaml.Marshal(plain{
		Storage: map[string]any{
			"backend":        c.Storage.Backend,
			"identity":       c.Storage.Identity,
			"dsn":            c.Storage.DSN,
			"max_open_conns": c.Storage.MaxOpenConns,
			"pool_timeout":   c.Storage.PoolTimeout.String(),
		},
		AI: map[string]any{
			"provider":        c.AI.Provider,
			"base_url":        c.AI.BaseURL,
			"api_key":         c.AI.APIKey,
			"default_model":   c.AI.DefaultModel,
			"flashcard_model": c.AI.FlashcardModel,
			"timeout":         c.AI.Timeout.String(),
		},
		Server: c.Server,
		Log:    c.Log,
	})
}

// ---------------------------------------------------------------------------
// Study home resolution
// ---------------------------------------------------------------------------

// globalConfigPath returns the path to the global edusync config file.
// This file stores only study_home.
func globalConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "edusync", "config.yaml"), nil
}

// normalizePath expands ~ and makes the path absolute.
func normalizePath(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, path[2:])
	}
	return filepath.Abs(os.ExpandEnv(path))
}

// ResolveHome returns the study home path and the source of the resolution.
// Priority: EDUSYNC_HOME env → persisted global config → ~/.edusync
// source is one of "env", "config", or "default".
func ResolveHome() (path, source string) {
	if env := os.Getenv("EDUSYNC_HOME"); env != "" {
		p, err := normalizePath(env)
		if err == nil {
			return p, "env"
		}
	}

	if persisted, ok, _ := GetPersistedHome(); ok {
		return persisted, "config"
	}

	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".edusync"), "default"
}

// GetHome returns the resolved study home path.
func GetHome() string {
	path, _ := ResolveHome()
	return path
}

// GetPersistedHome reads study_home from the global config.
// Returns ("", false, nil) if not set.
func GetPersistedHome() (string, bool, error) {
	cfgPath, err := globalConfigPath()
	if err != nil {
		return "", false, err
	}

	data, err := os.ReadFile(cfgPath)
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return "", false, nil
	}

	val, _ := raw["study_home"].(string)
	val = strings.TrimSpace(val)
	if val == "" {
		return "", false, nil
	}

	p, err := normalizePath(val)
	if err != nil {
		return "", false, err
	}
	return p, true, nil
}

// SetPersistedHome normalizes path and persists it in the global config.
// Returns the normalized path.
func SetPersistedHome(path string) (string, error) {
	normalized, err := normalizePath(path)
	if err != nil {
		return "", err
	}

	cfgPath, err := globalConfigPath()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(cfgPath), 0o755); err != nil {
		return "", err
	}

	var raw map[string]any
	if data, err := os.ReadFile(cfgPath); err == nil {
		_ = yaml.Unmarshal(data, &raw)
	}
	if raw == nil {
		raw = make(map[string]any)
	}
	raw["study_home"] = normalized

	out, err := yaml.Marshal(raw)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(cfgPath, out, 0o600); err != nil {
		return "", err
	}
	return normalized, nil
}

// ClearPersistedHome removes study_home from the global config.
// Returns true if the key was present and removed.
// If the file becomes empty after removal it is deleted.
func ClearPersistedHome() (bool, error) {
	cfgPath, err := globalConfigPath()
	if err != nil {
		return false, err
	}

	data, err := os.ReadFile(cfgPath)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return false, nil
	}

	if _, ok := raw["study_home"]; !ok {
		return false, nil
	}
	delete(raw, "study_home")

	if len(raw) == 0 {
		_ = os.Remove(cfgPath)
		return true, nil
	}

	out, err := yaml.Marshal(raw)
	if err != nil {
		return false, err
	}
	return true, os.WriteFile(cfgPath, out, 0o600)
}
