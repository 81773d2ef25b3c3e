// Package config loads todo settings from a YAML or JSON file.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/deepnoodle-ai/todo/log"
	"github.com/deepnoodle-ai/todo/storage"
	"github.com/goccy/go-yaml"
)

const appName = "todo"

// Config holds user settings. Zero values mean "use the default".
type Config struct {
	// StorageDir is the directory holding the task list.
	StorageDir string `json:"storage_dir,omitempty" yaml:"storage_dir,omitempty"`

	// Key is the storage key of the task list.
	Key string `json:"key,omitempty" yaml:"key,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level,omitempty" yaml:"log_level,omitempty"`

	// MaxBytes limits the size of the stored list. Zero means no limit.
	MaxBytes int64 `json:"max_bytes,omitempty" yaml:"max_bytes,omitempty"`

	// Color forces colored output on or off. Nil means detect.
	Color *bool `json:"color,omitempty" yaml:"color,omitempty"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		StorageDir: DefaultStorageDir(),
		Key:        "tasks",
		LogLevel:   "warn",
	}
}

// DefaultStorageDir returns $XDG_DATA_HOME/todo, falling back to
// ~/.local/share/todo.
func DefaultStorageDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	return filepath.Join("~", ".local", "share", appName)
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName, "config.yaml"), nil
}

// Load reads the config file at path and fills unset fields with defaults.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg, err := ParseFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParseFile reads a Config from a file. The extension selects the format.
func ParseFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return ParseJSON(data)
	case ".yml", ".yaml":
		return ParseYAML(data)
	default:
		return nil, fmt.Errorf("unsupported config file extension: %s", ext)
	}
}

// ParseYAML decodes a Config from YAML. Unknown fields are rejected.
func ParseYAML(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.UnmarshalWithOptions(data, &cfg, yaml.Strict()); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ParseJSON decodes a Config from JSON. Unknown fields are rejected.
func ParseJSON(data []byte) (*Config, error) {
	var cfg Config
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the config to path, creating parent directories. The file
// extension selects the format.
func (c *Config) Save(path string) error {
	var (
		data []byte
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		data, err = json.MarshalIndent(c, "", "  ")
	case ".yml", ".yaml":
		data, err = yaml.Marshal(c)
	default:
		return fmt.Errorf("unsupported config file extension: %s", ext)
	}
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

// Write encodes the config as YAML.
func (c *Config) Write(w io.Writer) error {
	return yaml.NewEncoder(w).Encode(c)
}

// Validate checks field values.
func (c *Config) Validate() error {
	if c.LogLevel != "" && !log.IsValidLevel(c.LogLevel) {
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}
	if c.Key != "" {
		if err := storage.ValidateKey(c.Key); err != nil {
			return err
		}
	}
	if c.MaxBytes < 0 {
		return fmt.Errorf("invalid max_bytes: %d", c.MaxBytes)
	}
	return nil
}

func (c *Config) applyDefaults() {
	def := Default()
	if c.StorageDir == "" {
		c.StorageDir = def.StorageDir
	}
	if c.Key == "" {
		c.Key = def.Key
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
}
