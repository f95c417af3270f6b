// Package config handles layered YAML configuration with environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all userbook configuration.
type Config struct {
	Storage Storage `yaml:"storage"`
	Log     Log     `yaml:"log"`
	Photo   Photo   `yaml:"photo"`
	UI      UI      `yaml:"ui"`
}

// Storage selects where the user list is persisted.
type Storage struct {
	Backend string `yaml:"backend"` // "file" | "sqlite" | "memory"
	Path    string `yaml:"path"`    // Directory for file, database file for sqlite.
	Key     string `yaml:"key"`     // Slot name holding the list.
}

// Log holds logger settings.
type Log struct {
	Verbosity int    `yaml:"verbosity"`
	Format    string `yaml:"format"` // "text" | "json"
	Path      string `yaml:"path"`   // Log file used while the TUI owns the terminal.
}

// Photo holds image acquisition settings.
type Photo struct {
	LibraryDir    string `yaml:"library_dir"`    // Directory browsed by "pick from library".
	CameraCommand string `yaml:"camera_command"` // Capture command; {output} is replaced by the target path.
}

// UI holds form display settings.
type UI struct {
	Theme string `yaml:"theme"` // "light" | "dark"
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Storage: Storage{
			Backend: "file",
			Path:    ".userbook/data",
			Key:     "users_mvvm_app",
		},
		Log: Log{
			Format: "text",
			Path:   ".userbook/logs/userbook.log",
		},
		Photo: Photo{
			LibraryDir: "photos",
		},
		UI: UI{
			Theme: "light",
		},
	}
}

// Load reads a single YAML config file at path and returns a Config.
// For merging multiple config sources, use LoadLayered instead.
// If the file does not exist, defaults are returned without error.
// If the file contains invalid YAML or unknown fields, an error is returned.
func Load(path string) (*Config, error) {
	return LoadLayered(path)
}

// LoadLayered loads config from multiple paths with increasing priority.
// Later paths override earlier ones. Missing files are skipped.
func LoadLayered(paths ...string) (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range paths {
		layer, err := loadLayer(path)
		if err != nil {
			return nil, err
		}
		if layer == nil {
			continue
		}
		cfg.merge(layer)
	}

	return &cfg, nil
}

// Validate checks that config values are usable.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "file", "sqlite":
		if c.Storage.Path == "" {
			return fmt.Errorf("config: storage.path cannot be empty for backend %q", c.Storage.Backend)
		}
	case "memory":
	default:
		return fmt.Errorf("config: storage.backend must be \"file\", \"sqlite\" or \"memory\", got %q", c.Storage.Backend)
	}
	if c.Storage.Key == "" {
		return errors.New("config: storage.key cannot be empty")
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("config: log.format must be \"text\" or \"json\", got %q", c.Log.Format)
	}
	if c.Log.Verbosity < 0 {
		return fmt.Errorf("config: log.verbosity must be non-negative, got %d", c.Log.Verbosity)
	}
	switch c.UI.Theme {
	case "light", "dark":
	default:
		return fmt.Errorf("config: ui.theme must be \"light\" or \"dark\", got %q", c.UI.Theme)
	}
	return nil
}

// ApplyEnv applies environment variable overrides to the config.
// Supported variables: USERBOOK_STORAGE_BACKEND, USERBOOK_STORAGE_PATH,
// USERBOOK_LOG_FORMAT, USERBOOK_LOG_VERBOSITY.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("USERBOOK_STORAGE_BACKEND"); v != "" {
		c.Storage.Backend = v
	}
	if v := os.Getenv("USERBOOK_STORAGE_PATH"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("USERBOOK_LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	if v := os.Getenv("USERBOOK_LOG_VERBOSITY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: invalid USERBOOK_LOG_VERBOSITY %q: %w", v, err)
		}
		c.Log.Verbosity = n
	}
	return nil
}

// rawConfig mirrors Config but uses pointers to distinguish set vs unset fields.
type rawConfig struct {
	Storage *rawStorage `yaml:"storage"`
	Log     *rawLog     `yaml:"log"`
	Photo   *rawPhoto   `yaml:"photo"`
	UI      *rawUI      `yaml:"ui"`
}

type rawStorage struct {
	Backend *string `yaml:"backend"`
	Path    *string `yaml:"path"`
	Key     *string `yaml:"key"`
}

type rawLog struct {
	Verbosity *int    `yaml:"verbosity"`
	Format    *string `yaml:"format"`
	Path      *string `yaml:"path"`
}

type rawPhoto struct {
	LibraryDir    *string `yaml:"library_dir"`
	CameraCommand *string `yaml:"camera_command"`
}

type rawUI struct {
	Theme *string `yaml:"theme"`
}

// loadLayer reads a single config file into a rawConfig for selective merging.
// Returns nil if the file does not exist. Rejects unknown fields.
func loadLayer(path string) (*rawConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if len(data) == 0 {
		return nil, nil
	}

	var raw rawConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		// Comment-only YAML files produce EOF with no decoded content.
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return &raw, nil
}

// merge applies non-nil fields from a rawConfig layer onto this Config.
func (c *Config) merge(layer *rawConfig) {
	if s := layer.Storage; s != nil {
		setString(&c.Storage.Backend, s.Backend)
		setString(&c.Storage.Path, s.Path)
		setString(&c.Storage.Key, s.Key)
	}
	if l := layer.Log; l != nil {
		if l.Verbosity != nil {
			c.Log.Verbosity = *l.Verbosity
		}
		setString(&c.Log.Format, l.Format)
		setString(&c.Log.Path, l.Path)
	}
	if p := layer.Photo; p != nil {
		setString(&c.Photo.LibraryDir, p.LibraryDir)
		setString(&c.Photo.CameraCommand, p.CameraCommand)
	}
	if u := layer.UI; u != nil {
		setString(&c.UI.Theme, u.Theme)
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
