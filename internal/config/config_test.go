package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Storage.Backend != "file" {
		t.Errorf("default backend = %q, want %q", cfg.Storage.Backend, "file")
	}
	if cfg.Storage.Key != "users_mvvm_app" {
		t.Errorf("default key = %q, want %q", cfg.Storage.Key, "users_mvvm_app")
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("default theme = %q, want %q", cfg.UI.Theme, "light")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

func TestLoad_ValidFile(t *testing.T) {
	cfgPath := writeConfig(t, `
storage:
  backend: sqlite
  path: /tmp/userbook.db
  key: contacts
log:
  verbosity: 2
  format: json
photo:
  library_dir: /home/me/Pictures
  camera_command: fswebcam {output}
ui:
  theme: dark
`)

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := Config{
		Storage: Storage{Backend: "sqlite", Path: "/tmp/userbook.db", Key: "contacts"},
		Log:     Log{Verbosity: 2, Format: "json", Path: DefaultConfig().Log.Path},
		Photo:   Photo{LibraryDir: "/home/me/Pictures", CameraCommand: "fswebcam {output}"},
		UI:      UI{Theme: "dark"},
	}
	if *cfg != want {
		t.Errorf("Load() = %+v, want %+v", *cfg, want)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load("/nonexistent/config.yaml")
	if err != nil {
		t.Fatalf("Load() should return defaults for missing file, got error: %v", err)
	}
	want := DefaultConfig()
	if *cfg != want {
		t.Errorf("Load(missing) = %+v, want defaults %+v", *cfg, want)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "{{invalid yaml"))
	if err == nil {
		t.Fatal("Load(invalid YAML) should return error")
	}
}

func TestLoad_UnknownField(t *testing.T) {
	_, err := Load(writeConfig(t, `
storage:
  backnd: sqlite
`))
	if err == nil {
		t.Fatal("Load() should return error for unknown field 'backnd'")
	}
}

func TestLoad_CommentOnlyAndEmpty(t *testing.T) {
	for name, body := range map[string]string{
		"comment-only": "# just a comment\n",
		"empty":        "",
	} {
		t.Run(name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, body))
			if err != nil {
				t.Fatalf("Load(%s) error = %v", name, err)
			}
			if *cfg != DefaultConfig() {
				t.Errorf("Load(%s) = %+v, want defaults", name, *cfg)
			}
		})
	}
}

func TestLoad_LayeredPriority(t *testing.T) {
	// Setup: user config picks sqlite, project config overrides the key.
	userCfg := writeConfig(t, `
storage:
  backend: sqlite
  path: /home/me/.userbook.db
ui:
  theme: dark
`)
	projectCfg := writeConfig(t, `
storage:
  key: project_users
`)

	cfg, err := LoadLayered(userCfg, projectCfg)
	if err != nil {
		t.Fatalf("LoadLayered() error = %v", err)
	}
	// Backend from user config (project doesn't set it).
	if cfg.Storage.Backend != "sqlite" {
		t.Errorf("backend = %q, want %q", cfg.Storage.Backend, "sqlite")
	}
	// Key from project config.
	if cfg.Storage.Key != "project_users" {
		t.Errorf("key = %q, want %q", cfg.Storage.Key, "project_users")
	}
	if cfg.UI.Theme != "dark" {
		t.Errorf("theme = %q, want %q", cfg.UI.Theme, "dark")
	}
	// Log format retains default when neither layer sets it.
	if cfg.Log.Format != "text" {
		t.Errorf("log format = %q, want default %q", cfg.Log.Format, "text")
	}
}

func TestLoadLayered_AllMissing(t *testing.T) {
	cfg, err := LoadLayered("/no/user.yaml", "/no/project.yaml")
	if err != nil {
		t.Fatalf("LoadLayered(all missing) error = %v", err)
	}
	if *cfg != DefaultConfig() {
		t.Errorf("got %+v, want defaults", *cfg)
	}
}

func TestApplyEnv(t *testing.T) {
	tests := []struct {
		name    string
		envs    map[string]string
		wantErr bool
		check   func(*testing.T, Config)
	}{
		{
			name: "USERBOOK_STORAGE_BACKEND overrides backend",
			envs: map[string]string{"USERBOOK_STORAGE_BACKEND": "memory"},
			check: func(t *testing.T, c Config) {
				if c.Storage.Backend != "memory" {
					t.Errorf("backend = %q, want %q", c.Storage.Backend, "memory")
				}
			},
		},
		{
			name: "USERBOOK_STORAGE_PATH overrides path",
			envs: map[string]string{"USERBOOK_STORAGE_PATH": "/custom/dir"},
			check: func(t *testing.T, c Config) {
				if c.Storage.Path != "/custom/dir" {
					t.Errorf("path = %q, want %q", c.Storage.Path, "/custom/dir")
				}
			},
		},
		{
			name: "USERBOOK_LOG_VERBOSITY and format",
			envs: map[string]string{"USERBOOK_LOG_VERBOSITY": "3", "USERBOOK_LOG_FORMAT": "json"},
			check: func(t *testing.T, c Config) {
				if c.Log.Verbosity != 3 || c.Log.Format != "json" {
					t.Errorf("log = %+v, want verbosity 3 json", c.Log)
				}
			},
		},
		{
			name:    "invalid USERBOOK_LOG_VERBOSITY returns error",
			envs:    map[string]string{"USERBOOK_LOG_VERBOSITY": "loud"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envs {
				t.Setenv(k, v)
			}
			cfg := DefaultConfig()
			err := cfg.ApplyEnv()

			if tt.wantErr {
				if err == nil {
					t.Fatal("ApplyEnv() should return error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ApplyEnv() error = %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:   "defaults are valid",
			modify: func(*Config) {},
		},
		{
			name:   "memory backend needs no path",
			modify: func(c *Config) { c.Storage.Backend = "memory"; c.Storage.Path = "" },
		},
		{
			name:    "unknown backend",
			modify:  func(c *Config) { c.Storage.Backend = "redis" },
			wantErr: true,
		},
		{
			name:    "file backend without path",
			modify:  func(c *Config) { c.Storage.Path = "" },
			wantErr: true,
		},
		{
			name:    "empty key",
			modify:  func(c *Config) { c.Storage.Key = "" },
			wantErr: true,
		},
		{
			name:    "unknown log format",
			modify:  func(c *Config) { c.Log.Format = "xml" },
			wantErr: true,
		},
		{
			name:    "negative verbosity",
			modify:  func(c *Config) { c.Log.Verbosity = -1 },
			wantErr: true,
		},
		{
			name:    "unknown theme",
			modify:  func(c *Config) { c.UI.Theme = "solarized" },
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
