// Package config loads roster settings from a TOML or YAML file and the
// environment. Precedence, lowest first: defaults, file, environment, flags.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/Makepad-fr/roster/internal/store"
	"github.com/Makepad-fr/roster/internal/ui"
)

// Config is the complete roster configuration.
type Config struct {
	Storage StorageConfig `toml:"storage" yaml:"storage"`
	UI      UIConfig      `toml:"ui" yaml:"ui"`
	Log     LogConfig     `toml:"log" yaml:"log"`
}

// StorageConfig selects the backend and the directory it writes to.
type StorageConfig struct {
	Backend string `toml:"backend" yaml:"backend"` // json | sqlite | memory
	Dir     string `toml:"dir" yaml:"dir"`
}

type UIConfig struct {
	Theme string `toml:"theme" yaml:"theme"`
}

// LogConfig holds logging settings. An empty File means <storage dir>/roster.log.
type LogConfig struct {
	Level string `toml:"level" yaml:"level"`
	File  string `toml:"file" yaml:"file"`
}

const (
	fileBase    = "roster"
	logFileName = "roster.log"
)

// Default returns the built-in configuration: JSON files in the working
// directory, classic theme, info logging.
func Default() Config {
	return Config{
		Storage: StorageConfig{Backend: store.BackendJSON, Dir: "."},
		UI:      UIConfig{Theme: ui.ThemeClassic},
		Log:     LogConfig{Level: "info"},
	}
}

// Load starts from Default, applies the file at path (or the first file
// found by Find when path is empty) and then the environment. It returns
// the file actually used, "" if none.
func Load(path string) (Config, string, error) {
	cfg := Default()
	if path == "" {
		path = Find()
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, "", fmt.Errorf("loading config file %s: %w", path, err)
		}
	}
	cfg.ApplyEnv(os.Getenv)
	return cfg, path, nil
}

// Find returns the first existing config file among ./roster.{toml,yaml,yml}
// and <user config dir>/roster/roster.{toml,yaml,yml}.
func Find() string {
	dirs := []string{"."}
	if d, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, filepath.Join(d, "roster"))
	}
	for _, dir := range dirs {
		for _, ext := range []string{".toml", ".yaml", ".yml"} {
			p := filepath.Join(dir, fileBase+ext)
			if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
				return p
			}
		}
	}
	return ""
}

func (c *Config) loadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		md, err := toml.Decode(string(b), c)
		if err != nil {
			return fmt.Errorf("parse toml: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(b))
		dec.KnownFields(true)
		if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("parse yaml: %w", err)
		}
	default:
		return fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
	return nil
}

// ApplyEnv overrides settings from ROSTER_* variables.
func (c *Config) ApplyEnv(getenv func(string) string) {
	set := func(dst *string, name string) {
		if v := strings.TrimSpace(getenv(name)); v != "" {
			*dst = v
		}
	}
	set(&c.Storage.Backend, "ROSTER_BACKEND")
	set(&c.Storage.Dir, "ROSTER_DATA")
	set(&c.UI.Theme, "ROSTER_THEME")
	set(&c.Log.Level, "ROSTER_LOG_LEVEL")
	set(&c.Log.File, "ROSTER_LOG_FILE")
}

// Validate checks enumerated values.
func (c Config) Validate() error {
	if !slices.Contains(store.Backends(), c.Storage.Backend) {
		return fmt.Errorf("storage.backend: %q is not one of %s", c.Storage.Backend, strings.Join(store.Backends(), ", "))
	}
	if !slices.Contains(ui.ThemeNames(), strings.ToLower(c.UI.Theme)) {
		return fmt.Errorf("ui.theme: %q is not one of %s", c.UI.Theme, strings.Join(ui.ThemeNames(), ", "))
	}
	return nil
}

// LogPath resolves where log output goes.
func (c Config) LogPath() string {
	if c.Log.File != "" {
		return c.Log.File
	}
	return filepath.Join(c.Storage.Dir, logFileName)
}
