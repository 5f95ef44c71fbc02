// Package config loads homeroom's TOML settings with HOMEROOM_* overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v9"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
)

const (
	DefaultConfigFileName = "config.toml"
	EnvPrefix             = "HOMEROOM_"

	StorageJSON   = "json"
	StorageSQLite = "sqlite"
)

// Config holds every user setting
type Config struct {
	DataDir           string `toml:"data_dir" env:"DATA_DIR"`
	Storage           string `toml:"storage" env:"STORAGE"`
	SaveDebounceMS    int    `toml:"save_debounce_ms" env:"SAVE_DEBOUNCE_MS"`
	LogLevel          string `toml:"log_level" env:"LOG_LEVEL"`
	LogFile           string `toml:"log_file" env:"LOG_FILE"`
	Notifications     bool   `toml:"notifications" env:"NOTIFICATIONS"`
	AttachmentWorkers int    `toml:"attachment_workers" env:"ATTACHMENT_WORKERS"`
}

// DefaultDataDir returns the default data directory path
func DefaultDataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "homeroom")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".homeroom"
	}
	return filepath.Join(home, ".local", "share", "homeroom")
}

// ResolveConfigPath returns where the config file lives
func ResolveConfigPath() string {
	if p := os.Getenv(EnvPrefix + "CONFIG"); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return DefaultConfigFileName
	}
	return filepath.Join(dir, "homeroom", DefaultConfigFileName)
}

// Default returns the settings used when no file exists
func Default() Config {
	return Config{
		DataDir:           DefaultDataDir(),
		Storage:           StorageJSON,
		SaveDebounceMS:    200,
		LogLevel:          "info",
		Notifications:     true,
		AttachmentWorkers: 4,
	}
}

// LoadOrCreate reads path, writing the defaults there first when it does
// not exist, then applies environment overrides.
func LoadOrCreate(fs afero.Fs, path string) (Config, error) {
	cfg := Default()

	if _, err := fs.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(fs, path, cfg); err != nil {
			return cfg, err
		}
	} else {
		data, err := afero.ReadFile(fs, path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return cfg, fmt.Errorf("failed to read environment: %w", err)
	}

	cfg.normalize()
	return cfg, cfg.Validate()
}

func write(fs afero.Fs, path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	return afero.WriteFile(fs, path, data, 0o644)
}

func (c *Config) normalize() {
	def := Default()
	if c.DataDir == "" {
		c.DataDir = def.DataDir
	}
	if strings.HasPrefix(c.DataDir, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			c.DataDir = filepath.Join(home, c.DataDir[2:])
		}
	}
	c.Storage = strings.ToLower(strings.TrimSpace(c.Storage))
	if c.Storage == "" {
		c.Storage = def.Storage
	}
	if c.SaveDebounceMS <= 0 {
		c.SaveDebounceMS = def.SaveDebounceMS
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.AttachmentWorkers <= 0 {
		c.AttachmentWorkers = def.AttachmentWorkers
	}
}

// Validate rejects settings the app cannot run with
func (c Config) Validate() error {
	switch c.Storage {
	case StorageJSON, StorageSQLite:
	default:
		return fmt.Errorf("unknown storage %q (want %s or %s)", c.Storage, StorageJSON, StorageSQLite)
	}
	return nil
}

// AttachmentDir is where attachment blobs are stored
func (c Config) AttachmentDir() string {
	return filepath.Join(c.DataDir, "attachments")
}

// DBPath is the SQLite database file
func (c Config) DBPath() string {
	return filepath.Join(c.DataDir, "homeroom.db")
}
