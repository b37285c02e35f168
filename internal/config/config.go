// Package config loads editor and asset-server settings from a YAML file
// with environment overrides.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	BackendMemory = "memory"
	BackendFS     = "fs"
	BackendSQLite = "sqlite"
	BackendHTTP   = "http"
)

// Config is the top-level configuration.
type Config struct {
	Store  StoreConfig  `yaml:"store"`
	Server ServerConfig `yaml:"server"`
	Editor EditorConfig `yaml:"editor"`
}

// StoreConfig selects and configures the asset store.
type StoreConfig struct {
	Backend string        `yaml:"backend" env:"RGBYP_STORE_BACKEND"` // memory | fs | sqlite | http
	Root    string        `yaml:"root" env:"RGBYP_STORE_ROOT"`       // fs
	DSN     string        `yaml:"dsn" env:"RGBYP_STORE_DSN"`         // sqlite database path
	URL     string        `yaml:"url" env:"RGBYP_STORE_URL"`         // http
	Timeout time.Duration `yaml:"timeout" env:"RGBYP_STORE_TIMEOUT"`
}

// ServerConfig controls the asset server.
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr" env:"RGBYP_LISTEN_ADDR"`
	LogLevel   string `yaml:"log_level" env:"RGBYP_LOG_LEVEL"` // debug | info | warn | error
}

// EditorConfig holds desktop editor defaults.
type EditorConfig struct {
	NodeID      string  `yaml:"node_id" env:"RGBYP_NODE_ID"`
	BrushSize   int     `yaml:"brush_size" env:"RGBYP_BRUSH_SIZE"`
	MaskOpacity float64 `yaml:"mask_opacity" env:"RGBYP_MASK_OPACITY"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// LoadFile reads a YAML configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Load reads path (if not empty), applies environment overrides and
// validates the result.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		fromFile, err := LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config %s: %w", path, err)
		}
		cfg = fromFile
	}
	if err := ParseEnv(cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Store.Backend == "" {
		c.Store.Backend = BackendFS
	}
	if c.Store.Root == "" {
		c.Store.Root = defaultRoot()
	}
	if c.Store.Timeout <= 0 {
		c.Store.Timeout = 30 * time.Second
	}
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = "127.0.0.1:8188"
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Editor.NodeID == "" {
		c.Editor.NodeID = "1"
	}
	if c.Editor.BrushSize <= 0 {
		c.Editor.BrushSize = 40
	}
	if c.Editor.MaskOpacity <= 0 || c.Editor.MaskOpacity > 1 {
		c.Editor.MaskOpacity = 0.75
	}
}

// Validate checks backend-specific settings.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendMemory, BackendFS:
	case BackendSQLite:
		if c.Store.DSN == "" {
			return fmt.Errorf("store backend %q requires dsn", c.Store.Backend)
		}
	case BackendHTTP:
		if c.Store.URL == "" {
			return fmt.Errorf("store backend %q requires url", c.Store.Backend)
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	return nil
}

// Level maps LogLevel to a slog level; unknown names mean info.
func (c ServerConfig) Level() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func defaultRoot() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "rgbyp-assets"
	}
	return dir + string(os.PathSeparator) + "rgbyp-maskeditor"
}
