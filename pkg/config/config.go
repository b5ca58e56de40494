// Package config loads gwmap configuration from a TOML file.
//
// The config file is optional. Lookup order:
//  1. The path in the GWMAP_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/gwmap/config.toml
//  3. ~/.config/gwmap/config.toml
//
// Missing files yield the defaults; a malformed file is an error.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/gwmap/gwmap/pkg/errors"
)

// Config holds all user-configurable settings.
type Config struct {
	// Output defaults for the render command.
	Format    string `toml:"format"`    // mermaid, dot, svg, json
	Mode      string `toml:"mode"`      // auto, detailed, overview
	Threshold int    `toml:"threshold"` // gateway count above which overview mode is selected

	// ShowGrants controls whether ReferenceGrant nodes appear in diagrams.
	ShowGrants bool `toml:"show_grants"`

	Cache CacheConfig `toml:"cache"`
	Serve ServeConfig `toml:"serve"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	// Backend is one of: file, redis, mongo, none.
	Backend string `toml:"backend"`

	// Dir overrides the XDG cache directory for the file backend.
	Dir string `toml:"dir"`

	Redis RedisConfig `toml:"redis"`
	Mongo MongoConfig `toml:"mongo"`
}

// RedisConfig configures the redis backend.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// MongoConfig configures the mongo backend.
type MongoConfig struct {
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

// ServeConfig configures the API server.
type ServeConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Format:    "mermaid",
		Mode:      "auto",
		Threshold: 3,
		Cache: CacheConfig{
			Backend: "file",
			Redis: RedisConfig{
				Addr: "localhost:6379",
			},
			Mongo: MongoConfig{
				URI:      "mongodb://localhost:27017",
				Database: "gwmap",
			},
		},
		Serve: ServeConfig{
			Addr: ":8080",
		},
	}
}

// Load reads the config file at path and merges it over the defaults.
// An empty path triggers the standard lookup order; a missing file
// is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = defaultPath()
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read config %s", path)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config %s", path)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that enum-valued fields hold known values.
func (c *Config) Validate() error {
	switch c.Format {
	case "mermaid", "dot", "svg", "json":
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format %q (want mermaid, dot, svg or json)", c.Format)
	}

	switch c.Mode {
	case "auto", "detailed", "overview":
	default:
		return errors.New(errors.ErrCodeInvalidMode, "invalid mode %q (want auto, detailed or overview)", c.Mode)
	}

	switch c.Cache.Backend {
	case "file", "redis", "mongo", "none":
	default:
		return errors.New(errors.ErrCodeInvalidInput, "invalid cache backend %q (want file, redis, mongo or none)", c.Cache.Backend)
	}

	if c.Threshold < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "threshold cannot be negative")
	}

	return nil
}

// defaultPath resolves the standard config file location.
func defaultPath() string {
	if p := os.Getenv("GWMAP_CONFIG"); p != "" {
		return p
	}
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "gwmap", "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "gwmap", "config.toml")
}
