package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/flowgrid/pkg/layout"
)

// Config is the CLI configuration file:
//
//	[layout]
//	rank_sep = 120
//	node_sep = 40
//
//	[cache]
//	redis_url = "redis://localhost:6379/0"
//	ttl = "24h"
//
//	[server]
//	addr = ":8080"
type Config struct {
	Layout layout.Options `toml:"layout"`
	Cache  CacheConfig    `toml:"cache"`
	Server ServerConfig   `toml:"server"`
}

// CacheConfig selects and tunes the cache backend.
type CacheConfig struct {
	Dir      string `toml:"dir"`
	RedisURL string `toml:"redis_url"`
	TTL      string `toml:"ttl"`
}

// ServerConfig configures the API server.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// defaultConfig returns the configuration used when no file exists.
func defaultConfig() Config {
	return Config{
		Layout: layout.DefaultOptions(),
		Server: ServerConfig{Addr: ":8080"},
	}
}

// loadConfig reads the config file at path over the defaults. An empty path
// looks in the XDG config directory, where a missing file is not an error.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	explicit := path != ""
	if !explicit {
		dir, err := configDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(dir, "config.toml")
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return defaultConfig(), nil
		}
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("load config %s: unknown keys %v", path, undecoded)
	}
	if _, err := cfg.Cache.ttl(); err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// ttl parses the configured entry lifetime. Empty means the cache default.
func (c CacheConfig) ttl() (time.Duration, error) {
	if c.TTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.TTL)
	if err != nil {
		return 0, fmt.Errorf("cache.ttl: %w", err)
	}
	return d, nil
}
