// Package config loads neuronpath settings from a TOML file.
//
// The file lives at $XDG_CONFIG_HOME/neuronpath/config.toml (falling back to
// ~/.config/neuronpath/config.toml). Every field has a default, so a missing
// file is not an error. Command-line flags override file values.
//
//	[cache]
//	backend = "redis"
//	ttl = "720h"
//
//	[cache.redis]
//	addr = "localhost:6379"
//
//	[codec]
//	layer_term = "ilxtr:hasLayer"
//	strict = true
//
//	[server]
//	addr = ":8080"
//
//	[batch]
//	workers = 8
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/neuronpath/pkg/cache"
	perrors "github.com/matzehuels/neuronpath/pkg/errors"
	"github.com/matzehuels/neuronpath/pkg/rdflist"
)

// AppName names the config and cache directories.
const AppName = "neuronpath"

// Config is the full settings tree.
type Config struct {
	Cache  Cache  `toml:"cache"`
	Codec  Codec  `toml:"codec"`
	Server Server `toml:"server"`
	Batch  Batch  `toml:"batch"`
}

// Cache selects the result cache backend.
type Cache struct {
	Backend string   `toml:"backend"`
	Dir     string   `toml:"dir"`
	TTL     Duration `toml:"ttl"`
	// Scope prefixes every key, for datasets sharing one backend.
	Scope   string   `toml:"scope"`
	Redis   Redis    `toml:"redis"`
	Mongo   Mongo    `toml:"mongo"`
}

type Redis struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

type Mongo struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// Codec controls the serialization bind.
type Codec struct {
	LayerTerm string `toml:"layer_term"`
	Strict    bool   `toml:"strict"`
}

type Server struct {
	Addr         string   `toml:"addr"`
	ReadTimeout  Duration `toml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout"`
	// MaxBodyBytes bounds request bodies.
	MaxBodyBytes int64 `toml:"max_body_bytes"`
}

type Batch struct {
	Workers int `toml:"workers"`
}

// Duration is a time.Duration written as a string such as "30s".
type Duration struct{ time.Duration }

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in settings.
func Default() Config {
	dir, _ := CacheDir()
	return Config{
		Cache: Cache{
			Backend: cache.BackendFile,
			Dir:     dir,
			TTL:     Duration{cache.TTLResult},
			Redis:   Redis{Addr: "localhost:6379", Prefix: AppName + ":"},
			Mongo:   Mongo{URI: "mongodb://localhost:27017", Database: AppName, Collection: "results"},
		},
		Codec: Codec{LayerTerm: rdflist.DefaultLayerTerm},
		Server: Server{
			Addr:         ":8080",
			ReadTimeout:  Duration{10 * time.Second},
			WriteTimeout: Duration{30 * time.Second},
			MaxBodyBytes: 4 << 20,
		},
		Batch: Batch{Workers: runtime.GOMAXPROCS(0)},
	}
}

// Load reads path on top of [Default]. An empty path means [Path]; a
// missing default file yields the defaults, a missing explicit file is an
// error.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		p, err := Path()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, os.ErrNotExist) {
		if explicit {
			return cfg, perrors.Wrap(perrors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return cfg, nil
	}
	if err != nil {
		return cfg, perrors.Wrap(perrors.ErrCodeInvalidConfig, err, "config %s", path)
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		return cfg, perrors.New(perrors.ErrCodeInvalidConfig, "config %s: unknown key %s", path, keys[0])
	}
	return cfg, cfg.Validate()
}

// Validate checks values that cannot be caught by decoding.
func (c Config) Validate() error {
	switch c.Cache.Backend {
	case cache.BackendFile, cache.BackendRedis, cache.BackendMongo, cache.BackendNone:
	default:
		return perrors.New(perrors.ErrCodeInvalidConfig, "cache.backend must be file, redis, mongo or none, got %q", c.Cache.Backend)
	}
	if c.Cache.TTL.Duration < 0 {
		return perrors.New(perrors.ErrCodeInvalidConfig, "cache.ttl must not be negative")
	}
	if err := perrors.ValidateTerm(c.Codec.LayerTerm); err != nil {
		return perrors.Wrap(perrors.ErrCodeInvalidConfig, err, "codec.layer_term")
	}
	if c.Batch.Workers < 1 {
		return perrors.New(perrors.ErrCodeInvalidConfig, "batch.workers must be at least 1")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return perrors.New(perrors.ErrCodeInvalidConfig, "server.max_body_bytes must be positive")
	}
	return nil
}

// CacheOptions converts the cache section for [cache.Open].
func (c Config) CacheOptions() cache.Options {
	return cache.Options{
		Backend: c.Cache.Backend,
		Dir:     c.Cache.Dir,
		Redis: cache.RedisOptions{
			Addr:     c.Cache.Redis.Addr,
			Password: c.Cache.Redis.Password,
			DB:       c.Cache.Redis.DB,
			Prefix:   c.Cache.Redis.Prefix,
		},
		Mongo: cache.MongoOptions{
			URI:        c.Cache.Mongo.URI,
			Database:   c.Cache.Mongo.Database,
			Collection: c.Cache.Mongo.Collection,
		},
	}
}

// Keyer returns the cache keyer, scoped when cache.scope is set.
func (c Config) Keyer() cache.Keyer {
	if c.Cache.Scope == "" {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(cache.NewDefaultKeyer(), c.Cache.Scope+":")
}

// Binder returns the region/layer binder described by the codec section.
func (c Config) Binder() rdflist.RegionLayerBinder {
	return rdflist.RegionLayerBinder{LayerTerm: c.Codec.LayerTerm, Strict: c.Codec.Strict}
}

// Path returns the default config file location.
func Path() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config path: %w", err)
	}
	return filepath.Join(home, ".config", AppName, "config.toml"), nil
}

// CacheDir returns the cache directory using XDG standard (~/.cache/neuronpath/).
func CacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}
