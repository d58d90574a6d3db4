package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/neuronpath/pkg/cache"
	perrors "github.com/matzehuels/neuronpath/pkg/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(p, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestLoad(t *testing.T) {
	p := writeConfig(t, `
[cache]
backend = "redis"
ttl = "1h"

[cache.redis]
addr = "cache:6379"
db = 2

[codec]
layer_term = "ex:inLayer"
strict = true

[server]
addr = "127.0.0.1:9000"

[batch]
workers = 3
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatal(err)
	}

	want := Default()
	want.Cache.Backend = "redis"
	want.Cache.TTL = Duration{time.Hour}
	want.Cache.Redis.Addr = "cache:6379"
	want.Cache.Redis.DB = 2
	want.Codec = Codec{LayerTerm: "ex:inLayer", Strict: true}
	want.Server.Addr = "127.0.0.1:9000"
	want.Batch.Workers = 3
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}

	b := cfg.Binder()
	if b.LayerTerm != "ex:inLayer" || !b.Strict {
		t.Errorf("Binder() = %+v", b)
	}
	if got := cfg.CacheOptions(); got.Backend != "redis" || got.Redis.DB != 2 {
		t.Errorf("CacheOptions() = %+v", got)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		code perrors.Code
	}{
		{"bad toml", "[cache\n", perrors.ErrCodeInvalidConfig},
		{"unknown key", "[cache]\ncolour = \"red\"\n", perrors.ErrCodeInvalidConfig},
		{"bad backend", "[cache]\nbackend = \"memcached\"\n", perrors.ErrCodeInvalidConfig},
		{"bad duration", "[cache]\nttl = \"soon\"\n", perrors.ErrCodeInvalidConfig},
		{"bad term", "[codec]\nlayer_term = \"has layer\"\n", perrors.ErrCodeInvalidConfig},
		{"no workers", "[batch]\nworkers = 0\n", perrors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if !perrors.Is(err, tt.code) {
				t.Errorf("Load() error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if !perrors.Is(err, perrors.ErrCodeFileNotFound) {
		t.Errorf("explicit missing file: %v", err)
	}

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("default missing file: %v", err)
	}
	if cfg.Codec.LayerTerm != Default().Codec.LayerTerm {
		t.Errorf("defaults not applied: %+v", cfg.Codec)
	}
}

func TestPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/custom-config")
	t.Setenv("XDG_CACHE_HOME", "/tmp/custom-cache")

	p, err := Path()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join("/tmp/custom-config", AppName, "config.toml"); p != want {
		t.Errorf("Path() = %q, want %q", p, want)
	}

	dir, err := CacheDir()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join("/tmp/custom-cache", AppName); dir != want {
		t.Errorf("CacheDir() = %q, want %q", dir, want)
	}
}

func TestCacheDirDefault(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")
	dir, err := CacheDir()
	if err != nil {
		t.Fatal(err)
	}
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, ".cache", AppName); dir != want {
		t.Errorf("CacheDir() = %q, want %q", dir, want)
	}
	if !strings.HasSuffix(dir, AppName) {
		t.Errorf("CacheDir() = %q, should end with %q", dir, AppName)
	}
}

func TestKeyerScope(t *testing.T) {
	opts := cache.ResultKeyOpts{Kind: cache.KindForest}
	plain := Default().Keyer().ResultKey("abc", opts)

	cfg := Default()
	cfg.Cache.Scope = "dataset-a"
	scoped := cfg.Keyer().ResultKey("abc", opts)
	if want := "dataset-a:" + plain; scoped != want {
		t.Errorf("scoped key = %q, want %q", scoped, want)
	}
}
