// Package config loads blockdrop settings from a TOML file.
//
// Settings are resolved in layers: built-in defaults, then the config file,
// then command-line flags. Only the first two live here; the CLI applies its
// flags on top of the returned Config.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/blockdrop/pkg/batch"
	"github.com/matzehuels/blockdrop/pkg/cache"
	"github.com/matzehuels/blockdrop/pkg/errors"
	"github.com/matzehuels/blockdrop/pkg/history"
	"github.com/matzehuels/blockdrop/pkg/scenario"
)

// DefaultFile is the config file looked up in the working directory when no
// path is given.
const DefaultFile = "blockdrop.toml"

// Config is the decoded config file.
type Config struct {
	Input     string        `toml:"input"`
	Output    string        `toml:"output"`
	Workers   int           `toml:"workers"`
	OnInvalid string        `toml:"on_invalid"`
	Cache     CacheConfig   `toml:"cache"`
	History   HistoryConfig `toml:"history"`
	Server    ServerConfig  `toml:"server"`
}

// CacheConfig selects and configures the result cache.
type CacheConfig struct {
	Backend   string   `toml:"backend"`
	Dir       string   `toml:"dir"`
	TTL       Duration `toml:"ttl"`
	RedisAddr string   `toml:"redis_addr"`
	RedisDB   int      `toml:"redis_db"`
}

// HistoryConfig selects and configures the run history store.
type HistoryConfig struct {
	Backend    string `toml:"backend"`
	Dir        string `toml:"dir"`
	MongoURI   string `toml:"mongo_uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr         string   `toml:"addr"`
	ReadTimeout  Duration `toml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout"`
}

// Duration is a time.Duration written as a string like "24h" in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Input:     batch.DefaultInput,
		Output:    batch.DefaultOutput,
		Workers:   batch.DefaultWorkers,
		OnInvalid: scenario.PolicyFail.String(),
		Cache: CacheConfig{
			Backend:   cache.BackendNone,
			TTL:       Duration{cache.TTLHeight},
			RedisAddr: "localhost:6379",
		},
		History: HistoryConfig{
			Backend:    history.BackendNone,
			Database:   history.DefaultDatabase,
			Collection: history.DefaultCollection,
		},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  Duration{15 * time.Second},
			WriteTimeout: Duration{60 * time.Second},
		},
	}
}

// Load reads the config file at path on top of the defaults. An empty path
// looks for DefaultFile in the working directory and silently falls back to
// the defaults when it does not exist; an explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		if os.IsNotExist(err) {
			return cfg, errors.New(errors.ErrCodeFileNotFound, "config file '%s' not found", path)
		}
		return cfg, errors.Wrap(errors.ErrCodeIO, err, "read config %s", path)
	}

	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, errors.New(errors.ErrCodeInvalidConfig, "unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}

	base := filepath.Dir(path)
	if md.IsDefined("input") {
		cfg.Input = resolve(base, cfg.Input)
	}
	if md.IsDefined("output") {
		cfg.Output = resolve(base, cfg.Output)
	}
	cfg.Cache.Dir = resolve(base, cfg.Cache.Dir)
	cfg.History.Dir = resolve(base, cfg.History.Dir)
	return cfg, nil
}

// resolve joins a relative, non-empty path from the config file with the
// file's directory.
func resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// Validate reports the first invalid setting as an INVALID_CONFIG error.
func (c Config) Validate() error {
	if c.Workers < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "workers must be at least 1, got %d", c.Workers)
	}
	if _, err := scenario.ParsePolicy(c.OnInvalid); err != nil {
		return err
	}
	switch strings.ToLower(c.Cache.Backend) {
	case "", cache.BackendNone, cache.BackendFile:
	case cache.BackendRedis:
		if c.Cache.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.redis_addr is required for the redis backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.ttl must not be negative")
	}
	switch strings.ToLower(c.History.Backend) {
	case "", history.BackendNone, history.BackendFile:
	case history.BackendMongo:
		if c.History.MongoURI == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "history.mongo_uri is required for the mongo backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown history backend %q", c.History.Backend)
	}
	return nil
}

// Policy returns the parsed invalid-token policy.
func (c Config) Policy() scenario.Policy {
	p, err := scenario.ParsePolicy(c.OnInvalid)
	if err != nil {
		return scenario.PolicyFail
	}
	return p
}

// CacheOptions converts the cache section for cache.Open.
func (c Config) CacheOptions() cache.Options {
	return cache.Options{
		Backend: c.Cache.Backend,
		Dir:     c.Cache.Dir,
		Redis: cache.RedisConfig{
			Addr: c.Cache.RedisAddr,
			DB:   c.Cache.RedisDB,
		},
	}
}

// HistoryOptions converts the history section for history.Open.
func (c Config) HistoryOptions() history.Options {
	return history.Options{
		Backend: c.History.Backend,
		Dir:     c.History.Dir,
		Mongo: history.MongoConfig{
			URI:        c.History.MongoURI,
			Database:   c.History.Database,
			Collection: c.History.Collection,
		},
	}
}
