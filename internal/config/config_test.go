package config

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/matzehuels/blockdrop/pkg/errors"
	"github.com/matzehuels/blockdrop/pkg/scenario"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "blockdrop.toml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Input != "Challenge_Input.txt" || cfg.Output != "Output.txt" {
		t.Errorf("default paths = %q, %q", cfg.Input, cfg.Output)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
	if cfg.Policy() != scenario.PolicyFail {
		t.Error("default policy should be fail")
	}
}

func TestLoadMissingDefaultFile(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}
	if cfg.Workers != 1 {
		t.Errorf("Workers = %d, want 1", cfg.Workers)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
input = "scenarios.txt"
workers = 4
on_invalid = "skip"

[cache]
backend = "file"
dir = "cache"
ttl = "90m"

[history]
backend = "mongo"
mongo_uri = "mongodb://localhost:27017"

[server]
addr = ":9000"
read_timeout = "5s"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}

	if want := filepath.Join(filepath.Dir(path), "scenarios.txt"); cfg.Input != want {
		t.Errorf("Input = %q, want %q", cfg.Input, want)
	}
	if cfg.Output != "Output.txt" {
		t.Errorf("Output = %q, want built-in default left unresolved", cfg.Output)
	}
	if cfg.Workers != 4 || cfg.Policy() != scenario.PolicySkip {
		t.Errorf("Workers/Policy = %d/%v", cfg.Workers, cfg.Policy())
	}
	if cfg.Cache.TTL.Duration != 90*time.Minute {
		t.Errorf("TTL = %v", cfg.Cache.TTL)
	}
	if want := filepath.Join(filepath.Dir(path), "cache"); cfg.Cache.Dir != want {
		t.Errorf("Cache.Dir = %q, want %q", cfg.Cache.Dir, want)
	}
	if cfg.History.Database != "blockdrop" || cfg.History.Collection != "runs" {
		t.Errorf("history defaults lost: %+v", cfg.History)
	}
	if cfg.Server.Addr != ":9000" || cfg.Server.ReadTimeout.Duration != 5*time.Second {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Server.WriteTimeout.Duration != 60*time.Second {
		t.Errorf("WriteTimeout default lost: %v", cfg.Server.WriteTimeout)
	}

	opts := cfg.CacheOptions()
	if opts.Backend != "file" || opts.Dir != cfg.Cache.Dir {
		t.Errorf("CacheOptions() = %+v", opts)
	}
	if h := cfg.HistoryOptions(); h.Mongo.URI != "mongodb://localhost:27017" {
		t.Errorf("HistoryOptions() = %+v", h)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"syntax", `workers = `},
		{"unknown key", `colour = "red"`},
		{"bad duration", "[cache]\nttl = \"soon\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("error = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero workers", func(c *Config) { c.Workers = 0 }},
		{"bad policy", func(c *Config) { c.OnInvalid = "ignore" }},
		{"bad cache backend", func(c *Config) { c.Cache.Backend = "memcached" }},
		{"redis without addr", func(c *Config) { c.Cache.Backend = "redis"; c.Cache.RedisAddr = "" }},
		{"negative ttl", func(c *Config) { c.Cache.TTL.Duration = -time.Second }},
		{"bad history backend", func(c *Config) { c.History.Backend = "s3" }},
		{"mongo without uri", func(c *Config) { c.History.Backend = "mongo" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)
			if err := cfg.Validate(); !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("Validate() = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestLoadResolvesPaths(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "heights.txt")
	path := writeConfig(t, "input = \"in/scenarios.txt\"\noutput = "+strconv.Quote(abs)+"\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if want := filepath.Join(filepath.Dir(path), "in", "scenarios.txt"); cfg.Input != want {
		t.Errorf("Input = %q, want %q", cfg.Input, want)
	}
	if cfg.Output != abs {
		t.Errorf("Output = %q, want absolute path kept as %q", cfg.Output, abs)
	}
}

func TestValidateBackendCase(t *testing.T) {
	cfg := Default()
	cfg.Cache.Backend = "File"
	cfg.History.Backend = "FILE"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, want mixed-case backends accepted", err)
	}
}
