package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/blockstack/pkg/errors"
	"github.com/matzehuels/blockstack/pkg/store"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if cfg.Language != "javascript" {
		t.Errorf("Language = %q, want javascript", cfg.Language)
	}
	if cfg.StoreKey() != store.DefaultKey {
		t.Errorf("StoreKey() = %q, want %q", cfg.StoreKey(), store.DefaultKey)
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
language = "python"

[store]
backend = "redis"
redis_addr = "localhost:6379"
redis_db = 2

[workspace]
width = 1600
`)
	cfg, err := Load(path, true)
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	if cfg.Language != "python" {
		t.Errorf("Language = %q, want python", cfg.Language)
	}
	if cfg.Workspace.Width != 1600 || cfg.Workspace.Height != 800 {
		t.Errorf("Workspace = %+v, want 1600x800", cfg.Workspace)
	}
	sc := cfg.StoreConfig()
	if sc.Backend != store.BackendRedis || sc.RedisAddr != "localhost:6379" || sc.RedisDB != 2 {
		t.Errorf("StoreConfig() = %+v", sc)
	}
	if cfg.StoreKey() != store.DefaultKey {
		t.Errorf("StoreKey() = %q", cfg.StoreKey())
	}
}

func TestLoadMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "none.toml")

	cfg, err := Load(path, false)
	if err != nil {
		t.Fatalf("Load(optional) = %v", err)
	}
	if cfg.Language != Default().Language {
		t.Errorf("Load(optional) did not return defaults: %+v", cfg)
	}

	if _, err := Load(path, true); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load(required) error = %v, want %s", err, errors.ErrCodeFileNotFound)
	}
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
		code errors.Code
	}{
		{"syntax", `language = `, errors.ErrCodeInvalidFormat},
		{"unknown key", "langauge = \"c\"\n", errors.ErrCodeInvalidInput},
		{"unknown section key", "[store]\nbakend = \"file\"\n", errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body), true)
			if !errors.Is(err, tt.code) {
				t.Errorf("Load() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		code   errors.Code
	}{
		{"unknown backend", func(c *Config) { c.Store.Backend = "sqlite" }, errors.ErrCodeInvalidInput},
		{"redis without addr", func(c *Config) { c.Store.Backend = "redis" }, errors.ErrCodeInvalidInput},
		{"mongo without uri", func(c *Config) { c.Store.Backend = "mongo" }, errors.ErrCodeInvalidInput},
		{"postgres without dsn", func(c *Config) { c.Store.Backend = "postgres" }, errors.ErrCodeInvalidInput},
		{"zero width", func(c *Config) { c.Workspace.Width = 0 }, errors.ErrCodeInvalidInput},
		{"bad language", func(c *Config) { c.Language = "Py thon" }, errors.ErrCodeInvalidLanguage},
		{"bad key", func(c *Config) { c.Store.Key = "../x" }, errors.ErrCodeInvalidKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.code) {
				t.Errorf("Validate() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvStore:       "postgres",
		EnvPostgresDSN: "postgres://localhost/blocks",
		EnvLanguage:    "",
	}
	cfg := Default()
	cfg.ApplyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})

	if cfg.Store.Backend != "postgres" || cfg.Store.PostgresDSN != "postgres://localhost/blocks" {
		t.Errorf("Store = %+v", cfg.Store)
	}
	if cfg.Language != "javascript" {
		t.Errorf("Language = %q, empty env value should not override", cfg.Language)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	got, err := Path()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join("/tmp/xdg", "blockstack", "config.toml"); got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}
}

func TestStringMasksSecrets(t *testing.T) {
	cfg := Default()
	cfg.Store.RedisPassword = "hunter2"
	s := cfg.String()
	if strings.Contains(s, "hunter2") {
		t.Errorf("String() leaks the redis password:\n%s", s)
	}
	if !strings.Contains(s, `language = "javascript"`) {
		t.Errorf("String() = %s", s)
	}
}
