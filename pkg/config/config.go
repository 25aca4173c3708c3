// Package config loads blockstack's TOML configuration.
//
// The file lives at $XDG_CONFIG_HOME/blockstack/config.toml (falling back to
// ~/.config/blockstack/config.toml). Every field is optional:
//
//	language = "python"
//	palette = "~/blocks.toml"
//
//	[store]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//
//	[workspace]
//	width = 1600
//	height = 900
//
//	[metrics]
//	textfile = "/var/lib/node_exporter/blockstack.prom"
//
// A few environment variables override the file; see [Config.ApplyEnv].
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/blockstack/pkg/codegen"
	"github.com/matzehuels/blockstack/pkg/errors"
	"github.com/matzehuels/blockstack/pkg/store"
)

const appName = "blockstack"

// Config is the full configuration.
type Config struct {
	// Language is the default code generation language.
	Language string `toml:"language"`
	// Palette is an optional palette file replacing the built-in blocks
	// when no saved project exists.
	Palette string `toml:"palette"`

	Store     Store     `toml:"store"`
	Workspace Workspace `toml:"workspace"`
	Metrics   Metrics   `toml:"metrics"`
}

// Store configures persistence.
type Store struct {
	Backend string `toml:"backend" validate:"omitempty,oneof=file memory redis mongo postgres"`
	Dir     string `toml:"dir"`
	Key     string `toml:"key"`

	RedisAddr     string `toml:"redis_addr" validate:"required_if=Backend redis"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db" validate:"gte=0"`

	MongoURI        string `toml:"mongo_uri" validate:"required_if=Backend mongo"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`

	PostgresDSN   string `toml:"postgres_dsn" validate:"required_if=Backend postgres"`
	PostgresTable string `toml:"postgres_table"`
}

// Workspace sets the drawing surface used for drag resolution.
type Workspace struct {
	Width  float64 `toml:"width" validate:"gt=0"`
	Height float64 `toml:"height" validate:"gt=0"`
}

// Metrics configures the Prometheus textfile export.
type Metrics struct {
	// Textfile is written after every command when set.
	Textfile string `toml:"textfile"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Language:  codegen.DefaultLanguage,
		Store:     Store{Backend: string(store.BackendFile), Key: store.DefaultKey},
		Workspace: Workspace{Width: 1200, Height: 800},
	}
}

// Path returns the default config file location.
func Path() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads the file at path on top of [Default]. A missing file is not an
// error unless required is set.
func Load(path string, required bool) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if os.IsNotExist(err) {
			if required {
				return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "load config")
			}
			return cfg, nil
		}
		return cfg, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, errors.New(errors.ErrCodeInvalidInput, "unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}
	cfg.Palette = expandHome(cfg.Palette)
	cfg.Store.Dir = expandHome(cfg.Store.Dir)
	return cfg, nil
}

// Environment variables read by ApplyEnv.
const (
	EnvStore       = "BLOCKSTACK_STORE"
	EnvRedisAddr   = "BLOCKSTACK_REDIS_ADDR"
	EnvMongoURI    = "BLOCKSTACK_MONGO_URI"
	EnvPostgresDSN = "BLOCKSTACK_POSTGRES_DSN"
	EnvLanguage    = "BLOCKSTACK_LANGUAGE"
)

// ApplyEnv overrides fields from the environment. lookup is usually
// os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	set := func(dst *string, key string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	set(&c.Store.Backend, EnvStore)
	set(&c.Store.RedisAddr, EnvRedisAddr)
	set(&c.Store.MongoURI, EnvMongoURI)
	set(&c.Store.PostgresDSN, EnvPostgresDSN)
	set(&c.Language, EnvLanguage)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field values and cross-field requirements.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid config")
	}
	if err := errors.ValidateLanguage(c.Language); err != nil {
		return err
	}
	if c.Store.Key != "" {
		if err := errors.ValidateKey(c.Store.Key); err != nil {
			return err
		}
	}
	return nil
}

// StoreConfig converts the store section for [store.Open].
func (c Config) StoreConfig() store.Config {
	return store.Config{
		Backend:         store.Backend(c.Store.Backend),
		Dir:             c.Store.Dir,
		RedisAddr:       c.Store.RedisAddr,
		RedisPassword:   c.Store.RedisPassword,
		RedisDB:         c.Store.RedisDB,
		MongoURI:        c.Store.MongoURI,
		MongoDatabase:   c.Store.MongoDatabase,
		MongoCollection: c.Store.MongoCollection,
		PostgresDSN:     c.Store.PostgresDSN,
		PostgresTable:   c.Store.PostgresTable,
	}
}

// StoreKey returns the configured key or [store.DefaultKey].
func (c Config) StoreKey() string {
	if c.Store.Key == "" {
		return store.DefaultKey
	}
	return c.Store.Key
}

// String renders the configuration as TOML, with secrets masked.
func (c Config) String() string {
	masked := c
	if masked.Store.RedisPassword != "" {
		masked.Store.RedisPassword = "***"
	}
	var sb strings.Builder
	if err := toml.NewEncoder(&sb).Encode(masked); err != nil {
		return "config: " + strconv.Quote(err.Error())
	}
	return sb.String()
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
