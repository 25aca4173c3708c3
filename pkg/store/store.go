// Package store persists the saved project state.
//
// The state is a single opaque blob kept under one well-known key
// ([DefaultKey]). Backends differ only in where the blob lives:
//
//   - file: one JSON file per key in a directory (CLI default)
//   - memory: process-local, for tests and dry runs
//   - redis: one string value per key
//   - mongo: one document per key
//   - postgres: one row per key
//
// Use [Open] to construct a backend from a [Config].
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	errs "github.com/matzehuels/blockstack/pkg/errors"
)

// DefaultKey is the key the project state is saved under.
const DefaultKey = "blockstack.save"

// ErrNotFound is returned by Load when nothing is stored under the key.
var ErrNotFound = errors.New("not found")

// Store is the interface for persistence backends.
type Store interface {
	// Load returns the blob stored under key, or ErrNotFound.
	Load(ctx context.Context, key string) ([]byte, error)

	// Save stores data under key, replacing any previous value.
	Save(ctx context.Context, key string, data []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend's resources.
	Close() error
}

// Backend names a store implementation.
type Backend string

const (
	BackendFile     Backend = "file"
	BackendMemory   Backend = "memory"
	BackendRedis    Backend = "redis"
	BackendMongo    Backend = "mongo"
	BackendPostgres Backend = "postgres"
)

// Backends lists every backend name.
var Backends = []Backend{BackendFile, BackendMemory, BackendRedis, BackendMongo, BackendPostgres}

// Config selects and configures a backend. Only the fields of the chosen
// backend are read.
type Config struct {
	Backend Backend

	// Dir is the file backend's directory. Empty means the user config dir.
	Dir string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	MongoURI        string
	MongoDatabase   string
	MongoCollection string

	PostgresDSN   string
	PostgresTable string

	// ConnectTimeout bounds each connection attempt of network backends.
	ConnectTimeout time.Duration
	// ConnectAttempts is how often a network backend tries to connect.
	ConnectAttempts int
}

// Open constructs the backend named by cfg.Backend. An empty name selects
// the file backend.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch Backend(strings.ToLower(string(cfg.Backend))) {
	case BackendFile, "":
		return NewFileStore(cfg.Dir)
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendRedis:
		return NewRedisStore(ctx, RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Connect:  cfg.connect(),
		})
	case BackendMongo:
		return NewMongoStore(ctx, MongoConfig{
			URI:        cfg.MongoURI,
			Database:   cfg.MongoDatabase,
			Collection: cfg.MongoCollection,
			Connect:    cfg.connect(),
		})
	case BackendPostgres:
		return NewPostgresStore(ctx, PostgresConfig{
			DSN:     cfg.PostgresDSN,
			Table:   cfg.PostgresTable,
			Connect: cfg.connect(),
		})
	}
	return nil, errs.New(errs.ErrCodeInvalidInput, "unknown store backend %q (want one of: %s)", cfg.Backend, backendList())
}

func backendList() string {
	names := make([]string, len(Backends))
	for i, b := range Backends {
		names[i] = string(b)
	}
	return strings.Join(names, ", ")
}

func checkKey(key string) error {
	return errs.ValidateKey(key)
}

// =============================================================================
// Connecting
// =============================================================================

// ConnectOptions bounds how network backends reach their server.
type ConnectOptions struct {
	Timeout  time.Duration
	Attempts int
	Backoff  time.Duration
}

func (c Config) connect() ConnectOptions {
	return ConnectOptions{Timeout: c.ConnectTimeout, Attempts: c.ConnectAttempts}
}

func (o ConnectOptions) withDefaults() ConnectOptions {
	if o.Timeout <= 0 {
		o.Timeout = 5 * time.Second
	}
	if o.Attempts <= 0 {
		o.Attempts = 3
	}
	if o.Backoff <= 0 {
		o.Backoff = 500 * time.Millisecond
	}
	return o
}

// retry calls fn until it succeeds, the attempts run out or ctx ends. Each
// call gets its own timeout; the delay doubles after every failure.
func retry(ctx context.Context, opts ConnectOptions, fn func(ctx context.Context) error) error {
	opts = opts.withDefaults()
	delay := opts.Backoff
	var lastErr error

	for i := 0; i < opts.Attempts; i++ {
		attemptCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
		lastErr = fn(attemptCtx)
		cancel()
		if lastErr == nil {
			return nil
		}

		if i < opts.Attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return fmt.Errorf("after %d attempts: %w", opts.Attempts, lastErr)
}

func unavailable(backend Backend, err error) error {
	return errs.Wrap(errs.ErrCodeStoreUnavailable, err, "connect %s store", backend)
}
