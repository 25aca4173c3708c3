package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	errs "github.com/matzehuels/blockstack/pkg/errors"
)

// DefaultPostgresTable is the table used when none is configured.
const DefaultPostgresTable = "blockstack_saves"

// PostgresConfig configures a PostgresStore.
type PostgresConfig struct {
	DSN     string
	Table   string
	Connect ConnectOptions
}

// PostgresStore keeps each key as one row. The table is created on first use.
type PostgresStore struct {
	pool  *pgxpool.Pool
	table string // sanitized identifier
}

// NewPostgresStore opens a connection pool, pings it and ensures the table exists.
func NewPostgresStore(ctx context.Context, cfg PostgresConfig) (*PostgresStore, error) {
	if cfg.DSN == "" {
		return nil, errs.New(errs.ErrCodeInvalidInput, "postgres store needs a DSN")
	}
	if cfg.Table == "" {
		cfg.Table = DefaultPostgresTable
	}

	pcfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "parse postgres dsn")
	}
	pcfg.MaxConns = 4
	pcfg.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, unavailable(BackendPostgres, err)
	}
	if err := retry(ctx, cfg.Connect, pool.Ping); err != nil {
		pool.Close()
		return nil, unavailable(BackendPostgres, err)
	}

	s := &PostgresStore{pool: pool, table: pgx.Identifier{cfg.Table}.Sanitize()}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS ` + s.table + ` (
			key        TEXT PRIMARY KEY,
			data       BYTEA NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("create table %s: %w", s.table, err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context, key string) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	query := `SELECT data FROM ` + s.table + ` WHERE key = $1`
	var data []byte
	err := s.pool.QueryRow(ctx, query, key).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", key, err)
	}
	return data, nil
}

func (s *PostgresStore) Save(ctx context.Context, key string, data []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	query := `
		INSERT INTO ` + s.table + ` (key, data, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data, updated_at = now()
	`
	if _, err := s.pool.Exec(ctx, query, key, data); err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	query := `DELETE FROM ` + s.table + ` WHERE key = $1`
	if _, err := s.pool.Exec(ctx, query, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

var _ Store = (*PostgresStore)(nil)
