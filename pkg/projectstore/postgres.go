package projectstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dd0wney/cluso-stockflow/pkg/project"
)

// PGStore handles project persistence using PostgreSQL
type PGStore struct {
	pool *pgxpool.Pool
	enc  project.Encoding
	in   instrument
}

// NewPGStore creates a new PostgreSQL-backed project store
func NewPGStore(ctx context.Context, cfg PostgresConfig, opts Options) (*PGStore, error) {
	if cfg.URL == "" {
		return nil, errors.New("projectstore: postgres backend needs a database URL")
	}
	config, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Connection pooling configuration
	if cfg.MaxConns > 0 {
		config.MaxConns = cfg.MaxConns
	}
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = 1 * time.Minute
	if cfg.ConnectTimeout > 0 {
		config.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	s := &PGStore{pool: pool, enc: opts.Encoding, in: newInstrument(BackendPostgres, opts)}

	// Create tables if they don't exist
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return s, nil
}

// migrate creates the necessary database tables
func (s *PGStore) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS projects (
		name TEXT PRIMARY KEY,
		encoding TEXT NOT NULL,
		body BYTEA NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);
	`

	_, err := s.pool.Exec(ctx, schema)
	return err
}

// Put inserts or replaces a project
func (s *PGStore) Put(ctx context.Context, name string, doc *project.Document) (err error) {
	start := time.Now()
	var size int
	defer func() { err = s.in.observe("put", name, start, size, err) }()

	if err := ValidateName(name); err != nil {
		return err
	}
	data, err := project.Encode(doc, s.enc)
	if err != nil {
		return err
	}
	size = len(data)

	query := `
		INSERT INTO projects (name, encoding, body, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO UPDATE
		SET encoding = EXCLUDED.encoding, body = EXCLUDED.body, updated_at = EXCLUDED.updated_at
	`
	if _, err := s.pool.Exec(ctx, query, name, s.enc.String(), data, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to store project %s: %w", name, err)
	}
	return nil
}

// Get retrieves a project by name
func (s *PGStore) Get(ctx context.Context, name string) (doc *project.Document, err error) {
	start := time.Now()
	var size int
	defer func() { err = s.in.observe("get", name, start, size, err) }()

	if err := ValidateName(name); err != nil {
		return nil, err
	}

	var data []byte
	err = s.pool.QueryRow(ctx, `SELECT body FROM projects WHERE name = $1`, name).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project %s: %w", name, err)
	}
	size = len(data)
	return decode(name, data)
}

// List returns every project sorted by name
func (s *PGStore) List(ctx context.Context) (infos []Info, err error) {
	start := time.Now()
	defer func() { err = s.in.observe("list", "", start, 0, err) }()

	rows, err := s.pool.Query(ctx, `SELECT name, octet_length(body), updated_at FROM projects ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var info Info
		if err := rows.Scan(&info.Name, &info.Size, &info.Modified); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return infos, nil
}

// Delete removes a project
func (s *PGStore) Delete(ctx context.Context, name string) (err error) {
	start := time.Now()
	defer func() { err = s.in.observe("delete", name, start, 0, err) }()

	if err := ValidateName(name); err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM projects WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("failed to delete project %s: %w", name, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return nil
}

// Ping checks database connectivity
func (s *PGStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the database connection pool
func (s *PGStore) Close() error {
	s.pool.Close()
	return nil
}
