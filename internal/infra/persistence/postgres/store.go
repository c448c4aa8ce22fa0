// Package postgres implements a durable RunStore on PostgreSQL, mirroring
// the sqlite driver's append-once JSON payload scheme.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"psephos/internal/infra/persistence/memory"
	"psephos/pkg/domain"
)

// Compile-time contract assertion.
var _ domain.RunStore = (*Store)(nil)

const (
	driverName = "pgx"
	defaultDSN = "postgres://localhost/psephos?sslmode=disable"
)

// Store persists run records to Postgres while serving reads from an
// embedded in-memory store hydrated at open.
type Store struct {
	*memory.Store
	db *sql.DB
	mu sync.Mutex
}

// NewStore opens a Postgres-backed run store using the provided DSN
// (falls back to a local default), ensures the runs table exists, and
// hydrates from any existing rows.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		payload JSONB NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("create runs table: %w", err)
	}
	s := &Store{Store: memory.NewStore(), db: db}
	if err := s.load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM runs`)
	if err != nil {
		return fmt.Errorf("select runs: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var recs []domain.RunRecord
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return fmt.Errorf("scan run: %w", err)
		}
		var rec domain.RunRecord
		if err := json.Unmarshal(payload, &rec); err != nil {
			return fmt.Errorf("decode run: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate runs: %w", err)
	}
	s.Import(recs)
	return nil
}

// SaveRun stores the record in memory and appends it to the backing table.
func (s *Store) SaveRun(ctx context.Context, rec domain.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.Store.SaveRun(ctx, rec); err != nil {
		return err
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode run: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `INSERT INTO runs (id, payload) VALUES ($1, $2)`, rec.ID, payload); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Close closes the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }
