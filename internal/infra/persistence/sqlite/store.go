// Package sqlite implements a durable RunStore on an embedded SQLite file.
// Run records are immutable, so each is written once as a JSON payload row.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"psephos/internal/infra/persistence/memory"
	"psephos/pkg/domain"
)

// Compile-time contract assertion.
var _ domain.RunStore = (*Store)(nil)

// Store persists run records to a single SQLite table while serving reads
// from an embedded in-memory store hydrated at open.
type Store struct {
	*memory.Store
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// NewStore opens (or creates) a SQLite-backed run store at path.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = "psephos.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("create runs table: %w", err)
	}
	s := &Store{Store: memory.NewStore(), db: db, path: path}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	rows, err := s.db.Query(`SELECT payload FROM runs`)
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
	if _, err := s.db.ExecContext(ctx, `INSERT INTO runs (id, payload) VALUES (?, ?)`, rec.ID, payload); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }
