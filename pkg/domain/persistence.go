package domain

import "context"

// RunStore is the minimal abstraction over durable run-record backends.
type RunStore interface {
	// SaveRun persists a run record. Records are immutable; saving an
	// existing ID is an error.
	SaveRun(ctx context.Context, rec RunRecord) error
	// GetRun returns the record with the given ID when present.
	GetRun(ctx context.Context, id string) (RunRecord, bool, error)
	// ListRuns returns all records ordered by creation time ascending.
	ListRuns(ctx context.Context) ([]RunRecord, error)
	// Close releases backend resources.
	Close() error
}
