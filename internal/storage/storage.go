// Package storage selects a RunStore backend from the environment.
package storage

import (
	"context"
	"fmt"
	"os"

	"psephos/internal/infra/persistence/memory"
	"psephos/internal/infra/persistence/postgres"
	"psephos/internal/infra/persistence/sqlite"
	"psephos/pkg/domain"
)

// Driver identifies a concrete persistent storage implementation.
type Driver string

const (
	// DriverMemory keeps runs in process memory (tests / ephemeral).
	DriverMemory Driver = "memory"
	// DriverSQLite stores runs in an embedded sqlite file.
	DriverSQLite Driver = "sqlite"
	// DriverPostgres stores runs in a PostgreSQL server.
	DriverPostgres Driver = "postgres"
)

// OpenRunStore selects a backend using environment variables.
// Defaults to sqlite when unset.
//
//	PSEPHOS_STORAGE_DRIVER: memory|sqlite|postgres (default sqlite)
//	PSEPHOS_SQLITE_PATH: path to sqlite file (default ./psephos.db)
//	PSEPHOS_POSTGRES_DSN: postgres DSN when driver=postgres
func OpenRunStore(ctx context.Context) (domain.RunStore, error) {
	driver := os.Getenv("PSEPHOS_STORAGE_DRIVER")
	if driver == "" {
		driver = string(DriverSQLite)
	}
	switch Driver(driver) {
	case DriverMemory:
		return memory.NewStore(), nil
	case DriverSQLite:
		return sqlite.NewStore(os.Getenv("PSEPHOS_SQLITE_PATH"))
	case DriverPostgres:
		return postgres.NewStore(ctx, os.Getenv("PSEPHOS_POSTGRES_DSN"))
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}
