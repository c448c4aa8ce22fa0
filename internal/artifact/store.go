// Package artifact re-exports the artifact-store abstractions for stable
// imports and provides environment-driven driver selection. Only this
// package may wrap the infra-backed implementations; other packages depend
// on the artifact.Store interface.
package artifact

import "psephos/internal/artifact/core"

type (
	// Driver identifies an artifact backend driver.
	Driver = core.Driver
	// Info describes a published artifact.
	Info = core.Info
	// Store is the interface for artifact storage backends.
	Store = core.Store
)

const (
	// DriverFilesystem is the local filesystem driver.
	DriverFilesystem = core.DriverFilesystem
	// DriverS3 is the S3-compatible driver.
	DriverS3 = core.DriverS3
	// DriverMemory is the in-memory test driver.
	DriverMemory = core.DriverMemory
)

// ErrUnsupported indicates an operation isn't supported by a driver.
var ErrUnsupported = core.ErrUnsupported
