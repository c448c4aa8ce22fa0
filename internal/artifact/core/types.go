// Package core defines the artifact-store abstractions shared by the
// backend drivers and the public facade.
package core

import (
	"context"
	"errors"
	"time"
)

// Driver identifies a concrete artifact storage backend.
type Driver string

const (
	// DriverFilesystem is the local filesystem backend (default, dev).
	DriverFilesystem Driver = "fs"
	// DriverS3 is an S3 / MinIO compatible backend.
	DriverS3 Driver = "s3"
	// DriverMemory is the in-memory backend used in tests.
	DriverMemory Driver = "memory"
)

// Info describes a published artifact.
type Info struct {
	Key         string    `json:"key"`
	Size        int64     `json:"size_bytes"`
	ContentType string    `json:"content_type,omitempty"`
	ETag        string    `json:"etag,omitempty"`
	PublishedAt time.Time `json:"published_at"`
	URL         string    `json:"url,omitempty"`
}

// Store publishes immutable run artifacts. Keys are write-once: publishing an
// existing key fails.
type Store interface {
	Put(ctx context.Context, key string, payload []byte, contentType string) (Info, error)
	Get(ctx context.Context, key string) (Info, []byte, error)
	List(ctx context.Context, prefix string) ([]Info, error)
	PresignURL(ctx context.Context, key string, expiry time.Duration) (string, error)
	Driver() Driver
}

// ErrUnsupported is returned when an optional capability is not available on
// a driver (for example pre-signed URLs on the filesystem backend).
var ErrUnsupported = errors.New("artifact: unsupported operation")
