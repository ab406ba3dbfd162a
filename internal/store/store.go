// internal/store/store.go
package store

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no room is stored under the id.
	ErrNotFound = errors.New("room not found")
	// ErrVersionConflict is returned by PutIfVersion when the stored
	// snapshot is not the one the caller read.
	ErrVersionConflict = errors.New("room was modified concurrently")
)

// Versioned is a state snapshot carrying a monotonic version.
type Versioned interface {
	StateVersion() int64
}

// Store keeps room snapshots keyed by room id. Put is last-write-wins;
// PutIfVersion only writes when the stored version equals expected (a
// missing room counts as version 0).
type Store[T Versioned] interface {
	Get(ctx context.Context, roomID string) (T, error)
	Put(ctx context.Context, roomID string, state T) error
	PutIfVersion(ctx context.Context, roomID string, state T, expected int64) error
	Delete(ctx context.Context, roomID string) error
	Exists(ctx context.Context, roomID string) (bool, error)
}
