// Package store persists maintenance progress and cached upstream lookups
// in a small SQLite database, so interrupted runs resume where they stopped.
package store

import (
	"context"
	"time"
)

// Run summarizes one maintenance task invocation.
type Run struct {
	ID       int64
	Task     string
	Started  time.Time
	Finished time.Time
	Summary  map[string]int
}

// Store defines progress and cache persistence.
type Store interface {
	// MarkSkipped records that task gave up on a station.
	MarkSkipped(ctx context.Context, task, stationID, reason string) error

	// Skipped returns the station IDs task has given up on, with reasons.
	Skipped(ctx context.Context, task string) (map[string]string, error)

	// ClearSkipped forgets every skipped station for task.
	ClearSkipped(ctx context.Context, task string) error

	// CacheGet returns a cached value and whether it was present.
	CacheGet(ctx context.Context, namespace, key string) ([]byte, bool, error)

	// CachePut stores a value, replacing any previous one.
	CachePut(ctx context.Context, namespace, key string, value []byte) error

	// AppendRun records a finished task run.
	AppendRun(ctx context.Context, run Run) error

	// Runs lists the most recent runs of task, newest first.
	Runs(ctx context.Context, task string, limit int) ([]Run, error)

	// Close releases the database.
	Close() error
}
