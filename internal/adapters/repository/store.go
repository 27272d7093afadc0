// Package repository implements the snapshot store: key-value persistence
// of per-employee evaluation aggregates as JSON payloads.
package repository

import (
	"context"

	"github.com/evalrank/evalrank/internal/domain/ranking"
)

// Store provides read/write access to persisted evaluation aggregates.
// A Load returns the whole dataset; consumers fully replace their in-memory
// state with it rather than merging.
type Store interface {
	// Load reads every persisted aggregate keyed by staff id.
	// An empty map with a nil error means the source is absent, which is
	// not an error: callers fall back to the placeholder dataset.
	// A payload that fails to parse or validate yields ErrMalformedSource.
	Load(ctx context.Context) (map[string]ranking.SourceRecord, error)

	// Save upserts one employee's aggregate and advances the revision.
	Save(ctx context.Context, staffID string, rec ranking.SourceRecord) error

	// Revision returns a monotonically increasing marker that changes
	// whenever Save writes. Pollers reload only when it advances.
	Revision(ctx context.Context) (int64, error)

	// Close releases the underlying resources.
	Close() error
}
