// Package store provides the memory storage interface and SQLite implementation.
package store

import (
	"context"

	"github.com/rcliao/hippo/internal/model"
)

// EdgeParams holds parameters for inserting a graph edge.
type EdgeParams struct {
	SourceHash       string
	TargetHash       string
	Similarity       float64
	ConnectionTypes  string // defaults to "consolidation"
	RelationshipType string // defaults to "related"
	Metadata         map[string]any
}

// Stats holds store-level statistics.
type Stats struct {
	DBPath         string `json:"db_path"`
	DBSizeBytes    int64  `json:"db_size_bytes"`
	TotalMemories  int    `json:"total_memories"`
	ActiveMemories int    `json:"active_memories"`
	EdgeCount      int    `json:"edge_count"`
}

// Store defines the memory storage interface.
type Store interface {
	// StoreMemory inserts a new record and returns its row ID.
	// Returns *DuplicateContentError if the content hash already exists,
	// including on soft-deleted rows.
	StoreMemory(ctx context.Context, m *model.Memory) (int64, error)

	// GetByHash returns the live record with the given content hash,
	// or nil if absent or soft-deleted. Bumps the access counter.
	GetByHash(ctx context.Context, hash string) (*model.Memory, error)

	// GetByHashAny returns the record regardless of deletion state,
	// without touching the access counter. Audit/undo path.
	GetByHashAny(ctx context.Context, hash string) (*model.Memory, error)

	// GetAll returns live records ordered by creation time descending.
	GetAll(ctx context.Context, limit, offset int) ([]model.Memory, error)

	// SearchByTag returns live records whose tag string contains tag as
	// a substring. Matches inside tag names, not whole-tag boundaries;
	// callers depend on the loose matching.
	SearchByTag(ctx context.Context, tag string) ([]model.Memory, error)

	// UpdateTags replaces the tag set and bumps updated_at.
	UpdateTags(ctx context.Context, hash string, tags []string) error

	// SoftDelete marks the record deleted. Already-deleted and unknown
	// hashes are harmless no-ops.
	SoftDelete(ctx context.Context, hash string) error

	// StoreEdge inserts a graph edge. Inserting an existing
	// (source, target) pair is a no-op: first write wins.
	StoreEdge(ctx context.Context, p EdgeParams) error

	// EdgesFor returns all edges touching the given hash.
	EdgesFor(ctx context.Context, hash string) ([]model.Edge, error)

	// Stats returns store-level statistics.
	Stats(ctx context.Context) (*Stats, error)

	// GetMeta and SetMeta read and write store-level metadata keys.
	GetMeta(ctx context.Context, key string) (string, error)
	SetMeta(ctx context.Context, key, value string) error

	// Close closes the store.
	Close() error
}
