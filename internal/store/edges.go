package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rcliao/hippo/internal/model"
)

// StoreEdge inserts an edge into the memory graph. The (source, target)
// pair is the primary key and insertion uses INSERT OR IGNORE, so storing
// an edge that already exists is a no-op: the first write wins and the
// stored similarity is never overwritten.
func (s *SQLiteStore) StoreEdge(ctx context.Context, p EdgeParams) error {
	if p.SourceHash == "" || p.TargetHash == "" {
		return fmt.Errorf("edge requires source and target hashes")
	}
	if p.ConnectionTypes == "" {
		p.ConnectionTypes = "consolidation"
	}
	if p.RelationshipType == "" {
		p.RelationshipType = "related"
	}

	metaJSON := "{}"
	if len(p.Metadata) > 0 {
		b, err := json.Marshal(p.Metadata)
		if err != nil {
			return fmt.Errorf("marshal edge metadata: %w", err)
		}
		metaJSON = string(b)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO memory_graph
		 (source_hash, target_hash, similarity, connection_types, relationship_type, metadata, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.SourceHash, p.TargetHash, p.Similarity, p.ConnectionTypes, p.RelationshipType, metaJSON, now)
	return mapErr(err)
}

// EdgesFor returns all edges where hash is the source or the target.
func (s *SQLiteStore) EdgesFor(ctx context.Context, hash string) ([]model.Edge, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source_hash, target_hash, similarity, connection_types, relationship_type, metadata, created_at
		 FROM memory_graph WHERE source_hash = ? OR target_hash = ?`, hash, hash)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var edges []model.Edge
	for rows.Next() {
		e, err := scanEdge(rows)
		if err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

func scanEdge(rows *sql.Rows) (model.Edge, error) {
	var e model.Edge
	var metaJSON, createdAt string
	err := rows.Scan(&e.SourceHash, &e.TargetHash, &e.Similarity,
		&e.ConnectionTypes, &e.RelationshipType, &metaJSON, &createdAt)
	if err != nil {
		return e, err
	}
	e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	if metaJSON != "" && metaJSON != "{}" {
		json.Unmarshal([]byte(metaJSON), &e.Metadata)
	}
	return e, nil
}
