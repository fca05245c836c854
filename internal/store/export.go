package store

import (
	"context"

	"github.com/rcliao/hippo/internal/model"
)

// ExportAll returns every record including soft-deleted rows, oldest first,
// optionally filtered by memory type. Soft-deleted rows are included because
// the export is an audit trail, not a view of the live set.
func (s *SQLiteStore) ExportAll(ctx context.Context, memoryType string) ([]model.Memory, error) {
	query := selectCols + ` FROM memories`
	var args []any
	if memoryType != "" {
		query += ` WHERE memory_type = ?`
		args = append(args, memoryType)
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()
	return collectMemories(rows)
}
