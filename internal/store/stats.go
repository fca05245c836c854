package store

import (
	"context"
	"os"
)

// Stats returns store-level statistics: record counts, graph edge count,
// and the database file size on disk.
func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{DBPath: s.dbPath}

	if info, err := os.Stat(s.dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM memories`).Scan(&st.TotalMemories); err != nil {
		return nil, mapErr(err)
	}
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM memories WHERE deleted_at IS NULL`).Scan(&st.ActiveMemories); err != nil {
		return nil, mapErr(err)
	}
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM memory_graph`).Scan(&st.EdgeCount); err != nil {
		return nil, mapErr(err)
	}
	return st, nil
}
