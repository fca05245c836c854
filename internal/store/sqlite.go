package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sqlite "modernc.org/sqlite"

	"github.com/rcliao/hippo/internal/model"
)

// busyTimeout bounds how long a writer waits for the database before the
// operation fails with StoreBusyError. Kept short so cooperating processes
// never stall each other for long.
const busyTimeout = 5 * time.Second

// SQLiteStore implements Store using SQLite. The database is opened in WAL
// mode so independent processes can read while one writes; every write is a
// short auto-committing transaction.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	dsn := fmt.Sprintf("%s?_pragma=journal_mode(wal)&_pragma=busy_timeout(%d)&_pragma=foreign_keys(on)",
		dbPath, busyTimeout.Milliseconds())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{db: db, dbPath: dbPath}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS memories (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		content_hash TEXT NOT NULL UNIQUE,
		content      TEXT NOT NULL,
		tags         TEXT NOT NULL DEFAULT '',
		memory_type  TEXT NOT NULL DEFAULT 'note',
		metadata     TEXT NOT NULL DEFAULT '{}',
		access_count INTEGER NOT NULL DEFAULT 0,
		created_at   TEXT NOT NULL,
		updated_at   TEXT NOT NULL,
		deleted_at   TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_memories_created ON memories(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_memories_deleted ON memories(deleted_at);
	CREATE INDEX IF NOT EXISTS idx_memories_type ON memories(memory_type);

	CREATE TABLE IF NOT EXISTS memory_graph (
		source_hash       TEXT NOT NULL,
		target_hash       TEXT NOT NULL,
		similarity        REAL NOT NULL,
		connection_types  TEXT NOT NULL DEFAULT 'consolidation',
		relationship_type TEXT NOT NULL DEFAULT 'related',
		metadata          TEXT NOT NULL DEFAULT '{}',
		created_at        TEXT NOT NULL,
		PRIMARY KEY (source_hash, target_hash)
	);
	CREATE INDEX IF NOT EXISTS idx_graph_target ON memory_graph(target_hash);

	CREATE TABLE IF NOT EXISTS store_meta (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO store_meta (key, value) VALUES ('schema_version', '1')`)
	return err
}

// StoreMemory inserts a new record. Timestamps and the content hash are
// assigned when unset; tags are deduplicated on write.
func (s *SQLiteStore) StoreMemory(ctx context.Context, m *model.Memory) (int64, error) {
	if m.ContentHash == "" {
		m.ContentHash = model.HashContent(m.Content)
	}
	if m.MemoryType == "" {
		m.MemoryType = model.TypeNote
	}
	now := time.Now().UTC()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	if m.UpdatedAt.IsZero() {
		m.UpdatedAt = m.CreatedAt
	}
	m.Tags = model.NormalizeTags(m.Tags)

	metaJSON := "{}"
	if len(m.Metadata) > 0 {
		b, err := json.Marshal(m.Metadata)
		if err != nil {
			return 0, fmt.Errorf("marshal metadata: %w", err)
		}
		metaJSON = string(b)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO memories (content_hash, content, tags, memory_type, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.ContentHash, m.Content, model.JoinTags(m.Tags), m.MemoryType, metaJSON,
		m.CreatedAt.Format(time.RFC3339), m.UpdatedAt.Format(time.RFC3339))
	if err != nil {
		if isConstraintErr(err) {
			return 0, &DuplicateContentError{Hash: m.ContentHash}
		}
		return 0, mapErr(fmt.Errorf("insert memory: %w", err))
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	m.ID = id
	return id, nil
}

// GetByHash returns the live record for hash, or nil if absent or deleted.
// Reading bumps the access counter used by retrieval scoring.
func (s *SQLiteStore) GetByHash(ctx context.Context, hash string) (*model.Memory, error) {
	row := s.db.QueryRowContext(ctx,
		selectCols+` FROM memories WHERE content_hash = ? AND deleted_at IS NULL`, hash)
	m, err := scanMemory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, mapErr(err)
	}

	s.db.ExecContext(ctx,
		`UPDATE memories SET access_count = access_count + 1 WHERE id = ?`, m.ID)
	return &m, nil
}

// GetByHashAny returns the record regardless of deletion state and does not
// touch the access counter.
func (s *SQLiteStore) GetByHashAny(ctx context.Context, hash string) (*model.Memory, error) {
	row := s.db.QueryRowContext(ctx,
		selectCols+` FROM memories WHERE content_hash = ?`, hash)
	m, err := scanMemory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, mapErr(err)
	}
	return &m, nil
}

// GetAll returns live records, most recent first.
func (s *SQLiteStore) GetAll(ctx context.Context, limit, offset int) ([]model.Memory, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		selectCols+` FROM memories WHERE deleted_at IS NULL
		 ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()
	return collectMemories(rows)
}

// SearchByTag returns live records whose tag string contains tag. This is a
// substring match against the delimited tag column, so "dep" matches
// "deploy"; the loose behavior is part of the contract.
func (s *SQLiteStore) SearchByTag(ctx context.Context, tag string) ([]model.Memory, error) {
	rows, err := s.db.QueryContext(ctx,
		selectCols+` FROM memories WHERE tags LIKE ? AND deleted_at IS NULL
		 ORDER BY created_at DESC, id DESC`, "%"+tag+"%")
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()
	return collectMemories(rows)
}

// UpdateTags replaces the tag set on an existing record and bumps updated_at.
func (s *SQLiteStore) UpdateTags(ctx context.Context, hash string, tags []string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.ExecContext(ctx,
		`UPDATE memories SET tags = ?, updated_at = ? WHERE content_hash = ?`,
		model.JoinTags(model.NormalizeTags(tags)), now, hash)
	if err != nil {
		return mapErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("memory not found: %s", hash)
	}
	return nil
}

// SoftDelete marks a record deleted. Deleting an already-deleted or unknown
// hash is a no-op so a merge pass can safely revisit stale candidates.
func (s *SQLiteStore) SoftDelete(ctx context.Context, hash string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx,
		`UPDATE memories SET deleted_at = ?, updated_at = ? WHERE content_hash = ? AND deleted_at IS NULL`,
		now, now, hash)
	return mapErr(err)
}

// GetMeta returns the value for a store-level metadata key, or "" if unset.
func (s *SQLiteStore) GetMeta(ctx context.Context, key string) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM store_meta WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", mapErr(err)
	}
	return v, nil
}

// SetMeta writes a store-level metadata key.
func (s *SQLiteStore) SetMeta(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO store_meta (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return mapErr(err)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const selectCols = `SELECT id, content_hash, content, tags, memory_type, metadata,
	access_count, created_at, updated_at, deleted_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanMemory(row scanner) (model.Memory, error) {
	var m model.Memory
	var tags, metaJSON, createdAt, updatedAt string
	var deletedAt sql.NullString

	err := row.Scan(&m.ID, &m.ContentHash, &m.Content, &tags, &m.MemoryType,
		&metaJSON, &m.AccessCount, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return m, err
	}

	m.Tags = model.SplitTags(tags)
	m.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	m.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	if deletedAt.Valid {
		t, _ := time.Parse(time.RFC3339, deletedAt.String)
		m.DeletedAt = &t
	}
	if metaJSON != "" && metaJSON != "{}" {
		json.Unmarshal([]byte(metaJSON), &m.Metadata)
	}
	return m, nil
}

func collectMemories(rows *sql.Rows) ([]model.Memory, error) {
	var memories []model.Memory
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, err
		}
		memories = append(memories, m)
	}
	return memories, rows.Err()
}

// isConstraintErr reports whether err is a SQLite constraint violation
// (primary result code 19, SQLITE_CONSTRAINT).
func isConstraintErr(err error) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code()&0xff == 19
}

// mapErr translates SQLite busy/locked failures (primary result codes 5 and
// 6) into StoreBusyError so callers can distinguish a retryable contention
// failure from real corruption.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		if c := se.Code() & 0xff; c == 5 || c == 6 {
			return &StoreBusyError{Timeout: busyTimeout}
		}
	}
	return err
}
