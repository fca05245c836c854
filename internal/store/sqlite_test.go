package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rcliao/hippo/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	s, err := NewSQLiteStore(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestHashDeterminism(t *testing.T) {
	if model.HashContent("hello") != model.HashContent("hello") {
		t.Error("same content should hash identically")
	}
	if model.HashContent("hello") == model.HashContent("world") {
		t.Error("distinct content should hash differently")
	}
}

func TestStoreAndGet(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	mem := &model.Memory{Content: "the deploy pipeline is green"}
	id, err := s.StoreMemory(ctx, mem)
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	if id == 0 {
		t.Error("expected non-zero row id")
	}
	if mem.ContentHash == "" {
		t.Error("expected hash to be assigned")
	}
	if mem.MemoryType != model.TypeNote {
		t.Errorf("expected default type note, got %q", mem.MemoryType)
	}

	got, err := s.GetByHash(ctx, mem.ContentHash)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.Content != mem.Content {
		t.Fatalf("expected stored content back, got %+v", got)
	}

	// First get bumps the counter; a second get observes it.
	got2, _ := s.GetByHash(ctx, mem.ContentHash)
	if got2.AccessCount != 1 {
		t.Errorf("expected access_count 1 after second get, got %d", got2.AccessCount)
	}
}

func TestDuplicateContent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if _, err := s.StoreMemory(ctx, &model.Memory{Content: "same thing"}); err != nil {
		t.Fatalf("store: %v", err)
	}

	_, err := s.StoreMemory(ctx, &model.Memory{Content: "same thing"})
	var dup *DuplicateContentError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateContentError, got %v", err)
	}

	st, _ := s.Stats(ctx)
	if st.TotalMemories != 1 {
		t.Errorf("failed insert must not change count, got %d", st.TotalMemories)
	}
}

func TestDuplicateAgainstSoftDeleted(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	mem := &model.Memory{Content: "retired fact"}
	s.StoreMemory(ctx, mem)
	s.SoftDelete(ctx, mem.ContentHash)

	_, err := s.StoreMemory(ctx, &model.Memory{Content: "retired fact"})
	var dup *DuplicateContentError
	if !errors.As(err, &dup) {
		t.Fatalf("uniqueness must cover soft-deleted rows, got %v", err)
	}
}

func TestSoftDeleteExclusion(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	mem := &model.Memory{Content: "to be deleted", Tags: []string{"cleanup"}}
	s.StoreMemory(ctx, mem)

	if err := s.SoftDelete(ctx, mem.ContentHash); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	if got, _ := s.GetByHash(ctx, mem.ContentHash); got != nil {
		t.Error("GetByHash must not return soft-deleted records")
	}
	all, _ := s.GetAll(ctx, 10, 0)
	if len(all) != 0 {
		t.Errorf("GetAll must exclude soft-deleted, got %d", len(all))
	}
	tagged, _ := s.SearchByTag(ctx, "cleanup")
	if len(tagged) != 0 {
		t.Errorf("SearchByTag must exclude soft-deleted, got %d", len(tagged))
	}

	// Audit bypass still sees the record, with deleted_at set.
	any, err := s.GetByHashAny(ctx, mem.ContentHash)
	if err != nil {
		t.Fatalf("get any: %v", err)
	}
	if any == nil || any.DeletedAt == nil {
		t.Error("GetByHashAny must return the record with deleted_at set")
	}
}

func TestSoftDeleteIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	mem := &model.Memory{Content: "delete twice"}
	s.StoreMemory(ctx, mem)

	if err := s.SoftDelete(ctx, mem.ContentHash); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := s.SoftDelete(ctx, mem.ContentHash); err != nil {
		t.Fatalf("re-deleting must be a no-op, got %v", err)
	}
	if err := s.SoftDelete(ctx, "no-such-hash"); err != nil {
		t.Fatalf("deleting unknown hash must be a no-op, got %v", err)
	}
}

func TestGetAllOrderAndPagination(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	base := time.Now().UTC().Add(-3 * time.Hour)
	for i, content := range []string{"oldest", "middle", "newest"} {
		s.StoreMemory(ctx, &model.Memory{
			Content:   content,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
	}

	all, err := s.GetAll(ctx, 10, 0)
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if len(all) != 3 || all[0].Content != "newest" || all[2].Content != "oldest" {
		t.Errorf("expected newest-first ordering, got %+v", all)
	}

	page, _ := s.GetAll(ctx, 1, 1)
	if len(page) != 1 || page[0].Content != "middle" {
		t.Errorf("expected offset pagination, got %+v", page)
	}
}

func TestSearchByTagSubstring(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.StoreMemory(ctx, &model.Memory{Content: "a", Tags: []string{"deploy", "infra"}})
	s.StoreMemory(ctx, &model.Memory{Content: "b", Tags: []string{"deployment"}})
	s.StoreMemory(ctx, &model.Memory{Content: "c", Tags: []string{"testing"}})

	// Substring semantics: "deploy" matches inside "deployment" too.
	got, err := s.SearchByTag(ctx, "deploy")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 substring matches, got %d", len(got))
	}

	got, _ = s.SearchByTag(ctx, "ploy")
	if len(got) != 2 {
		t.Errorf("partial tag text must match, got %d", len(got))
	}
}

func TestUpdateTags(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	mem := &model.Memory{
		Content:   "retag me",
		Tags:      []string{"old"},
		CreatedAt: time.Now().UTC().Add(-time.Hour),
	}
	s.StoreMemory(ctx, mem)

	if err := s.UpdateTags(ctx, mem.ContentHash, []string{"new", "tags", "new"}); err != nil {
		t.Fatalf("update tags: %v", err)
	}

	got, _ := s.GetByHash(ctx, mem.ContentHash)
	if len(got.Tags) != 2 {
		t.Errorf("duplicates must collapse on write, got %v", got.Tags)
	}
	if !got.UpdatedAt.After(got.CreatedAt) {
		t.Error("updated_at must be bumped by tag update")
	}

	if err := s.UpdateTags(ctx, "missing", []string{"x"}); err == nil {
		t.Error("expected error updating unknown hash")
	}
}

func TestMetadataRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	mem := &model.Memory{
		Content:  "with metadata",
		Metadata: map[string]any{"source": "test", "count": float64(3)},
	}
	s.StoreMemory(ctx, mem)

	got, _ := s.GetByHash(ctx, mem.ContentHash)
	if got.Metadata["source"] != "test" {
		t.Errorf("metadata not persisted: %+v", got.Metadata)
	}
}

func TestStoreMeta(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if v, _ := s.GetMeta(ctx, "schema_version"); v != "1" {
		t.Errorf("expected schema_version 1, got %q", v)
	}
	if v, _ := s.GetMeta(ctx, "absent"); v != "" {
		t.Errorf("missing key must read as empty, got %q", v)
	}

	s.SetMeta(ctx, "last_consolidated_at", "2026-01-01T00:00:00Z")
	s.SetMeta(ctx, "last_consolidated_at", "2026-02-01T00:00:00Z")
	if v, _ := s.GetMeta(ctx, "last_consolidated_at"); v != "2026-02-01T00:00:00Z" {
		t.Errorf("SetMeta must overwrite, got %q", v)
	}
}

func TestDBPathCreation(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "sub", "dir", "test.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	s.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("expected db file to be created")
	}
}

func TestExportAllIncludesDeleted(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	a := &model.Memory{Content: "live one"}
	b := &model.Memory{Content: "dead one"}
	s.StoreMemory(ctx, a)
	s.StoreMemory(ctx, b)
	s.SoftDelete(ctx, b.ContentHash)

	all, err := s.ExportAll(ctx, "")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("export must include soft-deleted rows, got %d", len(all))
	}
}
