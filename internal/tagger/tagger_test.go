package tagger

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/rcliao/hippo/internal/model"
	"github.com/rcliao/hippo/internal/store"
)

type fakeCompleter struct {
	response string
	calls    int
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	f.calls++
	return f.response, nil
}

func newTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestMergeTags(t *testing.T) {
	got := MergeTags([]string{"existing"}, []string{"New Tag", " existing ", "", "Ann"})
	want := []string{"ann", "existing", "new-tag"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MergeTags = %v, want %v", got, want)
	}

	if got := MergeTags(nil, nil); len(got) != 0 {
		t.Errorf("empty inputs must merge to nothing, got %v", got)
	}
}

const suggestion = `{"people": ["Ann"], "projects": [], "tools": ["sqlite"], "topics": [], "suggested_tags": ["Ann", "sqlite", "Index Tuning"]}`

func TestTagOne(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	mem := &model.Memory{Content: "Ann tuned the sqlite indexes", Tags: []string{"ops"}}
	s.StoreMemory(ctx, mem)

	tg := &Tagger{Store: s, Model: &fakeCompleter{response: suggestion}}
	merged, err := tg.TagOne(ctx, mem.ContentHash)
	if err != nil {
		t.Fatalf("tag one: %v", err)
	}
	want := []string{"ann", "index-tuning", "ops", "sqlite"}
	if !reflect.DeepEqual(merged, want) {
		t.Errorf("merged = %v, want %v", merged, want)
	}

	stored, _ := s.GetByHash(ctx, mem.ContentHash)
	if !reflect.DeepEqual(stored.Tags, want) {
		t.Errorf("tags must persist, got %v", stored.Tags)
	}
}

func TestTagOneUnknownHash(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	tg := &Tagger{Store: s, Model: &fakeCompleter{response: suggestion}}
	if _, err := tg.TagOne(ctx, "missing"); err == nil {
		t.Error("expected error for unknown hash")
	}
}

func TestTagAllSkipsWellTagged(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	s.StoreMemory(ctx, &model.Memory{Content: "under-tagged record"})
	s.StoreMemory(ctx, &model.Memory{
		Content: "well-tagged record",
		Tags:    []string{"a", "b", "c", "d", "e"},
	})

	judge := &fakeCompleter{response: suggestion}
	tagged, err := (&Tagger{Store: s, Model: judge}).TagAll(ctx)
	if err != nil {
		t.Fatalf("tag all: %v", err)
	}
	if tagged != 1 {
		t.Errorf("expected 1 tagged, got %d", tagged)
	}
	if judge.calls != 1 {
		t.Errorf("well-tagged records must not reach the model, got %d calls", judge.calls)
	}
}

func TestTagAllSkipsMalformedResponse(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	s.StoreMemory(ctx, &model.Memory{Content: "first record"})
	s.StoreMemory(ctx, &model.Memory{Content: "second record"})

	tagged, err := (&Tagger{Store: s, Model: &fakeCompleter{response: "no json here"}}).TagAll(ctx)
	if err != nil {
		t.Fatalf("malformed responses must not abort the pass: %v", err)
	}
	if tagged != 0 {
		t.Errorf("expected 0 tagged, got %d", tagged)
	}
}
