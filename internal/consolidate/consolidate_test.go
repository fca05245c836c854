package consolidate

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rcliao/hippo/internal/model"
	"github.com/rcliao/hippo/internal/store"
)

type fakeCompleter struct {
	response   string
	err        error
	lastPrompt string
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	f.lastPrompt = prompt
	if f.err != nil {
		return "", f.err
	}
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

const sampleLog = `# Session Summary Log

## 2026-08-27 morning
Talked about the billing migration with Ann.

## 2026-08-28 evening
Ann shipped the hippo importer. Follow up on index tuning.
`

func TestParseLatestSession(t *testing.T) {
	got := ParseLatestSession(sampleLog)
	if !strings.HasPrefix(got, "## 2026-08-28 evening") {
		t.Errorf("expected the last session, got %q", got)
	}
	if strings.Contains(got, "billing migration") {
		t.Error("earlier sessions must not leak into the latest")
	}

	if got := ParseLatestSession("no headings at all"); got != "" {
		t.Errorf("log without headings must yield nothing, got %q", got)
	}
	if got := ParseLatestSession(""); got != "" {
		t.Errorf("empty log must yield nothing, got %q", got)
	}

	single := "# Log\n\n## only session\nwork happened\n"
	if got := ParseLatestSession(single); !strings.HasPrefix(got, "## only session") {
		t.Errorf("single session must be returned, got %q", got)
	}
}

const goodDigest = `{
  "state_delta": "Ann shipped the importer; index tuning is still open.",
  "entities": {"people": ["Ann"], "projects": ["Hippo Importer"], "tools": ["sqlite"]},
  "security_context": "",
  "emotional_signals": "",
  "open_threads": ["index tuning"]
}`

func TestConsolidate(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	summarizer := &fakeCompleter{response: goodDigest}

	p := &Pipeline{Store: s, Model: summarizer}
	out, err := p.Consolidate(ctx, sampleLog)
	if err != nil {
		t.Fatalf("consolidate: %v", err)
	}
	if out == nil || out.RecordID == 0 {
		t.Fatal("expected a persisted record")
	}

	// Only the latest session reaches the summarizer.
	if !strings.Contains(summarizer.lastPrompt, "2026-08-28 evening") {
		t.Error("prompt must include the latest session")
	}
	if strings.Contains(summarizer.lastPrompt, "billing migration") {
		t.Error("prompt must not include earlier sessions")
	}

	mem, _ := s.GetByHash(ctx, out.ContentHash)
	if mem == nil {
		t.Fatal("state delta record must be live")
	}
	if !strings.HasPrefix(mem.Content, "[State Delta] ") {
		t.Errorf("content must carry the marker prefix, got %q", mem.Content)
	}
	if !strings.Contains(mem.Content, "Ann shipped the importer") {
		t.Errorf("content must carry the delta text, got %q", mem.Content)
	}
	if mem.MemoryType != model.TypeStateDelta {
		t.Errorf("expected state_delta type, got %q", mem.MemoryType)
	}

	wantTags := map[string]bool{"ann": false, "hippo-importer": false, "sqlite": false, "state-delta": false}
	for _, tag := range mem.Tags {
		if _, ok := wantTags[tag]; ok {
			wantTags[tag] = true
		}
	}
	for tag, seen := range wantTags {
		if !seen {
			t.Errorf("expected tag %q, got %v", tag, mem.Tags)
		}
	}

	if mem.Metadata["security_context"] != "none" || mem.Metadata["emotional_signals"] != "neutral" {
		t.Errorf("empty digest fields must default, got %v", mem.Metadata)
	}

	if v, _ := s.GetMeta(ctx, "last_consolidated_at"); v == "" {
		t.Error("consolidation must record its completion time")
	}
}

func TestConsolidateNoSession(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	summarizer := &fakeCompleter{response: goodDigest}

	out, err := (&Pipeline{Store: s, Model: summarizer}).Consolidate(ctx, "just prose, no headings")
	if err != nil {
		t.Fatalf("empty log must not be an error: %v", err)
	}
	if out != nil {
		t.Error("nothing to consolidate must yield nil outcome")
	}
	if summarizer.lastPrompt != "" {
		t.Error("summarizer must not be called for an empty log")
	}
}

func TestConsolidateMalformedDigestPersistsNothing(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, response := range []string{
		"not json",
		`{"entities": {"people": []}}`,
		`{"state_delta": "   "}`,
	} {
		out, err := (&Pipeline{Store: s, Model: &fakeCompleter{response: response}}).Consolidate(ctx, sampleLog)
		if err == nil {
			t.Errorf("response %q must be an error", response)
		}
		if out != nil {
			t.Errorf("response %q must yield no outcome", response)
		}
	}

	st, _ := s.Stats(ctx)
	if st.TotalMemories != 0 {
		t.Errorf("failed consolidation must persist nothing, got %d records", st.TotalMemories)
	}
	if v, _ := s.GetMeta(ctx, "last_consolidated_at"); v != "" {
		t.Error("failed consolidation must not record a completion time")
	}
}

func TestConsolidateSummarizerFailure(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	out, err := (&Pipeline{Store: s, Model: &fakeCompleter{err: errors.New("connection refused")}}).Consolidate(ctx, sampleLog)
	if err == nil || out != nil {
		t.Errorf("summarizer failure must abort: out=%v err=%v", out, err)
	}
	st, _ := s.Stats(ctx)
	if st.TotalMemories != 0 {
		t.Error("aborted consolidation must persist nothing")
	}
}

func TestReflectDoesNotPersist(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	digest, err := (&Pipeline{Store: s, Model: &fakeCompleter{response: goodDigest}}).Reflect(ctx, sampleLog)
	if err != nil {
		t.Fatalf("reflect: %v", err)
	}
	if digest == nil || digest.StateDelta == "" {
		t.Fatal("expected a digest")
	}
	if len(digest.Entities.People) != 1 || digest.Entities.People[0] != "Ann" {
		t.Errorf("unexpected entities: %+v", digest.Entities)
	}

	st, _ := s.Stats(ctx)
	if st.TotalMemories != 0 {
		t.Error("reflect must never write")
	}
}
