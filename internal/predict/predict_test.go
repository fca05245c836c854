package predict

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rcliao/hippo/internal/model"
	"github.com/rcliao/hippo/internal/store"
)

type fakeCompleter struct {
	response   string
	lastPrompt string
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	f.lastPrompt = prompt
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

func TestRecentSessions(t *testing.T) {
	log := "# Log\n\n## one\na\n\n## two\nb\n\n## three\nc\n"
	got := recentSessions(log, 2)
	if strings.Contains(got, "## one") {
		t.Errorf("oldest session must be dropped, got %q", got)
	}
	if !strings.Contains(got, "## two") || !strings.Contains(got, "## three") {
		t.Errorf("last two sessions must be kept, got %q", got)
	}

	if got := recentSessions("plain text", 2); got != "plain text" {
		t.Errorf("log without headings passes through, got %q", got)
	}
}

func TestBriefingPromptAssembly(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	s.StoreMemory(ctx, &model.Memory{
		Content:    "[State Delta] importer shipped",
		MemoryType: model.TypeStateDelta,
	})
	s.StoreMemory(ctx, &model.Memory{Content: "a plain note"})

	fc := &fakeCompleter{response: "# PRELOAD — Session Briefing\n..."}
	p := &Predictor{Store: s, Model: fc}

	out, err := p.Briefing(ctx, "# Log\n\n## today\nworked on hippo\n", "should we shard?")
	if err != nil {
		t.Fatalf("briefing: %v", err)
	}
	if !strings.HasPrefix(out, "# PRELOAD") {
		t.Errorf("briefing must return model output, got %q", out)
	}

	if !strings.Contains(fc.lastPrompt, "worked on hippo") {
		t.Error("prompt must include the session log")
	}
	if !strings.Contains(fc.lastPrompt, "should we shard?") {
		t.Error("prompt must include open questions")
	}
	if !strings.Contains(fc.lastPrompt, "importer shipped") {
		t.Error("prompt must include recent state deltas")
	}
	if strings.Contains(fc.lastPrompt, "a plain note") {
		t.Error("plain notes must not appear as state deltas")
	}
}

func TestBriefingEmptyInputs(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	fc := &fakeCompleter{response: "briefing"}

	if _, err := (&Predictor{Store: s, Model: fc}).Briefing(ctx, "", ""); err != nil {
		t.Fatalf("empty inputs must still brief: %v", err)
	}
	if !strings.Contains(fc.lastPrompt, "(no session log found)") ||
		!strings.Contains(fc.lastPrompt, "(no open questions)") ||
		!strings.Contains(fc.lastPrompt, "(no state deltas yet)") {
		t.Error("empty inputs must be marked in the prompt")
	}
}
