// Package tagger enriches memory tags with LLM entity extraction.
package tagger

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rcliao/hippo/internal/llm"
	"github.com/rcliao/hippo/internal/logging"
	"github.com/rcliao/hippo/internal/model"
	"github.com/rcliao/hippo/internal/store"
)

// minTags is the tag count at or above which TagAll considers a memory
// already well-tagged and skips it.
const minTags = 5

// Suggestion is the model's structured tag proposal for one memory.
type Suggestion struct {
	People        []string `json:"people"`
	Projects      []string `json:"projects"`
	Tools         []string `json:"tools"`
	Topics        []string `json:"topics"`
	SuggestedTags []string `json:"suggested_tags"`
}

const tagPrompt = `Given this memory content, extract entity tags.

MEMORY:
%s

Return a JSON object with exactly these fields:
{
  "people": ["people mentioned by name"],
  "projects": ["projects, products, or companies"],
  "tools": ["technologies, tools, services"],
  "topics": ["abstract topics or themes"],
  "suggested_tags": ["list of all tags combined"]
}

Return ONLY the JSON object, no other text.`

// Tagger enriches stored memories with entity tags.
type Tagger struct {
	Store  store.Store
	Model  llm.Completer
	Logger logging.Logger
}

// TagOne extracts entities for the memory with the given hash and merges
// the suggested tags into its existing set.
func (t *Tagger) TagOne(ctx context.Context, hash string) ([]string, error) {
	mem, err := t.Store.GetByHash(ctx, hash)
	if err != nil {
		return nil, err
	}
	if mem == nil {
		return nil, fmt.Errorf("memory not found: %s", hash)
	}

	merged, err := t.suggest(ctx, mem)
	if err != nil {
		return nil, err
	}
	if err := t.Store.UpdateTags(ctx, mem.ContentHash, merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// TagAll enriches every under-tagged live memory. A malformed model
// response skips that memory only. Returns the number tagged.
func (t *Tagger) TagAll(ctx context.Context) (int, error) {
	log := t.Logger
	if log == nil {
		log = logging.NopLogger{}
	}

	memories, err := t.Store.GetAll(ctx, 1000, 0)
	if err != nil {
		return 0, err
	}

	tagged := 0
	for i := range memories {
		m := &memories[i]
		if len(m.Tags) >= minTags {
			continue
		}
		merged, err := t.suggest(ctx, m)
		if err != nil {
			log.Warn("tagging failed, skipping memory", "id", m.ID, "err", err)
			continue
		}
		if err := t.Store.UpdateTags(ctx, m.ContentHash, merged); err != nil {
			log.Warn("tag update failed", "id", m.ID, "err", err)
			continue
		}
		tagged++
	}
	return tagged, nil
}

func (t *Tagger) suggest(ctx context.Context, m *model.Memory) ([]string, error) {
	raw, err := t.Model.Complete(ctx, fmt.Sprintf(tagPrompt, m.Content), 256, 0.3)
	if err != nil {
		return nil, fmt.Errorf("tag call: %w", err)
	}
	obj, ok := llm.ExtractJSON(raw)
	if !ok {
		return nil, fmt.Errorf("no parsable JSON in tag output")
	}
	var s Suggestion
	if err := json.Unmarshal([]byte(obj), &s); err != nil {
		return nil, fmt.Errorf("decode suggestion: %w", err)
	}
	return MergeTags(m.Tags, s.SuggestedTags), nil
}

// MergeTags unions existing tags with slugified suggestions, deduplicated
// and sorted.
func MergeTags(existing, suggested []string) []string {
	out := append([]string{}, existing...)
	for _, s := range suggested {
		if slug := model.Slugify(strings.TrimSpace(s)); slug != "" {
			out = append(out, slug)
		}
	}
	return model.NormalizeTags(out)
}
