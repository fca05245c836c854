// Package consolidate turns a rolling session log into structured state
// delta records: parse the latest session, summarize it through the
// external model, persist the digest with derived entity tags.
package consolidate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/rcliao/hippo/internal/llm"
	"github.com/rcliao/hippo/internal/logging"
	"github.com/rcliao/hippo/internal/model"
	"github.com/rcliao/hippo/internal/store"
)

// Entities groups the named entities extracted from a session.
type Entities struct {
	People   []string `json:"people"`
	Projects []string `json:"projects"`
	Tools    []string `json:"tools"`
}

// Digest is the structured summary the external model produces for one
// session, normalized once after parsing.
type Digest struct {
	StateDelta       string   `json:"state_delta"`
	Entities         Entities `json:"entities"`
	SecurityContext  string   `json:"security_context"`
	EmotionalSignals string   `json:"emotional_signals"`
	OpenThreads      []string `json:"open_threads"`
}

// Outcome reports a persisted consolidation.
type Outcome struct {
	Digest      *Digest `json:"digest"`
	RecordID    int64   `json:"record_id"`
	ContentHash string  `json:"content_hash"`
}

// ParseLatestSession extracts the most recent session from the log text.
// Sessions are delimited by level-2 headings; the latest session runs from
// the last heading to end of file. Returns "" when the log has no heading
// boundary, which is an expected nothing-to-do, not an error.
func ParseLatestSession(logText string) string {
	sections := strings.Split(logText, "\n## ")
	if len(sections) < 2 {
		return ""
	}
	return strings.TrimSpace("## " + sections[len(sections)-1])
}

const consolidationPrompt = `You are a memory consolidation system. Given the following session log, extract a structured summary.

SESSION LOG:
%s

Return a JSON object with exactly these fields:
{
  "state_delta": "A 50-100 word dense summary of what changed, what was decided, what's unresolved",
  "entities": {
    "people": ["list of people mentioned"],
    "projects": ["projects or products affected"],
    "tools": ["tech, tools, or services referenced"]
  },
  "security_context": "Any MNPI, regulated data, or permission boundaries discussed (or 'none')",
  "emotional_signals": "Detected frustration, excitement, urgency, or other emotional tone (or 'neutral')",
  "open_threads": ["unresolved items or follow-ups"]
}

Return ONLY the JSON object, no other text.`

// Pipeline runs session consolidation against a store and a completer.
type Pipeline struct {
	Store  store.Store
	Model  llm.Completer
	Logger logging.Logger
}

// Reflect extracts a digest from the latest session without persisting
// anything. Returns (nil, nil) when the log contains no session.
func (p *Pipeline) Reflect(ctx context.Context, logText string) (*Digest, error) {
	sessionText := ParseLatestSession(logText)
	if sessionText == "" {
		return nil, nil
	}
	return p.summarize(ctx, sessionText)
}

// Consolidate extracts a digest from the latest session and persists it as
// a state delta record. A malformed summarizer response aborts before any
// write; nothing partial is ever stored. Returns (nil, nil) when the log
// contains no session.
func (p *Pipeline) Consolidate(ctx context.Context, logText string) (*Outcome, error) {
	sessionText := ParseLatestSession(logText)
	if sessionText == "" {
		return nil, nil
	}

	digest, err := p.summarize(ctx, sessionText)
	if err != nil {
		return nil, err
	}

	mem := digest.toMemory()
	id, err := p.Store.StoreMemory(ctx, mem)
	if err != nil {
		return nil, fmt.Errorf("store state delta: %w", err)
	}
	p.Store.SetMeta(ctx, "last_consolidated_at", time.Now().UTC().Format(time.RFC3339))

	if p.Logger != nil {
		p.Logger.Info("session consolidated", "record_id", id, "hash", mem.ContentHash[:16])
	}
	return &Outcome{Digest: digest, RecordID: id, ContentHash: mem.ContentHash}, nil
}

func (p *Pipeline) summarize(ctx context.Context, sessionText string) (*Digest, error) {
	raw, err := p.Model.Complete(ctx, fmt.Sprintf(consolidationPrompt, sessionText), 512, 0.3)
	if err != nil {
		return nil, fmt.Errorf("summarizer call: %w", err)
	}

	obj, ok := llm.ExtractJSON(raw)
	if !ok {
		return nil, fmt.Errorf("summarizer returned no parsable JSON")
	}
	var d Digest
	if err := json.Unmarshal([]byte(obj), &d); err != nil {
		return nil, fmt.Errorf("decode digest: %w", err)
	}
	if strings.TrimSpace(d.StateDelta) == "" {
		return nil, fmt.Errorf("digest missing state_delta")
	}
	d.StateDelta = strings.TrimSpace(d.StateDelta)
	if d.SecurityContext == "" {
		d.SecurityContext = "none"
	}
	if d.EmotionalSignals == "" {
		d.EmotionalSignals = "neutral"
	}
	return &d, nil
}

// toMemory builds the record persisted for a digest: a marked content
// string, entity-derived tags plus the fixed state-delta tag, and metadata
// carrying the structured fields verbatim.
func (d *Digest) toMemory() *model.Memory {
	var tags []string
	for _, group := range [][]string{d.Entities.People, d.Entities.Projects, d.Entities.Tools} {
		for _, name := range group {
			if slug := model.Slugify(name); slug != "" {
				tags = append(tags, slug)
			}
		}
	}
	tags = append(tags, "state-delta")

	return &model.Memory{
		Content:    "[State Delta] " + d.StateDelta,
		Tags:       tags,
		MemoryType: model.TypeStateDelta,
		Metadata: map[string]any{
			"entities":          d.Entities,
			"security_context":  d.SecurityContext,
			"emotional_signals": d.EmotionalSignals,
			"open_threads":      d.OpenThreads,
			"source":            "hippo-consolidate",
			"run_id":            ulid.Make().String(),
			"session_date":      time.Now().UTC().Format("2006-01-02"),
		},
	}
}
