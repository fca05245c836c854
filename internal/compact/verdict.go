package compact

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rcliao/hippo/internal/llm"
	"github.com/rcliao/hippo/internal/model"
)

// Relationship classifies how two memories relate.
type Relationship string

const (
	RelDuplicate  Relationship = "duplicate"
	RelSuperseded Relationship = "superseded"
	RelRelated    Relationship = "related"
	RelDistinct   Relationship = "distinct"
)

// Keep names which record survives adjudication.
type Keep string

const (
	KeepA     Keep = "A"
	KeepB     Keep = "B"
	KeepMerge Keep = "merge"
)

// Verdict is the judge's structured decision for one candidate pair,
// normalized once after parsing so downstream code never re-checks fields.
type Verdict struct {
	Relationship  Relationship `json:"relationship"`
	Keep          Keep         `json:"keep"`
	MergedContent string       `json:"merged_content,omitempty"`
	Reasoning     string       `json:"reasoning,omitempty"`
}

const mergePrompt = `You are a memory deduplication system. Given these two memories, determine if they should be merged.

MEMORY A (created %s):
%s

MEMORY B (created %s):
%s

Analyze and return a JSON object:
{
  "relationship": "duplicate" | "superseded" | "related" | "distinct",
  "keep": "A" | "B" | "merge",
  "merged_content": "If keep is 'merge', provide the merged text. Otherwise empty string.",
  "reasoning": "Brief explanation of your decision"
}

Rules:
- "duplicate": Nearly identical information. Keep the newer one.
- "superseded": One updates/replaces the other. Keep the newer/more complete one.
- "related": Similar topic but distinct information. Keep both.
- "distinct": Unrelated. Keep both.

Return ONLY the JSON object.`

// judge asks the external capability for a merge verdict on a pair.
func judge(ctx context.Context, completer llm.Completer, a, b model.Memory) (*Verdict, error) {
	prompt := fmt.Sprintf(mergePrompt,
		a.CreatedAt.Format(time.RFC3339), a.Content,
		b.CreatedAt.Format(time.RFC3339), b.Content)

	raw, err := completer.Complete(ctx, prompt, 512, 0.1)
	if err != nil {
		return nil, fmt.Errorf("judge call: %w", err)
	}
	return parseVerdict(raw)
}

// parseVerdict extracts and normalizes a Verdict from raw judge output.
func parseVerdict(raw string) (*Verdict, error) {
	obj, ok := llm.ExtractJSON(raw)
	if !ok {
		return nil, fmt.Errorf("no JSON object in judge output")
	}
	var v Verdict
	if err := json.Unmarshal([]byte(obj), &v); err != nil {
		return nil, fmt.Errorf("decode verdict: %w", err)
	}

	v.Relationship = Relationship(strings.ToLower(strings.TrimSpace(string(v.Relationship))))
	switch v.Relationship {
	case RelDuplicate, RelSuperseded, RelRelated, RelDistinct:
	case "":
		return nil, fmt.Errorf("verdict missing relationship")
	default:
		// Unknown labels degrade to distinct: no mutation on guesswork.
		v.Relationship = RelDistinct
	}

	keep := strings.TrimSpace(string(v.Keep))
	switch {
	case strings.EqualFold(keep, "A"):
		v.Keep = KeepA
	case strings.EqualFold(keep, "B"):
		v.Keep = KeepB
	case strings.EqualFold(keep, "merge"):
		v.Keep = KeepMerge
	default:
		if v.Relationship == RelDuplicate || v.Relationship == RelSuperseded {
			return nil, fmt.Errorf("verdict %q missing keep decision", v.Relationship)
		}
		v.Keep = ""
	}

	v.MergedContent = strings.TrimSpace(v.MergedContent)
	return &v, nil
}
