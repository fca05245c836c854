// Package compact finds near-duplicate memories and consolidates them under
// external adjudication. Nothing is ever hard-deleted: losers are
// soft-deleted and merges synthesize a new record so the originals stay
// recoverable.
package compact

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/rcliao/hippo/internal/llm"
	"github.com/rcliao/hippo/internal/logging"
	"github.com/rcliao/hippo/internal/model"
	"github.com/rcliao/hippo/internal/store"
)

// DefaultThreshold is the inclusive Jaccard similarity bound for candidate
// pairs.
const DefaultThreshold = 0.3

// DefaultLimit bounds how many recent records enter the O(N²) pairwise
// comparison. The scan is quadratic by design and must stay bounded.
const DefaultLimit = 1000

// Jaccard returns the token-set overlap of a and b: |intersection|/|union|
// over lowercased whitespace tokens. Symmetric; 0 when either side is
// empty; 1 for identical token sets.
func Jaccard(a, b string) float64 {
	ta := tokenSet(a)
	tb := tokenSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	inter := 0
	for t := range ta {
		if tb[t] {
			inter++
		}
	}
	union := len(ta) + len(tb) - inter
	return float64(inter) / float64(union)
}

func tokenSet(s string) map[string]bool {
	set := map[string]bool{}
	for _, t := range strings.Fields(strings.ToLower(s)) {
		set[t] = true
	}
	return set
}

// Engine runs the dedup/merge pass.
type Engine struct {
	Store     store.Store
	Model     llm.Completer
	Logger    logging.Logger
	Threshold float64 // inclusive; 0 means DefaultThreshold
	Limit     int     // snapshot bound; 0 means DefaultLimit
	DryRun    bool
}

// Pair is one adjudicated candidate pair in a Report.
type Pair struct {
	HashA      string   `json:"hash_a"`
	HashB      string   `json:"hash_b"`
	Similarity float64  `json:"similarity"`
	Verdict    *Verdict `json:"verdict,omitempty"`
	Action     string   `json:"action"` // kept-a, kept-b, merged, skipped, none
}

// Report summarizes a compact run.
type Report struct {
	RunID      string `json:"run_id"`
	Scanned    int    `json:"scanned"`
	Candidates int    `json:"candidates"`
	Merged     int    `json:"merged"`
	DryRun     bool   `json:"dry_run,omitempty"`
	Pairs      []Pair `json:"pairs,omitempty"`
}

// Run scans a snapshot of the most recent live records, adjudicates every
// candidate pair, and applies verdicts unless DryRun is set. A judge
// failure on one pair skips that pair only; the pass continues.
func (e *Engine) Run(ctx context.Context) (*Report, error) {
	threshold := e.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	limit := e.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	log := e.Logger
	if log == nil {
		log = logging.NopLogger{}
	}

	memories, err := e.Store.GetAll(ctx, limit, 0)
	if err != nil {
		return nil, fmt.Errorf("load memories: %w", err)
	}

	report := &Report{
		RunID:   ulid.Make().String(),
		Scanned: len(memories),
		DryRun:  e.DryRun,
	}
	if len(memories) < 2 {
		return report, nil
	}

	// Candidates come from the pre-merge snapshot; a record soft-deleted
	// by an earlier pair in this pass may still show up again. The store's
	// soft-delete is a no-op on already-deleted rows, so that is harmless.
	for i := 0; i < len(memories); i++ {
		for j := i + 1; j < len(memories); j++ {
			sim := Jaccard(memories[i].Content, memories[j].Content)
			if sim < threshold {
				continue
			}
			report.Candidates++
			pair := e.adjudicate(ctx, log, report.RunID, memories[i], memories[j], sim)
			if pair.Action == "kept-a" || pair.Action == "kept-b" || pair.Action == "merged" {
				report.Merged++
			}
			report.Pairs = append(report.Pairs, pair)
		}
	}

	log.Info("compact pass complete", "run_id", report.RunID,
		"scanned", report.Scanned, "candidates", report.Candidates, "merged", report.Merged)
	return report, nil
}

func (e *Engine) adjudicate(ctx context.Context, log logging.Logger, runID string, a, b model.Memory, sim float64) Pair {
	pair := Pair{HashA: a.ContentHash, HashB: b.ContentHash, Similarity: sim, Action: "skipped"}

	verdict, err := judge(ctx, e.Model, a, b)
	if err != nil {
		// Recoverable: one bad judge call skips the pair, never the run.
		log.Warn("judge failed for pair, skipping", "hash_a", shortHash(a.ContentHash),
			"hash_b", shortHash(b.ContentHash), "err", err)
		return pair
	}
	pair.Verdict = verdict

	if verdict.Relationship != RelDuplicate && verdict.Relationship != RelSuperseded {
		pair.Action = "none"
		return pair
	}
	if e.DryRun {
		pair.Action = "would-" + string(verdict.Keep)
		return pair
	}

	switch verdict.Keep {
	case KeepA:
		if err := e.Store.SoftDelete(ctx, b.ContentHash); err != nil {
			log.Warn("soft-delete failed", "hash", shortHash(b.ContentHash), "err", err)
			return pair
		}
		pair.Action = "kept-a"
	case KeepB:
		if err := e.Store.SoftDelete(ctx, a.ContentHash); err != nil {
			log.Warn("soft-delete failed", "hash", shortHash(a.ContentHash), "err", err)
			return pair
		}
		pair.Action = "kept-b"
	case KeepMerge:
		if verdict.MergedContent == "" {
			// Never fabricate content for a merge.
			pair.Action = "none"
			return pair
		}
		if err := e.merge(ctx, runID, a, b, verdict, sim); err != nil {
			log.Warn("merge failed, pair left untouched", "hash_a", shortHash(a.ContentHash),
				"hash_b", shortHash(b.ContentHash), "err", err)
			return pair
		}
		pair.Action = "merged"
	}
	return pair
}

// merge creates one consolidated record, links both sources to it, and
// soft-deletes the originals. Content is never rewritten in place.
func (e *Engine) merge(ctx context.Context, runID string, a, b model.Memory, v *Verdict, sim float64) error {
	merged := &model.Memory{
		Content:    v.MergedContent,
		Tags:       model.NormalizeTags(append(append([]string{}, a.Tags...), b.Tags...)),
		MemoryType: model.TypeNote,
		Metadata: map[string]any{
			"source":      "hippo-compact",
			"run_id":      runID,
			"merged_from": []string{shortHash(a.ContentHash), shortHash(b.ContentHash)},
			"merged_at":   time.Now().UTC().Format(time.RFC3339),
		},
	}
	if _, err := e.Store.StoreMemory(ctx, merged); err != nil {
		var dup *store.DuplicateContentError
		if errors.As(err, &dup) {
			// A racing process already stored this exact content. Treat the
			// merge as done by the winner and leave the originals alone.
			return fmt.Errorf("merged content already stored: %w", err)
		}
		return fmt.Errorf("store merged memory: %w", err)
	}

	for _, src := range []string{a.ContentHash, b.ContentHash} {
		e.Store.StoreEdge(ctx, store.EdgeParams{
			SourceHash:       src,
			TargetHash:       merged.ContentHash,
			Similarity:       sim,
			ConnectionTypes:  "consolidation",
			RelationshipType: "merged_into",
		})
	}

	if err := e.Store.SoftDelete(ctx, a.ContentHash); err != nil {
		return fmt.Errorf("soft-delete original: %w", err)
	}
	if err := e.Store.SoftDelete(ctx, b.ContentHash); err != nil {
		return fmt.Errorf("soft-delete original: %w", err)
	}
	return nil
}

func shortHash(h string) string {
	if len(h) > 16 {
		return h[:16]
	}
	return h
}
