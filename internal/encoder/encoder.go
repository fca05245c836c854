// Package encoder compresses English facts into a terse symbolic notation
// for limited-capacity context slots and packs the results into
// fixed-capacity slots.
package encoder

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rcliao/hippo/internal/llm"
)

// Slot capacity defaults: 30 slots of 200 characters each.
const (
	SlotCapacity = 200
	TotalSlots   = 30
)

// Symbols is the encoding vocabulary: symbol -> meaning.
var Symbols = map[string]string{
	"→": "causes / leads to",
	"⊘": "blocks / prevents",
	"⇒": "therefore / implies",
	"↔": "mutual dependency",
	"∆": "needs fix / change needed",
	"✓": "done",
	"⏳": "pending",
	"✗": "killed / rejected",
	"¬": "not / negation",
	"≈": "approximately",
	"∅": "empty / none",
	"∵": "because",
	"»": "more detail stored elsewhere",
}

const encodePrompt = `You are a symbolic compression system. Convert this English fact into dense symbolic notation.

VOCABULARY:
%s

FACT:
%s

Rules:
- Drop articles, copulas, and filler words. Grammar is waste.
- Use the vocabulary symbols for relations and status.
- Abbreviate multi-word names to short recognizable forms.
- Target under %d characters.

Return ONLY the encoded line, nothing else.`

// Legend renders the vocabulary as a compact reference string.
func Legend() string {
	keys := make([]string, 0, len(Symbols))
	for k := range Symbols {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s=%s; ", k, Symbols[k])
	}
	return strings.TrimSuffix(sb.String(), "; ")
}

// EncodeFact compresses one English fact via the external model. The
// response is reduced to its first non-empty line; an empty result is
// returned as an error so callers never store a blank encoding.
func EncodeFact(ctx context.Context, completer llm.Completer, fact string) (string, error) {
	prompt := fmt.Sprintf(encodePrompt, Legend(), fact, SlotCapacity)
	raw, err := completer.Complete(ctx, prompt, 128, 0.1)
	if err != nil {
		return "", fmt.Errorf("encode call: %w", err)
	}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(strings.Trim(line, "`"))
		if line != "" {
			return line, nil
		}
	}
	return "", fmt.Errorf("model returned no encoding")
}

// PackSlots greedily packs encoded facts into slots of the given capacity.
// Facts are taken in order; a fact joins the current slot when it fits
// (separated by " | "), otherwise it opens a new slot. A fact longer than
// the capacity gets a slot of its own, oversized, so nothing is dropped.
func PackSlots(facts []string, capacity int) []string {
	if capacity <= 0 {
		capacity = SlotCapacity
	}

	var slots []string
	current := ""
	for _, f := range facts {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		switch {
		case current == "":
			current = f
		case len(current)+len(" | ")+len(f) <= capacity:
			current += " | " + f
		default:
			slots = append(slots, current)
			current = f
		}
	}
	if current != "" {
		slots = append(slots, current)
	}
	return slots
}
