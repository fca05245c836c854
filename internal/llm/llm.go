// Package llm wraps external text-completion capabilities behind a single
// Completer interface. A provider is constructed once at process start and
// passed by reference to every component that needs it; there is no global
// model state.
package llm

import (
	"context"
	"strings"

	"github.com/tidwall/gjson"
)

// Completer is the external text-completion capability. Complete runs a
// single-turn chat prompt under a max-token cap and returns the raw text.
// Providers impose no wall-clock timeout of their own beyond transport
// defaults; callers needing bounded latency pass a deadline context.
type Completer interface {
	Complete(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error)
}

// ExtractJSON pulls the first JSON object out of raw model output. It
// handles fenced code blocks (with or without a language tag) and objects
// embedded in surrounding prose, and refuses array-only payloads. Returns
// ok=false when no valid object is found; a missing object is an expected
// outcome, not an error.
func ExtractJSON(text string) (string, bool) {
	if inner, found := innerFence(text); found {
		text = inner
	}

	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	// Balanced-brace scan from the first opening brace, string-aware so
	// braces inside JSON strings don't end the object early.
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				candidate := text[start : i+1]
				if r := gjson.Parse(candidate); r.IsObject() {
					return candidate, true
				}
				return "", false
			}
		}
	}
	return "", false
}

// innerFence returns the content of the first fenced code block, if any.
func innerFence(text string) (string, bool) {
	open := strings.Index(text, "```")
	if open < 0 {
		return "", false
	}
	rest := text[open+3:]
	// Skip an optional language tag up to the first newline.
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		firstLine := strings.TrimSpace(rest[:nl])
		if firstLine == "" || !strings.ContainsAny(firstLine, "{}") {
			rest = rest[nl+1:]
		}
	}
	close := strings.Index(rest, "```")
	if close < 0 {
		return strings.TrimSpace(rest), true
	}
	return strings.TrimSpace(rest[:close]), true
}
