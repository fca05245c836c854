// Package predict generates a PRELOAD briefing for the next session from
// recent session logs, open questions, and stored state deltas.
package predict

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rcliao/hippo/internal/llm"
	"github.com/rcliao/hippo/internal/model"
	"github.com/rcliao/hippo/internal/store"
)

const promptTemplate = `You are a session preparation system. Given the following context about an ongoing collaboration, generate a dense briefing for the next session.

RECENT SESSION LOG:
%s

OPEN QUESTIONS:
%s

RECENT STATE DELTAS:
%s

Generate a briefing document in this exact format:

# PRELOAD — Session Briefing
Generated: %s

## Active Context
[2-3 sentences: what we're in the middle of, what was happening when last session ended]

## Unresolved Threads
[Bulleted list of open items requiring attention]

## Key People State
[For each person mentioned recently: last known status, any pending interactions]

## Suggested First Moves
[2-3 concrete actions to start the next session productively]

Return the document as plain text (NOT JSON). Use markdown formatting.`

// Predictor builds session briefings.
type Predictor struct {
	Store store.Store
	Model llm.Completer
}

// Briefing generates the PRELOAD document from the session log text, an
// optional open-questions text, and the five most recent state deltas in
// the store.
func (p *Predictor) Briefing(ctx context.Context, logText, openQuestions string) (string, error) {
	sessionText := recentSessions(logText, 2)
	if sessionText == "" {
		sessionText = "(no session log found)"
	}
	if strings.TrimSpace(openQuestions) == "" {
		openQuestions = "(no open questions)"
	}

	deltas, err := p.recentDeltas(ctx, 5)
	if err != nil {
		return "", err
	}

	prompt := fmt.Sprintf(promptTemplate,
		truncate(sessionText, 3000),
		truncate(openQuestions, 2000),
		deltas,
		time.Now().UTC().Format("2006-01-02 15:04 UTC"))

	out, err := p.Model.Complete(ctx, prompt, 1024, 0.3)
	if err != nil {
		return "", fmt.Errorf("briefing call: %w", err)
	}
	return out, nil
}

// recentSessions keeps the last n level-2 sections of the log.
func recentSessions(logText string, n int) string {
	sections := strings.Split(logText, "\n## ")
	if len(sections) < 2 {
		return strings.TrimSpace(logText)
	}
	keep := sections[1:]
	if len(keep) > n {
		keep = keep[len(keep)-n:]
	}
	return strings.TrimSpace("## " + strings.Join(keep, "\n## "))
}

func (p *Predictor) recentDeltas(ctx context.Context, n int) (string, error) {
	memories, err := p.Store.GetAll(ctx, 100, 0)
	if err != nil {
		return "", fmt.Errorf("load state deltas: %w", err)
	}

	var sb strings.Builder
	count := 0
	for _, m := range memories {
		if m.MemoryType != model.TypeStateDelta {
			continue
		}
		fmt.Fprintf(&sb, "- %s\n", truncate(m.Content, 200))
		count++
		if count >= n {
			break
		}
	}
	if count == 0 {
		return "(no state deltas yet)", nil
	}
	return sb.String(), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
