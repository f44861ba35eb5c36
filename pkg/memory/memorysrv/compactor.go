package memorysrv

import (
	"context"
	"fmt"
	"strings"

	"github.com/hoshino-dev/hoshi/pkg/ai/genx"
	"github.com/hoshino-dev/hoshi/pkg/memory"
)

// Compactor folds new turns into a memory record and keeps the record
// bounded by summarizing older turns once the size thresholds are crossed.
type Compactor struct {
	gen          *genx.Generator
	maxChars     int
	maxMessages  int
	keepMessages int
}

// NewCompactor creates a Compactor with the given thresholds
func NewCompactor(gen *genx.Generator, maxChars, maxMessages, keepMessages int) *Compactor {
	return &Compactor{
		gen:          gen,
		maxChars:     maxChars,
		maxMessages:  maxMessages,
		keepMessages: keepMessages,
	}
}

// ApplyTurn appends the user/assistant exchange to the record and compacts
// when the record overflows. This is the only path that shrinks Messages or
// replaces Summary. CharCount is recomputed from actual contents whenever a
// compaction runs.
func (c *Compactor) ApplyTurn(ctx context.Context, rec memory.Record, userTurn, assistantTurn memory.Turn) memory.Record {
	rec.Messages = append(rec.Messages, userTurn, assistantTurn)
	rec.CharCount += len(userTurn.Content) + len(assistantTurn.Content)

	overflow := rec.CharCount > c.maxChars || len(rec.Messages) > c.maxMessages
	if !overflow {
		return rec
	}

	older := rec.Messages
	keep := []memory.Turn{}
	if len(rec.Messages) > c.keepMessages {
		older = rec.Messages[:len(rec.Messages)-c.keepMessages]
		keep = rec.Messages[len(rec.Messages)-c.keepMessages:]
	}

	// On summarization failure the previous summary is kept, not blanked.
	summary := c.gen.Generate(ctx, summaryPrompt(older, rec.Summary), rec.Summary)

	rec.Summary = summary
	rec.Messages = keep
	rec.CharCount = rec.ContentChars()
	return rec
}

// summaryPrompt renders the turns to compress together with the prior summary
func summaryPrompt(older []memory.Turn, existingSummary string) string {
	var b strings.Builder
	b.WriteString("You are summarizing a chat history to persistent user memory. ")
	b.WriteString("Extract stable facts about the user (preferences, profile, ongoing tasks), ")
	b.WriteString("and a brief recap of context needed for future replies. Write 5-10 bullet points, concise. ")
	b.WriteString("Do not include ephemeral chit-chat unless it informs preferences.\n\n")
	fmt.Fprintf(&b, "EXISTING MEMORY SUMMARY (may be empty):\n%s\n\n", existingSummary)
	b.WriteString("CHAT HISTORY TO SUMMARIZE (oldest to newest):\n")
	b.WriteString(strings.Join(renderTurns(older), "\n"))
	b.WriteString("\n\nReturn only the updated memory summary text.")
	return b.String()
}

// renderTurns formats turns as "name (role): content" lines, oldest first
func renderTurns(turns []memory.Turn) []string {
	lines := make([]string, 0, len(turns))
	for _, t := range turns {
		lines = append(lines, fmt.Sprintf("%s (%s): %s", t.Name, t.Role, t.Content))
	}
	return lines
}
