package memorysrv

import (
	"fmt"
	"strings"

	"github.com/hoshino-dev/hoshi/pkg/memory"
)

// BuildReplyPrompt composes the user-facing generation prompt: known memory
// (stable facts), recent history (ephemeral context) and the new message,
// each in its own delimited block so the model can tell them apart.
func BuildReplyPrompt(senderName, userText string, rec memory.Record, keepMessages int) string {
	recent := rec.Messages
	if len(recent) > keepMessages {
		recent = recent[len(recent)-keepMessages:]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Note: You are replying to user named %s.\n", senderName)

	if summary := strings.TrimSpace(rec.Summary); summary != "" {
		fmt.Fprintf(&b, "Known memory about %s:\n%s\n\n", senderName, summary)
	}
	if len(recent) > 0 {
		b.WriteString("Recent conversation history (for context):\n")
		b.WriteString(strings.Join(renderTurns(recent), "\n"))
		b.WriteString("\n\n")
	}

	fmt.Fprintf(&b, "User says: %s", userText)
	return b.String()
}
