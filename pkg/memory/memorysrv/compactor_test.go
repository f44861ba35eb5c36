package memorysrv

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoshino-dev/hoshi/pkg/ai/genx"
	"github.com/hoshino-dev/hoshi/pkg/ai/llm"
	"github.com/hoshino-dev/hoshi/pkg/memory"
)

// fixedLLM always answers with the same content, or always fails
type fixedLLM struct {
	content string
	err     error
	calls   int
	prompts []string
}

func (f *fixedLLM) Chat(ctx context.Context, messages []llm.Message, opts ...llm.Option) (llm.Response, error) {
	f.calls++
	if len(messages) > 0 {
		f.prompts = append(f.prompts, messages[len(messages)-1].Content)
	}
	if f.err != nil {
		return llm.Response{}, f.err
	}
	return llm.Response{Message: llm.NewAssistantMessage(f.content)}, nil
}

func newCompactor(fake *fixedLLM, maxChars, maxMessages, keep int) *Compactor {
	gen := genx.New(llm.NewClient(fake), genx.WithRetryDelay(0))
	return NewCompactor(gen, maxChars, maxMessages, keep)
}

func turnPair(userContent, assistantContent string) (memory.Turn, memory.Turn) {
	return memory.NewTurn(memory.RoleUser, "kenji", userContent),
		memory.NewTurn(memory.RoleAssistant, "Hoshi", assistantContent)
}

func recordWithTurns(n, contentLen int) memory.Record {
	rec := memory.EmptyRecord()
	for i := 0; i < n; i++ {
		role := memory.RoleUser
		name := "kenji"
		if i%2 == 1 {
			role = memory.RoleAssistant
			name = "Hoshi"
		}
		// distinct content with an exact, fixed length
		t := memory.NewTurn(role, name, fmt.Sprintf("%0*d", contentLen, i))
		rec.Messages = append(rec.Messages, t)
	}
	rec.CharCount = rec.ContentChars()
	return rec
}

func TestApplyTurn_NoOverflow_AppendsOnly(t *testing.T) {
	fake := &fixedLLM{content: "should not be called"}
	c := newCompactor(fake, 8000, 30, 10)

	rec := recordWithTurns(4, 10)
	user, assistant := turnPair("hi", "hello!")

	out := c.ApplyTurn(context.Background(), rec, user, assistant)

	assert.Len(t, out.Messages, 6)
	assert.Equal(t, "", out.Summary)
	assert.Equal(t, out.ContentChars(), out.CharCount)
	assert.Zero(t, fake.calls, "no summarization below thresholds")
}

func TestApplyTurn_JustBelowThresholds_NoCompaction(t *testing.T) {
	fake := &fixedLLM{content: "unused"}
	c := newCompactor(fake, 100, 30, 10)

	rec := recordWithTurns(2, 40) // 80 chars
	user, assistant := turnPair("1234567890", "1234567890")
	// 80 + 20 = 100 = maxChars exactly: not over
	out := c.ApplyTurn(context.Background(), rec, user, assistant)

	assert.Len(t, out.Messages, 4)
	assert.Zero(t, fake.calls)
	assert.Equal(t, 100, out.CharCount)
}

func TestApplyTurn_CharOverflow_CompactsToKeepWindow(t *testing.T) {
	fake := &fixedLLM{content: "- likes retro games\n- lives in Pune"}
	c := newCompactor(fake, 8000, 30, 10)

	// 10 messages of 799 chars each: charCount 7990
	rec := recordWithTurns(10, 799)
	require.Equal(t, 7990, rec.CharCount)

	user, assistant := turnPair("123456789012", "12345678") // 20 chars total
	out := c.ApplyTurn(context.Background(), rec, user, assistant)

	// 8010 > 8000 triggers compaction; 12 messages split 2 older / 10 kept
	assert.Equal(t, 1, fake.calls)
	assert.Len(t, out.Messages, 10)
	assert.Equal(t, fake.content, out.Summary)
	assert.Equal(t, out.ContentChars(), out.CharCount)
	// the kept window is the suffix: the new turns survive
	assert.Equal(t, "12345678", out.Messages[9].Content)
}

func TestApplyTurn_MessageCountOverflow(t *testing.T) {
	fake := &fixedLLM{content: "recap"}
	c := newCompactor(fake, 1_000_000, 6, 4)

	rec := recordWithTurns(6, 5)
	user, assistant := turnPair("aa", "bb")
	out := c.ApplyTurn(context.Background(), rec, user, assistant)

	assert.Equal(t, 1, fake.calls)
	assert.Len(t, out.Messages, 4)
	assert.Equal(t, "recap", out.Summary)
	assert.Equal(t, out.ContentChars(), out.CharCount)
}

func TestApplyTurn_FewerThanKeep_SummarizesAllKeepsNone(t *testing.T) {
	fake := &fixedLLM{content: "everything condensed"}
	c := newCompactor(fake, 50, 30, 10)

	rec := recordWithTurns(4, 20) // 80 chars > 50, only 4 messages (≤ keep)
	user, assistant := turnPair("x", "y")
	out := c.ApplyTurn(context.Background(), rec, user, assistant)

	assert.Equal(t, 1, fake.calls)
	assert.Empty(t, out.Messages)
	assert.Equal(t, "everything condensed", out.Summary)
	assert.Equal(t, len(out.Summary), out.CharCount)
}

func TestApplyTurn_SummarizationFailure_KeepsPreviousSummary(t *testing.T) {
	fake := &fixedLLM{err: errors.New("model offline")}
	c := newCompactor(fake, 50, 30, 2)

	rec := recordWithTurns(4, 20)
	rec.Summary = "- previously established facts"
	rec.CharCount = rec.ContentChars()

	user, assistant := turnPair("x", "y")
	out := c.ApplyTurn(context.Background(), rec, user, assistant)

	assert.Equal(t, 3, fake.calls, "retry budget spent")
	assert.Equal(t, "- previously established facts", out.Summary)
	assert.Len(t, out.Messages, 2)
	assert.Equal(t, out.ContentChars(), out.CharCount)
}

func TestApplyTurn_SummaryPromptContainsHistoryAndPriorSummary(t *testing.T) {
	fake := &fixedLLM{content: "new summary"}
	c := newCompactor(fake, 10, 30, 1)

	rec := memory.EmptyRecord()
	rec.Summary = "- knows python"
	older := memory.NewTurn(memory.RoleUser, "kenji", "tell me about go")
	rec.Messages = append(rec.Messages, older)
	rec.CharCount = rec.ContentChars()

	user, assistant := turnPair("first question", "long answer that overflows")
	c.ApplyTurn(context.Background(), rec, user, assistant)

	require.Len(t, fake.prompts, 1)
	prompt := fake.prompts[0]
	assert.Contains(t, prompt, "- knows python")
	assert.Contains(t, prompt, "kenji (user): tell me about go")
	assert.Contains(t, prompt, "5-10 bullet points")
}

func TestCharCountNeverDrifts(t *testing.T) {
	fake := &fixedLLM{content: "compact recap of the conversation"}
	c := newCompactor(fake, 300, 8, 4)

	rec := memory.EmptyRecord()
	for i := 0; i < 25; i++ {
		user, assistant := turnPair(
			fmt.Sprintf("question number %d with some padding", i),
			fmt.Sprintf("answer number %d with a little more padding", i),
		)
		rec = c.ApplyTurn(context.Background(), rec, user, assistant)
		assert.Equal(t, rec.ContentChars(), rec.CharCount, "iteration %d", i)
		assert.LessOrEqual(t, len(rec.Messages), 8+2)
	}
}
