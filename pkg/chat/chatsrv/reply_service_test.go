package chatsrv

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoshino-dev/hoshi/pkg/ai/genx"
	"github.com/hoshino-dev/hoshi/pkg/ai/llm"
	"github.com/hoshino-dev/hoshi/pkg/chat"
	"github.com/hoshino-dev/hoshi/pkg/config"
	"github.com/hoshino-dev/hoshi/pkg/memory"
	"github.com/hoshino-dev/hoshi/pkg/memory/memorysrv"
)

type echoLLM struct {
	reply   string
	err     error
	prompts []string
}

func (e *echoLLM) Chat(ctx context.Context, messages []llm.Message, opts ...llm.Option) (llm.Response, error) {
	if len(messages) > 0 {
		e.prompts = append(e.prompts, messages[len(messages)-1].Content)
	}
	if e.err != nil {
		return llm.Response{}, e.err
	}
	return llm.Response{Message: llm.NewAssistantMessage(e.reply)}, nil
}

type channelSend struct {
	channelID string
	msg       chat.Message
}

type stubTransport struct {
	sends []channelSend
}

func (s *stubTransport) Guild(ctx context.Context, guildID string) (*chat.Guild, error) {
	return &chat.Guild{ID: guildID}, nil
}

func (s *stubTransport) Channel(ctx context.Context, guildID, channelID string) (*chat.Channel, error) {
	return &chat.Channel{ID: channelID}, nil
}

func (s *stubTransport) Members(ctx context.Context, guildID string) ([]chat.Member, error) {
	return nil, nil
}

func (s *stubTransport) SendChannel(ctx context.Context, channelID string, msg chat.Message) error {
	s.sends = append(s.sends, channelSend{channelID: channelID, msg: msg})
	return nil
}

func (s *stubTransport) SendDM(ctx context.Context, userID string, msg chat.Message) error {
	return nil
}

type memRepo struct {
	records map[string]memory.Record
}

func (r *memRepo) Find(ctx context.Context, id string) (*memory.Record, error) {
	rec, ok := r.records[id]
	if !ok {
		return nil, memory.ErrRecordNotFound()
	}
	return &rec, nil
}

func (r *memRepo) Save(ctx context.Context, id string, rec memory.Record) error {
	if r.records == nil {
		r.records = map[string]memory.Record{}
	}
	r.records[id] = rec
	return nil
}

func newReplyService(model llm.LLM, transport chat.Transport, repo memory.Repository) *ReplyService {
	gen := genx.New(llm.NewClient(model), genx.WithRetryDelay(0))
	cfg := config.ChatConfig{
		GuildID:       "g1",
		CategoryID:    "cat1",
		ChannelID:     "c1",
		PersonaName:   "Hoshi",
		PersonaPrompt: "You are Hoshi.",
	}
	return NewReplyService(
		transport,
		gen,
		memorysrv.NewStore(repo),
		memorysrv.NewCompactor(gen, 8000, 30, 10),
		cfg,
		10,
	)
}

func inbound() InboundMessage {
	return InboundMessage{
		UserID:     "u1",
		UserName:   "mira",
		Content:    "hi hoshi!",
		GuildID:    "g1",
		ChannelID:  "c1",
		CategoryID: "cat1",
	}
}

func TestHandleMessage_RepliesWithMentionAndStoresTurn(t *testing.T) {
	model := &echoLLM{reply: "Hi Mira! So happy to see you ✨"}
	transport := &stubTransport{}
	repo := &memRepo{}
	svc := newReplyService(model, transport, repo)

	result, err := svc.HandleMessage(context.Background(), inbound())
	require.NoError(t, err)
	assert.True(t, result.Handled)
	assert.Equal(t, "Hi Mira! So happy to see you ✨", result.Reply)

	require.Len(t, transport.sends, 1)
	assert.Equal(t, "c1", transport.sends[0].channelID)
	assert.True(t, strings.HasPrefix(transport.sends[0].msg.Content, "<@u1> "))
	assert.True(t, transport.sends[0].msg.NotifyUsers)

	rec, ok := repo.records["u1"]
	require.True(t, ok)
	require.Len(t, rec.Messages, 2)
	assert.Equal(t, memory.RoleUser, rec.Messages[0].Role)
	assert.Equal(t, "hi hoshi!", rec.Messages[0].Content)
	assert.Equal(t, memory.RoleAssistant, rec.Messages[1].Role)
	assert.Equal(t, "Hoshi", rec.Messages[1].Name)
}

func TestHandleMessage_IgnoresBots(t *testing.T) {
	transport := &stubTransport{}
	svc := newReplyService(&echoLLM{reply: "x"}, transport, &memRepo{})

	msg := inbound()
	msg.Bot = true

	result, err := svc.HandleMessage(context.Background(), msg)
	require.NoError(t, err)
	assert.False(t, result.Handled)
	assert.Empty(t, transport.sends)
}

func TestHandleMessage_FiltersWrongGuildCategoryChannel(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*InboundMessage)
	}{
		{"wrong guild", func(m *InboundMessage) { m.GuildID = "other" }},
		{"wrong category", func(m *InboundMessage) { m.CategoryID = "other" }},
		{"wrong channel", func(m *InboundMessage) { m.ChannelID = "other" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			transport := &stubTransport{}
			svc := newReplyService(&echoLLM{reply: "x"}, transport, &memRepo{})

			msg := inbound()
			tc.mutate(&msg)

			result, err := svc.HandleMessage(context.Background(), msg)
			require.NoError(t, err)
			assert.False(t, result.Handled)
			assert.Empty(t, transport.sends)
		})
	}
}

func TestHandleMessage_DebugModeSkipsLocationChecks(t *testing.T) {
	transport := &stubTransport{}
	svc := newReplyService(&echoLLM{reply: "hello!"}, transport, &memRepo{})
	svc.cfg.DebugMode = true

	msg := inbound()
	msg.GuildID = "somewhere-else"
	msg.ChannelID = "dm-channel"

	result, err := svc.HandleMessage(context.Background(), msg)
	require.NoError(t, err)
	assert.True(t, result.Handled)
	require.Len(t, transport.sends, 1)
	assert.Equal(t, "dm-channel", transport.sends[0].channelID)
}

func TestHandleMessage_PromptCarriesMemoryAndPersona(t *testing.T) {
	model := &echoLLM{reply: "of course I remember!"}
	repo := &memRepo{records: map[string]memory.Record{
		"u1": {
			Summary:   "- mira likes astronomy",
			Messages:  []memory.Turn{memory.NewTurn(memory.RoleUser, "mira", "tell me about stars")},
			CharCount: len("- mira likes astronomy") + len("tell me about stars"),
		},
	}}
	svc := newReplyService(model, &stubTransport{}, repo)

	_, err := svc.HandleMessage(context.Background(), inbound())
	require.NoError(t, err)

	require.NotEmpty(t, model.prompts)
	prompt := model.prompts[0]
	assert.Contains(t, prompt, "You are Hoshi.")
	assert.Contains(t, prompt, "mira likes astronomy")
	assert.Contains(t, prompt, "tell me about stars")
	assert.Contains(t, prompt, "hi hoshi!")
}

func TestHandleMessage_GenerationFailureUsesWarmFallback(t *testing.T) {
	transport := &stubTransport{}
	svc := newReplyService(&echoLLM{err: assert.AnError}, transport, &memRepo{})

	result, err := svc.HandleMessage(context.Background(), inbound())
	require.NoError(t, err)
	assert.Equal(t, replyFallback, result.Reply)
	require.Len(t, transport.sends, 1)
	assert.Contains(t, transport.sends[0].msg.Content, replyFallback)
}

func TestHandleMessage_NilRepositoryStillReplies(t *testing.T) {
	transport := &stubTransport{}
	svc := newReplyService(&echoLLM{reply: "stateless but cheerful"}, transport, nil)

	result, err := svc.HandleMessage(context.Background(), inbound())
	require.NoError(t, err)
	assert.True(t, result.Handled)
	assert.Equal(t, "stateless but cheerful", result.Reply)
}
