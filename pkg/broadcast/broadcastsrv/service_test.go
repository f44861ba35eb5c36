package broadcastsrv

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoshino-dev/hoshi/pkg/ai/genx"
	"github.com/hoshino-dev/hoshi/pkg/ai/llm"
	"github.com/hoshino-dev/hoshi/pkg/broadcast"
	"github.com/hoshino-dev/hoshi/pkg/chat"
	"github.com/hoshino-dev/hoshi/pkg/config"
)

// stubLLM answers every prompt with the same text, or always errors
type stubLLM struct {
	reply string
	err   error
}

func (s *stubLLM) Chat(ctx context.Context, messages []llm.Message, opts ...llm.Option) (llm.Response, error) {
	if s.err != nil {
		return llm.Response{}, s.err
	}
	return llm.Response{Message: llm.NewAssistantMessage(s.reply)}, nil
}

type sentDM struct {
	userID  string
	content string
}

// fakeTransport records every call and lets tests script failures
type fakeTransport struct {
	guildErr   error
	channelErr error
	membersErr error
	members    []chat.Member
	denyDM     map[string]bool // userID -> permission denied
	failDM     map[string]bool // userID -> generic failure

	channelMsgs []chat.Message
	dms         []sentDM
}

func (f *fakeTransport) Guild(ctx context.Context, guildID string) (*chat.Guild, error) {
	if f.guildErr != nil {
		return nil, f.guildErr
	}
	return &chat.Guild{ID: guildID, Name: "test guild"}, nil
}

func (f *fakeTransport) Channel(ctx context.Context, guildID, channelID string) (*chat.Channel, error) {
	if f.channelErr != nil {
		return nil, f.channelErr
	}
	return &chat.Channel{ID: channelID, Name: "general"}, nil
}

func (f *fakeTransport) Members(ctx context.Context, guildID string) ([]chat.Member, error) {
	if f.membersErr != nil {
		return nil, f.membersErr
	}
	return f.members, nil
}

func (f *fakeTransport) SendChannel(ctx context.Context, channelID string, msg chat.Message) error {
	f.channelMsgs = append(f.channelMsgs, msg)
	return nil
}

func (f *fakeTransport) SendDM(ctx context.Context, userID string, msg chat.Message) error {
	if f.denyDM[userID] {
		return chat.ErrPermissionDenied()
	}
	if f.failDM[userID] {
		return chat.ErrSendFailed()
	}
	f.dms = append(f.dms, sentDM{userID: userID, content: msg.Content})
	return nil
}

func newTestService(t *testing.T, transport *fakeTransport, model llm.LLM) *Service {
	t.Helper()
	gen := genx.New(llm.NewClient(model), genx.WithRetryDelay(0))
	svc, err := NewService(transport, gen, nil,
		config.BroadcastConfig{
			Timezone:      "Asia/Kolkata",
			Pacing:        0,
			MaxMessageLen: 2000,
			PackBudget:    1900,
		},
		config.ChatConfig{
			GuildID:       "g1",
			ChannelID:     "c1",
			PersonaName:   "Hoshi",
			PersonaPrompt: "You are Hoshi.",
		})
	require.NoError(t, err)
	return svc
}

func members(ids ...string) []chat.Member {
	out := make([]chat.Member, 0, len(ids))
	for _, id := range ids {
		out = append(out, chat.Member{ID: id, Name: "user-" + id})
	}
	return out
}

func TestRun_DeliversToEveryHumanInOrder(t *testing.T) {
	transport := &fakeTransport{members: append(members("1", "2"),
		chat.Member{ID: "bot", Name: "beep", Bot: true},
		chat.Member{ID: "3", Name: "user-3"},
	)}
	svc := newTestService(t, transport, &stubLLM{reply: "Have a lovely day!"})

	outcome, err := svc.Run(context.Background(), broadcast.RunParams{TimeOfDay: "morning"})
	require.NoError(t, err)

	assert.Equal(t, 3, outcome.Delivered)
	assert.Equal(t, 1, outcome.Skipped)
	assert.Empty(t, outcome.Failed)
	assert.True(t, outcome.ChannelSent)
	assert.Equal(t, "Morning", outcome.TimeOfDay)

	require.Len(t, transport.dms, 3)
	assert.Equal(t, []sentDM{
		{"1", "Have a lovely day!"},
		{"2", "Have a lovely day!"},
		{"3", "Have a lovely day!"},
	}, transport.dms)
}

func TestRun_GuildResolutionFailureIsFatal(t *testing.T) {
	transport := &fakeTransport{
		guildErr: chat.ErrGuildNotFound(),
		members:  members("1"),
	}
	svc := newTestService(t, transport, &stubLLM{reply: "hi"})

	_, err := svc.Run(context.Background(), broadcast.RunParams{TimeOfDay: "noon"})

	require.Error(t, err)
	assert.Empty(t, transport.channelMsgs)
	assert.Empty(t, transport.dms)
}

func TestRun_ChannelResolutionFailureIsFatal(t *testing.T) {
	transport := &fakeTransport{
		channelErr: chat.ErrChannelNotFound(),
		members:    members("1"),
	}
	svc := newTestService(t, transport, &stubLLM{reply: "hi"})

	_, err := svc.Run(context.Background(), broadcast.RunParams{TimeOfDay: "noon"})

	require.Error(t, err)
	assert.Empty(t, transport.dms)
}

func TestRun_SingleDeniedRecipientGetsOneFallbackReference(t *testing.T) {
	transport := &fakeTransport{
		members: members("1", "2", "3"),
		denyDM:  map[string]bool{"2": true},
	}
	svc := newTestService(t, transport, &stubLLM{reply: "Sweet dreams!"})

	outcome, err := svc.Run(context.Background(), broadcast.RunParams{TimeOfDay: "night"})
	require.NoError(t, err)

	require.Len(t, outcome.Failed, 1)
	assert.Equal(t, "2", outcome.Failed[0].ID)
	assert.Equal(t, 2, outcome.Delivered)

	// channel wish + one fallback notification
	require.Len(t, transport.channelMsgs, 2)
	fallback := transport.channelMsgs[1]
	assert.Equal(t, 1, strings.Count(fallback.Content, "<@2>"))
	assert.Contains(t, fallback.Content, "Sweet dreams!")
	assert.True(t, fallback.NotifyUsers)
}

func TestRun_GenericDMFailureIsNotRecorded(t *testing.T) {
	transport := &fakeTransport{
		members: members("1", "2"),
		failDM:  map[string]bool{"1": true},
	}
	svc := newTestService(t, transport, &stubLLM{reply: "hello"})

	outcome, err := svc.Run(context.Background(), broadcast.RunParams{TimeOfDay: "evening"})
	require.NoError(t, err)

	assert.Empty(t, outcome.Failed)
	assert.Equal(t, 1, outcome.Delivered)
	// no fallback notification, just the channel wish
	assert.Len(t, transport.channelMsgs, 1)
}

func TestRun_FallbackPacksIntoChunksWhenCombinedTooLong(t *testing.T) {
	// 40 long member ids make the combined notification exceed the 2000 limit
	var roster []chat.Member
	deny := map[string]bool{}
	for i := 0; i < 40; i++ {
		id := strings.Repeat("9", 60) + string(rune('A'+i%26)) + string(rune('0'+i%10))
		roster = append(roster, chat.Member{ID: id, Name: "user"})
		deny[id] = true
	}
	transport := &fakeTransport{members: roster, denyDM: deny}
	svc := newTestService(t, transport, &stubLLM{reply: "Stay cozy tonight!"})

	outcome, err := svc.Run(context.Background(), broadcast.RunParams{TimeOfDay: "night"})
	require.NoError(t, err)
	require.Len(t, outcome.Failed, 40)

	// channel wish, then >= 2 fallback chunks
	require.GreaterOrEqual(t, len(transport.channelMsgs), 3)
	fallbacks := transport.channelMsgs[1:]

	totalMentions := 0
	for i, msg := range fallbacks {
		totalMentions += strings.Count(msg.Content, "<@")
		if i < len(fallbacks)-1 {
			assert.NotContains(t, msg.Content, "Stay cozy tonight!")
		}
	}
	assert.Equal(t, 40, totalMentions)
	assert.Contains(t, fallbacks[len(fallbacks)-1].Content, "Stay cozy tonight!")
}

func TestRun_TestModeSendsNothing(t *testing.T) {
	transport := &fakeTransport{members: members("1", "2")}
	svc := newTestService(t, transport, &stubLLM{reply: "hi there"})

	outcome, err := svc.Run(context.Background(), broadcast.RunParams{TimeOfDay: "noon", Test: true})
	require.NoError(t, err)

	assert.Empty(t, transport.channelMsgs)
	assert.Empty(t, transport.dms)
	assert.False(t, outcome.ChannelSent)
	assert.Equal(t, 2, outcome.Delivered)
}

func TestRun_TargetFilterRestrictsDelivery(t *testing.T) {
	transport := &fakeTransport{members: members("1", "2", "3")}
	svc := newTestService(t, transport, &stubLLM{reply: "just you"})

	outcome, err := svc.Run(context.Background(), broadcast.RunParams{TimeOfDay: "noon", TargetID: "2"})
	require.NoError(t, err)

	assert.Equal(t, 1, outcome.Delivered)
	assert.Equal(t, 2, outcome.Skipped)
	require.Len(t, transport.dms, 1)
	assert.Equal(t, "2", transport.dms[0].userID)
}

func TestRun_GenerationFailureFallsBackToCannedWish(t *testing.T) {
	transport := &fakeTransport{members: members("1")}
	svc := newTestService(t, transport, &stubLLM{err: assert.AnError})

	outcome, err := svc.Run(context.Background(), broadcast.RunParams{TimeOfDay: "morning"})
	require.NoError(t, err)

	assert.Equal(t, 1, outcome.Delivered)
	require.Len(t, transport.dms, 1)
	assert.Equal(t, "Hey! Just wanted to wish you a wonderful Morning! Stay happy! ✨", transport.dms[0].content)
	require.Len(t, transport.channelMsgs, 1)
	assert.Equal(t, "Good Morning everyone! Hope you have a great time! 💖", transport.channelMsgs[0].Content)
}
