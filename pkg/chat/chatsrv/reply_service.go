package chatsrv

import (
	"context"

	"github.com/hoshino-dev/hoshi/pkg/ai/genx"
	"github.com/hoshino-dev/hoshi/pkg/chat"
	"github.com/hoshino-dev/hoshi/pkg/config"
	"github.com/hoshino-dev/hoshi/pkg/logx"
	"github.com/hoshino-dev/hoshi/pkg/memory"
	"github.com/hoshino-dev/hoshi/pkg/memory/memorysrv"
)

const replyFallback = "Aww, my thoughts got a little tangled there 😅 Could you say that again?"

// InboundMessage is one user message arriving from the chat platform
type InboundMessage struct {
	UserID     string `json:"user_id"`
	UserName   string `json:"user_name"`
	Content    string `json:"content"`
	GuildID    string `json:"guild_id"`
	ChannelID  string `json:"channel_id"`
	CategoryID string `json:"category_id"`
	Bot        bool   `json:"bot"`
}

// ReplyResult reports what the pipeline did with an inbound message
type ReplyResult struct {
	Handled bool   `json:"handled"`
	Reply   string `json:"reply,omitempty"`
}

// ReplyService runs the per-message pipeline: eligibility filter, memory
// load, persona prompt, generation with fallback, channel send, and
// best-effort memory compaction + save.
type ReplyService struct {
	transport    chat.Transport
	gen          *genx.Generator
	store        *memorysrv.Store
	compactor    *memorysrv.Compactor
	cfg          config.ChatConfig
	keepMessages int
}

// NewReplyService wires the reply pipeline
func NewReplyService(
	transport chat.Transport,
	gen *genx.Generator,
	store *memorysrv.Store,
	compactor *memorysrv.Compactor,
	cfg config.ChatConfig,
	keepMessages int,
) *ReplyService {
	return &ReplyService{
		transport:    transport,
		gen:          gen,
		store:        store,
		compactor:    compactor,
		cfg:          cfg,
		keepMessages: keepMessages,
	}
}

// HandleMessage processes one inbound message end to end
func (s *ReplyService) HandleMessage(ctx context.Context, msg InboundMessage) (*ReplyResult, error) {
	logx.Infof("Message from %s received", msg.UserName)

	if !s.eligible(msg) {
		return &ReplyResult{Handled: false}, nil
	}

	// Memory is best-effort: Load never fails, it degrades to empty
	rec := s.store.Load(ctx, msg.UserID)

	prompt := s.cfg.PersonaPrompt + "\n\n" +
		memorysrv.BuildReplyPrompt(msg.UserName, msg.Content, rec, s.keepMessages)

	reply := s.gen.Generate(ctx, prompt, replyFallback)

	channelID := msg.ChannelID
	if channelID == "" {
		channelID = s.cfg.ChannelID
	}
	mention := chat.Member{ID: msg.UserID}.Mention()
	if err := s.transport.SendChannel(ctx, channelID, chat.Message{
		Content:     mention + " " + reply,
		NotifyUsers: true,
	}); err != nil {
		logx.Errorf("Error sending reply to channel %s: %v", channelID, err)
	}

	s.persistTurn(ctx, msg, rec, reply)

	return &ReplyResult{Handled: true, Reply: reply}, nil
}

// eligible applies the guild/category/channel restrictions unless debug mode is on
func (s *ReplyService) eligible(msg InboundMessage) bool {
	if msg.Bot {
		logx.Debug("Ignoring bot message.")
		return false
	}
	if s.cfg.DebugMode {
		return true
	}
	if msg.GuildID != s.cfg.GuildID {
		logx.Debug("Message not from the correct guild.")
		return false
	}
	if s.cfg.CategoryID != "" && msg.CategoryID != s.cfg.CategoryID {
		logx.Debug("Message not from the correct category.")
		return false
	}
	if msg.ChannelID != s.cfg.ChannelID {
		logx.Debug("Message not from the correct channel.")
		return false
	}
	return true
}

// persistTurn folds the exchange into memory and saves; failures stay local
func (s *ReplyService) persistTurn(ctx context.Context, msg InboundMessage, rec memory.Record, reply string) {
	userTurn := memory.NewTurn(memory.RoleUser, msg.UserName, msg.Content)
	assistantTurn := memory.NewTurn(memory.RoleAssistant, s.cfg.PersonaName, reply)

	updated := s.compactor.ApplyTurn(ctx, rec, userTurn, assistantTurn)
	s.store.Save(ctx, msg.UserID, updated)
}
