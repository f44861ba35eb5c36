package chatinfra

import (
	"context"

	"github.com/hoshino-dev/hoshi/pkg/chat"
	"github.com/hoshino-dev/hoshi/pkg/logx"
)

// ConsoleTransport logs every send instead of hitting the platform. Useful
// for local development with CHAT_BASE_URL=console: the whole pipeline runs,
// nothing leaves the process.
type ConsoleTransport struct {
	guildID   string
	channelID string
}

func NewConsoleTransport(guildID, channelID string) *ConsoleTransport {
	return &ConsoleTransport{guildID: guildID, channelID: channelID}
}

func (t *ConsoleTransport) Guild(ctx context.Context, guildID string) (*chat.Guild, error) {
	return &chat.Guild{ID: guildID, Name: "console"}, nil
}

func (t *ConsoleTransport) Channel(ctx context.Context, guildID, channelID string) (*chat.Channel, error) {
	return &chat.Channel{ID: channelID, Name: "console"}, nil
}

func (t *ConsoleTransport) Members(ctx context.Context, guildID string) ([]chat.Member, error) {
	return nil, nil
}

func (t *ConsoleTransport) SendChannel(ctx context.Context, channelID string, msg chat.Message) error {
	closeAttachment(msg)
	logx.Infof("[console] #%s: %s", channelID, msg.Content)
	return nil
}

func (t *ConsoleTransport) SendDM(ctx context.Context, userID string, msg chat.Message) error {
	closeAttachment(msg)
	logx.Infof("[console] @%s: %s", userID, msg.Content)
	return nil
}

func closeAttachment(msg chat.Message) {
	if msg.Attachment != nil {
		msg.Attachment.Reader.Close()
	}
}

var _ chat.Transport = (*ConsoleTransport)(nil)
