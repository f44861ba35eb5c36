package chatinfra

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"

	"github.com/hoshino-dev/hoshi/pkg/chat"
	"github.com/hoshino-dev/hoshi/pkg/errx"
)

// RestTransport talks to the chat platform's HTTP gateway
type RestTransport struct {
	client *resty.Client
}

// NewRestTransport creates a transport against baseURL authenticated with the bot token
func NewRestTransport(baseURL, botToken string) *RestTransport {
	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Authorization", "Bot "+botToken).
		SetHeader("Accept", "application/json")

	return &RestTransport{client: client}
}

// Guild resolves a guild by id
func (t *RestTransport) Guild(ctx context.Context, guildID string) (*chat.Guild, error) {
	var guild chat.Guild
	resp, err := t.client.R().
		SetContext(ctx).
		SetResult(&guild).
		Get("/guilds/" + guildID)
	if err != nil {
		return nil, errx.Wrap(err, "failed to fetch guild", errx.TypeExternal).
			WithDetail("guild_id", guildID)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, chat.ErrGuildNotFound().WithDetail("guild_id", guildID)
	}
	if resp.IsError() {
		return nil, unexpectedStatus(resp, "guild lookup")
	}
	return &guild, nil
}

// Channel resolves a channel inside a guild
func (t *RestTransport) Channel(ctx context.Context, guildID, channelID string) (*chat.Channel, error) {
	var channel chat.Channel
	resp, err := t.client.R().
		SetContext(ctx).
		SetResult(&channel).
		Get(fmt.Sprintf("/guilds/%s/channels/%s", guildID, channelID))
	if err != nil {
		return nil, errx.Wrap(err, "failed to fetch channel", errx.TypeExternal).
			WithDetail("channel_id", channelID)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, chat.ErrChannelNotFound().WithDetail("channel_id", channelID)
	}
	if resp.IsError() {
		return nil, unexpectedStatus(resp, "channel lookup")
	}
	return &channel, nil
}

// Members enumerates all members of a guild
func (t *RestTransport) Members(ctx context.Context, guildID string) ([]chat.Member, error) {
	var members []chat.Member
	resp, err := t.client.R().
		SetContext(ctx).
		SetResult(&members).
		Get("/guilds/" + guildID + "/members")
	if err != nil {
		return nil, errx.Wrap(err, "failed to fetch members", errx.TypeExternal).
			WithDetail("guild_id", guildID)
	}
	if resp.IsError() {
		return nil, unexpectedStatus(resp, "member enumeration")
	}
	return members, nil
}

// SendChannel posts a message to a channel
func (t *RestTransport) SendChannel(ctx context.Context, channelID string, msg chat.Message) error {
	return t.post(ctx, "/channels/"+channelID+"/messages", msg, "channel_id", channelID)
}

// SendDM delivers a direct message to one member
func (t *RestTransport) SendDM(ctx context.Context, userID string, msg chat.Message) error {
	return t.post(ctx, "/users/"+userID+"/messages", msg, "user_id", userID)
}

type messagePayload struct {
	Content     string `json:"content"`
	NotifyUsers bool   `json:"notify_users"`
}

func (t *RestTransport) post(ctx context.Context, path string, msg chat.Message, detailKey, detailVal string) error {
	req := t.client.R().SetContext(ctx)

	payload := messagePayload{Content: msg.Content, NotifyUsers: msg.NotifyUsers}

	if msg.Attachment != nil {
		defer msg.Attachment.Reader.Close()
		body, err := json.Marshal(payload)
		if err != nil {
			return errx.Wrap(err, "failed to encode message payload", errx.TypeInternal)
		}
		req.SetFileReader("file", msg.Attachment.Name, msg.Attachment.Reader).
			SetMultipartFormData(map[string]string{"payload_json": string(body)})
	} else {
		req.SetHeader("Content-Type", "application/json").SetBody(payload)
	}

	resp, err := req.Post(path)
	if err != nil {
		return errx.Wrap(err, "failed to deliver message", errx.TypeExternal).
			WithDetail(detailKey, detailVal)
	}
	if resp.StatusCode() == http.StatusForbidden {
		return chat.ErrPermissionDenied().WithDetail(detailKey, detailVal)
	}
	if resp.IsError() {
		return chat.ErrSendFailed().
			WithDetail(detailKey, detailVal).
			WithDetail("status", resp.StatusCode())
	}
	return nil
}

func unexpectedStatus(resp *resty.Response, operation string) *errx.Error {
	return errx.Wrap(
		fmt.Errorf("unexpected status %d", resp.StatusCode()),
		operation+" failed", errx.TypeExternal,
	)
}

var _ chat.Transport = (*RestTransport)(nil)
