package chat

import (
	"context"
	"io"
	"net/http"

	"github.com/hoshino-dev/hoshi/pkg/errx"
	"github.com/hoshino-dev/hoshi/pkg/fsx"
)

// MaxMessageLen is the hard transport limit on a single message
const MaxMessageLen = 2000

// ============================================================================
// Entities
// ============================================================================

// Guild is a community the bot is a member of
type Guild struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Channel is a text channel inside a guild
type Channel struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	CategoryID string `json:"category_id"`
}

// Member is one person (or automated account) in a guild
type Member struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Bot  bool   `json:"bot"`
}

// Mention renders a reference that both displays and notifies the member
func (m Member) Mention() string {
	return "<@" + m.ID + ">"
}

// Attachment is a named single-use byte stream. The reader is consumed by
// one send; use an AttachmentSource to produce a fresh one per send.
type Attachment struct {
	Name   string
	Reader io.ReadCloser
}

// AttachmentSource re-materializes an attachment on demand
type AttachmentSource struct {
	Name string
	fs   fsx.FileSystem
}

// NewAttachmentSource creates a source for the named asset
func NewAttachmentSource(fs fsx.FileSystem, name string) *AttachmentSource {
	return &AttachmentSource{Name: name, fs: fs}
}

// Materialize opens a fresh stream for one send
func (s *AttachmentSource) Materialize(ctx context.Context) (*Attachment, error) {
	reader, err := s.fs.Open(ctx, s.Name)
	if err != nil {
		return nil, errx.Wrap(err, "failed to open attachment", errx.TypeInternal).
			WithDetail("name", s.Name)
	}
	return &Attachment{Name: s.Name, Reader: reader}, nil
}

// Message is an outbound message
type Message struct {
	Content    string
	Attachment *Attachment
	// NotifyUsers controls whether user mentions in Content ping their targets
	NotifyUsers bool
}

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("CHAT")

var (
	CodeGuildNotFound    = ErrRegistry.Register("GUILD_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Guild not found")
	CodeChannelNotFound  = ErrRegistry.Register("CHANNEL_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Channel not found")
	CodePermissionDenied = ErrRegistry.Register("PERMISSION_DENIED", errx.TypeAuthorization, http.StatusForbidden, "Recipient does not accept this delivery")
	CodeSendFailed       = ErrRegistry.Register("SEND_FAILED", errx.TypeExternal, http.StatusBadGateway, "Message delivery failed")
)

func ErrGuildNotFound() *errx.Error {
	return ErrRegistry.New(CodeGuildNotFound)
}

func ErrChannelNotFound() *errx.Error {
	return ErrRegistry.New(CodeChannelNotFound)
}

func ErrPermissionDenied() *errx.Error {
	return ErrRegistry.New(CodePermissionDenied)
}

func ErrSendFailed() *errx.Error {
	return ErrRegistry.New(CodeSendFailed)
}

// IsPermissionDenied distinguishes the tracked delivery-failure kind from
// generic send failures
func IsPermissionDenied(err error) bool {
	return errx.IsCode(err, CodePermissionDenied)
}
