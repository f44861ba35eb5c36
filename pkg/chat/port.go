package chat

import (
	"context"
)

// Transport defines the contract with the chat platform. Implementations own
// connection details, authentication and rate-limit headers; callers own
// pacing between sends.
type Transport interface {
	Guild(ctx context.Context, guildID string) (*Guild, error)
	Channel(ctx context.Context, guildID, channelID string) (*Channel, error)
	// Members enumerates guild members in the platform's stable order
	Members(ctx context.Context, guildID string) ([]Member, error)
	SendChannel(ctx context.Context, channelID string, msg Message) error
	// SendDM delivers to one member; a refusal is reported as a
	// permission-denied error, anything else as a generic send failure
	SendDM(ctx context.Context, userID string, msg Message) error
}
