package clients

import (
	"context"
	"time"
)

// DiscordChannel is the channel information needed to route an event
type DiscordChannel struct {
	ID       string
	Name     string
	GuildID  string
	ParentID string
	IsThread bool
	// IsArchived is only meaningful for threads
	IsArchived bool
	CreatedAt  time.Time
}

// DiscordClient is the REST surface of the bot session used outside the gateway handlers
type DiscordClient interface {
	GetChannel(ctx context.Context, channelID string) (*DiscordChannel, error)
	// GetReactionCount returns the current count of emoji on the message, or 0 if it has none
	GetReactionCount(ctx context.Context, channelID, messageID, emoji string) (int, error)
	SendReply(ctx context.Context, channelID, messageID, content string) error
}
