package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"capturebot/clients"
)

// DiscordClient implements clients.DiscordClient on top of a bot session
type DiscordClient struct {
	session *discordgo.Session
}

func NewDiscordClient(session *discordgo.Session) *DiscordClient {
	return &DiscordClient{session: session}
}

// GetChannel prefers the gateway state cache and falls back to the REST API
func (c *DiscordClient) GetChannel(ctx context.Context, channelID string) (*clients.DiscordChannel, error) {
	if c.session.State != nil {
		if channel, err := c.session.State.Channel(channelID); err == nil {
			return toDiscordChannel(channel), nil
		}
	}

	channel, err := c.session.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch channel %s: %w", channelID, err)
	}
	if channel == nil {
		return nil, fmt.Errorf("channel %s not found", channelID)
	}

	return toDiscordChannel(channel), nil
}

func (c *DiscordClient) GetReactionCount(ctx context.Context, channelID, messageID, emoji string) (int, error) {
	message, err := c.session.ChannelMessage(channelID, messageID, discordgo.WithContext(ctx))
	if err != nil {
		return 0, fmt.Errorf("failed to fetch message %s: %w", messageID, err)
	}

	return reactionCount(message, emoji), nil
}

func (c *DiscordClient) SendReply(ctx context.Context, channelID, messageID, content string) error {
	reference := &discordgo.MessageReference{
		MessageID: messageID,
		ChannelID: channelID,
	}

	_, err := c.session.ChannelMessageSendReply(channelID, content, reference, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to send reply to message %s: %w", messageID, err)
	}

	return nil
}

func toDiscordChannel(channel *discordgo.Channel) *clients.DiscordChannel {
	result := &clients.DiscordChannel{
		ID:       channel.ID,
		Name:     channel.Name,
		GuildID:  channel.GuildID,
		ParentID: channel.ParentID,
		IsThread: channel.IsThread(),
	}

	if channel.ThreadMetadata != nil {
		result.IsArchived = channel.ThreadMetadata.Archived
	}
	if createdAt, err := discordgo.SnowflakeTimestamp(channel.ID); err == nil {
		result.CreatedAt = createdAt
	}

	return result
}

func reactionCount(message *discordgo.Message, emoji string) int {
	if message == nil {
		return 0
	}
	for _, reaction := range message.Reactions {
		if reaction == nil || reaction.Emoji == nil {
			continue
		}
		if reaction.Emoji.APIName() == emoji {
			return reaction.Count
		}
	}
	return 0
}
