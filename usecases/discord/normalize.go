package discord

import (
	"capturebot/models"
	"capturebot/utils"
)

// NormalizeMessage builds the message row for event. channelID and threadID are the
// already-resolved internal IDs; threadID is nil for top-level messages.
func NormalizeMessage(event *models.DiscordMessageEvent, channelID string, threadID *string) *models.Message {
	mediaURLs := make([]string, 0, len(event.Attachments))
	for _, attachment := range event.Attachments {
		mediaURLs = append(mediaURLs, attachment.URL)
	}

	embedURLs := make([]string, 0, len(event.Embeds))
	for _, embed := range event.Embeds {
		if embed.URL == "" {
			continue
		}
		embedURLs = append(embedURLs, embed.URL)
	}

	var replyTo *string
	if event.ReplyToMessageID != nil && *event.ReplyToMessageID != "" {
		id := *event.ReplyToMessageID
		replyTo = &id
	}

	return &models.Message{
		DiscordMessageID: event.MessageID,
		ChannelID:        channelID,
		ThreadID:         threadID,
		ReplyToMessageID: replyTo,
		AuthorID:         event.AuthorID,
		Content:          event.Content,
		CreatedAt:        event.CreatedAt,
		URLs:             utils.ExtractURLs(event.Content),
		MediaURLs:        mediaURLs,
		EmbedURLs:        embedURLs,
		Reactions:        models.ReactionMap{},
	}
}
