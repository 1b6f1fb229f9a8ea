package models

import "time"

type Message struct {
	ID               string      `json:"id"`
	DiscordMessageID string      `json:"discord_message_id"`
	ChannelID        string      `json:"channel_id"`
	ThreadID         *string     `json:"thread_id,omitempty"`
	ReplyToMessageID *string     `json:"reply_to_message_id,omitempty"`
	AuthorID         string      `json:"author_id"`
	Content          string      `json:"content"`
	CreatedAt        time.Time   `json:"created_at"`
	URLs             []string    `json:"urls"`
	MediaURLs        []string    `json:"media_urls"`
	EmbedURLs        []string    `json:"embed_urls"`
	Reactions        ReactionMap `json:"reactions"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// ArchivableURLs returns the plain and media URLs of the message with duplicates removed, in order
func (m *Message) ArchivableURLs() []string {
	seen := make(map[string]bool, len(m.URLs)+len(m.MediaURLs))
	result := make([]string, 0, len(m.URLs)+len(m.MediaURLs))
	for _, list := range [][]string{m.MediaURLs, m.URLs} {
		for _, u := range list {
			if seen[u] {
				continue
			}
			seen[u] = true
			result = append(result, u)
		}
	}
	return result
}

// ReactedMessage is a message candidate for the ranking command
type ReactedMessage struct {
	Message *Message
	// LinkChannelID is the external thread ID for thread messages, otherwise the external channel ID
	LinkChannelID string
}

type RankedMessage struct {
	ReactedMessage
	TotalReactions int
}
