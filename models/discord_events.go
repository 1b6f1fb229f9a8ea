package models

import "time"

type DiscordAttachment struct {
	URL      string
	Filename string
}

type DiscordEmbed struct {
	URL   string
	Title string
}

// DiscordThreadInfo describes the thread a message was posted in
type DiscordThreadInfo struct {
	ThreadID  string
	Title     string
	CreatedAt time.Time
	IsActive  bool
}

type DiscordMessageEvent struct {
	GuildID string
	// ChannelID is always the top-level channel, even for thread messages
	ChannelID   string
	ChannelName string
	MessageID   string
	AuthorID    string
	Content     string
	CreatedAt   time.Time
	// Thread is nil for top-level messages
	Thread *DiscordThreadInfo
	// ReplyToMessageID is set only when the message references another message
	ReplyToMessageID *string
	Attachments      []DiscordAttachment
	Embeds           []DiscordEmbed
}

// ReplyChannelID returns the channel or thread the message was posted in
func (e *DiscordMessageEvent) ReplyChannelID() string {
	if e.Thread != nil {
		return e.Thread.ThreadID
	}
	return e.ChannelID
}

type DiscordThreadEvent struct {
	GuildID           string
	ParentChannelID   string
	ParentChannelName string
	Thread            DiscordThreadInfo
}

type DiscordReactionEvent struct {
	GuildID   string
	ChannelID string
	MessageID string
	UserID    string
	Emoji     string
	// Count is the platform-reported total for Emoji after the event
	Count int
	Added bool
}
