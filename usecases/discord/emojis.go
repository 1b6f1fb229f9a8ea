package discord

const (
	EmojiTrophy    = "🏆"
	EmojiReactions = "🔥"
	EmojiLink      = "🔗"
)
