package discord

import (
	"fmt"
	"strings"
	"time"

	"capturebot/models"
)

const (
	rankingErrorReply     = "Sorry, something went wrong while fetching the top messages. Please try again later."
	noRankedMessagesReply = "No messages with reactions in #%s in the last %s."
	emptyContentText      = "(no text content)"
	blockLinePrefix       = "┃ "
	messageLinkFormat     = "https://discord.com/channels/%s/%s/%s"
)

// MessageLink returns the deep link to a message
func MessageLink(guildID, channelID, messageID string) string {
	return fmt.Sprintf(messageLinkFormat, guildID, channelID, messageID)
}

// FormatRankingReply renders one block per ranked message: a header with the deep link,
// then the content, the reaction total and any URLs not already in the content
func FormatRankingReply(guildID, channelName string, window time.Duration, ranked []*models.RankedMessage) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s Top %d reacted message(s) in #%s (last %s)\n",
		EmojiTrophy, len(ranked), channelName, formatWindow(window))

	for i, entry := range ranked {
		message := entry.Message
		sb.WriteString("\n")
		fmt.Fprintf(&sb, "**%d.** %s\n", i+1, MessageLink(guildID, entry.LinkChannelID, message.DiscordMessageID))

		content := strings.TrimSpace(message.Content)
		if content == "" {
			content = emptyContentText
		}
		for _, line := range strings.Split(content, "\n") {
			sb.WriteString(blockLinePrefix + line + "\n")
		}

		fmt.Fprintf(&sb, "%s%s %d reaction(s)\n", blockLinePrefix, EmojiReactions, entry.TotalReactions)

		for _, u := range extraURLs(message) {
			fmt.Fprintf(&sb, "%s%s %s\n", blockLinePrefix, EmojiLink, u)
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}

// extraURLs lists the plain, media and embed URLs of message that its content does not already contain
func extraURLs(message *models.Message) []string {
	seen := make(map[string]bool)
	var result []string
	for _, list := range [][]string{message.URLs, message.MediaURLs, message.EmbedURLs} {
		for _, u := range list {
			if u == "" || seen[u] || strings.Contains(message.Content, u) {
				continue
			}
			seen[u] = true
			result = append(result, u)
		}
	}
	return result
}

func formatWindow(window time.Duration) string {
	if window > 0 && window%time.Hour == 0 {
		return fmt.Sprintf("%dh", int(window/time.Hour))
	}
	return window.String()
}
