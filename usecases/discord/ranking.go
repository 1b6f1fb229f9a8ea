package discord

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"capturebot/models"
	"capturebot/utils"
)

const discordMaxMessageLength = 2000

// IsRankingCommand reports whether content is exactly the configured ranking command
func (d *DiscordUseCase) IsRankingCommand(content string) bool {
	return strings.TrimSpace(content) == d.rankingConfig.Command
}

// ProcessRankingCommand replies to the command message with the most reacted recent
// messages of the ranking channel
func (d *DiscordUseCase) ProcessRankingCommand(ctx context.Context, event *models.DiscordMessageEvent) error {
	log.Printf("📋 Starting to process ranking command from user %s in channel %s", event.AuthorID, event.ChannelID)

	since := d.now().Add(-d.rankingConfig.Window)
	candidates, err := d.messagesService.GetRecentReactedMessages(ctx, d.rankingConfig.ChannelName, since)
	if err != nil {
		log.Printf("❌ Failed to get reacted messages for ranking: %v", err)
		return d.reply(ctx, event, rankingErrorReply)
	}

	if len(candidates) == 0 {
		log.Printf("⚠️ No reacted messages in #%s since %s", d.rankingConfig.ChannelName, since)
		return d.reply(ctx, event, fmt.Sprintf(noRankedMessagesReply, d.rankingConfig.ChannelName,
			formatWindow(d.rankingConfig.Window)))
	}

	ranked := RankMessages(candidates, d.rankingConfig.Limit)
	content := FormatRankingReply(event.GuildID, d.rankingConfig.ChannelName, d.rankingConfig.Window, ranked)
	if err := d.reply(ctx, event, content); err != nil {
		return err
	}

	log.Printf("📋 Completed successfully - replied with %d ranked message(s) out of %d candidate(s)",
		len(ranked), len(candidates))
	return nil
}

func (d *DiscordUseCase) reply(ctx context.Context, event *models.DiscordMessageEvent, content string) error {
	for _, chunk := range utils.SplitMessage(content, discordMaxMessageLength) {
		if err := d.discordClient.SendReply(ctx, event.ReplyChannelID(), event.MessageID, chunk); err != nil {
			log.Printf("❌ Failed to send ranking reply: %v", err)
			return fmt.Errorf("failed to send ranking reply: %w", err)
		}
	}
	return nil
}

// RankMessages orders candidates by total reaction count, highest first, and keeps at most limit.
// Equal totals keep their input order.
func RankMessages(candidates []*models.ReactedMessage, limit int) []*models.RankedMessage {
	ranked := make([]*models.RankedMessage, 0, len(candidates))
	for _, candidate := range candidates {
		ranked = append(ranked, &models.RankedMessage{
			ReactedMessage: *candidate,
			TotalReactions: candidate.Message.Reactions.Total(),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TotalReactions > ranked[j].TotalReactions
	})

	if limit >= 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
