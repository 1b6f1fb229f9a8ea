package usecases

import (
	"context"

	"capturebot/models"
)

// DiscordUseCaseInterface is what the gateway handlers dispatch events to
type DiscordUseCaseInterface interface {
	ProcessMessageEvent(ctx context.Context, event *models.DiscordMessageEvent) error
	ProcessThreadEvent(ctx context.Context, event *models.DiscordThreadEvent) error
	ProcessReactionEvent(ctx context.Context, event *models.DiscordReactionEvent) error
	ProcessRankingCommand(ctx context.Context, event *models.DiscordMessageEvent) error
	IsRankingCommand(content string) bool
}
