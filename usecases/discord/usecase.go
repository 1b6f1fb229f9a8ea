package discord

import (
	"time"

	"capturebot/clients"
	"capturebot/config"
	"capturebot/services"
)

// DiscordUseCase handles captured Discord events and the ranking command
type DiscordUseCase struct {
	discordClient   clients.DiscordClient
	entitiesService services.EntitiesService
	messagesService services.MessagesService
	archiverService services.ArchiverService
	rankingConfig   config.RankingConfig
	now             func() time.Time
}

func NewDiscordUseCase(
	discordClient clients.DiscordClient,
	entitiesService services.EntitiesService,
	messagesService services.MessagesService,
	archiverService services.ArchiverService,
	rankingConfig config.RankingConfig,
) *DiscordUseCase {
	return &DiscordUseCase{
		discordClient:   discordClient,
		entitiesService: entitiesService,
		messagesService: messagesService,
		archiverService: archiverService,
		rankingConfig:   rankingConfig,
		now:             time.Now,
	}
}
