package services

import (
	"context"
	"time"

	"capturebot/models"
)

// EntitiesService maps external channel and thread IDs to internal row IDs, creating rows on first sight
type EntitiesService interface {
	ResolveChannel(ctx context.Context, discordChannelID, name string) (string, error)
	ResolveThread(
		ctx context.Context,
		discordThreadID, channelID, title string,
		createdAt time.Time,
		isActive bool,
	) (string, error)
}

// MessagesService persists normalized messages and folds reaction events into them
type MessagesService interface {
	UpsertMessage(ctx context.Context, message *models.Message) (*models.Message, error)
	ApplyReaction(
		ctx context.Context,
		discordMessageID, emoji string,
		count int,
	) (models.ReactionMap, error)
	GetRecentReactedMessages(
		ctx context.Context,
		channelName string,
		since time.Time,
	) ([]*models.ReactedMessage, error)
}

// ArchiverService mirrors message media and links to local storage.
// Failures are logged and never returned.
type ArchiverService interface {
	Archive(ctx context.Context, rawURL, channelName, messageID string, createdAt time.Time)
	ArchiveAll(ctx context.Context, urls []string, channelName, messageID string, createdAt time.Time)
}

// TransactionManager handles database transactions via context
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
