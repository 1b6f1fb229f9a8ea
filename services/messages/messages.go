package messages

import (
	"context"
	"fmt"
	"log"
	"time"

	"capturebot/core"
	"capturebot/db"
	"capturebot/models"
	"capturebot/services"
)

type MessagesService struct {
	messagesRepo *db.PostgresMessagesRepository
	txManager    services.TransactionManager
}

func NewMessagesService(
	repo *db.PostgresMessagesRepository,
	txManager services.TransactionManager,
) *MessagesService {
	return &MessagesService{
		messagesRepo: repo,
		txManager:    txManager,
	}
}

// UpsertMessage writes the message keyed by its Discord message ID.
// An existing row keeps its internal ID and reactions; every other field is overwritten.
func (s *MessagesService) UpsertMessage(ctx context.Context, message *models.Message) (*models.Message, error) {
	log.Printf("📋 Starting to upsert message %s", message.DiscordMessageID)

	if message.DiscordMessageID == "" {
		return nil, fmt.Errorf("message ID cannot be empty")
	}
	if message.ChannelID == "" {
		return nil, fmt.Errorf("channel ID cannot be empty")
	}
	if !core.IsValidID(message.ChannelID) {
		return nil, fmt.Errorf("channel ID %q is not an internal ID", message.ChannelID)
	}
	if message.ThreadID != nil && !core.IsValidID(*message.ThreadID) {
		return nil, fmt.Errorf("thread ID %q is not an internal ID", *message.ThreadID)
	}

	dbMessage := db.FromMessageModel(message)
	if dbMessage.ID == "" {
		dbMessage.ID = core.NewID(core.MessageIDPrefix)
	}

	if err := s.messagesRepo.UpsertMessage(ctx, dbMessage); err != nil {
		return nil, fmt.Errorf("failed to upsert message %s: %w", message.DiscordMessageID, err)
	}

	log.Printf("📋 Completed successfully - upserted message %s as %s", message.DiscordMessageID, dbMessage.ID)
	return dbMessage.ToModel(), nil
}

// ApplyReaction folds the platform-reported count for emoji into the message's reaction map.
// The count alone decides the outcome for both additions and removals: a positive count is
// stored and zero removes the key.
// The row is locked while the map is re-read, merged and written back, so concurrent
// events for different emojis on the same message cannot overwrite each other.
// Returns core.ErrNotFound when the message has not been captured.
func (s *MessagesService) ApplyReaction(
	ctx context.Context,
	discordMessageID, emoji string,
	count int,
) (models.ReactionMap, error) {
	log.Printf("📋 Starting to apply reaction %s (count=%d) to message %s", emoji, count, discordMessageID)

	if discordMessageID == "" {
		return nil, fmt.Errorf("message ID cannot be empty")
	}
	if emoji == "" {
		return nil, fmt.Errorf("emoji cannot be empty")
	}

	var merged models.ReactionMap
	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		current, err := s.messagesRepo.GetMessageReactionsForUpdate(ctx, discordMessageID)
		if err != nil {
			return err
		}
		if !current.IsPresent() {
			return fmt.Errorf("message %s: %w", discordMessageID, core.ErrNotFound)
		}

		merged = current.MustGet().Clone()
		merged.Apply(emoji, count)

		updated, err := s.messagesRepo.UpdateMessageReactions(ctx, discordMessageID, merged)
		if err != nil {
			return err
		}
		if !updated {
			return fmt.Errorf("message %s: %w", discordMessageID, core.ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to apply reaction to message %s: %w", discordMessageID, err)
	}

	log.Printf("📋 Completed successfully - message %s now has %d reaction(s)", discordMessageID, merged.Total())
	return merged, nil
}

// GetRecentReactedMessages returns reacted messages of the named channel created at or after since, newest first
func (s *MessagesService) GetRecentReactedMessages(
	ctx context.Context,
	channelName string,
	since time.Time,
) ([]*models.ReactedMessage, error) {
	log.Printf("📋 Starting to get reacted messages in #%s since %s", channelName, since.Format(time.RFC3339))

	rows, err := s.messagesRepo.GetRecentReactedMessages(ctx, channelName, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get reacted messages for #%s: %w", channelName, err)
	}

	result := make([]*models.ReactedMessage, 0, len(rows))
	for _, row := range rows {
		result = append(result, &models.ReactedMessage{
			Message:       row.ToModel(),
			LinkChannelID: row.LinkChannelID,
		})
	}

	log.Printf("📋 Completed successfully - found %d reacted message(s) in #%s", len(result), channelName)
	return result, nil
}
