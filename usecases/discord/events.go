package discord

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"capturebot/core"
	"capturebot/models"
)

// ProcessMessageEvent resolves the message's channel and thread, then upserts the
// normalized message while its URLs are archived. Archival never fails the event.
func (d *DiscordUseCase) ProcessMessageEvent(ctx context.Context, event *models.DiscordMessageEvent) error {
	log.Printf("📋 Starting to process message %s from user %s in channel %s",
		event.MessageID, event.AuthorID, event.ChannelID)

	channelID, err := d.entitiesService.ResolveChannel(ctx, event.ChannelID, event.ChannelName)
	if err != nil {
		log.Printf("❌ Failed to resolve channel %s: %v", event.ChannelID, err)
		return fmt.Errorf("failed to resolve channel: %w", err)
	}

	var threadID *string
	if event.Thread != nil {
		resolved, err := d.entitiesService.ResolveThread(
			ctx,
			event.Thread.ThreadID,
			channelID,
			event.Thread.Title,
			event.Thread.CreatedAt,
			event.Thread.IsActive,
		)
		if err != nil {
			log.Printf("❌ Failed to resolve thread %s: %v", event.Thread.ThreadID, err)
			return fmt.Errorf("failed to resolve thread: %w", err)
		}
		threadID = &resolved
	}

	message := NormalizeMessage(event, channelID, threadID)
	archivable := message.ArchivableURLs()

	var g errgroup.Group
	g.Go(func() error {
		_, err := d.messagesService.UpsertMessage(ctx, message)
		return err
	})
	if len(archivable) > 0 {
		g.Go(func() error {
			d.archiverService.ArchiveAll(ctx, archivable, event.ChannelName, event.MessageID, event.CreatedAt)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Printf("❌ Failed to store message %s: %v", event.MessageID, err)
		return fmt.Errorf("failed to store message: %w", err)
	}

	log.Printf("📋 Completed successfully - captured message %s (%d URL(s), %d attachment(s), %d embed(s))",
		event.MessageID, len(message.URLs), len(message.MediaURLs), len(message.EmbedURLs))
	return nil
}

// ProcessThreadEvent records a thread created under a monitored channel
func (d *DiscordUseCase) ProcessThreadEvent(ctx context.Context, event *models.DiscordThreadEvent) error {
	log.Printf("📋 Starting to process thread %s created in channel %s", event.Thread.ThreadID, event.ParentChannelID)

	channelID, err := d.entitiesService.ResolveChannel(ctx, event.ParentChannelID, event.ParentChannelName)
	if err != nil {
		log.Printf("❌ Failed to resolve channel %s: %v", event.ParentChannelID, err)
		return fmt.Errorf("failed to resolve channel: %w", err)
	}

	threadID, err := d.entitiesService.ResolveThread(
		ctx,
		event.Thread.ThreadID,
		channelID,
		event.Thread.Title,
		event.Thread.CreatedAt,
		event.Thread.IsActive,
	)
	if err != nil {
		log.Printf("❌ Failed to resolve thread %s: %v", event.Thread.ThreadID, err)
		return fmt.Errorf("failed to resolve thread: %w", err)
	}

	log.Printf("📋 Completed successfully - captured thread %s as %s", event.Thread.ThreadID, threadID)
	return nil
}

// ProcessReactionEvent folds a reaction add or remove into the target message.
// Reactions on messages that were never captured are skipped.
func (d *DiscordUseCase) ProcessReactionEvent(ctx context.Context, event *models.DiscordReactionEvent) error {
	action := "removed"
	if event.Added {
		action = "added"
	}
	log.Printf("📋 Starting to process reaction %s %s on message %s (count=%d)",
		event.Emoji, action, event.MessageID, event.Count)

	reactions, err := d.messagesService.ApplyReaction(ctx, event.MessageID, event.Emoji, event.Count)
	if err != nil {
		if core.IsNotFoundError(err) {
			log.Printf("⚠️ Message %s has not been captured - skipping reaction", event.MessageID)
			return nil
		}
		log.Printf("❌ Failed to apply reaction to message %s: %v", event.MessageID, err)
		return fmt.Errorf("failed to apply reaction: %w", err)
	}

	log.Printf("📋 Completed successfully - message %s has %d reaction(s) across %d emoji(s)",
		event.MessageID, reactions.Total(), len(reactions))
	return nil
}
