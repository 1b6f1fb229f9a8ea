package entities

import (
	"context"
	"fmt"
	"log"
	"time"

	"capturebot/core"
	"capturebot/db"
)

type EntitiesService struct {
	entitiesRepo *db.PostgresEntitiesRepository
}

func NewEntitiesService(repo *db.PostgresEntitiesRepository) *EntitiesService {
	return &EntitiesService{entitiesRepo: repo}
}

// ResolveChannel returns the internal ID for the channel, creating the row on first sight.
// The name of an existing channel is left as first recorded.
func (s *EntitiesService) ResolveChannel(ctx context.Context, discordChannelID, name string) (string, error) {
	log.Printf("📋 Starting to resolve channel %s (%s)", discordChannelID, name)

	if discordChannelID == "" {
		return "", fmt.Errorf("channel ID cannot be empty")
	}

	channelID, err := s.entitiesRepo.GetOrCreateEntity(ctx, db.ChannelEntity, discordChannelID, map[string]any{
		"name":       name,
		"created_at": time.Now().UTC(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to resolve channel %s: %w", discordChannelID, err)
	}

	log.Printf("📋 Completed successfully - resolved channel %s to %s", discordChannelID, channelID)
	return channelID, nil
}

// ResolveThread returns the internal ID for the thread, creating the row under channelID on first sight
func (s *EntitiesService) ResolveThread(
	ctx context.Context,
	discordThreadID, channelID, title string,
	createdAt time.Time,
	isActive bool,
) (string, error) {
	log.Printf("📋 Starting to resolve thread %s (%s) in channel %s", discordThreadID, title, channelID)

	if discordThreadID == "" {
		return "", fmt.Errorf("thread ID cannot be empty")
	}
	if channelID == "" {
		return "", fmt.Errorf("owner channel ID cannot be empty")
	}
	if !core.IsValidID(channelID) {
		return "", fmt.Errorf("owner channel ID %q is not an internal ID", channelID)
	}
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	threadID, err := s.entitiesRepo.GetOrCreateEntity(ctx, db.ThreadEntity, discordThreadID, map[string]any{
		"channel_id": channelID,
		"title":      title,
		"created_at": createdAt.UTC(),
		"is_active":  isActive,
	})
	if err != nil {
		return "", fmt.Errorf("failed to resolve thread %s: %w", discordThreadID, err)
	}

	log.Printf("📋 Completed successfully - resolved thread %s to %s", discordThreadID, threadID)
	return threadID, nil
}
