package handlers

import (
	"context"
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"

	"capturebot/clients"
	"capturebot/config"
	"capturebot/models"
	"capturebot/usecases"
)

type DiscordEventsHandler struct {
	discordSDKClient *discordgo.Session
	discordClient    clients.DiscordClient
	discordUseCase   usecases.DiscordUseCaseInterface
	appConfig        *config.AppConfig
}

func NewDiscordEventsHandler(
	session *discordgo.Session,
	discordClient clients.DiscordClient,
	discordUseCase usecases.DiscordUseCaseInterface,
	appConfig *config.AppConfig,
) *DiscordEventsHandler {
	handler := &DiscordEventsHandler{
		discordSDKClient: session,
		discordClient:    discordClient,
		discordUseCase:   discordUseCase,
		appConfig:        appConfig,
	}

	// Register event handlers
	session.AddHandler(handler.handleReadyEvent)
	session.AddHandler(handler.handleDisconnectEvent)
	session.AddHandler(handler.handleRateLimitEvent)
	session.AddHandler(handler.handleMessageCreatedEvent)
	session.AddHandler(handler.handleThreadCreatedEvent)
	session.AddHandler(handler.handleReactionAddedEvent)
	session.AddHandler(handler.handleReactionRemovedEvent)

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentsMessageContent

	return handler
}

// StartBot opens the Discord connection and starts listening for events
func (h *DiscordEventsHandler) StartBot() error {
	if err := h.discordSDKClient.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}

	log.Printf("🤖 Discord bot is now running and listening on %d channel(s)", len(h.appConfig.MonitoredChannelIDs))
	return nil
}

// StopBot gracefully closes the Discord connection
func (h *DiscordEventsHandler) StopBot() {
	if err := h.discordSDKClient.Close(); err != nil {
		log.Printf("⚠️ Failed to close Discord session: %v", err)
	}
}

func (h *DiscordEventsHandler) handleReadyEvent(_ *discordgo.Session, r *discordgo.Ready) {
	username := "unknown"
	if r.User != nil {
		username = r.User.Username
	}
	log.Printf("✅ Discord gateway ready as %s in %d guild(s)", username, len(r.Guilds))
}

func (h *DiscordEventsHandler) handleDisconnectEvent(_ *discordgo.Session, _ *discordgo.Disconnect) {
	log.Printf("⚠️ Discord gateway disconnected, waiting for reconnect")
}

func (h *DiscordEventsHandler) handleRateLimitEvent(_ *discordgo.Session, r *discordgo.RateLimit) {
	if r.TooManyRequests == nil {
		log.Printf("⚠️ Discord rate limit hit on %s", r.URL)
		return
	}
	log.Printf("⚠️ Discord rate limit hit on %s, retrying after %s", r.URL, r.RetryAfter)
}

// handleMessageCreatedEvent routes a new message to ingestion or to the ranking command
func (h *DiscordEventsHandler) handleMessageCreatedEvent(_ *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Message == nil || m.Author == nil || m.Author.Bot {
		return
	}

	ctx := context.Background()
	channel, err := h.discordClient.GetChannel(ctx, m.ChannelID)
	if err != nil {
		log.Printf("❌ Failed to get channel %s for message %s: %v", m.ChannelID, m.ID, err)
		return
	}
	if !h.isMonitored(channel) {
		return
	}

	log.Printf("📨 Discord message %s received from %s in channel %s", m.ID, m.Author.ID, m.ChannelID)
	messageEvent, err := h.mapToDiscordMessageEvent(ctx, m.Message, channel)
	if err != nil {
		log.Printf("❌ Failed to map Discord message event: %v", err)
		return
	}

	if h.discordUseCase.IsRankingCommand(messageEvent.Content) {
		if err := h.discordUseCase.ProcessRankingCommand(ctx, messageEvent); err != nil {
			log.Printf("❌ Failed to process ranking command: %v", err)
		}
		return
	}

	if err := h.discordUseCase.ProcessMessageEvent(ctx, messageEvent); err != nil {
		log.Printf("❌ Failed to process Discord message: %v", err)
	}
}

// handleThreadCreatedEvent captures threads opened under a monitored channel
func (h *DiscordEventsHandler) handleThreadCreatedEvent(_ *discordgo.Session, t *discordgo.ThreadCreate) {
	if t.Channel == nil || !h.appConfig.IsMonitored(t.ParentID) {
		return
	}

	ctx := context.Background()
	log.Printf("🧵 Discord thread %s created in channel %s", t.ID, t.ParentID)

	thread, err := h.discordClient.GetChannel(ctx, t.ID)
	if err != nil {
		log.Printf("❌ Failed to get thread %s: %v", t.ID, err)
		return
	}
	parent, err := h.discordClient.GetChannel(ctx, t.ParentID)
	if err != nil {
		log.Printf("❌ Failed to get parent channel %s: %v", t.ParentID, err)
		return
	}

	threadEvent := &models.DiscordThreadEvent{
		GuildID:           t.GuildID,
		ParentChannelID:   parent.ID,
		ParentChannelName: parent.Name,
		Thread:            *threadInfoFromChannel(thread),
	}
	if err := h.discordUseCase.ProcessThreadEvent(ctx, threadEvent); err != nil {
		log.Printf("❌ Failed to process Discord thread: %v", err)
	}
}

func (h *DiscordEventsHandler) handleReactionAddedEvent(_ *discordgo.Session, r *discordgo.MessageReactionAdd) {
	if r.MessageReaction == nil {
		return
	}
	h.processReaction(r.MessageReaction, true)
}

func (h *DiscordEventsHandler) handleReactionRemovedEvent(_ *discordgo.Session, r *discordgo.MessageReactionRemove) {
	if r.MessageReaction == nil {
		return
	}
	h.processReaction(r.MessageReaction, false)
}

func (h *DiscordEventsHandler) processReaction(r *discordgo.MessageReaction, added bool) {
	ctx := context.Background()
	channel, err := h.discordClient.GetChannel(ctx, r.ChannelID)
	if err != nil {
		log.Printf("❌ Failed to get channel %s for reaction on message %s: %v", r.ChannelID, r.MessageID, err)
		return
	}
	if !h.isMonitored(channel) {
		return
	}

	log.Printf("🤖 Discord reaction %s by user %s on message %s in channel %s",
		r.Emoji.Name, r.UserID, r.MessageID, r.ChannelID)
	reactionEvent, err := h.mapToDiscordReactionEvent(ctx, r, added)
	if err != nil {
		log.Printf("❌ Failed to map Discord reaction event: %v", err)
		return
	}

	if err := h.discordUseCase.ProcessReactionEvent(ctx, reactionEvent); err != nil {
		log.Printf("❌ Failed to process Discord reaction: %v", err)
	}
}

// isMonitored checks the channel itself, or the parent channel for threads
func (h *DiscordEventsHandler) isMonitored(channel *clients.DiscordChannel) bool {
	if channel.IsThread {
		return h.appConfig.IsMonitored(channel.ParentID)
	}
	return h.appConfig.IsMonitored(channel.ID)
}

// mapToDiscordMessageEvent maps a Discord SDK message to our domain model.
// For thread messages the parent channel is fetched so ChannelID stays top-level.
func (h *DiscordEventsHandler) mapToDiscordMessageEvent(
	ctx context.Context,
	m *discordgo.Message,
	channel *clients.DiscordChannel,
) (*models.DiscordMessageEvent, error) {
	event := &models.DiscordMessageEvent{
		GuildID:     m.GuildID,
		ChannelID:   channel.ID,
		ChannelName: channel.Name,
		MessageID:   m.ID,
		AuthorID:    m.Author.ID,
		Content:     m.Content,
		CreatedAt:   m.Timestamp.UTC(),
	}

	if channel.IsThread {
		parent, err := h.discordClient.GetChannel(ctx, channel.ParentID)
		if err != nil {
			return nil, fmt.Errorf("failed to get parent channel: %w", err)
		}
		event.ChannelID = parent.ID
		event.ChannelName = parent.Name
		event.Thread = threadInfoFromChannel(channel)
	}

	if m.MessageReference != nil && m.MessageReference.MessageID != "" {
		replyTo := m.MessageReference.MessageID
		event.ReplyToMessageID = &replyTo
	}

	for _, attachment := range m.Attachments {
		if attachment == nil {
			continue
		}
		event.Attachments = append(event.Attachments, models.DiscordAttachment{
			URL:      attachment.URL,
			Filename: attachment.Filename,
		})
	}

	for _, embed := range m.Embeds {
		if embed == nil {
			continue
		}
		event.Embeds = append(event.Embeds, models.DiscordEmbed{
			URL:   embed.URL,
			Title: embed.Title,
		})
	}

	return event, nil
}

// mapToDiscordReactionEvent maps a Discord SDK reaction to our domain model with the
// emoji's current count on the message
func (h *DiscordEventsHandler) mapToDiscordReactionEvent(
	ctx context.Context,
	r *discordgo.MessageReaction,
	added bool,
) (*models.DiscordReactionEvent, error) {
	emoji := r.Emoji.APIName()
	count, err := h.discordClient.GetReactionCount(ctx, r.ChannelID, r.MessageID, emoji)
	if err != nil {
		return nil, fmt.Errorf("failed to get reaction count: %w", err)
	}

	return &models.DiscordReactionEvent{
		GuildID:   r.GuildID,
		ChannelID: r.ChannelID,
		MessageID: r.MessageID,
		UserID:    r.UserID,
		Emoji:     emoji,
		Count:     count,
		Added:     added,
	}, nil
}

func threadInfoFromChannel(channel *clients.DiscordChannel) *models.DiscordThreadInfo {
	return &models.DiscordThreadInfo{
		ThreadID:  channel.ID,
		Title:     channel.Name,
		CreatedAt: channel.CreatedAt,
		IsActive:  !channel.IsArchived,
	}
}
