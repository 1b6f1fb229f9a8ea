package db_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"capturebot/core"
	"capturebot/db"
	"capturebot/models"
	"capturebot/testutils"
)

func TestPostgresMessagesRepository_UpsertMessage(t *testing.T) {
	dbConn, schema := testutils.SetupTestDB(t)
	entitiesRepo := db.NewPostgresEntitiesRepository(dbConn, schema)
	repo := db.NewPostgresMessagesRepository(dbConn, schema)
	ctx := context.Background()

	channelID, _ := testutils.CreateTestChannel(t, entitiesRepo, "general")

	t.Run("Insert stores lists and reactions", func(t *testing.T) {
		replyTo := testutils.NewDiscordID()
		message := &db.DatabaseMessage{
			ID:               core.NewID(core.MessageIDPrefix),
			DiscordMessageID: testutils.NewDiscordID(),
			ChannelID:        channelID,
			ReplyToMessageID: &replyTo,
			AuthorID:         "42",
			Content:          "check https://example.com",
			CreatedAt:        time.Now().UTC().Truncate(time.Millisecond),
			URLs:             []string{"https://example.com"},
		}
		require.NoError(t, repo.UpsertMessage(ctx, message))

		stored, err := repo.GetMessageByDiscordID(ctx, message.DiscordMessageID)
		require.NoError(t, err)
		require.True(t, stored.IsPresent())

		got := stored.MustGet().ToModel()
		assert.Equal(t, []string{"https://example.com"}, got.URLs)
		assert.Equal(t, []string{}, got.MediaURLs)
		assert.Equal(t, []string{}, got.EmbedURLs)
		assert.Equal(t, models.ReactionMap{}, got.Reactions)
		require.NotNil(t, got.ReplyToMessageID)
		assert.Equal(t, replyTo, *got.ReplyToMessageID)
		assert.Nil(t, got.ThreadID)
	})

	t.Run("Second upsert overwrites fields but keeps identity and reactions", func(t *testing.T) {
		first := testutils.CreateTestMessage(t, repo, channelID, time.Now(), models.ReactionMap{"🔥": 2})

		second := &db.DatabaseMessage{
			ID:               core.NewID(core.MessageIDPrefix),
			DiscordMessageID: first.DiscordMessageID,
			ChannelID:        channelID,
			AuthorID:         first.AuthorID,
			Content:          "edited",
			CreatedAt:        first.CreatedAt,
			MediaURLs:        []string{"https://cdn.discordapp.com/a.png"},
		}
		require.NoError(t, repo.UpsertMessage(ctx, second))

		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, "edited", second.Content)
		assert.Equal(t, models.ReactionMap{"🔥": 2}, second.Reactions)
		assert.Equal(t, []string{"https://cdn.discordapp.com/a.png"}, []string(second.MediaURLs))
	})
}

func TestPostgresMessagesRepository_Reactions(t *testing.T) {
	dbConn, schema := testutils.SetupTestDB(t)
	entitiesRepo := db.NewPostgresEntitiesRepository(dbConn, schema)
	repo := db.NewPostgresMessagesRepository(dbConn, schema)
	ctx := context.Background()

	channelID, _ := testutils.CreateTestChannel(t, entitiesRepo, "general")
	message := testutils.CreateTestMessage(t, repo, channelID, time.Now(), nil)

	updated, err := repo.UpdateMessageReactions(ctx, message.DiscordMessageID, models.ReactionMap{"🔥": 3, "👍": 1})
	require.NoError(t, err)
	assert.True(t, updated)

	reactions, err := repo.GetMessageReactionsForUpdate(ctx, message.DiscordMessageID)
	require.NoError(t, err)
	require.True(t, reactions.IsPresent())
	assert.Equal(t, models.ReactionMap{"🔥": 3, "👍": 1}, reactions.MustGet())

	updated, err = repo.UpdateMessageReactions(ctx, testutils.NewDiscordID(), models.ReactionMap{"🔥": 1})
	require.NoError(t, err)
	assert.False(t, updated)

	missing, err := repo.GetMessageReactionsForUpdate(ctx, testutils.NewDiscordID())
	require.NoError(t, err)
	assert.True(t, missing.IsAbsent())
}

func TestPostgresMessagesRepository_GetRecentReactedMessages(t *testing.T) {
	dbConn, schema := testutils.SetupTestDB(t)
	entitiesRepo := db.NewPostgresEntitiesRepository(dbConn, schema)
	repo := db.NewPostgresMessagesRepository(dbConn, schema)
	ctx := context.Background()

	channelID, channelExternalID := testutils.CreateTestChannel(t, entitiesRepo, "general")
	otherChannelID, _ := testutils.CreateTestChannel(t, entitiesRepo, "random")

	now := time.Now().UTC()
	older := testutils.CreateTestMessage(t, repo, channelID, now.Add(-2*time.Hour), models.ReactionMap{"🔥": 5})
	newer := testutils.CreateTestMessage(t, repo, channelID, now.Add(-1*time.Hour), models.ReactionMap{"👍": 1})
	testutils.CreateTestMessage(t, repo, channelID, now.Add(-30*time.Minute), nil)
	testutils.CreateTestMessage(t, repo, channelID, now.Add(-48*time.Hour), models.ReactionMap{"🔥": 9})
	testutils.CreateTestMessage(t, repo, otherChannelID, now.Add(-1*time.Hour), models.ReactionMap{"🔥": 9})

	threadExternalID := testutils.NewDiscordID()
	threadID, err := entitiesRepo.GetOrCreateEntity(ctx, db.ThreadEntity, threadExternalID, map[string]any{
		"channel_id": channelID,
		"title":      "thread",
		"created_at": now,
		"is_active":  true,
	})
	require.NoError(t, err)
	inThread := testutils.CreateTestMessage(t, repo, channelID, now.Add(-10*time.Minute), models.ReactionMap{"🎉": 2})
	inThread.ThreadID = &threadID
	require.NoError(t, repo.UpsertMessage(ctx, inThread))

	results, err := repo.GetRecentReactedMessages(ctx, "general", now.Add(-24*time.Hour))
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, inThread.DiscordMessageID, results[0].DiscordMessageID)
	assert.Equal(t, threadExternalID, results[0].LinkChannelID)
	assert.Equal(t, newer.DiscordMessageID, results[1].DiscordMessageID)
	assert.Equal(t, channelExternalID, results[1].LinkChannelID)
	assert.Equal(t, older.DiscordMessageID, results[2].DiscordMessageID)

	for _, result := range results {
		assert.NotEmpty(t, result.Reactions)
	}
}
