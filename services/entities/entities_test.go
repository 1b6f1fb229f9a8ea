package entities_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"capturebot/core"
	"capturebot/db"
	"capturebot/services/entities"
	"capturebot/testutils"
)

func TestEntitiesService_ResolveChannel(t *testing.T) {
	dbConn, schema := testutils.SetupTestDB(t)
	entitiesRepo := db.NewPostgresEntitiesRepository(dbConn, schema)
	service := entities.NewEntitiesService(entitiesRepo)
	ctx := context.Background()

	t.Run("Resolution is idempotent", func(t *testing.T) {
		externalID := testutils.NewDiscordID()

		first, err := service.ResolveChannel(ctx, externalID, "general")
		require.NoError(t, err)
		second, err := service.ResolveChannel(ctx, externalID, "general")
		require.NoError(t, err)

		assert.True(t, core.IsValidID(first))
		assert.Equal(t, first, second)

		count, err := entitiesRepo.CountEntities(ctx, db.ChannelEntity, externalID)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("Empty channel ID is rejected", func(t *testing.T) {
		_, err := service.ResolveChannel(ctx, "", "general")
		assert.EqualError(t, err, "channel ID cannot be empty")
	})
}

func TestEntitiesService_ResolveThread(t *testing.T) {
	dbConn, schema := testutils.SetupTestDB(t)
	entitiesRepo := db.NewPostgresEntitiesRepository(dbConn, schema)
	service := entities.NewEntitiesService(entitiesRepo)
	ctx := context.Background()

	channelID, err := service.ResolveChannel(ctx, testutils.NewDiscordID(), "general")
	require.NoError(t, err)

	t.Run("Resolution is idempotent and keeps the first title", func(t *testing.T) {
		externalID := testutils.NewDiscordID()
		createdAt := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

		first, err := service.ResolveThread(ctx, externalID, channelID, "first title", createdAt, true)
		require.NoError(t, err)
		second, err := service.ResolveThread(ctx, externalID, channelID, "second title", createdAt, false)
		require.NoError(t, err)

		assert.Equal(t, first, second)

		thread, err := entitiesRepo.GetThreadByDiscordID(ctx, externalID)
		require.NoError(t, err)
		require.True(t, thread.IsPresent())
		model := thread.MustGet().ToModel()
		assert.Equal(t, "first title", model.Title)
		assert.True(t, model.IsActive)
		assert.Equal(t, channelID, model.ChannelID)
	})

	t.Run("Missing identifiers are rejected", func(t *testing.T) {
		_, err := service.ResolveThread(ctx, "", channelID, "title", time.Now(), true)
		assert.EqualError(t, err, "thread ID cannot be empty")

		_, err = service.ResolveThread(ctx, testutils.NewDiscordID(), "", "title", time.Now(), true)
		assert.EqualError(t, err, "owner channel ID cannot be empty")
	})

	t.Run("Unknown owner channel propagates the database error", func(t *testing.T) {
		_, err := service.ResolveThread(ctx, testutils.NewDiscordID(), core.NewID(core.ChannelIDPrefix), "title", time.Now(), true)
		assert.Error(t, err)
	})
}

func TestEntitiesService_ResolveThreadRejectsExternalChannelID(t *testing.T) {
	service := entities.NewEntitiesService(nil)

	_, err := service.ResolveThread(context.Background(), "300000000000000003", "200000000000000002",
		"title", time.Now(), true)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not an internal ID")
}
