package testutils

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/require"

	"capturebot/config"
	"capturebot/core"
	"capturebot/db"
	"capturebot/models"
)

// SetupTestDB connects to TEST_DB_URL and migrates a fresh schema that is dropped when the test ends.
// The test is skipped when TEST_DB_URL is not set.
func SetupTestDB(t *testing.T) (*sqlx.DB, string) {
	t.Helper()

	_ = godotenv.Load("../.env.test")    // From package directories
	_ = godotenv.Load("../../.env.test") // From nested service packages
	_ = godotenv.Load(".env.test")       // From root directory

	databaseURL := os.Getenv("TEST_DB_URL")
	if databaseURL == "" {
		t.Skip("TEST_DB_URL is not set, skipping database test")
	}

	schema := "test_" + strings.ReplaceAll(uuid.New().String(), "-", "")

	adminConn, err := db.NewConnection(databaseURL)
	require.NoError(t, err, "Failed to connect to test database")
	_, err = adminConn.Exec(fmt.Sprintf("CREATE SCHEMA %s", schema))
	require.NoError(t, err, "Failed to create test schema")

	dsn, err := config.DatabaseConfig{
		URL:        databaseURL,
		ServiceKey: os.Getenv("TEST_DB_SERVICE_KEY"),
		Schema:     schema,
	}.DSN()
	require.NoError(t, err)

	dbConn, err := db.NewConnection(dsn)
	require.NoError(t, err, "Failed to connect to test schema")
	require.NoError(t, db.ApplyMigrations(dbConn, schema))

	t.Cleanup(func() {
		dbConn.Close()
		_, _ = adminConn.Exec(fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", schema))
		adminConn.Close()
	})

	return dbConn, schema
}

// NewDiscordID returns a unique numeric string shaped like a platform snowflake
func NewDiscordID() string {
	return fmt.Sprintf("%d%09d", uuid.New().ID(), time.Now().UnixNano()%1e9)
}

// CreateTestChannel resolves a channel row with a unique external ID
func CreateTestChannel(t *testing.T, entitiesRepo *db.PostgresEntitiesRepository, name string) (string, string) {
	t.Helper()

	externalID := NewDiscordID()
	channelID, err := entitiesRepo.GetOrCreateEntity(context.Background(), db.ChannelEntity, externalID, map[string]any{
		"name": name,
	})
	require.NoError(t, err, "Failed to create test channel")
	return channelID, externalID
}

// CreateTestMessage upserts a message owned by channelID with the given reactions and creation time
func CreateTestMessage(
	t *testing.T,
	messagesRepo *db.PostgresMessagesRepository,
	channelID string,
	createdAt time.Time,
	reactions models.ReactionMap,
) *db.DatabaseMessage {
	t.Helper()

	message := &db.DatabaseMessage{
		ID:               core.NewID(core.MessageIDPrefix),
		DiscordMessageID: NewDiscordID(),
		ChannelID:        channelID,
		AuthorID:         NewDiscordID(),
		Content:          "test message",
		CreatedAt:        createdAt,
		Reactions:        reactions,
	}
	require.NoError(t, messagesRepo.UpsertMessage(context.Background(), message), "Failed to create test message")
	return message
}
