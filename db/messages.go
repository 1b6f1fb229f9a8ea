package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/samber/mo"

	dbtx "capturebot/db/tx"
	"capturebot/models"
)

// DatabaseMessage represents the raw messages row
type DatabaseMessage struct {
	ID               string             `db:"id"`
	DiscordMessageID string             `db:"discord_message_id"`
	ChannelID        string             `db:"channel_id"`
	ThreadID         *string            `db:"thread_id"`
	ReplyToMessageID *string            `db:"reply_to_message_id"`
	AuthorID         string             `db:"author_id"`
	Content          string             `db:"content"`
	CreatedAt        time.Time          `db:"created_at"`
	URLs             pq.StringArray     `db:"urls"`
	MediaURLs        pq.StringArray     `db:"media_urls"`
	EmbedURLs        pq.StringArray     `db:"embed_urls"`
	Reactions        models.ReactionMap `db:"reactions"`
	UpdatedAt        time.Time          `db:"updated_at"`
}

// DatabaseReactedMessage is a messages row joined with the external ID used to link to it
type DatabaseReactedMessage struct {
	DatabaseMessage
	LinkChannelID string `db:"link_channel_id"`
}

func (m *DatabaseMessage) ToModel() *models.Message {
	return &models.Message{
		ID:               m.ID,
		DiscordMessageID: m.DiscordMessageID,
		ChannelID:        m.ChannelID,
		ThreadID:         m.ThreadID,
		ReplyToMessageID: m.ReplyToMessageID,
		AuthorID:         m.AuthorID,
		Content:          m.Content,
		CreatedAt:        m.CreatedAt,
		URLs:             nonNilStrings(m.URLs),
		MediaURLs:        nonNilStrings(m.MediaURLs),
		EmbedURLs:        nonNilStrings(m.EmbedURLs),
		Reactions:        m.Reactions.Clone(),
		UpdatedAt:        m.UpdatedAt,
	}
}

func FromMessageModel(msg *models.Message) *DatabaseMessage {
	return &DatabaseMessage{
		ID:               msg.ID,
		DiscordMessageID: msg.DiscordMessageID,
		ChannelID:        msg.ChannelID,
		ThreadID:         msg.ThreadID,
		ReplyToMessageID: msg.ReplyToMessageID,
		AuthorID:         msg.AuthorID,
		Content:          msg.Content,
		CreatedAt:        msg.CreatedAt,
		URLs:             pq.StringArray(nonNilStrings(msg.URLs)),
		MediaURLs:        pq.StringArray(nonNilStrings(msg.MediaURLs)),
		EmbedURLs:        pq.StringArray(nonNilStrings(msg.EmbedURLs)),
		Reactions:        msg.Reactions.Clone(),
		UpdatedAt:        msg.UpdatedAt,
	}
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

var messagesColumns = []string{
	"id",
	"discord_message_id",
	"channel_id",
	"thread_id",
	"reply_to_message_id",
	"author_id",
	"content",
	"created_at",
	"urls",
	"media_urls",
	"embed_urls",
	"reactions",
	"updated_at",
}

type PostgresMessagesRepository struct {
	db     *sqlx.DB
	schema string
}

func NewPostgresMessagesRepository(db *sqlx.DB, schema string) *PostgresMessagesRepository {
	return &PostgresMessagesRepository{db: db, schema: schema}
}

// UpsertMessage inserts the message or overwrites every non-identity field of the existing row.
// Reactions are only written on insert; afterwards they belong to UpdateMessageReactions.
func (r *PostgresMessagesRepository) UpsertMessage(ctx context.Context, message *DatabaseMessage) error {
	columnsStr := strings.Join(messagesColumns, ", ")
	message.URLs = nonNilStrings(message.URLs)
	message.MediaURLs = nonNilStrings(message.MediaURLs)
	message.EmbedURLs = nonNilStrings(message.EmbedURLs)
	if message.Reactions == nil {
		message.Reactions = models.ReactionMap{}
	}

	query := fmt.Sprintf(`
		INSERT INTO %s.messages (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW())
		ON CONFLICT (discord_message_id)
		DO UPDATE SET
			channel_id = EXCLUDED.channel_id,
			thread_id = EXCLUDED.thread_id,
			reply_to_message_id = EXCLUDED.reply_to_message_id,
			author_id = EXCLUDED.author_id,
			content = EXCLUDED.content,
			created_at = EXCLUDED.created_at,
			urls = EXCLUDED.urls,
			media_urls = EXCLUDED.media_urls,
			embed_urls = EXCLUDED.embed_urls,
			updated_at = NOW()
		RETURNING %s`, r.schema, columnsStr, columnsStr)

	db := dbtx.GetTransactional(ctx, r.db)
	err := db.QueryRowxContext(ctx, query,
		message.ID,
		message.DiscordMessageID,
		message.ChannelID,
		message.ThreadID,
		message.ReplyToMessageID,
		message.AuthorID,
		message.Content,
		message.CreatedAt,
		message.URLs,
		message.MediaURLs,
		message.EmbedURLs,
		message.Reactions).
		StructScan(message)
	if err != nil {
		return fmt.Errorf("failed to upsert message: %w", err)
	}

	return nil
}

// GetMessageByDiscordID reads the full message row. Test support: the service layer
// only writes messages and reads them back through the ranking query.
func (r *PostgresMessagesRepository) GetMessageByDiscordID(
	ctx context.Context,
	discordMessageID string,
) (mo.Option[*DatabaseMessage], error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.messages
		WHERE discord_message_id = $1`,
		strings.Join(messagesColumns, ", "), r.schema)

	message := &DatabaseMessage{}
	db := dbtx.GetTransactional(ctx, r.db)
	err := db.GetContext(ctx, message, query, discordMessageID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return mo.None[*DatabaseMessage](), nil
		}
		return mo.None[*DatabaseMessage](), fmt.Errorf("failed to get message: %w", err)
	}

	return mo.Some(message), nil
}

// GetMessageReactionsForUpdate reads the reaction mapping and locks the row until the
// surrounding transaction ends. Must be called inside a transaction to hold the lock.
func (r *PostgresMessagesRepository) GetMessageReactionsForUpdate(
	ctx context.Context,
	discordMessageID string,
) (mo.Option[models.ReactionMap], error) {
	query := fmt.Sprintf(`
		SELECT reactions
		FROM %s.messages
		WHERE discord_message_id = $1
		FOR UPDATE`, r.schema)

	var reactions models.ReactionMap
	db := dbtx.GetTransactional(ctx, r.db)
	err := db.GetContext(ctx, &reactions, query, discordMessageID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return mo.None[models.ReactionMap](), nil
		}
		return mo.None[models.ReactionMap](), fmt.Errorf("failed to get message reactions: %w", err)
	}

	return mo.Some(reactions), nil
}

// UpdateMessageReactions writes only the reactions column. Returns false if no row matched.
func (r *PostgresMessagesRepository) UpdateMessageReactions(
	ctx context.Context,
	discordMessageID string,
	reactions models.ReactionMap,
) (bool, error) {
	query := fmt.Sprintf(`
		UPDATE %s.messages
		SET reactions = $2, updated_at = NOW()
		WHERE discord_message_id = $1`, r.schema)

	db := dbtx.GetTransactional(ctx, r.db)
	result, err := db.ExecContext(ctx, query, discordMessageID, reactions)
	if err != nil {
		return false, fmt.Errorf("failed to update message reactions: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// GetRecentReactedMessages returns messages of the named channel (and its threads) that carry
// at least one reaction and were created at or after since, newest first
func (r *PostgresMessagesRepository) GetRecentReactedMessages(
	ctx context.Context,
	channelName string,
	since time.Time,
) ([]*DatabaseReactedMessage, error) {
	prefixed := make([]string, len(messagesColumns))
	for i, column := range messagesColumns {
		prefixed[i] = "m." + column
	}

	query := fmt.Sprintf(`
		SELECT %s, COALESCE(t.discord_thread_id, c.discord_channel_id) AS link_channel_id
		FROM %s.messages m
		JOIN %s.channels c ON c.id = m.channel_id
		LEFT JOIN %s.threads t ON t.id = m.thread_id
		WHERE c.name = $1
			AND m.reactions <> '{}'::jsonb
			AND m.created_at >= $2
		ORDER BY m.created_at DESC`,
		strings.Join(prefixed, ", "), r.schema, r.schema, r.schema)

	var messages []*DatabaseReactedMessage
	db := dbtx.GetTransactional(ctx, r.db)
	if err := db.SelectContext(ctx, &messages, query, channelName, since); err != nil {
		return nil, fmt.Errorf("failed to get recent reacted messages: %w", err)
	}

	return messages, nil
}
