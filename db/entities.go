package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/samber/mo"

	"capturebot/core"
	dbtx "capturebot/db/tx"
	"capturebot/models"
)

const uniqueViolationCode = "23505"

// EntityKind describes a table whose rows are keyed externally by a platform ID
type EntityKind struct {
	Name      string
	Table     string
	KeyColumn string
	IDPrefix  string
}

var (
	ChannelEntity = EntityKind{
		Name:      "channel",
		Table:     "channels",
		KeyColumn: "discord_channel_id",
		IDPrefix:  core.ChannelIDPrefix,
	}
	ThreadEntity = EntityKind{
		Name:      "thread",
		Table:     "threads",
		KeyColumn: "discord_thread_id",
		IDPrefix:  core.ThreadIDPrefix,
	}
)

type DatabaseChannel struct {
	ID               string    `db:"id"`
	DiscordChannelID string    `db:"discord_channel_id"`
	Name             string    `db:"name"`
	CreatedAt        time.Time `db:"created_at"`
}

func (c *DatabaseChannel) ToModel() *models.Channel {
	return &models.Channel{
		ID:               c.ID,
		DiscordChannelID: c.DiscordChannelID,
		Name:             c.Name,
		CreatedAt:        c.CreatedAt,
	}
}

type DatabaseThread struct {
	ID              string    `db:"id"`
	DiscordThreadID string    `db:"discord_thread_id"`
	ChannelID       string    `db:"channel_id"`
	Title           string    `db:"title"`
	CreatedAt       time.Time `db:"created_at"`
	IsActive        bool      `db:"is_active"`
}

func (t *DatabaseThread) ToModel() *models.Thread {
	return &models.Thread{
		ID:              t.ID,
		DiscordThreadID: t.DiscordThreadID,
		ChannelID:       t.ChannelID,
		Title:           t.Title,
		CreatedAt:       t.CreatedAt,
		IsActive:        t.IsActive,
	}
}

var channelsColumns = []string{
	"id",
	"discord_channel_id",
	"name",
	"created_at",
}

var threadsColumns = []string{
	"id",
	"discord_thread_id",
	"channel_id",
	"title",
	"created_at",
	"is_active",
}

type PostgresEntitiesRepository struct {
	db     *sqlx.DB
	schema string
}

func NewPostgresEntitiesRepository(db *sqlx.DB, schema string) *PostgresEntitiesRepository {
	return &PostgresEntitiesRepository{db: db, schema: schema}
}

// GetOrCreateEntity returns the internal ID of the row keyed by externalID, inserting
// payload on first sight. Existing rows are never updated. A concurrent insert of the
// same key surfaces as a unique violation and is resolved by reading the winner's row.
func (r *PostgresEntitiesRepository) GetOrCreateEntity(
	ctx context.Context,
	kind EntityKind,
	externalID string,
	payload map[string]any,
) (string, error) {
	existing, err := r.lookupEntityID(ctx, kind, externalID)
	if err != nil {
		return "", err
	}
	if existing.IsPresent() {
		return existing.MustGet(), nil
	}

	id := core.NewID(kind.IDPrefix)
	columns := []string{"id", kind.KeyColumn}
	values := []any{id, externalID}

	payloadColumns := make([]string, 0, len(payload))
	for column := range payload {
		if column == "id" || column == kind.KeyColumn {
			continue
		}
		payloadColumns = append(payloadColumns, column)
	}
	sort.Strings(payloadColumns)
	for _, column := range payloadColumns {
		columns = append(columns, column)
		values = append(values, payload[column])
	}

	placeholders := make([]string, len(columns))
	for i := range columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s.%s (%s)
		VALUES (%s)
		RETURNING id`,
		r.schema, kind.Table, strings.Join(columns, ", "), strings.Join(placeholders, ", "))

	var createdID string
	db := dbtx.GetTransactional(ctx, r.db)
	err = db.QueryRowxContext(ctx, query, values...).Scan(&createdID)
	if err == nil {
		return createdID, nil
	}

	if !isUniqueViolation(err) {
		return "", fmt.Errorf("failed to create %s %s: %w", kind.Name, externalID, err)
	}

	reread, err := r.lookupEntityID(ctx, kind, externalID)
	if err != nil {
		return "", err
	}
	if !reread.IsPresent() {
		return "", fmt.Errorf("%s %s vanished after concurrent insert: %w", kind.Name, externalID, core.ErrNotFound)
	}
	return reread.MustGet(), nil
}

func (r *PostgresEntitiesRepository) lookupEntityID(
	ctx context.Context,
	kind EntityKind,
	externalID string,
) (mo.Option[string], error) {
	query := fmt.Sprintf(`
		SELECT id
		FROM %s.%s
		WHERE %s = $1`,
		r.schema, kind.Table, kind.KeyColumn)

	var id string
	db := dbtx.GetTransactional(ctx, r.db)
	err := db.GetContext(ctx, &id, query, externalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return mo.None[string](), nil
		}
		return mo.None[string](), fmt.Errorf("failed to look up %s %s: %w", kind.Name, externalID, err)
	}

	return mo.Some(id), nil
}

// GetChannelByDiscordID reads the full channel row. Ingestion only needs IDs, so this
// lookup serves tests that inspect stored rows.
func (r *PostgresEntitiesRepository) GetChannelByDiscordID(
	ctx context.Context,
	discordChannelID string,
) (mo.Option[*DatabaseChannel], error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.channels
		WHERE discord_channel_id = $1`,
		strings.Join(channelsColumns, ", "), r.schema)

	channel := &DatabaseChannel{}
	db := dbtx.GetTransactional(ctx, r.db)
	err := db.GetContext(ctx, channel, query, discordChannelID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return mo.None[*DatabaseChannel](), nil
		}
		return mo.None[*DatabaseChannel](), fmt.Errorf("failed to get channel: %w", err)
	}

	return mo.Some(channel), nil
}

// GetThreadByDiscordID reads the full thread row; test support like GetChannelByDiscordID
func (r *PostgresEntitiesRepository) GetThreadByDiscordID(
	ctx context.Context,
	discordThreadID string,
) (mo.Option[*DatabaseThread], error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.threads
		WHERE discord_thread_id = $1`,
		strings.Join(threadsColumns, ", "), r.schema)

	thread := &DatabaseThread{}
	db := dbtx.GetTransactional(ctx, r.db)
	err := db.GetContext(ctx, thread, query, discordThreadID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return mo.None[*DatabaseThread](), nil
		}
		return mo.None[*DatabaseThread](), fmt.Errorf("failed to get thread: %w", err)
	}

	return mo.Some(thread), nil
}

// CountEntities returns how many rows of kind carry externalID.
// Test support for checking that resolution never duplicates a row.
func (r *PostgresEntitiesRepository) CountEntities(ctx context.Context, kind EntityKind, externalID string) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s.%s WHERE %s = $1`, r.schema, kind.Table, kind.KeyColumn)

	var count int
	db := dbtx.GetTransactional(ctx, r.db)
	if err := db.GetContext(ctx, &count, query, externalID); err != nil {
		return 0, fmt.Errorf("failed to count %s rows: %w", kind.Name, err)
	}
	return count, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolationCode
}
