package tx

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// activeTxKey is unexported so only this package can place a transaction in a context
type activeTxKey struct{}

// WithTransaction returns a child of ctx carrying tx
func WithTransaction(ctx context.Context, tx *sqlx.Tx) context.Context {
	return context.WithValue(ctx, activeTxKey{}, tx)
}

// TransactionFromContext returns the transaction opened by the transaction manager, if any
func TransactionFromContext(ctx context.Context) (*sqlx.Tx, bool) {
	tx, ok := ctx.Value(activeTxKey{}).(*sqlx.Tx)
	return tx, ok && tx != nil
}

// Transactional is the subset of *sqlx.DB and *sqlx.Tx the repositories query through.
// The reaction row lock (SELECT ... FOR UPDATE) and the follow-up reactions write only
// hold together when both statements go through the same *sqlx.Tx.
type Transactional interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	QueryRowxContext(ctx context.Context, query string, args ...any) *sqlx.Row
}

// GetTransactional picks the query target for a repository call: the transaction in ctx
// when the caller runs under the transaction manager, the shared pool otherwise
func GetTransactional(ctx context.Context, db *sqlx.DB) Transactional {
	if tx, ok := TransactionFromContext(ctx); ok {
		return tx
	}
	return db
}
