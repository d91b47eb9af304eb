package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/aussiebroadwan/trivia/internal/credentials/store"
	"github.com/aussiebroadwan/trivia/internal/credentials/store/drivers/sqlite/gen"
)

// errNestedTx is returned by Tx on a store that is already a transaction.
var errNestedTx = errors.New("sqlite: nested transactions are not supported")

// txStore hands out repositories bound to one *sql.Tx.
type txStore struct {
	tx  *sql.Tx
	q   *gen.Queries
	now func() time.Time
}

func newTx(tx *sql.Tx, now func() time.Time) *txStore {
	return &txStore{tx: tx, q: gen.New(tx), now: now}
}

func (t *txStore) Identities() store.Identities { return &identitiesRepo{q: t.q, now: t.now} }
func (t *txStore) Tokens() store.Tokens         { return &tokensRepo{q: t.q, now: t.now} }
func (t *txStore) Sessions() store.Sessions     { return &sessionsRepo{q: t.q, now: t.now} }

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Tx(context.Context) (store.Tx, error) { return nil, errNestedTx }

// WithTx joins the open transaction: fn runs against t and the outer
// WithTx decides whether to commit. A service already rebound to a
// transaction can therefore call its own transactional helpers.
func (t *txStore) WithTx(_ context.Context, fn func(tx store.Tx) error) error {
	return fn(t)
}

// Ping is a no-op; the transaction holds a live connection.
func (t *txStore) Ping(context.Context) error { return nil }

// Close leaves the outer database open.
func (t *txStore) Close() error { return nil }

// ApplyMigrations is a no-op; migrations run before any transaction.
func (t *txStore) ApplyMigrations() error { return nil }
