package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/aussiebroadwan/trivia/internal/credentials/domain"
	"github.com/aussiebroadwan/trivia/internal/credentials/store"
	"github.com/aussiebroadwan/trivia/internal/credentials/store/drivers/sqlite/gen"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

type Store struct {
	db  *sql.DB
	q   *gen.Queries
	dsn string
	now func() time.Time
}

// NewStore opens the database at dsn. Foreign keys, a busy timeout and
// immediate write transactions are enabled on every pooled connection.
// In-memory databases are limited to one connection so every caller sees
// the same database.
func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", withPragmas(dsn))
	if err != nil {
		return nil, err
	}
	if isMemory(dsn) {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return NewStoreWithDB(db, dsn), nil
}

// NewStoreWithDB wraps an already opened database. The caller keeps
// responsibility for its pragmas.
func NewStoreWithDB(db *sql.DB, dsn string) *Store {
	return &Store{
		db:  db,
		q:   gen.New(db),
		dsn: dsn,
		now: func() time.Time { return time.Now().UTC() },
	}
}

func isMemory(dsn string) bool {
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

func withPragmas(dsn string) string {
	params := []string{
		"_pragma=foreign_keys(1)",
		"_pragma=busy_timeout(5000)",
		"_txlock=immediate",
		"_time_format=sqlite",
	}
	if !isMemory(dsn) {
		params = append(params, "_pragma=journal_mode(WAL)")
	}

	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(params, "&")
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Tx starts a read/write transaction and returns a Tx-scoped Store.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return newTx(tx, s.now), nil
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}

	defer func() {
		_ = tx.Rollback() // safe to call even after commit
	}()

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Store) Identities() store.Identities { return &identitiesRepo{q: s.q, now: s.now} }
func (s *Store) Tokens() store.Tokens         { return &tokensRepo{q: s.q, now: s.now} }
func (s *Store) Sessions() store.Sessions     { return &sessionsRepo{q: s.q, now: s.now} }

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

// mapConstraint turns uniqueness violations into store sentinels. The email
// column is the only UNIQUE besides the username primary key.
func mapConstraint(err error) error {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return err
	}
	code := se.Code()
	if code != sqlite3.SQLITE_CONSTRAINT_UNIQUE &&
		code != sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY &&
		code&0xff != sqlite3.SQLITE_CONSTRAINT {
		return err
	}
	switch msg := se.Error(); {
	case strings.Contains(msg, "identities.email"):
		return store.ErrDuplicateEmail
	case strings.Contains(msg, "identities.username"):
		return store.ErrDuplicateUsername
	}
	return err
}

func mapNullString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

func mapStringNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}

func mapIdentity(row gen.Identity) domain.Identity {
	return domain.Identity{
		Username:     row.Username,
		Email:        row.Email,
		PasswordHash: mapNullString(row.PasswordHash),
		Confirmed:    row.Confirmed,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

func mapToken(row gen.Token) domain.Token {
	return domain.Token{
		Idx:       row.Idx,
		Kind:      domain.TokenKind(row.Kind),
		Token:     row.Token,
		Subject:   row.Subject,
		CreatedAt: row.CreatedAt,
	}
}

func mapSession(row gen.Session) domain.Session {
	return domain.Session{
		ID:        row.ID,
		Data:      []byte(row.Data),
		ExpiresAt: row.ExpiresAt,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}
