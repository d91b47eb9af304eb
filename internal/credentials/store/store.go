package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/trivia/internal/credentials/domain"
)

var (
	ErrNotFound          = errors.New("store: not found")
	ErrDuplicateUsername = errors.New("store: duplicate username")
	ErrDuplicateEmail    = errors.New("store: duplicate email")
)

// Store is the root data access interface. Concrete drivers implement it
// and expose sub-repositories so a transaction can hand out the same repos
// bound to its connection. Uniqueness of usernames and emails is enforced by
// the driver's schema, never only by callers checking first.
type Store interface {
	Identities() Identities
	Tokens() Tokens
	Sessions() Sessions

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Identities interface {
	// CreateIdentity inserts an unconfirmed identity without a password.
	// Returns ErrDuplicateUsername or ErrDuplicateEmail on constraint violation.
	CreateIdentity(ctx context.Context, username, email string) (domain.Identity, error)

	GetIdentity(ctx context.Context, username string) (domain.Identity, error)
	GetIdentityByEmail(ctx context.Context, email string) (domain.Identity, error)

	// UpdatePasswordHash returns ErrNotFound when no row matched.
	UpdatePasswordHash(ctx context.Context, username, hash string) error

	// UpdateEmail returns ErrNotFound when no row matched and
	// ErrDuplicateEmail when another identity holds the address.
	UpdateEmail(ctx context.Context, username, email string) error

	// MarkConfirmed returns ErrNotFound when no row matched.
	MarkConfirmed(ctx context.Context, username string) error

	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)

	// DeleteIdentity reports whether a row was deleted.
	DeleteIdentity(ctx context.Context, username string) (bool, error)
}

type Tokens interface {
	// InsertToken appends a token row. Existing rows are never touched.
	InsertToken(ctx context.Context, kind domain.TokenKind, token, subject string) (domain.Token, error)

	// GetLatestByToken returns the highest-idx row carrying token.
	GetLatestByToken(ctx context.Context, kind domain.TokenKind, token string) (domain.Token, error)

	// GetLatestBySubject returns the highest-idx row for subject.
	GetLatestBySubject(ctx context.Context, kind domain.TokenKind, subject string) (domain.Token, error)

	DeleteByToken(ctx context.Context, kind domain.TokenKind, token string) (int64, error)
	DeleteBySubject(ctx context.Context, kind domain.TokenKind, subject string) (int64, error)

	// DeleteCreatedBefore is housekeeping.
	DeleteCreatedBefore(ctx context.Context, kind domain.TokenKind, before time.Time) (int64, error)
}

type Sessions interface {
	// GetSession returns a session only if it has not expired.
	GetSession(ctx context.Context, id string) (domain.Session, error)

	// UpsertSession inserts or replaces the session's data and expiry.
	UpsertSession(ctx context.Context, s domain.Session) error

	DeleteSession(ctx context.Context, id string) error

	// DeleteExpiredSessions is housekeeping.
	DeleteExpiredSessions(ctx context.Context) (int64, error)
}
