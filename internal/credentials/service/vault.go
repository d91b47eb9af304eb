package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aussiebroadwan/trivia/internal/credentials/domain"
	"github.com/aussiebroadwan/trivia/internal/credentials/store"
	"github.com/aussiebroadwan/trivia/pkg/cryptox"
	"github.com/aussiebroadwan/trivia/pkg/slogx"
)

// Field bounds, in characters.
const (
	MaxUsernameLen = 32
	MaxEmailLen    = 64
)

// PasswordVault owns identity records and their password hashes. All
// identity mutation goes through it.
type PasswordVault struct {
	Store  store.Store
	Hasher *cryptox.PasswordHasher
}

// WithStore returns a vault bound to s, typically a transaction.
func (v *PasswordVault) WithStore(s store.Store) *PasswordVault {
	return &PasswordVault{Store: s, Hasher: v.Hasher}
}

func validUsername(username string) bool {
	n := utf8.RuneCountInString(username)
	return n >= 1 && n <= MaxUsernameLen && strings.TrimSpace(username) != ""
}

func validEmail(email string) bool {
	n := utf8.RuneCountInString(email)
	return n >= 1 && n <= MaxEmailLen && strings.TrimSpace(email) != ""
}

// Create inserts an unconfirmed identity with no password. The existence
// checks are an early exit; the schema's uniqueness constraints decide races.
func (v *PasswordVault) Create(ctx context.Context, username, email string) (domain.Identity, error) {
	if !validUsername(username) || !validEmail(email) {
		return domain.Identity{}, ErrInvalidInput
	}

	if exists, err := v.Exists(ctx, username); err != nil {
		return domain.Identity{}, err
	} else if exists {
		return domain.Identity{}, ErrDuplicateUsername
	}
	if inUse, err := v.EmailInUse(ctx, email); err != nil {
		return domain.Identity{}, err
	} else if inUse {
		return domain.Identity{}, ErrDuplicateEmail
	}

	id, err := v.Store.Identities().CreateIdentity(ctx, username, email)
	switch {
	case errors.Is(err, store.ErrDuplicateUsername):
		return domain.Identity{}, ErrDuplicateUsername
	case errors.Is(err, store.ErrDuplicateEmail):
		return domain.Identity{}, ErrDuplicateEmail
	case err != nil:
		return domain.Identity{}, storageFailure("create identity", err)
	}
	return id, nil
}

// HashPassword hashes plaintext without persisting it.
func (v *PasswordVault) HashPassword(ctx context.Context, plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrInvalidInput
	}

	defer observeHash("hash", time.Now())
	hash, err := v.Hasher.Hash(ctx, plaintext)
	if errors.Is(err, cryptox.ErrPasswordTooLong) {
		return "", ErrInvalidInput
	}
	return hash, err
}

// SetPassword hashes plaintext and stores it, replacing any previous hash.
// Existing sessions are not affected.
func (v *PasswordVault) SetPassword(ctx context.Context, username, plaintext string) (string, error) {
	hash, err := v.HashPassword(ctx, plaintext)
	if err != nil {
		return "", err
	}
	if err := v.setPasswordHash(ctx, username, hash); err != nil {
		return "", err
	}
	return hash, nil
}

func (v *PasswordVault) setPasswordHash(ctx context.Context, username, hash string) error {
	err := v.Store.Identities().UpdatePasswordHash(ctx, username, hash)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return ErrUnknownUser
	case err != nil:
		return storageFailure("update password hash", err)
	}
	return nil
}

// VerifyPassword reports whether plaintext matches the stored hash. Unknown
// users and identities without a password yield false rather than an error,
// and still pay for one bcrypt comparison so timing does not reveal which.
func (v *PasswordVault) VerifyPassword(ctx context.Context, username, plaintext string) (bool, error) {
	id, found, err := v.Get(ctx, username)
	if err != nil {
		return false, err
	}

	defer observeHash("compare", time.Now())

	if !found || !id.HasPassword() {
		if err := v.Hasher.CompareDummy(ctx, plaintext); err != nil {
			return false, err
		}
		return false, nil
	}

	ok, err := v.Hasher.Compare(ctx, id.PasswordHash, plaintext)
	if err != nil {
		slogx.FromContext(ctx).Error("stored password hash is unreadable",
			slog.String("username", username),
			slog.Any("error", err),
		)
		return false, storageFailure("compare password hash", err)
	}
	return ok, nil
}

// SetEmail changes the address of username. Another identity holding the
// address yields ErrDuplicateEmail.
func (v *PasswordVault) SetEmail(ctx context.Context, username, email string) (domain.Identity, error) {
	if !validEmail(email) {
		return domain.Identity{}, ErrInvalidInput
	}

	err := v.Store.Identities().UpdateEmail(ctx, username, email)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return domain.Identity{}, ErrUnknownUser
	case errors.Is(err, store.ErrDuplicateEmail):
		return domain.Identity{}, ErrDuplicateEmail
	case err != nil:
		return domain.Identity{}, storageFailure("update email", err)
	}

	id, found, err := v.Get(ctx, username)
	if err != nil {
		return domain.Identity{}, err
	}
	if !found {
		return domain.Identity{}, ErrUnknownUser
	}
	return id, nil
}

// SetConfirmed marks username confirmed. It is idempotent.
func (v *PasswordVault) SetConfirmed(ctx context.Context, username string) error {
	err := v.Store.Identities().MarkConfirmed(ctx, username)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return ErrUnknownUser
	case err != nil:
		return storageFailure("mark confirmed", err)
	}
	return nil
}

func (v *PasswordVault) IsConfirmed(ctx context.Context, username string) (bool, error) {
	id, found, err := v.Get(ctx, username)
	if err != nil {
		return false, err
	}
	if !found {
		return false, ErrUnknownUser
	}
	return id.Confirmed, nil
}

// Get returns the identity for username; found is false when absent.
func (v *PasswordVault) Get(ctx context.Context, username string) (domain.Identity, bool, error) {
	id, err := v.Store.Identities().GetIdentity(ctx, username)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return domain.Identity{}, false, nil
	case err != nil:
		return domain.Identity{}, false, storageFailure("get identity", err)
	}
	return id, true, nil
}

// GetByEmail returns the identity holding email; found is false when absent.
func (v *PasswordVault) GetByEmail(ctx context.Context, email string) (domain.Identity, bool, error) {
	id, err := v.Store.Identities().GetIdentityByEmail(ctx, email)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return domain.Identity{}, false, nil
	case err != nil:
		return domain.Identity{}, false, storageFailure("get identity by email", err)
	}
	return id, true, nil
}

func (v *PasswordVault) Exists(ctx context.Context, username string) (bool, error) {
	ok, err := v.Store.Identities().UsernameExists(ctx, username)
	if err != nil {
		return false, storageFailure("username exists", err)
	}
	return ok, nil
}

func (v *PasswordVault) EmailInUse(ctx context.Context, email string) (bool, error) {
	ok, err := v.Store.Identities().EmailExists(ctx, email)
	if err != nil {
		return false, storageFailure("email exists", err)
	}
	return ok, nil
}

// Remove deletes username and reports whether a row was deleted.
func (v *PasswordVault) Remove(ctx context.Context, username string) (bool, error) {
	deleted, err := v.Store.Identities().DeleteIdentity(ctx, username)
	if err != nil {
		return false, storageFailure("delete identity", err)
	}
	return deleted, nil
}
