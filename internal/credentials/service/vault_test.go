package service

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aussiebroadwan/trivia/internal/credentials/store/drivers/sqlite"
	"github.com/aussiebroadwan/trivia/pkg/cryptox"
	"github.com/samber/oops"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestVaultCreate(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	id, err := env.vault.Create(ctx, "alice", "alice@x.com")
	require.NoError(t, err)
	require.Equal(t, "alice", id.Username)
	require.False(t, id.Confirmed)
	require.Empty(t, id.PasswordHash)

	_, err = env.vault.Create(ctx, "alice", "other@x.com")
	require.ErrorIs(t, err, ErrDuplicateUsername)

	_, err = env.vault.Create(ctx, "bob", "alice@x.com")
	require.ErrorIs(t, err, ErrDuplicateEmail)

	t.Run("bounds", func(t *testing.T) {
		for _, tc := range []struct{ username, email string }{
			{"", "e@x.com"},
			{"u", ""},
			{strings.Repeat("u", MaxUsernameLen+1), "e@x.com"},
			{"u", strings.Repeat("e", MaxEmailLen+1)},
			{"   ", "e@x.com"},
		} {
			_, err := env.vault.Create(ctx, tc.username, tc.email)
			require.ErrorIs(t, err, ErrInvalidInput, "username=%q email=%q", tc.username, tc.email)
		}

		_, err := env.vault.Create(ctx, strings.Repeat("u", MaxUsernameLen), strings.Repeat("e", MaxEmailLen))
		require.NoError(t, err)
	})
}

func TestVaultPasswords(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.vault.Create(ctx, "alice", "alice@x.com")
	require.NoError(t, err)

	ok, err := env.vault.VerifyPassword(ctx, "alice", "pw")
	require.NoError(t, err)
	require.False(t, ok, "identity without a password never verifies")

	hash, err := env.vault.SetPassword(ctx, "alice", "pw")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(hash, "$2"))

	ok, err = env.vault.VerifyPassword(ctx, "alice", "pw")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = env.vault.VerifyPassword(ctx, "alice", "wrong")
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = env.vault.VerifyPassword(ctx, "nobody", "pw")
	require.NoError(t, err)
	require.False(t, ok, "unknown user is false, not an error")

	_, err = env.vault.SetPassword(ctx, "nobody", "pw")
	require.ErrorIs(t, err, ErrUnknownUser)

	_, err = env.vault.SetPassword(ctx, "alice", "")
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.vault.HashPassword(ctx, strings.Repeat("p", 73))
	require.ErrorIs(t, err, ErrInvalidInput)

	t.Run("overwrite replaces the old password", func(t *testing.T) {
		_, err := env.vault.SetPassword(ctx, "alice", "pw2")
		require.NoError(t, err)

		ok, err := env.vault.VerifyPassword(ctx, "alice", "pw")
		require.NoError(t, err)
		require.False(t, ok)

		ok, err = env.vault.VerifyPassword(ctx, "alice", "pw2")
		require.NoError(t, err)
		require.True(t, ok)
	})
}

func TestVaultSetEmail(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.vault.Create(ctx, "alice", "alice@x.com")
	require.NoError(t, err)
	_, err = env.vault.Create(ctx, "bob", "bob@x.com")
	require.NoError(t, err)

	id, err := env.vault.SetEmail(ctx, "alice", "alice2@x.com")
	require.NoError(t, err)
	require.Equal(t, "alice2@x.com", id.Email)

	_, err = env.vault.SetEmail(ctx, "alice", "bob@x.com")
	require.ErrorIs(t, err, ErrDuplicateEmail)

	_, err = env.vault.SetEmail(ctx, "nobody", "n@x.com")
	require.ErrorIs(t, err, ErrUnknownUser)

	_, err = env.vault.SetEmail(ctx, "alice", "")
	require.ErrorIs(t, err, ErrInvalidInput)

	inUse, err := env.vault.EmailInUse(ctx, "alice@x.com")
	require.NoError(t, err)
	require.False(t, inUse)
}

func TestVaultConfirmation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.vault.Create(ctx, "alice", "alice@x.com")
	require.NoError(t, err)

	confirmed, err := env.vault.IsConfirmed(ctx, "alice")
	require.NoError(t, err)
	require.False(t, confirmed)

	require.NoError(t, env.vault.SetConfirmed(ctx, "alice"))
	require.NoError(t, env.vault.SetConfirmed(ctx, "alice"))

	confirmed, err = env.vault.IsConfirmed(ctx, "alice")
	require.NoError(t, err)
	require.True(t, confirmed)

	require.ErrorIs(t, env.vault.SetConfirmed(ctx, "nobody"), ErrUnknownUser)
	_, err = env.vault.IsConfirmed(ctx, "nobody")
	require.ErrorIs(t, err, ErrUnknownUser)
}

func TestVaultGetExistsRemove(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, found, err := env.vault.Get(ctx, "alice")
	require.NoError(t, err)
	require.False(t, found)

	_, err = env.vault.Create(ctx, "alice", "alice@x.com")
	require.NoError(t, err)

	id, found, err := env.vault.Get(ctx, "alice")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "alice@x.com", id.Email)

	exists, err := env.vault.Exists(ctx, "alice")
	require.NoError(t, err)
	require.True(t, exists)

	removed, err := env.vault.Remove(ctx, "alice")
	require.NoError(t, err)
	require.True(t, removed)

	removed, err = env.vault.Remove(ctx, "alice")
	require.NoError(t, err)
	require.False(t, removed)

	exists, err = env.vault.Exists(ctx, "alice")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestVaultStorageFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	vault := &PasswordVault{
		Store:  sqlite.NewStoreWithDB(db, "sqlmock"),
		Hasher: cryptox.NewPasswordHasher(bcrypt.MinCost, 1),
	}

	mock.ExpectQuery(regexp.QuoteMeta("FROM identities")).
		WithArgs("alice").
		WillReturnError(errors.New("disk I/O error"))

	_, _, err = vault.Get(context.Background(), "alice")
	require.ErrorIs(t, err, ErrStorageFailure)

	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok)
	require.Equal(t, "get identity", oopsErr.Context()["operation"])

	mock.ExpectQuery(regexp.QuoteMeta("FROM identities")).
		WithArgs("bob").
		WillReturnError(sql.ErrNoRows)

	_, found, err := vault.Get(context.Background(), "bob")
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, mock.ExpectationsWereMet())
}
