package sqlite

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/trivia/internal/credentials/domain"
	"github.com/aussiebroadwan/trivia/internal/credentials/store"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestWithPragmas(t *testing.T) {
	require.Equal(t,
		":memory:?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_txlock=immediate&_time_format=sqlite",
		withPragmas(":memory:"))
	require.Contains(t, withPragmas("file:trivia.db?cache=shared"), "?cache=shared&_pragma=foreign_keys(1)")
	require.Contains(t, withPragmas("trivia.db"), "journal_mode(WAL)")
}

func TestApplyMigrationsIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.ApplyMigrations())
	require.NoError(t, s.Ping(context.Background()))

	version, dirty, err := s.SchemaVersion()
	require.NoError(t, err)
	require.False(t, dirty)
	require.Equal(t, uint(1), version)
}

func TestSchemaVersionBeforeMigrations(t *testing.T) {
	s, err := NewStore(":memory:")
	require.NoError(t, err)
	defer s.Close()

	version, dirty, err := s.SchemaVersion()
	require.NoError(t, err)
	require.False(t, dirty)
	require.Zero(t, version)
}

func TestIdentities(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	ids := s.Identities()

	created, err := ids.CreateIdentity(ctx, "alice", "alice@x.com")
	require.NoError(t, err)
	require.Equal(t, "alice", created.Username)
	require.False(t, created.Confirmed)
	require.False(t, created.HasPassword())

	t.Run("duplicate username", func(t *testing.T) {
		_, err := ids.CreateIdentity(ctx, "alice", "other@x.com")
		require.ErrorIs(t, err, store.ErrDuplicateUsername)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := ids.CreateIdentity(ctx, "bob", "alice@x.com")
		require.ErrorIs(t, err, store.ErrDuplicateEmail)
	})

	t.Run("get and lookups", func(t *testing.T) {
		got, err := ids.GetIdentity(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, "alice@x.com", got.Email)
		require.False(t, got.CreatedAt.IsZero())

		byEmail, err := ids.GetIdentityByEmail(ctx, "alice@x.com")
		require.NoError(t, err)
		require.Equal(t, "alice", byEmail.Username)

		_, err = ids.GetIdentity(ctx, "nobody")
		require.ErrorIs(t, err, store.ErrNotFound)

		ok, err := ids.UsernameExists(ctx, "alice")
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = ids.EmailExists(ctx, "nobody@x.com")
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("password hash", func(t *testing.T) {
		require.NoError(t, ids.UpdatePasswordHash(ctx, "alice", "$2a$10$hash"))
		got, err := ids.GetIdentity(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, "$2a$10$hash", got.PasswordHash)

		require.ErrorIs(t, ids.UpdatePasswordHash(ctx, "nobody", "x"), store.ErrNotFound)
	})

	t.Run("confirm", func(t *testing.T) {
		require.NoError(t, ids.MarkConfirmed(ctx, "alice"))
		require.NoError(t, ids.MarkConfirmed(ctx, "alice"))
		got, err := ids.GetIdentity(ctx, "alice")
		require.NoError(t, err)
		require.True(t, got.Confirmed)

		require.ErrorIs(t, ids.MarkConfirmed(ctx, "nobody"), store.ErrNotFound)
	})

	t.Run("update email", func(t *testing.T) {
		_, err := ids.CreateIdentity(ctx, "carol", "carol@x.com")
		require.NoError(t, err)

		require.ErrorIs(t, ids.UpdateEmail(ctx, "carol", "alice@x.com"), store.ErrDuplicateEmail)
		require.ErrorIs(t, ids.UpdateEmail(ctx, "nobody", "n@x.com"), store.ErrNotFound)
		require.NoError(t, ids.UpdateEmail(ctx, "carol", "carol2@x.com"))

		got, err := ids.GetIdentity(ctx, "carol")
		require.NoError(t, err)
		require.Equal(t, "carol2@x.com", got.Email)
	})

	t.Run("delete", func(t *testing.T) {
		deleted, err := ids.DeleteIdentity(ctx, "alice")
		require.NoError(t, err)
		require.True(t, deleted)

		deleted, err = ids.DeleteIdentity(ctx, "alice")
		require.NoError(t, err)
		require.False(t, deleted)
	})
}

func TestConcurrentCreateSameUsername(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = s.Identities().CreateIdentity(ctx, "racer", fmt.Sprintf("racer%d@x.com", i))
		}()
	}
	wg.Wait()

	var ok, dup int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, store.ErrDuplicateUsername):
			dup++
		}
	}
	require.Equal(t, 1, ok)
	require.Equal(t, 1, dup)
}

func TestTokens(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	toks := s.Tokens()
	kind := domain.TokenKindEmailConfirmation

	first, err := toks.InsertToken(ctx, kind, "aaaa", "alice")
	require.NoError(t, err)
	second, err := toks.InsertToken(ctx, kind, "bbbb", "alice")
	require.NoError(t, err)
	require.Greater(t, second.Idx, first.Idx)

	latest, err := toks.GetLatestBySubject(ctx, kind, "alice")
	require.NoError(t, err)
	require.Equal(t, "bbbb", latest.Token)

	byValue, err := toks.GetLatestByToken(ctx, kind, "aaaa")
	require.NoError(t, err)
	require.Equal(t, "alice", byValue.Subject)
	require.Equal(t, first.Idx, byValue.Idx)

	_, err = toks.GetLatestByToken(ctx, "other_kind", "aaaa")
	require.ErrorIs(t, err, store.ErrNotFound)

	n, err := toks.DeleteByToken(ctx, kind, "aaaa")
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	_, err = toks.InsertToken(ctx, kind, "cccc", "bob")
	require.NoError(t, err)

	n, err = toks.DeleteBySubject(ctx, kind, "alice")
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	n, err = toks.DeleteCreatedBefore(ctx, kind, time.Now().Add(time.Minute))
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

func TestSessions(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	sess := s.Sessions()

	require.NoError(t, sess.UpsertSession(ctx, domain.Session{
		ID:        "live",
		Data:      []byte(`{"loggedIn":true}`),
		ExpiresAt: time.Now().Add(time.Hour),
	}))
	require.NoError(t, sess.UpsertSession(ctx, domain.Session{
		ID:        "stale",
		Data:      []byte(`{}`),
		ExpiresAt: time.Now().Add(-time.Hour),
	}))

	got, err := sess.GetSession(ctx, "live")
	require.NoError(t, err)
	require.JSONEq(t, `{"loggedIn":true}`, string(got.Data))

	_, err = sess.GetSession(ctx, "stale")
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, sess.UpsertSession(ctx, domain.Session{
		ID:        "live",
		Data:      []byte(`{"loggedIn":false}`),
		ExpiresAt: time.Now().Add(time.Hour),
	}))
	got, err = sess.GetSession(ctx, "live")
	require.NoError(t, err)
	require.JSONEq(t, `{"loggedIn":false}`, string(got.Data))

	n, err := sess.DeleteExpiredSessions(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	require.NoError(t, sess.DeleteSession(ctx, "live"))
	_, err = sess.GetSession(ctx, "live")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	err := s.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.Identities().CreateIdentity(ctx, "ghost", "ghost@x.com"); err != nil {
			return err
		}
		_, err := tx.Identities().CreateIdentity(ctx, "ghost2", "ghost@x.com")
		return err
	})
	require.ErrorIs(t, err, store.ErrDuplicateEmail)

	ok, err := s.Identities().UsernameExists(ctx, "ghost")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestWithTxCommits(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.WithTx(ctx, func(tx store.Tx) error {
		_, err := tx.Identities().CreateIdentity(ctx, "dave", "dave@x.com")
		return err
	}))

	ok, err := s.Identities().UsernameExists(ctx, "dave")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestNestedWithTxJoinsOuter(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	err := s.WithTx(ctx, func(tx store.Tx) error {
		_, err := tx.Tx(ctx)
		require.ErrorIs(t, err, errNestedTx)

		require.NoError(t, tx.WithTx(ctx, func(inner store.Tx) error {
			_, err := inner.Identities().CreateIdentity(ctx, "nested", "nested@x.com")
			return err
		}))
		return errors.New("abort outer")
	})
	require.Error(t, err)

	exists, err := s.Identities().UsernameExists(ctx, "nested")
	require.NoError(t, err)
	require.False(t, exists, "inner work rolls back with the outer transaction")
}
