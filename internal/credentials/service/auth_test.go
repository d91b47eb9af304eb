package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/aussiebroadwan/trivia/internal/credentials/domain"
	"github.com/aussiebroadwan/trivia/internal/credentials/store"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	res, err := env.auth.Register(ctx, "alice", "alice@x.com", "hunter2")
	require.NoError(t, err)
	require.Equal(t, "alice", res.Identity.Username)
	require.Equal(t, "alice@x.com", res.Identity.Email)
	require.False(t, res.Identity.Confirmed)
	require.True(t, strings.HasPrefix(res.ConfirmationURL, testBaseURL+"/"))

	ok, err := env.vault.VerifyPassword(ctx, "alice", "hunter2")
	require.NoError(t, err)
	require.True(t, ok)

	sent := env.outbox.sent()
	require.Len(t, sent, 1)
	require.Contains(t, sent[0].Text, res.ConfirmationURL)

	valid, err := env.tokens.Verify(ctx, tokenFromURL(t, res.ConfirmationURL))
	require.NoError(t, err)
	require.True(t, valid)
}

func TestRegisterRejects(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.auth.Register(ctx, "alice", "alice@x.com", "hunter2")
	require.NoError(t, err)
	before, ok, err := env.vault.Get(ctx, "alice")
	require.NoError(t, err)
	require.True(t, ok)

	tests := []struct {
		name                      string
		username, email, password string
		want                      error
	}{
		{"empty username", "", "b@x.com", "pw", ErrInvalidInput},
		{"empty email", "bob", "", "pw", ErrInvalidInput},
		{"empty password", "bob", "b@x.com", "", ErrInvalidInput},
		{"username too long", strings.Repeat("b", MaxUsernameLen+1), "b@x.com", "pw", ErrInvalidInput},
		{"duplicate username", "alice", "other@x.com", "pw", ErrDuplicateUsername},
		{"duplicate email", "bob", "alice@x.com", "pw", ErrDuplicateEmail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.auth.Register(ctx, tt.username, tt.email, tt.password)
			require.ErrorIs(t, err, tt.want)
		})
	}

	exists, err := env.vault.Exists(ctx, "bob")
	require.NoError(t, err)
	require.False(t, exists, "a failed registration leaves no identity")

	_, ok, err = env.tokens.CurrentTokenFor(ctx, "bob")
	require.NoError(t, err)
	require.False(t, ok, "a failed registration leaves no token")

	after, ok, err := env.vault.Get(ctx, "alice")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, before.Email, after.Email)
	require.Equal(t, before.PasswordHash, after.PasswordHash)
}

// failingTokensStore hands out transactions whose token inserts fail.
type failingTokensStore struct{ store.Store }

func (s failingTokensStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		return fn(failingTokensTx{tx})
	})
}

// innerTx aliases store.Tx so embedding it does not create a field named Tx
// that would shadow the promoted Tx method.
type innerTx = store.Tx

type failingTokensTx struct{ innerTx }

func (tx failingTokensTx) Tokens() store.Tokens { return failingTokens{tx.innerTx.Tokens()} }

type failingTokens struct{ store.Tokens }

func (failingTokens) InsertToken(context.Context, domain.TokenKind, string, string) (domain.Token, error) {
	return domain.Token{}, errors.New("disk full")
}

func TestRegisterRollsBackOnTokenFailure(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.auth.Store = failingTokensStore{env.store}

	_, err := env.auth.Register(ctx, "bob", "bob@x.com", "hunter2")
	require.ErrorIs(t, err, ErrStorageFailure)

	exists, err := env.vault.Exists(ctx, "bob")
	require.NoError(t, err)
	require.False(t, exists, "identity must be rolled back with the token")

	inUse, err := env.vault.EmailInUse(ctx, "bob@x.com")
	require.NoError(t, err)
	require.False(t, inUse)
	require.Empty(t, env.outbox.sent())
}

func TestRegisterSurvivesMailFailure(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.outbox.fail = errors.New("relay down")

	res, err := env.auth.Register(ctx, "alice", "alice@x.com", "hunter2")
	require.NoError(t, err)
	require.NotEmpty(t, res.ConfirmationURL)

	exists, err := env.vault.Exists(ctx, "alice")
	require.NoError(t, err)
	require.True(t, exists)
}

func TestRegisterConcurrentSameUsername(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	const n = 2
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = env.auth.Register(ctx, "alice", fmt.Sprintf("alice%d@x.com", i), "hunter2")
		}()
	}
	wg.Wait()

	var ok, dup int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrDuplicateUsername):
			dup++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	require.Equal(t, 1, ok)
	require.Equal(t, 1, dup)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.auth.Register(ctx, "alice", "alice@x.com", "hunter2")
	require.NoError(t, err)

	var sess domain.SessionState
	require.NoError(t, env.auth.Login(ctx, &sess, "alice", "hunter2"))
	require.True(t, sess.LoggedIn)
	require.Equal(t, &domain.SessionUser{Username: "alice", Email: "alice@x.com"}, sess.User)

	st := env.auth.Status(&sess)
	require.True(t, st.LoggedIn)
	require.Equal(t, "alice", st.User.Username)

	env.auth.Logout(&sess)
	require.False(t, sess.LoggedIn)
	require.Nil(t, sess.User)
	require.Equal(t, StatusResult{}, env.auth.Status(&sess))

	env.auth.Logout(&sess)
	require.False(t, sess.LoggedIn, "logout is idempotent")
}

func TestLoginFailuresLookAlike(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.auth.Register(ctx, "alice", "alice@x.com", "hunter2")
	require.NoError(t, err)

	var sess domain.SessionState
	wrong := env.auth.Login(ctx, &sess, "alice", "wrong")
	unknown := env.auth.Login(ctx, &sess, "mallory", "hunter2")

	require.ErrorIs(t, wrong, ErrInvalidCredentials)
	require.ErrorIs(t, unknown, ErrInvalidCredentials)
	require.Equal(t, wrong.Error(), unknown.Error())
	require.False(t, sess.LoggedIn)
}

func TestStatusNilSession(t *testing.T) {
	env := newTestEnv(t)
	require.Equal(t, StatusResult{}, env.auth.Status(nil))
}

// loggedIn registers username and returns a session logged in as it.
func loggedIn(t *testing.T, env *testEnv, username, password string) *domain.SessionState {
	t.Helper()
	ctx := context.Background()

	_, err := env.auth.Register(ctx, username, username+"@x.com", password)
	require.NoError(t, err)

	sess := &domain.SessionState{}
	require.NoError(t, env.auth.Login(ctx, sess, username, password))
	return sess
}

func TestUpdateEmail(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	sess := loggedIn(t, env, "alice", "hunter2")

	_, err := env.auth.UpdateEmail(ctx, sess, "alice", "wrong", "new@x.com")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	id, err := env.auth.UpdateEmail(ctx, sess, "alice", "hunter2", "new@x.com")
	require.NoError(t, err)
	require.Equal(t, "new@x.com", id.Email)
	require.Equal(t, "new@x.com", sess.User.Email, "session snapshot refreshed")

	loggedIn(t, env, "bob", "pw")
	_, err = env.auth.UpdateEmail(ctx, sess, "alice", "hunter2", "bob@x.com")
	require.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestUpdatePassword(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	sess := loggedIn(t, env, "alice", "hunter2")

	require.ErrorIs(t, env.auth.UpdatePassword(ctx, sess, "alice", "wrong", "next"), ErrInvalidCredentials)
	require.NoError(t, env.auth.UpdatePassword(ctx, sess, "alice", "hunter2", "next"))

	ok, err := env.vault.VerifyPassword(ctx, "alice", "next")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = env.vault.VerifyPassword(ctx, "alice", "hunter2")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestGateRequiresSameSessionUser(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	loggedIn(t, env, "alice", "hunter2")
	bob := loggedIn(t, env, "bob", "pw")

	// Correct password for alice, but the session belongs to bob.
	err := env.auth.UpdatePassword(ctx, bob, "alice", "hunter2", "stolen")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	// Correct password, but logged out.
	anon := &domain.SessionState{}
	err = env.auth.UpdatePassword(ctx, anon, "bob", "pw", "next")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	err = env.auth.DeleteAccount(ctx, nil, "bob", "pw")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestDeleteAccount(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	sess := loggedIn(t, env, "alice", "hunter2")

	_, ok, err := env.tokens.CurrentTokenFor(ctx, "alice")
	require.NoError(t, err)
	require.True(t, ok)

	require.ErrorIs(t, env.auth.DeleteAccount(ctx, sess, "alice", "wrong"), ErrInvalidCredentials)
	require.NoError(t, env.auth.DeleteAccount(ctx, sess, "alice", "hunter2"))
	require.False(t, sess.LoggedIn)

	exists, err := env.vault.Exists(ctx, "alice")
	require.NoError(t, err)
	require.False(t, exists)

	_, ok, err = env.tokens.CurrentTokenFor(ctx, "alice")
	require.NoError(t, err)
	require.False(t, ok, "tokens revoked with the account")

	_, err = env.auth.Register(ctx, "alice", "alice@x.com", "again")
	require.NoError(t, err, "the username and email are free again")
}

func TestScenarioRegisterConfirmLogin(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	res, err := env.auth.Register(ctx, "alice", "alice@x.com", "hunter2")
	require.NoError(t, err)

	ok, err := env.conf.Redeem(ctx, tokenFromURL(t, res.ConfirmationURL))
	require.NoError(t, err)
	require.True(t, ok)

	var sess domain.SessionState
	require.NoError(t, env.auth.Login(ctx, &sess, "alice", "hunter2"))
	require.True(t, sess.User.Confirmed)
}
