package service

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/trivia/internal/credentials/domain"
	"github.com/aussiebroadwan/trivia/internal/credentials/store"
	"github.com/aussiebroadwan/trivia/pkg/slogx"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestHousekeepingCleanup(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	sessions := env.store.Sessions()
	require.NoError(t, sessions.UpsertSession(ctx, domain.Session{
		ID: "stale", Data: []byte(`{}`), ExpiresAt: time.Now().Add(-time.Minute),
	}))
	require.NoError(t, sessions.UpsertSession(ctx, domain.Session{
		ID: "live", Data: []byte(`{}`), ExpiresAt: time.Now().Add(time.Hour),
	}))

	tok, err := env.tokens.Issue(ctx, "alice", 0)
	require.NoError(t, err)

	hk := NewHousekeepingService(env.store, env.tokens, slogx.Discard(), time.Hour, time.Hour)
	hk.Cleanup(ctx)

	_, err = sessions.GetSession(ctx, "live")
	require.NoError(t, err)

	known, err := env.tokens.IsKnown(ctx, tok)
	require.NoError(t, err)
	require.True(t, known, "young tokens are kept")

	hk.TokenRetention = -time.Hour
	hk.Cleanup(ctx)
	known, err = env.tokens.IsKnown(ctx, tok)
	require.NoError(t, err)
	require.True(t, known, "non-positive retention keeps tokens")

	n, err := env.store.Sessions().DeleteExpiredSessions(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 0, n, "expired session already removed")
}

func TestHousekeepingPrunesOldTokens(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	tok, err := env.tokens.Issue(ctx, "alice", 0)
	require.NoError(t, err)

	hk := NewHousekeepingService(env.store, env.tokens, slogx.Discard(), time.Hour, time.Nanosecond)
	time.Sleep(5 * time.Millisecond)
	hk.Cleanup(ctx)

	_, err = env.store.Tokens().GetLatestByToken(ctx, domain.TokenKindEmailConfirmation, tok)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestHousekeepingStartStop(t *testing.T) {
	env := newTestEnv(t)
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	hk := NewHousekeepingService(env.store, env.tokens, slogx.Discard(), 0, 0)
	require.Equal(t, time.Hour, hk.Interval)

	hk.Start()
	hk.Stop()
}
