package service

import (
	"context"
	"testing"

	"github.com/aussiebroadwan/trivia/internal/credentials/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRegisterMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NotPanics(t, func() { RegisterMetrics(reg) })
	require.Panics(t, func() { RegisterMetrics(reg) }, "double registration")
}

func TestMetricsCountOutcomes(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	regOK := testutil.ToFloat64(Registrations.WithLabelValues(ResultSuccess))
	regDup := testutil.ToFloat64(Registrations.WithLabelValues(ResultDuplicate))
	loginBad := testutil.ToFloat64(Logins.WithLabelValues(ResultRejected))
	mailOK := testutil.ToFloat64(EmailDeliveries.WithLabelValues(ResultSuccess))
	confOK := testutil.ToFloat64(Confirmations.WithLabelValues(ResultSuccess))

	res, err := env.auth.Register(ctx, "alice", "alice@x.com", "hunter2")
	require.NoError(t, err)
	_, err = env.auth.Register(ctx, "alice", "other@x.com", "hunter2")
	require.ErrorIs(t, err, ErrDuplicateUsername)

	var sess domain.SessionState
	require.ErrorIs(t, env.auth.Login(ctx, &sess, "alice", "nope"), ErrInvalidCredentials)

	ok, err := env.conf.Redeem(ctx, tokenFromURL(t, res.ConfirmationURL))
	require.NoError(t, err)
	require.True(t, ok)

	require.InDelta(t, regOK+1, testutil.ToFloat64(Registrations.WithLabelValues(ResultSuccess)), 0)
	require.InDelta(t, regDup+1, testutil.ToFloat64(Registrations.WithLabelValues(ResultDuplicate)), 0)
	require.InDelta(t, loginBad+1, testutil.ToFloat64(Logins.WithLabelValues(ResultRejected)), 0)
	require.InDelta(t, mailOK+1, testutil.ToFloat64(EmailDeliveries.WithLabelValues(ResultSuccess)), 0)
	require.InDelta(t, confOK+1, testutil.ToFloat64(Confirmations.WithLabelValues(ResultSuccess)), 0)
}
