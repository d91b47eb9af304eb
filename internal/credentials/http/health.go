package http

import (
	"context"
	"net/http"
	"time"

	"github.com/aussiebroadwan/trivia/internal/credentials/store"
	"github.com/aussiebroadwan/trivia/pkg/authsdk"
	"github.com/aussiebroadwan/trivia/pkg/httpx"
	"github.com/aussiebroadwan/trivia/pkg/slogx"
)

const readyzPingTimeout = 2 * time.Second

type probe struct {
	startTime time.Time
	version   string
}

func (p probe) response(status string) authsdk.HealthResponse {
	return authsdk.HealthResponse{
		Status:  status,
		Uptime:  time.Since(p.startTime).Truncate(time.Second).String(),
		Version: p.version,
	}
}

// LivezHandler godoc
//
//	@Summary		Liveness probe
//	@Description	Answers 200 whenever the process is serving requests
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version"
//	@Router			/livez [get].
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	p := probe{startTime: startTime, version: version}
	return func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, p.response("ok"))
	}
}

// ReadyzHandler godoc
//
//	@Summary		Readiness probe
//	@Description	Answers 200 once the identity database answers a ping, 503 otherwise
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	authsdk.HealthResponse	"database unreachable"
//	@Router			/readyz [get].
func ReadyzHandler(startTime time.Time, version string, st store.Store) http.HandlerFunc {
	p := probe{startTime: startTime, version: version}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyzPingTimeout)
		defer cancel()

		res := p.response("ok")
		res.Checks = &authsdk.HealthChecks{Database: "ok"}

		if err := st.Ping(ctx); err != nil {
			slogx.FromContext(ctx).Warn("readiness check failed", "error", err)
			res.Status = "degraded"
			res.Checks.Database = "unreachable"
			httpx.WriteJSON(w, http.StatusServiceUnavailable, res)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, res)
	}
}
