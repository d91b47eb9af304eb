package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aussiebroadwan/trivia/internal/credentials/domain"
	"github.com/aussiebroadwan/trivia/internal/credentials/http/schemas"
	"github.com/aussiebroadwan/trivia/internal/credentials/service"
	"github.com/aussiebroadwan/trivia/internal/credentials/store"
	"github.com/aussiebroadwan/trivia/pkg/httpx"
	"github.com/aussiebroadwan/trivia/pkg/schemax"
	"github.com/aussiebroadwan/trivia/pkg/sessionx"
	"github.com/aussiebroadwan/trivia/pkg/slogx"

	_ "github.com/aussiebroadwan/trivia/api/credentials" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	gatherer     prometheus.Gatherer

	store         store.Store
	schemas       *schemax.Registry
	AuthService   *service.AuthService
	Confirmations *service.ConfirmationService
	Sessions      *sessionx.Manager[domain.SessionState]

	PortalURL             string
	ExposeConfirmationURL bool
}

// NewRouter compiles the request schemas and sets the global middleware.
// gatherer backs /metrics and may be nil to leave the endpoint out.
func NewRouter(
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
	gatherer prometheus.Gatherer,
) (*Router, error) {
	reg, err := schemax.NewRegistry(schemas.FS)
	if err != nil {
		return nil, err
	}

	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		gatherer:     gatherer,
		store:        st,
		schemas:      reg,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.Recover(writePanic),
	}

	return r, nil
}

func (r *Router) ApplyRoutes() {
	r.registerCredentials()
	r.registerConfirmation()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Trivia Credentials Service API
//	@version		0.1.0
//	@description	Registration, email confirmation and session-backed login for Famous Trivia.
//	@description
//	@description	Login state lives in a server-side session referenced by the signed trivia.sid cookie.
//
//	@contact.name	AussieBroadWAN Team
//	@contact.url	https://github.com/aussiebroadwan/trivia
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host			localhost:8080
//	@BasePath		/
//
//	@schemes		http https
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerCredentials() {
	h := NewCredentialsHandler(r.AuthService, r.Confirmations, r.Sessions, r.schemas)
	h.ExposeConfirmationURL = r.ExposeConfirmationURL

	r.Mux.Handle("POST /credentials/{action}", h)
}

func (r *Router) registerConfirmation() {
	r.Mux.Handle("GET /confirmation/{token}", &ConfirmationHandler{
		Confirmations: r.Confirmations,
		PortalURL:     r.PortalURL,
	})
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store))

	if r.gatherer != nil {
		r.Mux.Handle("GET /metrics", promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{
			EnableOpenMetrics: true,
		}))
	}
}
