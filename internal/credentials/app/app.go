package app

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/aussiebroadwan/trivia/internal/credentials/domain"
	httpapi "github.com/aussiebroadwan/trivia/internal/credentials/http"
	"github.com/aussiebroadwan/trivia/internal/credentials/mail"
	"github.com/aussiebroadwan/trivia/internal/credentials/service"
	"github.com/aussiebroadwan/trivia/internal/credentials/store"
	"github.com/aussiebroadwan/trivia/internal/credentials/store/drivers/sqlite"
	"github.com/aussiebroadwan/trivia/pkg/cryptox"
	"github.com/aussiebroadwan/trivia/pkg/mailx"
	"github.com/aussiebroadwan/trivia/pkg/sessionx"
	"github.com/aussiebroadwan/trivia/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"

	// SessionCookie names the session cookie.
	SessionCookie = "trivia.sid"
)

// Application encapsulates the credentials service with all its dependencies
type Application struct {
	cfg      Config
	logger   *slog.Logger
	registry *prometheus.Registry

	// Core dependencies
	db       *sqlite.Store
	mailer   mailx.Sender
	sessions *sessionx.Manager[domain.SessionState]

	// Services
	vault               *service.PasswordVault
	tokens              *service.TokenStore
	confirmations       *service.ConfirmationService
	authService         *service.AuthService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// NewLogger builds the service logger from cfg.
func NewLogger(cfg Config) *slog.Logger {
	return slogx.New(slogx.Config{
		Service: "credentials-service",
		Version: BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg:      cfg,
		logger:   NewLogger(cfg),
		registry: prometheus.NewRegistry(),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initServices(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	if err := app.initHTTP(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	return app, nil
}

// Handler exposes the HTTP handler, mainly for tests.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("credentials service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			app.housekeepingService.Stop()
			_ = app.db.Close()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down credentials service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("credentials service stopped")
	return nil
}

// Migrate opens the configured database, applies migrations and closes it.
func Migrate(cfg Config, logger *slog.Logger) error {
	db, err := sqlite.NewStore(dsnFor(cfg.DatabaseFile))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.ApplyMigrations(); err != nil {
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	version, dirty, err := db.SchemaVersion()
	if err != nil {
		return err
	}
	logger.Info("database migrations applied successfully",
		"database", cfg.DatabaseFile, "schema_version", version, "dirty", dirty)
	return nil
}

func dsnFor(path string) string {
	if path == ":memory:" {
		return path
	}
	return "file:" + path
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	db, err := sqlite.NewStore(dsnFor(app.cfg.DatabaseFile))
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

func (app *Application) initMailer() mailx.Sender {
	var transport mailx.Sender
	switch app.cfg.Mail.Driver {
	case "smtp":
		transport = mailx.NewSMTPSender(mailx.SMTPConfig{
			Host:       app.cfg.Mail.Host,
			Port:       app.cfg.Mail.Port,
			Username:   app.cfg.Mail.Username,
			Password:   app.cfg.Mail.Password,
			From:       app.cfg.Mail.From,
			RequireTLS: app.cfg.Mail.RequireTLS,
			Timeout:    app.cfg.Mail.Timeout,
		})
	default:
		transport = &mailx.LogSender{Logger: app.logger}
	}

	if app.cfg.Mail.MaxRetries == 0 {
		return transport
	}
	return mailx.NewRetryingSender(transport, app.cfg.Mail.MaxRetries, app.cfg.Mail.RetryBaseDelay)
}

func (app *Application) sessionSecret() ([]byte, error) {
	if app.cfg.SessionSecret != "" {
		return []byte(app.cfg.SessionSecret), nil
	}

	// Only reachable in dev; Validate rejects it elsewhere.
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, err
	}
	app.logger.Warn("no session secret configured, sessions will not survive a restart")
	return secret, nil
}

// initServices initializes all business logic services
func (app *Application) initServices() error {
	renderer, err := mail.NewRenderer(app.cfg.Mail.From, app.cfg.Mail.Subject)
	if err != nil {
		return fmt.Errorf("failed to load email templates: %w", err)
	}
	app.mailer = app.initMailer()

	app.vault = &service.PasswordVault{
		Store:  app.db,
		Hasher: cryptox.NewPasswordHasher(app.cfg.BcryptCost, app.cfg.HashConcurrency),
	}
	app.tokens = &service.TokenStore{
		Store: app.db,
		Kind:  domain.TokenKindEmailConfirmation,
	}
	app.confirmations = &service.ConfirmationService{
		Vault:    app.vault,
		Tokens:   app.tokens,
		Mailer:   app.mailer,
		Renderer: renderer,
		BaseURL:  app.cfg.ConfirmationURL,
		HomeURL:  app.cfg.HomeURL,
		TokenTTL: app.cfg.TokenTTL,
	}
	app.authService = &service.AuthService{
		Store:         app.db,
		Vault:         app.vault,
		Confirmations: app.confirmations,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.tokens,
		app.logger,
		app.cfg.HousekeepingInterval,
		app.cfg.TokenRetention,
	)

	secret, err := app.sessionSecret()
	if err != nil {
		return fmt.Errorf("failed to generate session secret: %w", err)
	}
	app.sessions, err = sessionx.NewManager[domain.SessionState](
		store.NewSessionBackendAdapter(app.db),
		sessionx.Config{
			CookieName: SessionCookie,
			Secret:     secret,
			TTL:        app.cfg.SessionTTL,
			Secure:     app.cfg.CookieSecure,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to initialize sessions: %w", err)
	}

	service.RegisterMetrics(app.registry)
	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() error {
	router, err := httpapi.NewRouter(BuildVersion, app.db, app.logger, app.registry)
	if err != nil {
		return fmt.Errorf("failed to compile request schemas: %w", err)
	}

	router.AuthService = app.authService
	router.Confirmations = app.confirmations
	router.Sessions = app.sessions
	router.PortalURL = app.cfg.PortalURL
	router.ExposeConfirmationURL = app.cfg.ExposeConfirmationURL
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
	return nil
}
