package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/trivia/internal/credentials/store"
)

// HousekeepingService periodically deletes expired sessions and
// confirmation tokens older than the retention window.
type HousekeepingService struct {
	Store          store.Store
	Tokens         *TokenStore
	Logger         *slog.Logger
	Interval       time.Duration
	TokenRetention time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a housekeeping service. A non-positive
// interval defaults to 1 hour; a non-positive retention keeps tokens forever.
func NewHousekeepingService(
	store store.Store,
	tokens *TokenStore,
	logger *slog.Logger,
	interval, tokenRetention time.Duration,
) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Store:          store,
		Tokens:         tokens,
		Logger:         logger,
		Interval:       interval,
		TokenRetention: tokenRetention,
		stopCh:         make(chan struct{}),
		doneCh:         make(chan struct{}),
	}
}

// Start runs cleanup in the background, once immediately and then every
// Interval. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until any in-progress cleanup has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.Cleanup(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Cleanup(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Cleanup performs one pass. Each deletion is independent.
func (s *HousekeepingService) Cleanup(ctx context.Context) {
	sessions, err := s.Store.Sessions().DeleteExpiredSessions(ctx)
	if err != nil {
		s.Logger.Error("failed to delete expired sessions", "error", err)
	}

	var tokens int64
	if s.TokenRetention > 0 && s.Tokens != nil {
		tokens, err = s.Tokens.Prune(ctx, time.Now().Add(-s.TokenRetention))
		if err != nil {
			s.Logger.Error("failed to prune confirmation tokens", "error", err)
		}
	}

	s.Logger.Info("housekeeping cleanup completed",
		"expired_sessions", sessions,
		"pruned_tokens", tokens,
	)
}
