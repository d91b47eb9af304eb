package store

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/trivia/internal/credentials/domain"
	"github.com/aussiebroadwan/trivia/pkg/sessionx"
)

// SessionBackendAdapter adapts the store.Store interface to sessionx.Backend
// so the session manager does not depend on the domain package.
type SessionBackendAdapter struct {
	store Store
}

// NewSessionBackendAdapter creates an adapter implementing sessionx.Backend.
func NewSessionBackendAdapter(store Store) *SessionBackendAdapter {
	return &SessionBackendAdapter{store: store}
}

func (a *SessionBackendAdapter) LoadSession(ctx context.Context, id string) (sessionx.Record, bool, error) {
	s, err := a.store.Sessions().GetSession(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return sessionx.Record{}, false, nil
	}
	if err != nil {
		return sessionx.Record{}, false, err
	}
	return sessionx.Record{ID: s.ID, Data: s.Data, ExpiresAt: s.ExpiresAt}, true, nil
}

func (a *SessionBackendAdapter) SaveSession(ctx context.Context, rec sessionx.Record) error {
	return a.store.Sessions().UpsertSession(ctx, domain.Session{
		ID:        rec.ID,
		Data:      rec.Data,
		ExpiresAt: rec.ExpiresAt,
	})
}

func (a *SessionBackendAdapter) DeleteSession(ctx context.Context, id string) error {
	return a.store.Sessions().DeleteSession(ctx, id)
}
