package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/trivia/internal/credentials/domain"
	"github.com/aussiebroadwan/trivia/internal/credentials/store/drivers/sqlite/gen"
)

type sessionsRepo struct {
	q   *gen.Queries
	now func() time.Time
}

func (r *sessionsRepo) GetSession(ctx context.Context, id string) (domain.Session, error) {
	row, err := r.q.GetSession(ctx, gen.GetSessionParams{
		ID:        id,
		ExpiresAt: r.now(),
	})
	if err != nil {
		return domain.Session{}, mapNotFound(err)
	}
	return mapSession(row), nil
}

func (r *sessionsRepo) UpsertSession(ctx context.Context, s domain.Session) error {
	now := r.now()
	return r.q.UpsertSession(ctx, gen.UpsertSessionParams{
		ID:        s.ID,
		Data:      string(s.Data),
		ExpiresAt: s.ExpiresAt.UTC(),
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (r *sessionsRepo) DeleteSession(ctx context.Context, id string) error {
	return r.q.DeleteSession(ctx, id)
}

func (r *sessionsRepo) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	return r.q.DeleteExpiredSessions(ctx, r.now())
}
