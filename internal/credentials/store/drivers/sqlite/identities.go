package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/trivia/internal/credentials/domain"
	"github.com/aussiebroadwan/trivia/internal/credentials/store"
	"github.com/aussiebroadwan/trivia/internal/credentials/store/drivers/sqlite/gen"
)

type identitiesRepo struct {
	q   *gen.Queries
	now func() time.Time
}

func (r *identitiesRepo) CreateIdentity(ctx context.Context, username, email string) (domain.Identity, error) {
	now := r.now()
	if err := r.q.CreateIdentity(ctx, gen.CreateIdentityParams{
		Username:  username,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		return domain.Identity{}, mapConstraint(err)
	}
	return domain.Identity{
		Username:  username,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (r *identitiesRepo) GetIdentity(ctx context.Context, username string) (domain.Identity, error) {
	row, err := r.q.GetIdentity(ctx, username)
	if err != nil {
		return domain.Identity{}, mapNotFound(err)
	}
	return mapIdentity(row), nil
}

func (r *identitiesRepo) GetIdentityByEmail(ctx context.Context, email string) (domain.Identity, error) {
	row, err := r.q.GetIdentityByEmail(ctx, email)
	if err != nil {
		return domain.Identity{}, mapNotFound(err)
	}
	return mapIdentity(row), nil
}

func (r *identitiesRepo) UpdatePasswordHash(ctx context.Context, username, hash string) error {
	n, err := r.q.UpdateIdentityPasswordHash(ctx, gen.UpdateIdentityPasswordHashParams{
		PasswordHash: mapStringNull(hash),
		UpdatedAt:    r.now(),
		Username:     username,
	})
	return affectedOne(n, err)
}

func (r *identitiesRepo) UpdateEmail(ctx context.Context, username, email string) error {
	n, err := r.q.UpdateIdentityEmail(ctx, gen.UpdateIdentityEmailParams{
		Email:     email,
		UpdatedAt: r.now(),
		Username:  username,
	})
	if err != nil {
		return mapConstraint(err)
	}
	return affectedOne(n, nil)
}

func (r *identitiesRepo) MarkConfirmed(ctx context.Context, username string) error {
	n, err := r.q.MarkIdentityConfirmed(ctx, gen.MarkIdentityConfirmedParams{
		UpdatedAt: r.now(),
		Username:  username,
	})
	return affectedOne(n, err)
}

func (r *identitiesRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	count, err := r.q.CountIdentitiesByUsername(ctx, username)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *identitiesRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	count, err := r.q.CountIdentitiesByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *identitiesRepo) DeleteIdentity(ctx context.Context, username string) (bool, error) {
	n, err := r.q.DeleteIdentity(ctx, username)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func affectedOne(n int64, err error) error {
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
