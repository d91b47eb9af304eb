package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/trivia/internal/credentials/domain"
	"github.com/aussiebroadwan/trivia/internal/credentials/store/drivers/sqlite/gen"
)

type tokensRepo struct {
	q   *gen.Queries
	now func() time.Time
}

func (r *tokensRepo) InsertToken(ctx context.Context, kind domain.TokenKind, token, subject string) (domain.Token, error) {
	now := r.now()
	id, err := r.q.InsertToken(ctx, gen.InsertTokenParams{
		Kind:      string(kind),
		Token:     token,
		Subject:   subject,
		CreatedAt: now,
	})
	if err != nil {
		return domain.Token{}, err
	}
	return domain.Token{
		Idx:       id,
		Kind:      kind,
		Token:     token,
		Subject:   subject,
		CreatedAt: now,
	}, nil
}

func (r *tokensRepo) GetLatestByToken(ctx context.Context, kind domain.TokenKind, token string) (domain.Token, error) {
	row, err := r.q.GetLatestTokenByValue(ctx, gen.GetLatestTokenByValueParams{
		Kind:  string(kind),
		Token: token,
	})
	if err != nil {
		return domain.Token{}, mapNotFound(err)
	}
	return mapToken(row), nil
}

func (r *tokensRepo) GetLatestBySubject(ctx context.Context, kind domain.TokenKind, subject string) (domain.Token, error) {
	row, err := r.q.GetLatestTokenBySubject(ctx, gen.GetLatestTokenBySubjectParams{
		Kind:    string(kind),
		Subject: subject,
	})
	if err != nil {
		return domain.Token{}, mapNotFound(err)
	}
	return mapToken(row), nil
}

func (r *tokensRepo) DeleteByToken(ctx context.Context, kind domain.TokenKind, token string) (int64, error) {
	return r.q.DeleteTokensByValue(ctx, gen.DeleteTokensByValueParams{
		Kind:  string(kind),
		Token: token,
	})
}

func (r *tokensRepo) DeleteBySubject(ctx context.Context, kind domain.TokenKind, subject string) (int64, error) {
	return r.q.DeleteTokensBySubject(ctx, gen.DeleteTokensBySubjectParams{
		Kind:    string(kind),
		Subject: subject,
	})
}

func (r *tokensRepo) DeleteCreatedBefore(ctx context.Context, kind domain.TokenKind, before time.Time) (int64, error) {
	return r.q.DeleteTokensCreatedBefore(ctx, gen.DeleteTokensCreatedBeforeParams{
		Kind:      string(kind),
		CreatedAt: before.UTC(),
	})
}
