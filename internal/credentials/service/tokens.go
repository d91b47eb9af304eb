package service

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/trivia/internal/credentials/domain"
	"github.com/aussiebroadwan/trivia/internal/credentials/store"
	"github.com/aussiebroadwan/trivia/pkg/cryptox"
)

// DefaultTokenBytes is the token entropy when Issue is given no length.
const DefaultTokenBytes = cryptox.TokenSize128

// TokenStore maps random tokens to subjects for one token kind. Rows are
// only ever appended; the newest row for a subject is the only current one,
// so issuing a new token silently supersedes the previous ones.
type TokenStore struct {
	Store store.Store
	Kind  domain.TokenKind
}

// WithStore returns a token store bound to s, typically a transaction.
func (t *TokenStore) WithStore(s store.Store) *TokenStore {
	return &TokenStore{Store: s, Kind: t.Kind}
}

// Issue stores a fresh hex token for subject. byteLength <= 0 means
// DefaultTokenBytes; the token is 2*byteLength characters.
func (t *TokenStore) Issue(ctx context.Context, subject string, byteLength int) (string, error) {
	if subject == "" {
		return "", ErrInvalidInput
	}
	if byteLength <= 0 {
		byteLength = DefaultTokenBytes
	}

	token, err := cryptox.GenerateHexToken(byteLength)
	if err != nil {
		return "", err
	}
	if _, err := t.Store.Tokens().InsertToken(ctx, t.Kind, token, subject); err != nil {
		return "", storageFailure("insert token", err)
	}
	return token, nil
}

// lookup returns the newest row carrying token.
func (t *TokenStore) lookup(ctx context.Context, token string) (domain.Token, error) {
	row, err := t.Store.Tokens().GetLatestByToken(ctx, t.Kind, token)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return domain.Token{}, ErrTokenNotFound
	case err != nil:
		return domain.Token{}, storageFailure("get token", err)
	}
	return row, nil
}

// current returns the row for token only if it is the newest for its
// subject. Otherwise ErrTokenNotFound or ErrTokenStale.
func (t *TokenStore) current(ctx context.Context, token string) (domain.Token, error) {
	row, err := t.lookup(ctx, token)
	if err != nil {
		return domain.Token{}, err
	}

	latest, err := t.Store.Tokens().GetLatestBySubject(ctx, t.Kind, row.Subject)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return domain.Token{}, ErrTokenNotFound
	case err != nil:
		return domain.Token{}, storageFailure("get current token", err)
	}
	if latest.Token != token {
		return domain.Token{}, ErrTokenStale
	}
	return row, nil
}

// Resolve returns the subject token maps to.
func (t *TokenStore) Resolve(ctx context.Context, token string) (string, bool, error) {
	row, err := t.lookup(ctx, token)
	if errors.Is(err, ErrTokenNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return row.Subject, true, nil
}

// CurrentTokenFor returns the newest token issued for subject.
func (t *TokenStore) CurrentTokenFor(ctx context.Context, subject string) (string, bool, error) {
	row, err := t.Store.Tokens().GetLatestBySubject(ctx, t.Kind, subject)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return "", false, nil
	case err != nil:
		return "", false, storageFailure("get current token", err)
	}
	return row.Token, true, nil
}

func (t *TokenStore) IsKnown(ctx context.Context, token string) (bool, error) {
	_, ok, err := t.Resolve(ctx, token)
	return ok, err
}

// Verify reports whether token resolves and is the current token of its
// subject.
func (t *TokenStore) Verify(ctx context.Context, token string) (bool, error) {
	_, err := t.current(ctx, token)
	switch {
	case errors.Is(err, ErrTokenNotFound), errors.Is(err, ErrTokenStale):
		return false, nil
	case err != nil:
		return false, err
	}
	return true, nil
}

// Revoke deletes every row carrying token.
func (t *TokenStore) Revoke(ctx context.Context, token string) (int64, error) {
	n, err := t.Store.Tokens().DeleteByToken(ctx, t.Kind, token)
	if err != nil {
		return 0, storageFailure("revoke token", err)
	}
	return n, nil
}

// RevokeAllFor deletes every token issued for subject.
func (t *TokenStore) RevokeAllFor(ctx context.Context, subject string) (int64, error) {
	n, err := t.Store.Tokens().DeleteBySubject(ctx, t.Kind, subject)
	if err != nil {
		return 0, storageFailure("revoke subject tokens", err)
	}
	return n, nil
}

// Prune deletes tokens created before olderThan.
func (t *TokenStore) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	n, err := t.Store.Tokens().DeleteCreatedBefore(ctx, t.Kind, olderThan)
	if err != nil {
		return 0, storageFailure("prune tokens", err)
	}
	return n, nil
}
