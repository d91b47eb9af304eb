package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/aussiebroadwan/trivia/internal/credentials/mail"
	"github.com/aussiebroadwan/trivia/internal/credentials/store"
	"github.com/aussiebroadwan/trivia/pkg/mailx"
	"github.com/aussiebroadwan/trivia/pkg/slogx"
)

// ConfirmationService drives an identity from unconfirmed to confirmed:
// it issues a token, mails a link embedding it and redeems the token once.
type ConfirmationService struct {
	Vault    *PasswordVault
	Tokens   *TokenStore
	Mailer   mailx.Sender
	Renderer *mail.Renderer

	BaseURL string // links are BaseURL + "/" + token
	HomeURL string

	// TokenTTL bounds how old a token may be when redeemed. Zero disables it.
	TokenTTL time.Duration

	Now func() time.Time
}

// WithStore returns a copy whose vault and tokens are bound to s.
func (c *ConfirmationService) WithStore(s store.Store) *ConfirmationService {
	cp := *c
	cp.Vault = c.Vault.WithStore(s)
	cp.Tokens = c.Tokens.WithStore(s)
	return &cp
}

func (c *ConfirmationService) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// URLFor builds the confirmation link for token.
func (c *ConfirmationService) URLFor(token string) string {
	return strings.TrimSuffix(c.BaseURL, "/") + "/" + url.PathEscape(token)
}

// Issue stores a new confirmation token for username, superseding earlier
// ones, and returns the confirmation URL. Nothing is sent.
func (c *ConfirmationService) Issue(ctx context.Context, username string) (string, error) {
	token, err := c.Tokens.Issue(ctx, username, 0)
	if err != nil {
		return "", err
	}
	return c.URLFor(token), nil
}

// Deliver mails link to the address. Failures are returned wrapped in
// ErrDeliveryFailed.
func (c *ConfirmationService) Deliver(ctx context.Context, email, username, link string) error {
	msg, err := c.Renderer.Confirmation(email, mail.ConfirmationData{
		Username: username,
		HomeURL:  c.HomeURL,
		Link:     link,
	})
	if err == nil {
		err = c.Mailer.Send(ctx, msg)
	}
	if err != nil {
		EmailDeliveries.WithLabelValues(ResultFailed).Inc()
		return fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}

	EmailDeliveries.WithLabelValues(ResultSuccess).Inc()
	return nil
}

// RequestConfirmation issues a token for username and mails the link. When
// delivery fails the URL is still returned, together with ErrDeliveryFailed;
// the token stays issued.
func (c *ConfirmationService) RequestConfirmation(ctx context.Context, username string) (string, error) {
	id, found, err := c.Vault.Get(ctx, username)
	if err != nil {
		return "", err
	}
	if !found {
		return "", ErrUnknownUser
	}

	link, err := c.Issue(ctx, username)
	if err != nil {
		return "", err
	}
	return link, c.Deliver(ctx, id.Email, id.Username, link)
}

// ResendConfirmation re-issues a confirmation for the unconfirmed identity
// holding email. Unknown or already confirmed addresses succeed silently,
// as do delivery failures, so the response never reveals which addresses
// are registered.
func (c *ConfirmationService) ResendConfirmation(ctx context.Context, email string) error {
	l := slogx.FromContext(ctx)

	id, found, err := c.Vault.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if !found || id.Confirmed {
		l.Debug("confirmation resend skipped", slog.Bool("known", found))
		return nil
	}

	if _, err := c.RequestConfirmation(ctx, id.Username); err != nil {
		if errors.Is(err, ErrDeliveryFailed) {
			l.Warn("confirmation resend not delivered",
				slog.String("username", id.Username),
				slog.Any("error", err),
			)
			return nil
		}
		return err
	}
	return nil
}

// Redeem confirms the identity token belongs to. It returns false, without
// an error, for unknown, superseded or expired tokens, for identities that
// are gone or already confirmed. On success all of the subject's tokens are
// deleted in the same transaction, so a second redeem returns false.
func (c *ConfirmationService) Redeem(ctx context.Context, token string) (bool, error) {
	l := slogx.FromContext(ctx)
	var confirmed bool

	err := c.Tokens.Store.WithTx(ctx, func(tx store.Tx) error {
		cs := c.WithStore(tx)

		row, err := cs.Tokens.current(ctx, token)
		if errors.Is(err, ErrTokenNotFound) || errors.Is(err, ErrTokenStale) {
			l.Debug("confirmation token rejected", slog.Any("reason", err))
			return nil
		}
		if err != nil {
			return err
		}

		if c.TokenTTL > 0 && c.now().Sub(row.CreatedAt) > c.TokenTTL {
			l.Debug("confirmation token expired", slog.String("username", row.Subject))
			return nil
		}

		id, found, err := cs.Vault.Get(ctx, row.Subject)
		if err != nil {
			return err
		}
		if !found || id.Confirmed {
			l.Debug("confirmation token has no pending identity", slog.String("username", row.Subject))
			return nil
		}

		if err := cs.Vault.SetConfirmed(ctx, row.Subject); err != nil {
			return err
		}
		// Every token for the subject goes, not just this one. Deleting only
		// the redeemed row would make the next older token current again.
		if _, err := cs.Tokens.RevokeAllFor(ctx, row.Subject); err != nil {
			return err
		}

		confirmed = true
		return nil
	})
	if err != nil {
		Confirmations.WithLabelValues(ResultFailed).Inc()
		return false, storageFailureOnce("redeem confirmation", err)
	}

	if confirmed {
		Confirmations.WithLabelValues(ResultSuccess).Inc()
	} else {
		Confirmations.WithLabelValues(ResultRejected).Inc()
	}
	return confirmed, nil
}

// storageFailureOnce wraps err unless it already is a storage failure.
func storageFailureOnce(op string, err error) error {
	if errors.Is(err, ErrStorageFailure) {
		return err
	}
	return storageFailure(op, err)
}
