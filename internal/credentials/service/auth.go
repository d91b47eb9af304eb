package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aussiebroadwan/trivia/internal/credentials/domain"
	"github.com/aussiebroadwan/trivia/internal/credentials/store"
	"github.com/aussiebroadwan/trivia/pkg/slogx"
)

// RegisterResult is what a successful registration returns.
type RegisterResult struct {
	Identity        domain.Identity
	ConfirmationURL string
}

// StatusResult describes the caller's session.
type StatusResult struct {
	LoggedIn bool
	User     *domain.SessionUser
}

// AuthService orchestrates account flows against the vault and the
// confirmation service, mutating the caller's session state.
type AuthService struct {
	Store         store.Store
	Vault         *PasswordVault
	Confirmations *ConfirmationService
}

// Register creates an identity with a password and a pending confirmation.
// The password is hashed first; identity, hash and token are then written
// in one transaction so a failure leaves nothing behind. The email is sent
// after commit and a delivery failure does not fail the registration.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (RegisterResult, error) {
	l := slogx.FromContext(ctx)

	if username == "" || email == "" || password == "" {
		Registrations.WithLabelValues(ResultRejected).Inc()
		return RegisterResult{}, ErrInvalidInput
	}

	hash, err := s.Vault.HashPassword(ctx, password)
	if err != nil {
		Registrations.WithLabelValues(ResultRejected).Inc()
		return RegisterResult{}, err
	}

	var res RegisterResult
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		vault := s.Vault.WithStore(tx)

		id, err := vault.Create(ctx, username, email)
		if err != nil {
			return err
		}
		if err := vault.setPasswordHash(ctx, username, hash); err != nil {
			return err
		}
		id.PasswordHash = hash

		link, err := s.Confirmations.WithStore(tx).Issue(ctx, username)
		if err != nil {
			return err
		}

		res = RegisterResult{Identity: id, ConfirmationURL: link}
		return nil
	})
	switch {
	case errors.Is(err, ErrDuplicateUsername), errors.Is(err, ErrDuplicateEmail):
		Registrations.WithLabelValues(ResultDuplicate).Inc()
		return RegisterResult{}, err
	case errors.Is(err, ErrInvalidInput):
		Registrations.WithLabelValues(ResultRejected).Inc()
		return RegisterResult{}, err
	case err != nil:
		Registrations.WithLabelValues(ResultFailed).Inc()
		return RegisterResult{}, storageFailureOnce("register", err)
	}

	Registrations.WithLabelValues(ResultSuccess).Inc()
	l.Info("identity registered", slog.String("username", username))

	if err := s.Confirmations.Deliver(ctx, email, username, res.ConfirmationURL); err != nil {
		l.Warn("confirmation email not delivered",
			slog.String("username", username),
			slog.Any("error", err),
		)
	}
	return res, nil
}

// Login marks sess logged in as username. Unknown users and wrong passwords
// both yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, sess *domain.SessionState, username, password string) error {
	ok, err := s.Vault.VerifyPassword(ctx, username, password)
	if err != nil {
		Logins.WithLabelValues(ResultFailed).Inc()
		return err
	}
	if !ok {
		Logins.WithLabelValues(ResultRejected).Inc()
		return ErrInvalidCredentials
	}

	id, found, err := s.Vault.Get(ctx, username)
	if err != nil {
		Logins.WithLabelValues(ResultFailed).Inc()
		return err
	}
	if !found {
		Logins.WithLabelValues(ResultRejected).Inc()
		return ErrInvalidCredentials
	}

	sess.LoggedIn = true
	sess.User = domain.SnapshotOf(id)
	Logins.WithLabelValues(ResultSuccess).Inc()
	slogx.FromContext(ctx).Info("user logged in", slog.String("username", username))
	return nil
}

// Logout clears the session. It is idempotent.
func (s *AuthService) Logout(sess *domain.SessionState) {
	sess.LoggedIn = false
	sess.User = nil
}

func (s *AuthService) Status(sess *domain.SessionState) StatusResult {
	if sess == nil || !sess.LoggedIn {
		return StatusResult{}
	}
	return StatusResult{LoggedIn: true, User: sess.User}
}

// gate re-verifies the password before a sensitive change. The session must
// be logged in as username. Every failure is ErrInvalidCredentials, and the
// password is always checked so the causes take comparable time.
func (s *AuthService) gate(ctx context.Context, sess *domain.SessionState, username, password string) error {
	ok, err := s.Vault.VerifyPassword(ctx, username, password)
	if err != nil {
		return err
	}

	sameUser := sess != nil && sess.LoggedIn && sess.User != nil && sess.User.Username == username
	if !ok || !sameUser {
		slogx.FromContext(ctx).Info("re-verification failed", slog.String("username", username))
		return ErrInvalidCredentials
	}
	return nil
}

// UpdateEmail changes the address after re-verification and refreshes the
// session snapshot.
func (s *AuthService) UpdateEmail(ctx context.Context, sess *domain.SessionState, username, password, email string) (domain.Identity, error) {
	if err := s.gate(ctx, sess, username, password); err != nil {
		return domain.Identity{}, err
	}

	id, err := s.Vault.SetEmail(ctx, username, email)
	if err != nil {
		return domain.Identity{}, err
	}
	sess.User = domain.SnapshotOf(id)
	return id, nil
}

// UpdatePassword replaces the password after re-verification.
func (s *AuthService) UpdatePassword(ctx context.Context, sess *domain.SessionState, username, password, newPassword string) error {
	if err := s.gate(ctx, sess, username, password); err != nil {
		return err
	}
	_, err := s.Vault.SetPassword(ctx, username, newPassword)
	return err
}

// DeleteAccount removes the identity and its confirmation tokens after
// re-verification, then logs the session out.
func (s *AuthService) DeleteAccount(ctx context.Context, sess *domain.SessionState, username, password string) error {
	if err := s.gate(ctx, sess, username, password); err != nil {
		return err
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := s.Vault.WithStore(tx).Remove(ctx, username); err != nil {
			return err
		}
		_, err := s.Confirmations.Tokens.WithStore(tx).RevokeAllFor(ctx, username)
		return err
	})
	if err != nil {
		return storageFailureOnce("delete account", err)
	}

	s.Logout(sess)
	slogx.FromContext(ctx).Info("account deleted", slog.String("username", username))
	return nil
}
