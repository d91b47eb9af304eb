// Package sessionx implements server-side sessions addressed by a signed
// cookie. The cookie holds an HS256 JWT whose jti is the opaque session id;
// the session bag itself lives in a Backend keyed by the fingerprint of that
// id, so neither the cookie nor the backend alone is enough to hijack a
// session.
package sessionx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aussiebroadwan/trivia/pkg/cryptox"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is the session lifetime when none is configured.
const DefaultTTL = 24 * time.Hour

var ErrNoSecret = errors.New("sessionx: signing secret is required")

// Record is what a Backend persists for one session.
type Record struct {
	ID        string // fingerprint of the session id
	Data      []byte // JSON encoded bag
	ExpiresAt time.Time
}

// Backend persists session records. Load must not return expired records.
type Backend interface {
	LoadSession(ctx context.Context, id string) (Record, bool, error)
	SaveSession(ctx context.Context, rec Record) error
	DeleteSession(ctx context.Context, id string) error
}

// Config controls the cookie and lifetime of sessions.
type Config struct {
	CookieName string
	Secret     []byte
	TTL        time.Duration
	Secure     bool
	Path       string
}

// Session is a loaded session. Data is the caller's bag.
type Session[T any] struct {
	Data T

	id    string
	fresh bool
}

// ID returns the opaque session id.
func (s *Session[T]) ID() string { return s.id }

// IsNew reports whether the session was created by this request.
func (s *Session[T]) IsNew() bool { return s.fresh }

// Manager loads and stores sessions of bag type T.
type Manager[T any] struct {
	backend Backend
	cfg     Config
	now     func() time.Time
}

// NewManager validates cfg and returns a Manager.
func NewManager[T any](backend Backend, cfg Config) (*Manager[T], error) {
	if len(cfg.Secret) == 0 {
		return nil, ErrNoSecret
	}
	if cfg.CookieName == "" {
		cfg.CookieName = "sid"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Path == "" {
		cfg.Path = "/"
	}
	return &Manager[T]{backend: backend, cfg: cfg, now: time.Now}, nil
}

// TTL returns the configured session lifetime.
func (m *Manager[T]) TTL() time.Duration { return m.cfg.TTL }

// Load returns the session referenced by r's cookie. A missing, tampered,
// expired or unknown cookie yields a fresh empty session; only backend
// failures are returned as errors.
func (m *Manager[T]) Load(ctx context.Context, r *http.Request) (*Session[T], error) {
	c, err := r.Cookie(m.cfg.CookieName)
	if err != nil {
		return m.fresh()
	}

	sid, ok := m.parse(c.Value)
	if !ok {
		return m.fresh()
	}

	rec, found, err := m.backend.LoadSession(ctx, cryptox.FingerprintToken(sid))
	if err != nil {
		return nil, fmt.Errorf("sessionx: load: %w", err)
	}
	if !found {
		return m.fresh()
	}

	s := &Session[T]{id: sid}
	if len(rec.Data) > 0 {
		if err := json.Unmarshal(rec.Data, &s.Data); err != nil {
			return m.fresh()
		}
	}
	return s, nil
}

// Save persists the bag, extends the expiry and (re)issues the cookie.
func (m *Manager[T]) Save(ctx context.Context, w http.ResponseWriter, s *Session[T]) error {
	data, err := json.Marshal(s.Data)
	if err != nil {
		return fmt.Errorf("sessionx: encode: %w", err)
	}

	exp := m.now().Add(m.cfg.TTL)
	if err := m.backend.SaveSession(ctx, Record{
		ID:        cryptox.FingerprintToken(s.id),
		Data:      data,
		ExpiresAt: exp,
	}); err != nil {
		return fmt.Errorf("sessionx: save: %w", err)
	}

	signed, err := m.sign(s.id, exp)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    signed,
		Path:     m.cfg.Path,
		Expires:  exp,
		MaxAge:   int(m.cfg.TTL.Seconds()),
		HttpOnly: true,
		Secure:   m.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	s.fresh = false
	return nil
}

// Rotate moves s to a new id, deleting the record stored under the old one.
// Call it when the session's privilege changes, such as on login; the caller
// still has to Save.
func (m *Manager[T]) Rotate(ctx context.Context, s *Session[T]) error {
	sid, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return err
	}
	if !s.fresh {
		if err := m.backend.DeleteSession(ctx, cryptox.FingerprintToken(s.id)); err != nil {
			return fmt.Errorf("sessionx: delete: %w", err)
		}
	}
	s.id = sid
	return nil
}

// Destroy deletes the session and clears the cookie.
func (m *Manager[T]) Destroy(ctx context.Context, w http.ResponseWriter, s *Session[T]) error {
	if err := m.backend.DeleteSession(ctx, cryptox.FingerprintToken(s.id)); err != nil {
		return fmt.Errorf("sessionx: delete: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    "",
		Path:     m.cfg.Path,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (m *Manager[T]) fresh() (*Session[T], error) {
	sid, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return nil, err
	}
	return &Session[T]{id: sid, fresh: true}, nil
}

func (m *Manager[T]) sign(sid string, exp time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        sid,
		IssuedAt:  jwt.NewNumericDate(m.now()),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.cfg.Secret)
	if err != nil {
		return "", fmt.Errorf("sessionx: sign: %w", err)
	}
	return signed, nil
}

func (m *Manager[T]) parse(raw string) (string, bool) {
	var claims jwt.RegisteredClaims
	tok, err := jwt.ParseWithClaims(raw, &claims,
		func(*jwt.Token) (any, error) { return m.cfg.Secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !tok.Valid || claims.ID == "" {
		return "", false
	}
	return claims.ID, true
}
