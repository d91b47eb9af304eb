package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/trivia/internal/credentials/domain"
	"github.com/aussiebroadwan/trivia/internal/credentials/service"
	"github.com/aussiebroadwan/trivia/pkg/authsdk"
	"github.com/aussiebroadwan/trivia/pkg/httpx"
	"github.com/aussiebroadwan/trivia/pkg/schemax"
	"github.com/aussiebroadwan/trivia/pkg/sessionx"
	"github.com/aussiebroadwan/trivia/pkg/slogx"
)

// maxBodyBytes bounds credentials request bodies.
const maxBodyBytes = 16 << 10

// action runs one credentials operation against the caller's session.
type action func(ctx context.Context, sess *domain.SessionState, body []byte) (reply, error)

type reply struct {
	message string
	data    any
	session sessionChange
}

// sessionChange tells ServeHTTP what to do with the session after an action.
type sessionChange int

const (
	keepSession   sessionChange = iota
	rotateSession               // new id, old record deleted
	dropSession                 // record deleted, cookie cleared
)

// validated guards next with a schema. The body never reaches next unless
// it matches.
func validated(v *schemax.Validator, next action) action {
	return func(ctx context.Context, sess *domain.SessionState, body []byte) (reply, error) {
		if err := v.ValidateJSON(body); err != nil {
			return reply{}, err
		}
		return next(ctx, sess, body)
	}
}

// CredentialsHandler dispatches POST /credentials/{action}.
type CredentialsHandler struct {
	Auth          *service.AuthService
	Confirmations *service.ConfirmationService
	Sessions      *sessionx.Manager[domain.SessionState]

	// ExposeConfirmationURL returns the confirmation link in the register
	// reply. Only meant for development and end-to-end tests.
	ExposeConfirmationURL bool

	actions map[string]action
}

// NewCredentialsHandler builds the action table. Every action is wrapped in
// the schema of the same name; a missing schema panics at startup.
func NewCredentialsHandler(
	auth *service.AuthService,
	confirmations *service.ConfirmationService,
	sessions *sessionx.Manager[domain.SessionState],
	schemas *schemax.Registry,
) *CredentialsHandler {
	h := &CredentialsHandler{
		Auth:          auth,
		Confirmations: confirmations,
		Sessions:      sessions,
	}

	h.actions = map[string]action{
		"register":           h.register,
		"login":              h.login,
		"logout":             h.logout,
		"status":             h.status,
		"updateEmail":        h.updateEmail,
		"updatePassword":     h.updatePassword,
		"deleteAccount":      h.deleteAccount,
		"resendConfirmation": h.resendConfirmation,
	}
	for name, act := range h.actions {
		h.actions[name] = validated(schemas.MustValidator(name), act)
	}

	return h
}

// ServeHTTP godoc
//
//	@Summary		Credentials Action Endpoint
//	@Description	Runs one credentials action against the caller's session. The body is validated against the action's JSON schema before anything else happens.
//	@Description	Business failures (bad credentials, duplicates) are answered with 404 and status "rejected"; schema violations with 422 and status "exception".
//	@Tags			Credentials
//	@Accept			json
//	@Produce		json
//	@Param			action	path		string				true	"Action name"	Enums(register, login, logout, status, updateEmail, updatePassword, deleteAccount, resendConfirmation)
//	@Param			request	body		object				true	"Action body, e.g. authsdk.RegisterRequest"
//	@Success		200		{object}	authsdk.Response	"status, message, data, url"
//	@Failure		404		{object}	authsdk.Response	"rejected"
//	@Failure		422		{object}	authsdk.Response	"exception with validation cause"
//	@Failure		500		{object}	authsdk.Response	"exception"
//	@Router			/credentials/{action} [post].
func (h *CredentialsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("action")
	act, ok := h.actions[name]
	if !ok {
		writeRejected(w, r, "Unknown action.")
		return
	}

	ctx := slogx.With(r.Context(), slog.String("action", name))
	r = r.WithContext(ctx)
	log := slogx.FromContext(ctx)

	body, err := httpx.ReadBody(r, maxBodyBytes)
	if err != nil {
		writeException(w, r, http.StatusUnprocessableEntity, "Request body could not be read.", nil)
		return
	}

	sess, err := h.Sessions.Load(ctx, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	log.Debug("credentials action")
	res, err := act(ctx, &sess.Data, body)
	if err != nil {
		writeError(w, r, err)
		return
	}

	switch res.session {
	case dropSession:
		err = h.Sessions.Destroy(ctx, w, sess)
	case rotateSession:
		if err = h.Sessions.Rotate(ctx, sess); err == nil {
			err = h.Sessions.Save(ctx, w, sess)
		}
	default:
		// Anonymous sessions that never logged in are not worth a row.
		if !sess.IsNew() || sess.Data.LoggedIn {
			err = h.Sessions.Save(ctx, w, sess)
		}
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, r, res.message, res.data)
}

func decode[T any](body []byte) (T, error) {
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		return v, fmt.Errorf("%w: %w", service.ErrInvalidInput, err)
	}
	return v, nil
}

func userOf(id domain.Identity) authsdk.User {
	return authsdk.User{Username: id.Username, Email: id.Email, Confirmed: id.Confirmed}
}

func sessionUser(u *domain.SessionUser) *authsdk.User {
	if u == nil {
		return nil
	}
	return &authsdk.User{Username: u.Username, Email: u.Email, Confirmed: u.Confirmed}
}

func (h *CredentialsHandler) register(ctx context.Context, _ *domain.SessionState, body []byte) (reply, error) {
	req, err := decode[authsdk.RegisterRequest](body)
	if err != nil {
		return reply{}, err
	}

	res, err := h.Auth.Register(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		return reply{}, err
	}

	data := authsdk.RegisterData{User: userOf(res.Identity)}
	if h.ExposeConfirmationURL {
		data.ConfirmationURL = res.ConfirmationURL
	}
	return reply{message: "Registration successful. Check your email to confirm the address.", data: data}, nil
}

func (h *CredentialsHandler) login(ctx context.Context, sess *domain.SessionState, body []byte) (reply, error) {
	req, err := decode[authsdk.LoginRequest](body)
	if err != nil {
		return reply{}, err
	}

	if err := h.Auth.Login(ctx, sess, req.Username, req.Password); err != nil {
		return reply{}, err
	}
	return reply{message: "Logged in.", data: sessionUser(sess.User), session: rotateSession}, nil
}

func (h *CredentialsHandler) logout(_ context.Context, sess *domain.SessionState, _ []byte) (reply, error) {
	h.Auth.Logout(sess)
	return reply{message: "Logged out."}, nil
}

func (h *CredentialsHandler) status(_ context.Context, sess *domain.SessionState, _ []byte) (reply, error) {
	st := h.Auth.Status(sess)
	return reply{data: authsdk.StatusData{LoggedIn: st.LoggedIn, User: sessionUser(st.User)}}, nil
}

func (h *CredentialsHandler) updateEmail(ctx context.Context, sess *domain.SessionState, body []byte) (reply, error) {
	req, err := decode[authsdk.UpdateEmailRequest](body)
	if err != nil {
		return reply{}, err
	}

	id, err := h.Auth.UpdateEmail(ctx, sess, req.Username, req.Password, req.Email)
	if err != nil {
		return reply{}, err
	}
	return reply{message: "Email updated.", data: userOf(id)}, nil
}

func (h *CredentialsHandler) updatePassword(ctx context.Context, sess *domain.SessionState, body []byte) (reply, error) {
	req, err := decode[authsdk.UpdatePasswordRequest](body)
	if err != nil {
		return reply{}, err
	}

	if err := h.Auth.UpdatePassword(ctx, sess, req.Username, req.Password, req.NewPassword); err != nil {
		return reply{}, err
	}
	return reply{message: "Password updated."}, nil
}

func (h *CredentialsHandler) deleteAccount(ctx context.Context, sess *domain.SessionState, body []byte) (reply, error) {
	req, err := decode[authsdk.DeleteAccountRequest](body)
	if err != nil {
		return reply{}, err
	}

	if err := h.Auth.DeleteAccount(ctx, sess, req.Username, req.Password); err != nil {
		return reply{}, err
	}
	return reply{message: "Account deleted.", session: dropSession}, nil
}

func (h *CredentialsHandler) resendConfirmation(ctx context.Context, _ *domain.SessionState, body []byte) (reply, error) {
	req, err := decode[authsdk.ResendConfirmationRequest](body)
	if err != nil {
		return reply{}, err
	}

	if err := h.Confirmations.ResendConfirmation(ctx, req.Email); err != nil {
		return reply{}, err
	}
	return reply{message: "If the address is awaiting confirmation, a new email has been sent."}, nil
}
