package domain

import "time"

// SessionState is the per-browser session bag.
type SessionState struct {
	LoggedIn bool         `json:"loggedIn"`
	User     *SessionUser `json:"user,omitempty"`
}

// SessionUser is the identity snapshot copied into a session on login.
// It never carries the password hash.
type SessionUser struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Confirmed bool   `json:"confirmed"`
}

// SnapshotOf builds the session snapshot for id.
func SnapshotOf(id Identity) *SessionUser {
	return &SessionUser{
		Username:  id.Username,
		Email:     id.Email,
		Confirmed: id.Confirmed,
	}
}

// Session is the stored form of a session bag.
type Session struct {
	ID        string // fingerprint of the opaque session id
	Data      []byte
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
