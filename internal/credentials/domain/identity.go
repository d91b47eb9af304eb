package domain

import "time"

// Identity is a registered account. Username is immutable once created.
type Identity struct {
	Username     string
	Email        string
	PasswordHash string // bcrypt; empty until a password is set
	Confirmed    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasPassword reports whether the identity can log in at all.
func (i Identity) HasPassword() bool { return i.PasswordHash != "" }
