package domain

import "time"

// TokenKind names a token family. Each family has its own subject space.
type TokenKind string

const (
	TokenKindEmailConfirmation TokenKind = "email_confirmation"
)

// Token is one issued token row. For a given kind and subject only the row
// with the highest Idx is current.
type Token struct {
	Idx       int64
	Kind      TokenKind
	Token     string
	Subject   string
	CreatedAt time.Time
}
