package ports

import "time"

// SessionClaims is the content of a bearer session token
type SessionClaims struct {
	ID        string
	UserID    string
	Address   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Tokenizer converts between session claims and bearer tokens
type Tokenizer interface {
	Issue(claims SessionClaims) (string, error)
	Parse(token string) (SessionClaims, error)
}
