package gateway

import (
	"context"
	"errors"
	"time"
)

var ErrSessionNotFound = errors.New("session not found")

// Flash is a message waiting in the session to be shown on the next page.
type Flash struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}

// Session is the server-side state behind the session cookie.
type Session struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id,omitempty"`
	Username    string    `json:"username,omitempty"`
	RedirectURL string    `json:"redirect_url,omitempty"`
	Flash       []Flash   `json:"flash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// SessionStore persists sessions with a store-side expiry.
type SessionStore interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}
