package auth

import (
	"context"
	"errors"
	"time"

	"hems/internal/domain/user"
)

var (
	ErrTokenRequired   = errors.New("auth: token is required")
	ErrSessionNotFound = errors.New("auth: session not found")
)

type Token string

// Session is a bearer session issued at login and resolved per request.
type Session struct {
	Token     Token
	UserID    user.ID
	Roles     []user.Role
	CreatedAt time.Time
	ExpiresAt time.Time
}

type SessionStore interface {
	Save(ctx context.Context, session *Session) error
	Get(ctx context.Context, token Token) (*Session, error)
	Delete(ctx context.Context, token Token) error
}

func NewSession(token Token, u *user.User, ttl time.Duration, now time.Time) (*Session, error) {
	if token == "" {
		return nil, ErrTokenRequired
	}
	now = now.UTC()
	return &Session{
		Token:     token,
		UserID:    u.ID,
		Roles:     append([]user.Role(nil), u.Roles...),
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}, nil
}

func (s *Session) Expired(now time.Time) bool {
	return s.ExpiresAt.Before(now.UTC())
}
