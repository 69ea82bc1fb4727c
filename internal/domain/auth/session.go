package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"bookmytourguide/internal/domain/user"
)

var (
	ErrTokenRequired   = errors.New("auth: token is required")
	ErrUserRequired    = errors.New("auth: user is required")
	ErrTTLInvalid      = errors.New("auth: ttl must be positive")
	ErrSessionNotFound = errors.New("auth: session not found")
)

type Token string

// Session is one opaque-token login. The role is denormalized onto the
// session so request authorization does not need a user lookup.
type Session struct {
	Token     Token
	UserID    user.ID
	Role      user.Role
	CreatedAt time.Time
	ExpiresAt time.Time
}

func NewSession(token Token, userID user.ID, role user.Role, ttl time.Duration, now time.Time) (*Session, error) {
	trimmed := Token(strings.TrimSpace(string(token)))
	if trimmed == "" {
		return nil, ErrTokenRequired
	}
	if strings.TrimSpace(string(userID)) == "" {
		return nil, ErrUserRequired
	}
	if ttl <= 0 {
		return nil, ErrTTLInvalid
	}
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	return &Session{
		Token:     trimmed,
		UserID:    userID,
		Role:      role,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}, nil
}

func (s *Session) Expired(at time.Time) bool {
	if at.IsZero() {
		at = time.Now()
	}
	return !s.ExpiresAt.After(at.UTC())
}

type SessionStore interface {
	Save(ctx context.Context, session *Session) error
	Get(ctx context.Context, token Token) (*Session, error)
	Delete(ctx context.Context, token Token) error
	DeleteByUser(ctx context.Context, userID user.ID) error
}
