package otp

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrEmailRequired = errors.New("otp: email is required")
	ErrCodeRequired  = errors.New("otp: code is required")
	ErrNotFound      = errors.New("otp: no code issued for this email")
	ErrExpired       = errors.New("otp: code expired")
	ErrMismatch      = errors.New("otp: code does not match")
)

// Code is a one-time email verification code.
type Code struct {
	Email     string
	Value     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

type Store interface {
	Save(ctx context.Context, code *Code) error
	Latest(ctx context.Context, email string) (*Code, error)
	DeleteForEmail(ctx context.Context, email string) error
}

func New(email, value string, ttl time.Duration, now time.Time) (*Code, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil, ErrEmailRequired
	}
	if strings.TrimSpace(value) == "" {
		return nil, ErrCodeRequired
	}
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	return &Code{Email: email, Value: value, ExpiresAt: now.Add(ttl), CreatedAt: now}, nil
}

func (c *Code) Verify(value string, at time.Time) error {
	if at.IsZero() {
		at = time.Now()
	}
	if !c.ExpiresAt.After(at.UTC()) {
		return ErrExpired
	}
	if c.Value != strings.TrimSpace(value) {
		return ErrMismatch
	}
	return nil
}
