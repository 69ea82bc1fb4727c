package otp

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	domainotp "bookmytourguide/internal/domain/otp"
)

// Mailer delivers a single HTML email. Delivery internals stay behind this
// interface.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

type Service struct {
	Store  domainotp.Store
	Mailer Mailer
	TTL    time.Duration
	Logger *slog.Logger
}

// Send issues a fresh six-digit code and emails it. The code is persisted
// before the email goes out; a delivery failure is returned to the caller so
// the send can be retried.
func (s *Service) Send(ctx context.Context, email string) error {
	value, err := sixDigits()
	if err != nil {
		return err
	}
	ttl := s.TTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	code, err := domainotp.New(email, value, ttl, time.Now())
	if err != nil {
		return err
	}
	if err := s.Store.Save(ctx, code); err != nil {
		return err
	}
	body := fmt.Sprintf("<p>Your OTP for verification is: <b>%s</b></p><p>This OTP is valid for %d minutes.</p>", value, int(ttl.Minutes()))
	if err := s.Mailer.Send(ctx, code.Email, "Verify your email - BookMyTourGuide", body); err != nil {
		if s.Logger != nil {
			s.Logger.Error("otp email delivery failed", "email", code.Email, "error", err)
		}
		return err
	}
	return nil
}

// Verify checks the latest code issued for the email and consumes it.
func (s *Service) Verify(ctx context.Context, email, value string) error {
	code, err := s.Store.Latest(ctx, email)
	if err != nil {
		return err
	}
	if err := code.Verify(value, time.Now()); err != nil {
		return err
	}
	return s.Store.DeleteForEmail(ctx, code.Email)
}

func sixDigits() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("otp: entropy read failed: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
