package otp

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainotp "bookmytourguide/internal/domain/otp"
	"bookmytourguide/internal/infra/storage/memory"
)

type capturingMailer struct {
	to      string
	subject string
	body    string
	err     error
}

func (m *capturingMailer) Send(_ context.Context, to, subject, htmlBody string) error {
	if m.err != nil {
		return m.err
	}
	m.to, m.subject, m.body = to, subject, htmlBody
	return nil
}

func TestSendIssuesSixDigitCode(t *testing.T) {
	store := memory.NewOTPStore()
	mailer := &capturingMailer{}
	svc := &Service{Store: store, Mailer: mailer, TTL: 10 * time.Minute}
	ctx := context.Background()

	require.NoError(t, svc.Send(ctx, "Ravi@Example.com"))

	code, err := store.Latest(ctx, "ravi@example.com")
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^[0-9]{6}$`), code.Value)
	assert.Equal(t, "ravi@example.com", mailer.to)
	assert.Contains(t, mailer.body, code.Value)
}

func TestSendSurfacesDeliveryFailure(t *testing.T) {
	store := memory.NewOTPStore()
	svc := &Service{Store: store, Mailer: &capturingMailer{err: errors.New("smtp down")}}

	err := svc.Send(context.Background(), "ravi@example.com")
	assert.Error(t, err)
}

func TestVerifyConsumesCode(t *testing.T) {
	store := memory.NewOTPStore()
	mailer := &capturingMailer{}
	svc := &Service{Store: store, Mailer: mailer, TTL: 10 * time.Minute}
	ctx := context.Background()

	require.NoError(t, svc.Send(ctx, "ravi@example.com"))
	code, err := store.Latest(ctx, "ravi@example.com")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Verify(ctx, "ravi@example.com", "000000"), domainotp.ErrMismatch)
	require.NoError(t, svc.Verify(ctx, "ravi@example.com", code.Value))

	// consumed: a second verification finds nothing
	err = svc.Verify(ctx, "ravi@example.com", code.Value)
	assert.ErrorIs(t, err, domainotp.ErrNotFound)
}

func TestVerifyRejectsExpiredCode(t *testing.T) {
	store := memory.NewOTPStore()
	ctx := context.Background()
	code, err := domainotp.New("ravi@example.com", "123456", -time.Minute, time.Now())
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, code))

	svc := &Service{Store: store, Mailer: &capturingMailer{}}
	assert.ErrorIs(t, svc.Verify(ctx, "ravi@example.com", "123456"), domainotp.ErrExpired)
}
