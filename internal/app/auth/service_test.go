package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainuser "bookmytourguide/internal/domain/user"
	"bookmytourguide/internal/infra/security"
	"bookmytourguide/internal/infra/storage/memory"
)

func newService() *Service {
	return &Service{
		Users:      memory.NewUserRepository(),
		Sessions:   memory.NewSessionStore(),
		Passwords:  security.BcryptHasher{},
		Tokens:     security.RandomTokenGenerator{},
		SessionTTL: time.Hour,
	}
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	result, err := svc.Register(ctx, RegisterParams{
		Email:    "Ravi@Example.com",
		Name:     "Ravi",
		Password: "supersecret",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "ravi@example.com", result.User.Email, "email is normalized")
	assert.Equal(t, domainuser.RoleUser, result.User.Role)

	logged, err := svc.Login(ctx, LoginParams{Email: "ravi@example.com", Password: "supersecret"})
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, logged.User.ID)

	_, err = svc.Login(ctx, LoginParams{Email: "ravi@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, LoginParams{Email: "nobody@example.com", Password: "supersecret"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterAsGuide(t *testing.T) {
	svc := newService()
	result, err := svc.Register(context.Background(), RegisterParams{
		Email:    "asha@example.com",
		Name:     "Asha",
		Password: "supersecret",
		AsGuide:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, domainuser.RoleGuide, result.User.Role)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterParams{Email: "ravi@example.com", Name: "Ravi", Password: "supersecret"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterParams{Email: "RAVI@example.com", Name: "Impostor", Password: "supersecret"})
	assert.ErrorIs(t, err, domainuser.ErrEmailAlreadyUsed)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc := newService()
	_, err := svc.Register(context.Background(), RegisterParams{Email: "a@b.c", Name: "A", Password: "short"})
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestResolveTokenAndLogout(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	result, err := svc.Register(ctx, RegisterParams{Email: "ravi@example.com", Name: "Ravi", Password: "supersecret"})
	require.NoError(t, err)

	resolved, err := svc.ResolveToken(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, resolved.User.ID)

	require.NoError(t, svc.Logout(ctx, result.Token))
	_, err = svc.ResolveToken(ctx, result.Token)
	assert.Error(t, err)
}

func TestResolveTokenDropsExpiredSessions(t *testing.T) {
	svc := newService()
	svc.SessionTTL = -time.Minute
	ctx := context.Background()

	result, err := svc.Register(ctx, RegisterParams{Email: "ravi@example.com", Name: "Ravi", Password: "supersecret"})
	require.NoError(t, err)
	// TTL fell back to the default on issue; shrink the stored session instead
	resolved, err := svc.ResolveToken(ctx, result.Token)
	require.NoError(t, err)
	resolved.Session.ExpiresAt = time.Now().Add(-time.Minute)
	require.NoError(t, svc.Sessions.Save(ctx, resolved.Session))

	_, err = svc.ResolveToken(ctx, result.Token)
	assert.Error(t, err)
}
