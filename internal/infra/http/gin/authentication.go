package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	appauth "bookmytourguide/internal/app/auth"
	"bookmytourguide/internal/app/identity"
	domainauth "bookmytourguide/internal/domain/auth"
	domainuser "bookmytourguide/internal/domain/user"
)

const principalContextKey = "bookmytourguide.principal"

type principal struct {
	ID    string
	Email string
	Name  string
	Role  string
	Token string
}

func (p principal) actor() identity.Actor {
	return identity.Actor{
		ID:   domainuser.ID(p.ID),
		Role: domainuser.Role(p.Role),
		Name: p.Name,
	}
}

// AuthMiddleware resolves a bearer token into the request principal. An
// absent or invalid token is not an error here; protected handlers enforce
// presence via requireAuth.
type AuthMiddleware struct {
	Service *appauth.Service
	Logger  *slog.Logger
}

func (m AuthMiddleware) Handle(c *gin.Context) {
	token := extractBearerToken(c.GetHeader("Authorization"))
	if token == "" || m.Service == nil {
		c.Next()
		return
	}
	resolved, err := m.Service.ResolveToken(c.Request.Context(), token)
	if err != nil {
		if !errors.Is(err, domainauth.ErrSessionNotFound) && m.Logger != nil {
			m.Logger.Debug("token validation failed", "error", err)
		}
		c.Next()
		return
	}
	u := resolved.User
	c.Set(principalContextKey, principal{
		ID:    string(u.ID),
		Email: u.Email,
		Name:  u.Name,
		Role:  string(u.Role),
		Token: token,
	})
	c.Next()
}

func currentPrincipal(c *gin.Context) (principal, bool) {
	val, exists := c.Get(principalContextKey)
	if !exists {
		return principal{}, false
	}
	p, ok := val.(principal)
	return p, ok
}

func requireAuth(c *gin.Context) (principal, bool) {
	p, ok := currentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, envelope{Success: false, Message: "authentication required"})
		return principal{}, false
	}
	return p, true
}

func requireRole(c *gin.Context, role string) (principal, bool) {
	p, ok := requireAuth(c)
	if !ok {
		return principal{}, false
	}
	if role != "" && !strings.EqualFold(p.Role, role) {
		c.JSON(http.StatusForbidden, envelope{Success: false, Message: "insufficient permissions"})
		return principal{}, false
	}
	return p, true
}

func extractBearerToken(header string) string {
	if header == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
