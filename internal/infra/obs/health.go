package obs

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const readyCheckTimeout = 2 * time.Second

// HealthHandlers exposes liveness and readiness endpoints. Readiness runs the
// named dependency checks and reports each one, so a failing probe names the
// dependency that broke.
type HealthHandlers struct {
	Checks map[string]func(ctx context.Context) error
}

func (h HealthHandlers) Livez(c *gin.Context) {
	c.Status(http.StatusOK)
}

func (h HealthHandlers) Readyz(c *gin.Context) {
	results := gin.H{}
	healthy := true
	for name, check := range h.Checks {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readyCheckTimeout)
		err := check(ctx)
		cancel()
		if err != nil {
			results[name] = err.Error()
			healthy = false
			continue
		}
		results[name] = "ok"
	}
	if !healthy {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "checks": results})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "checks": results})
}
