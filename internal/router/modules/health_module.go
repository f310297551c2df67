package modules

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// CheckFunc reports whether one backing service is reachable.
type CheckFunc func(ctx context.Context) error

// HealthModule answers /healthz by pinging each configured backend. An empty
// check set means the process runs on in-memory stores only.
type HealthModule struct {
	Checks  map[string]CheckFunc
	Timeout time.Duration
}

func NewHealthModule(checks map[string]CheckFunc) *HealthModule {
	return &HealthModule{Checks: checks, Timeout: 2 * time.Second}
}

func (m *HealthModule) Register(rg *gin.RouterGroup) {
	rg.GET("/healthz", m.health)
}

func (m *HealthModule) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), m.Timeout)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(m.Checks))
	for name, check := range m.Checks {
		if err := check(ctx); err != nil {
			results[name] = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}
	state := "ok"
	if status != http.StatusOK {
		state = "degraded"
	}
	c.JSON(status, gin.H{"status": state, "checks": results})
}
