package api

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/red11scout/blueallygenaiwebsite/internal/calculator"
	"github.com/red11scout/blueallygenaiwebsite/internal/services"
)

// HealthCheck checks one dependency
type HealthCheck func(ctx context.Context) error

// HealthHandler reports dependency and research provider health
type HealthHandler struct {
	checks   map[string]HealthCheck
	research services.ResearchService
	version  string
	started  time.Time
}

// NewHealthHandler creates a health handler. research may be nil.
func NewHealthHandler(checks map[string]HealthCheck, research services.ResearchService, version string) *HealthHandler {
	return &HealthHandler{
		checks:   checks,
		research: research,
		version:  version,
		started:  time.Now(),
	}
}

// Health answers 503 when any dependency check fails. An unhealthy research
// provider only marks the service degraded.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	healthy := true
	checks := gin.H{}
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			healthy = false
			checks[name] = gin.H{"healthy": false, "error": err.Error()}
			continue
		}
		checks[name] = gin.H{"healthy": true}
	}

	status := "ok"
	response := gin.H{
		"version":            h.version,
		"calculation_engine": calculator.Version,
		"uptime_seconds":     int64(time.Since(h.started).Seconds()),
		"timestamp":          time.Now().UTC(),
		"checks":             checks,
	}

	if h.research != nil {
		rh := h.research.Health()
		response["research"] = rh
		if !rh.IsHealthy {
			status = "degraded"
		}
	}

	code := http.StatusOK
	if !healthy {
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	}
	response["status"] = status
	response["healthy"] = healthy
	c.JSON(code, response)
}
