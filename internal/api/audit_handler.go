package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/red11scout/blueallygenaiwebsite/internal/repository"
	"github.com/red11scout/blueallygenaiwebsite/internal/services"
)

// AuditHandler exposes the calculation audit log
type AuditHandler struct {
	audit services.AuditService
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(audit services.AuditService) *AuditHandler {
	return &AuditHandler{audit: audit}
}

func (h *AuditHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	entry, err := h.audit.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// Verify recomputes an audited calculation and reports whether it reproduces
func (h *AuditHandler) Verify(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	result, err := h.audit.Verify(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// List filters the log by type, scenario_id, from, to (RFC 3339), limit and offset
func (h *AuditHandler) List(c *gin.Context) {
	filter, ok := parseAuditFilter(c)
	if !ok {
		return
	}

	entries, err := h.audit.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries, "count": len(entries)})
}

func parseAuditFilter(c *gin.Context) (repository.AuditFilter, bool) {
	filter := repository.AuditFilter{CalculationType: c.Query("type")}

	if v := c.Query("scenario_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			badRequest(c, "Invalid scenario_id")
			return filter, false
		}
		filter.ScenarioID = &id
	}

	for _, p := range []struct {
		name string
		dst  **time.Time
	}{{"from", &filter.From}, {"to", &filter.To}} {
		v := c.Query(p.name)
		if v == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			badRequest(c, "Invalid "+p.name+": expected RFC 3339 time")
			return filter, false
		}
		*p.dst = &t
	}

	for _, p := range []struct {
		name string
		dst  *int
	}{{"limit", &filter.Limit}, {"offset", &filter.Offset}} {
		v := c.Query(p.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			badRequest(c, "Invalid "+p.name)
			return filter, false
		}
		*p.dst = n
	}
	return filter, true
}
