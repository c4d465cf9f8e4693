package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/red11scout/blueallygenaiwebsite/internal/services"
)

// CompanyHandler serves company research
type CompanyHandler struct {
	research services.ResearchService
}

// NewCompanyHandler creates a new company handler
func NewCompanyHandler(research services.ResearchService) *CompanyHandler {
	return &CompanyHandler{research: research}
}

type researchRequest struct {
	Domain string `json:"domain" binding:"required"`
}

// Research researches a company by domain
func (h *CompanyHandler) Research(c *gin.Context) {
	var req researchRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.research.Research(c.Request.Context(), req.Domain)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// QuickLookup checks whether a domain belongs to a real company. It never
// fails; unknown domains answer valid=false.
func (h *CompanyHandler) QuickLookup(c *gin.Context) {
	domain := c.Query("domain")
	if domain == "" {
		badRequest(c, "domain is required")
		return
	}
	c.JSON(http.StatusOK, h.research.QuickLookup(c.Request.Context(), domain))
}
