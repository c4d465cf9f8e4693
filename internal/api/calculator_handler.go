package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/red11scout/blueallygenaiwebsite/internal/services"
)

// CalculatorHandler serves the ROI calculator endpoints
type CalculatorHandler struct {
	calculator services.CalculatorService
}

// NewCalculatorHandler creates a new calculator handler
func NewCalculatorHandler(calculator services.CalculatorService) *CalculatorHandler {
	return &CalculatorHandler{calculator: calculator}
}

// ProcessSavings values automating one process
func (h *CalculatorHandler) ProcessSavings(c *gin.Context) {
	var req services.ProcessSavingsRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.calculator.ProcessSavings(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// FiveYearROI projects net cash flow over five years
func (h *CalculatorHandler) FiveYearROI(c *gin.Context) {
	var req services.FiveYearROIRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.calculator.FiveYearROI(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CompanyOpportunity sizes a company's SG&A opportunity
func (h *CalculatorHandler) CompanyOpportunity(c *gin.Context) {
	var req services.CompanyOpportunityRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.calculator.CompanyOpportunity(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Benchmarks returns the benchmark tables, or one industry's ratios
func (h *CalculatorHandler) Benchmarks(c *gin.Context) {
	c.JSON(http.StatusOK, h.calculator.Benchmarks(c.Query("industry")))
}

// ExportFiveYearROI downloads a projection as xlsx (default) or pdf
func (h *CalculatorHandler) ExportFiveYearROI(c *gin.Context) {
	var req services.FiveYearROIRequest
	if !bindJSON(c, &req) {
		return
	}

	format := services.ExportFormat(strings.ToLower(c.DefaultQuery("format", string(services.ExportXLSX))))
	export, err := h.calculator.ExportFiveYearROI(c.Request.Context(), req, format)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+export.Filename+`"`)
	c.Data(http.StatusOK, export.ContentType, export.Data)
}
