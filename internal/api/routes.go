package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/red11scout/blueallygenaiwebsite/internal/auth"
	"github.com/red11scout/blueallygenaiwebsite/internal/errors"
	"github.com/red11scout/blueallygenaiwebsite/internal/services"
)

// RouteOptions carries what SetupRoutes needs besides the services
type RouteOptions struct {
	JWT          *auth.JWTService
	HealthChecks map[string]HealthCheck
	Version      string
}

// SetupRoutes configures all API routes. Routes whose service is nil are
// answered with 503.
func SetupRoutes(r *gin.Engine, svc *services.Services, opts RouteOptions) {
	health := NewHealthHandler(opts.HealthChecks, svc.Research, opts.Version)
	r.GET("/health", health.Health)

	v1 := r.Group("/api/v1")
	v1.GET("/health", health.Health)

	calc := NewCalculatorHandler(svc.Calculator)
	calculator := v1.Group("/calculator")
	{
		calculator.POST("/process-savings", calc.ProcessSavings)
		calculator.POST("/five-year-roi", calc.FiveYearROI)
		calculator.POST("/five-year-roi/export", calc.ExportFiveYearROI)
		calculator.POST("/company-opportunity", calc.CompanyOpportunity)
		calculator.GET("/benchmarks", calc.Benchmarks)
	}

	company := v1.Group("/company")
	if svc.Research != nil {
		h := NewCompanyHandler(svc.Research)
		company.GET("/quick-lookup", h.QuickLookup)
		company.POST("/research", h.Research)
	} else {
		unavailable(company, "", "company research")
	}

	if svc.Auth == nil || opts.JWT == nil {
		unavailable(v1, "/auth", "accounts")
		unavailable(v1, "/scenarios", "scenarios")
		unavailable(v1, "/audit", "audit log")
		return
	}

	authHandler := NewAuthHandler(svc.Auth)
	v1.POST("/auth/register", authHandler.Register)
	v1.POST("/auth/login", authHandler.Login)
	v1.POST("/auth/logout", authHandler.Logout)

	protected := v1.Group("")
	protected.Use(auth.JWTMiddleware(opts.JWT))
	{
		protected.GET("/auth/me", authHandler.Me)

		scenarios := NewScenarioHandler(svc.Scenarios)
		protected.GET("/scenarios", scenarios.List)
		protected.POST("/scenarios", scenarios.Create)
		protected.GET("/scenarios/:id", scenarios.Get)
		protected.PUT("/scenarios/:id", scenarios.Update)
		protected.DELETE("/scenarios/:id", scenarios.Delete)
		protected.POST("/scenarios/:id/recalculate", scenarios.Recalculate)

		audit := NewAuditHandler(svc.Audit)
		admin := protected.Group("/audit", RequireAdmin())
		admin.GET("", audit.List)
		admin.GET("/:id", audit.Get)
		admin.GET("/:id/verify", audit.Verify)
	}
}

// unavailable answers every request under prefix with 503
func unavailable(g *gin.RouterGroup, prefix, feature string) {
	h := func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
			"error": feature + " is not configured",
			"code":  errors.ErrCodeServiceError,
		})
	}
	if prefix != "" {
		g.Any(prefix, h)
	}
	g.Any(prefix+"/*path", h)
}
