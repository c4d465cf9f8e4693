package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/red11scout/blueallygenaiwebsite/internal/auth"
	"github.com/red11scout/blueallygenaiwebsite/internal/cache"
	"github.com/red11scout/blueallygenaiwebsite/internal/calculator"
	"github.com/red11scout/blueallygenaiwebsite/internal/logger"
	"github.com/red11scout/blueallygenaiwebsite/internal/models"
	"github.com/red11scout/blueallygenaiwebsite/internal/repository"
	"github.com/red11scout/blueallygenaiwebsite/internal/research"
	"github.com/red11scout/blueallygenaiwebsite/internal/telemetry"
	"github.com/red11scout/blueallygenaiwebsite/pkg/config"
)

// Services contains all application services
type Services struct {
	Calculator CalculatorService
	Research   ResearchService
	Scenarios  ScenarioService
	Auth       AuthService
	Audit      AuditService
}

// CalculatorService validates calculator requests and runs them through the engine
type CalculatorService interface {
	ProcessSavings(ctx context.Context, req ProcessSavingsRequest) (*ProcessSavingsResponse, error)
	FiveYearROI(ctx context.Context, req FiveYearROIRequest) (*FiveYearROIResponse, error)
	CompanyOpportunity(ctx context.Context, req CompanyOpportunityRequest) (*CompanyOpportunityResponse, error)
	Benchmarks(industry string) *BenchmarksResponse
	ExportFiveYearROI(ctx context.Context, req FiveYearROIRequest, format ExportFormat) (*Export, error)
}

// ResearchService researches companies with a database-backed cache
type ResearchService interface {
	Research(ctx context.Context, domain string) (*ResearchResponse, error)
	QuickLookup(ctx context.Context, domain string) research.QuickLookupResult
	Health() research.HealthStatus
}

// ScenarioService manages a user's saved scenarios
type ScenarioService interface {
	Create(ctx context.Context, userID uuid.UUID, req ScenarioRequest) (*models.Scenario, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*models.Scenario, error)
	List(ctx context.Context, userID uuid.UUID) ([]models.Scenario, error)
	Update(ctx context.Context, userID, id uuid.UUID, req ScenarioRequest) (*models.Scenario, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	Recalculate(ctx context.Context, userID, id uuid.UUID) (*models.Scenario, error)
}

// AuthService defines the interface for authentication business logic
type AuthService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
	Me(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

// AuditService reads and re-verifies audited calculations
type AuditService interface {
	Get(ctx context.Context, id uuid.UUID) (*models.AuditEntry, error)
	List(ctx context.Context, filter repository.AuditFilter) ([]models.AuditEntry, error)
	Verify(ctx context.Context, id uuid.UUID) (*VerifyResult, error)
}

// Researcher is the research collaborator behind ResearchService
type Researcher interface {
	Research(ctx context.Context, domain string) (*research.Result, error)
	QuickLookup(ctx context.Context, domain string) research.QuickLookupResult
	Health() research.HealthStatus
}

// Dependencies wires the services together
type Dependencies struct {
	Repos      *repository.Repositories
	Engine     *calculator.Engine
	Researcher Researcher
	Cache      cache.Provider
	JWT        *auth.JWTService
	Metrics    *telemetry.Metrics
	Logger     logger.Logger
	Config     *config.Config
}

// NewServices creates a new Services instance with all dependencies
func NewServices(deps Dependencies) *Services {
	if deps.Engine == nil {
		deps.Engine = calculator.Default()
	}
	if deps.Metrics == nil {
		deps.Metrics = telemetry.NopMetrics()
	}
	if deps.Logger == nil {
		deps.Logger = logger.Nop()
	}
	if deps.Cache == nil {
		deps.Cache = cache.NewMemory()
	}
	if deps.Config == nil {
		deps.Config = config.New()
	}
	if deps.JWT == nil {
		deps.JWT = auth.NewJWTService(deps.Config.JWTSecret)
	}

	var audit repository.AuditLogRepository
	if deps.Repos != nil {
		audit = deps.Repos.Audit
	}
	calc := newCalculatorService(deps.Engine, audit, deps.Metrics, deps.Logger)

	s := &Services{Calculator: calc}
	if deps.Repos == nil {
		return s
	}

	if deps.Researcher != nil {
		s.Research = newResearchService(deps.Researcher, deps.Repos.Research, deps.Cache, deps.Metrics, deps.Logger,
			researchSettings{
				timeout:   deps.Config.ResearchTimeout,
				ttl:       deps.Config.ResearchCacheTTL,
				lookupTTL: deps.Config.QuickLookupTTL,
			})
	}
	s.Scenarios = newScenarioService(deps.Repos, calc, deps.Logger)
	s.Auth = newAuthService(deps.Repos.Users, deps.JWT, deps.Logger, deps.Config.GetAdminEmails())
	s.Audit = newAuditService(deps.Repos.Audit, deps.Engine)
	return s
}

var nowUTC = func() time.Time { return time.Now().UTC() }
