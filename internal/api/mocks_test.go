package api

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/red11scout/blueallygenaiwebsite/internal/errors"
	"github.com/red11scout/blueallygenaiwebsite/internal/models"
	"github.com/red11scout/blueallygenaiwebsite/internal/repository"
	"github.com/red11scout/blueallygenaiwebsite/internal/research"
	"github.com/red11scout/blueallygenaiwebsite/internal/services"
)

// Mock research service for testing
type mockResearchService struct {
	result  *research.Result
	err     error
	healthy bool
	domains []string
}

func (m *mockResearchService) Research(_ context.Context, domain string) (*services.ResearchResponse, error) {
	m.domains = append(m.domains, domain)
	if m.err != nil {
		return nil, m.err
	}
	return &services.ResearchResponse{Result: m.result}, nil
}

func (m *mockResearchService) QuickLookup(_ context.Context, domain string) research.QuickLookupResult {
	if domain == "acme.com" {
		return research.QuickLookupResult{Valid: true, CompanyName: "Acme Corp", Industry: "Technology"}
	}
	return research.QuickLookupResult{Valid: false}
}

func (m *mockResearchService) Health() research.HealthStatus {
	return research.HealthStatus{IsHealthy: m.healthy, Provider: "mock"}
}

// Mock auth service for testing
type mockAuthService struct {
	users    map[string]models.User
	password string
	token    string
}

func (m *mockAuthService) Register(_ context.Context, req models.RegisterRequest) (*models.User, error) {
	if _, ok := m.users[req.Email]; ok {
		return nil, errors.Conflict("an account with this email already exists", nil)
	}
	u := models.User{ID: uuid.New(), Email: req.Email, Name: req.Name, Role: "user"}
	m.users[req.Email] = u
	return &u, nil
}

func (m *mockAuthService) Login(_ context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	u, ok := m.users[req.Email]
	if !ok || req.Password != m.password {
		return nil, errors.Unauthorized("invalid credentials", nil)
	}
	return &models.LoginResponse{Token: m.token, ExpiresAt: time.Now().Add(time.Hour), User: u}, nil
}

func (m *mockAuthService) Me(_ context.Context, id uuid.UUID) (*models.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, errors.NotFound("user not found", nil)
}

// Mock scenario service for testing
type mockScenarioService struct {
	scenarios map[uuid.UUID]models.Scenario
}

func (m *mockScenarioService) Create(_ context.Context, userID uuid.UUID, req services.ScenarioRequest) (*models.Scenario, error) {
	s := models.Scenario{ID: uuid.New(), UserID: userID, Name: req.Name}
	m.scenarios[s.ID] = s
	return &s, nil
}

func (m *mockScenarioService) Get(_ context.Context, userID, id uuid.UUID) (*models.Scenario, error) {
	s, ok := m.scenarios[id]
	if !ok || s.UserID != userID {
		return nil, errors.NotFound("scenario not found", nil)
	}
	return &s, nil
}

func (m *mockScenarioService) List(_ context.Context, userID uuid.UUID) ([]models.Scenario, error) {
	list := []models.Scenario{}
	for _, s := range m.scenarios {
		if s.UserID == userID {
			list = append(list, s)
		}
	}
	return list, nil
}

func (m *mockScenarioService) Update(ctx context.Context, userID, id uuid.UUID, req services.ScenarioRequest) (*models.Scenario, error) {
	s, err := m.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	s.Name = req.Name
	m.scenarios[id] = *s
	return s, nil
}

func (m *mockScenarioService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := m.Get(ctx, userID, id); err != nil {
		return err
	}
	delete(m.scenarios, id)
	return nil
}

func (m *mockScenarioService) Recalculate(ctx context.Context, userID, id uuid.UUID) (*models.Scenario, error) {
	s, err := m.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	s.CalculatedResults = models.JSON(`{"totalAnnualSavings":1}`)
	m.scenarios[id] = *s
	return s, nil
}

// Mock audit service for testing
type mockAuditService struct {
	entry      models.AuditEntry
	lastFilter repository.AuditFilter
}

func (m *mockAuditService) Get(_ context.Context, id uuid.UUID) (*models.AuditEntry, error) {
	if id != m.entry.ID {
		return nil, errors.NotFound("audit entry not found", nil)
	}
	e := m.entry
	return &e, nil
}

func (m *mockAuditService) List(_ context.Context, f repository.AuditFilter) ([]models.AuditEntry, error) {
	m.lastFilter = f
	return []models.AuditEntry{m.entry}, nil
}

func (m *mockAuditService) Verify(ctx context.Context, id uuid.UUID) (*services.VerifyResult, error) {
	e, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &services.VerifyResult{AuditID: e.ID, CalculationType: e.CalculationType, Matches: true}, nil
}
