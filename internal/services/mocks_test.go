package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/red11scout/blueallygenaiwebsite/internal/models"
	"github.com/red11scout/blueallygenaiwebsite/internal/repository"
	"github.com/red11scout/blueallygenaiwebsite/internal/research"
)

// MockResearchRepository keeps research rows in memory
type MockResearchRepository struct {
	mu      sync.Mutex
	rows    map[string]models.CompanyResearch
	getErr  error
	upserts int
}

func NewMockResearchRepository() *MockResearchRepository {
	return &MockResearchRepository{rows: make(map[string]models.CompanyResearch)}
}

func (m *MockResearchRepository) GetByDomain(_ context.Context, domain string) (*models.CompanyResearch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	row, ok := m.rows[domain]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &row, nil
}

func (m *MockResearchRepository) Upsert(_ context.Context, r *models.CompanyResearch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	m.rows[r.Domain] = *r
	m.upserts++
	return nil
}

// MockScenarioRepository keeps scenarios in memory
type MockScenarioRepository struct {
	mu        sync.Mutex
	scenarios map[uuid.UUID]models.Scenario
}

func NewMockScenarioRepository() *MockScenarioRepository {
	return &MockScenarioRepository{scenarios: make(map[uuid.UUID]models.Scenario)}
}

func (m *MockScenarioRepository) Create(_ context.Context, s *models.Scenario) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.ID = uuid.New()
	s.CreatedAt = time.Now().UTC()
	s.UpdatedAt = s.CreatedAt
	m.scenarios[s.ID] = *s
	return nil
}

func (m *MockScenarioRepository) GetByID(_ context.Context, userID, id uuid.UUID) (*models.Scenario, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.scenarios[id]
	if !ok || s.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return &s, nil
}

func (m *MockScenarioRepository) ListByUser(_ context.Context, userID uuid.UUID) ([]models.Scenario, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := []models.Scenario{}
	for _, s := range m.scenarios {
		if s.UserID == userID {
			list = append(list, s)
		}
	}
	return list, nil
}

func (m *MockScenarioRepository) Update(_ context.Context, s *models.Scenario) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.scenarios[s.ID]
	if !ok || existing.UserID != s.UserID {
		return repository.ErrNotFound
	}
	s.UpdatedAt = time.Now().UTC()
	m.scenarios[s.ID] = *s
	return nil
}

func (m *MockScenarioRepository) Delete(_ context.Context, userID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.scenarios[id]
	if !ok || s.UserID != userID {
		return repository.ErrNotFound
	}
	delete(m.scenarios, id)
	return nil
}

// MockAuditRepository keeps audit entries in memory
type MockAuditRepository struct {
	mu        sync.Mutex
	entries   []models.AuditEntry
	recordErr error
}

func (m *MockAuditRepository) Record(_ context.Context, e *models.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.recordErr != nil {
		return m.recordErr
	}
	e.ID = uuid.New()
	e.CalculatedAt = time.Now().UTC()
	m.entries = append(m.entries, *e)
	return nil
}

func (m *MockAuditRepository) GetByID(_ context.Context, id uuid.UUID) (*models.AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.ID == id {
			return &e, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockAuditRepository) List(_ context.Context, f repository.AuditFilter) ([]models.AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := []models.AuditEntry{}
	for _, e := range m.entries {
		if f.CalculationType != "" && e.CalculationType != f.CalculationType {
			continue
		}
		if f.ScenarioID != nil && (e.ScenarioID == nil || *e.ScenarioID != *f.ScenarioID) {
			continue
		}
		list = append(list, e)
	}
	return list, nil
}

func (m *MockAuditRepository) byType(kind string) []models.AuditEntry {
	list, _ := m.List(context.Background(), repository.AuditFilter{CalculationType: kind})
	return list
}

// MockUserRepository keeps users in memory
type MockUserRepository struct {
	mu    sync.Mutex
	users map[uuid.UUID]models.User
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[uuid.UUID]models.User)}
}

func (m *MockUserRepository) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (m *MockUserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockUserRepository) Create(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u.ID = uuid.New()
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	m.users[u.ID] = *u
	return nil
}

func (m *MockUserRepository) TouchLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.LastLoginAt = &at
	m.users[id] = u
	return nil
}

func (m *MockUserRepository) SetRole(_ context.Context, id uuid.UUID, role string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Role = role
	m.users[id] = u
	return nil
}

// fakeResearcher returns a canned result and counts calls
type fakeResearcher struct {
	mu      sync.Mutex
	result  *research.Result
	err     error
	lookup  research.QuickLookupResult
	calls   int
	lookups int
	block   bool
}

func (f *fakeResearcher) Research(ctx context.Context, domain string) (*research.Result, error) {
	f.mu.Lock()
	f.calls++
	block := f.block
	f.mu.Unlock()

	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	r := *f.result
	r.Domain = domain
	return &r, nil
}

func (f *fakeResearcher) QuickLookup(_ context.Context, _ string) research.QuickLookupResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	return f.lookup
}

func (f *fakeResearcher) Health() research.HealthStatus {
	return research.HealthStatus{IsHealthy: true, Provider: "fake"}
}

// MockTransactionManager hands fn the same repositories and counts outcomes
type MockTransactionManager struct {
	mu        sync.Mutex
	repos     *repository.Repositories
	commits   int
	rollbacks int
}

func (m *MockTransactionManager) WithTransaction(_ context.Context, fn func(repos *repository.Repositories) error) error {
	err := fn(m.repos)
	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.rollbacks++
		return fmt.Errorf("transaction failed: %w", err)
	}
	m.commits++
	return nil
}

func newMockRepositories() (*repository.Repositories, *MockAuditRepository) {
	audit := &MockAuditRepository{}
	repos := &repository.Repositories{
		Research:  NewMockResearchRepository(),
		Scenarios: NewMockScenarioRepository(),
		Audit:     audit,
		Users:     NewMockUserRepository(),
	}
	repos.Tx = &MockTransactionManager{repos: repos}
	return repos, audit
}
