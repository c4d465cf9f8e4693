package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/red11scout/blueallygenaiwebsite/internal/models"
)

// ErrNotFound is returned when a lookup matches no row
var ErrNotFound = errors.New("record not found")

// CompanyResearchRepository stores research results keyed by domain
type CompanyResearchRepository interface {
	GetByDomain(ctx context.Context, domain string) (*models.CompanyResearch, error)
	Upsert(ctx context.Context, research *models.CompanyResearch) error
}

// ScenarioRepository stores user scenarios
type ScenarioRepository interface {
	Create(ctx context.Context, scenario *models.Scenario) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Scenario, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Scenario, error)
	Update(ctx context.Context, scenario *models.Scenario) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// AuditLogRepository stores calculation audit entries
type AuditLogRepository interface {
	Record(ctx context.Context, entry *models.AuditEntry) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.AuditEntry, error)
	List(ctx context.Context, filter AuditFilter) ([]models.AuditEntry, error)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	TouchLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	SetRole(ctx context.Context, id uuid.UUID, role string) error
}

// TransactionManager runs a function against repositories bound to one transaction
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(repos *Repositories) error) error
}

// Repositories groups all repository interfaces
type Repositories struct {
	Research  CompanyResearchRepository
	Scenarios ScenarioRepository
	Audit     AuditLogRepository
	Users     UserRepository
	Tx        TransactionManager
}

// AuditFilter narrows an audit log listing
type AuditFilter struct {
	CalculationType string
	ScenarioID      *uuid.UUID
	From            *time.Time
	To              *time.Time
	Limit           int
	Offset          int
}

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

func (f AuditFilter) limit() uint {
	switch {
	case f.Limit <= 0:
		return defaultListLimit
	case f.Limit > maxListLimit:
		return maxListLimit
	default:
		return uint(f.Limit)
	}
}
