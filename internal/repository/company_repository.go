package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/red11scout/blueallygenaiwebsite/internal/models"
)

// companyResearchRepository implements CompanyResearchRepository
type companyResearchRepository struct {
	db dbExecutor
}

// NewCompanyResearchRepository creates a new research repository
func NewCompanyResearchRepository(db dbExecutor) CompanyResearchRepository {
	return &companyResearchRepository{db: db}
}

// GetByDomain returns the stored research for domain, or ErrNotFound
func (r *companyResearchRepository) GetByDomain(ctx context.Context, domain string) (*models.CompanyResearch, error) {
	query := `
		SELECT id, domain, company_name, industry, COALESCE(sub_industry, ''),
			   COALESCE(revenue, 0), revenue_source, COALESCE(employees, 0), employees_source,
			   COALESCE(sga_percent, 0), COALESCE(annual_sga_cost, 0),
			   ai_opportunity, competitors, five_year_projection,
			   data_quality_confidence, estimation_notes, details,
			   researched_at, updated_at
		FROM company_research WHERE domain = $1
	`

	rec := &models.CompanyResearch{}
	err := r.db.QueryRowContext(ctx, query, domain).Scan(
		&rec.ID, &rec.Domain, &rec.CompanyName, &rec.Industry, &rec.SubIndustry,
		&rec.Revenue, &rec.RevenueSource, &rec.Employees, &rec.EmployeesSource,
		&rec.SGAPercent, &rec.AnnualSGACost,
		&rec.AIOpportunity, &rec.Competitors, &rec.FiveYearProjection,
		&rec.DataQualityConfidence, &rec.EstimationNotes, &rec.Details,
		&rec.ResearchedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get company research: %w", err)
	}
	return rec, nil
}

// Upsert inserts or replaces the research row for rec.Domain
func (r *companyResearchRepository) Upsert(ctx context.Context, rec *models.CompanyResearch) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	rec.UpdatedAt = time.Now().UTC()
	if rec.ResearchedAt.IsZero() {
		rec.ResearchedAt = rec.UpdatedAt
	}

	query := `
		INSERT INTO company_research (
			id, domain, company_name, industry, sub_industry,
			revenue, revenue_source, employees, employees_source,
			sga_percent, annual_sga_cost,
			ai_opportunity, competitors, five_year_projection,
			data_quality_confidence, estimation_notes, details,
			researched_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		ON CONFLICT (domain) DO UPDATE SET
			company_name = EXCLUDED.company_name,
			industry = EXCLUDED.industry,
			sub_industry = EXCLUDED.sub_industry,
			revenue = EXCLUDED.revenue,
			revenue_source = EXCLUDED.revenue_source,
			employees = EXCLUDED.employees,
			employees_source = EXCLUDED.employees_source,
			sga_percent = EXCLUDED.sga_percent,
			annual_sga_cost = EXCLUDED.annual_sga_cost,
			ai_opportunity = EXCLUDED.ai_opportunity,
			competitors = EXCLUDED.competitors,
			five_year_projection = EXCLUDED.five_year_projection,
			data_quality_confidence = EXCLUDED.data_quality_confidence,
			estimation_notes = EXCLUDED.estimation_notes,
			details = EXCLUDED.details,
			researched_at = EXCLUDED.researched_at,
			updated_at = EXCLUDED.updated_at
		RETURNING id
	`

	err := r.db.QueryRowContext(ctx, query,
		rec.ID, rec.Domain, rec.CompanyName, rec.Industry, rec.SubIndustry,
		rec.Revenue, rec.RevenueSource, rec.Employees, rec.EmployeesSource,
		rec.SGAPercent, rec.AnnualSGACost,
		rec.AIOpportunity, rec.Competitors, rec.FiveYearProjection,
		rec.DataQualityConfidence, rec.EstimationNotes, rec.Details,
		rec.ResearchedAt, rec.UpdatedAt,
	).Scan(&rec.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert company research: %w", err)
	}
	return nil
}
