package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/red11scout/blueallygenaiwebsite/internal/models"
)

// scenarioRepository implements ScenarioRepository. Every query is scoped
// to the owning user.
type scenarioRepository struct {
	db dbExecutor
}

// NewScenarioRepository creates a new scenario repository
func NewScenarioRepository(db dbExecutor) ScenarioRepository {
	return &scenarioRepository{db: db}
}

const scenarioColumns = `id, user_id, company_research_id, name, COALESCE(description, ''),
	custom_assumptions, selected_processes, calculated_results, created_at, updated_at`

func scanScenario(row interface{ Scan(...interface{}) error }, s *models.Scenario) error {
	return row.Scan(
		&s.ID, &s.UserID, &s.CompanyResearchID, &s.Name, &s.Description,
		&s.CustomAssumptions, &s.SelectedProcesses, &s.CalculatedResults,
		&s.CreatedAt, &s.UpdatedAt,
	)
}

// Create inserts a new scenario
func (r *scenarioRepository) Create(ctx context.Context, s *models.Scenario) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	now := time.Now().UTC()
	s.CreatedAt = now
	s.UpdatedAt = now

	query := `
		INSERT INTO user_scenarios (
			id, user_id, company_research_id, name, description,
			custom_assumptions, selected_processes, calculated_results,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.UserID, s.CompanyResearchID, s.Name, s.Description,
		s.CustomAssumptions, s.SelectedProcesses, s.CalculatedResults,
		s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create scenario: %w", err)
	}
	return nil
}

// GetByID returns the user's scenario, or ErrNotFound
func (r *scenarioRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Scenario, error) {
	query := `SELECT ` + scenarioColumns + ` FROM user_scenarios WHERE id = $1 AND user_id = $2`

	s := &models.Scenario{}
	if err := scanScenario(r.db.QueryRowContext(ctx, query, id, userID), s); err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get scenario: %w", err)
	}
	return s, nil
}

// ListByUser returns the user's scenarios, most recently updated first
func (r *scenarioRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Scenario, error) {
	query := `SELECT ` + scenarioColumns + ` FROM user_scenarios WHERE user_id = $1 ORDER BY updated_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}
	defer rows.Close()

	scenarios := []models.Scenario{}
	for rows.Next() {
		var s models.Scenario
		if err := scanScenario(rows, &s); err != nil {
			return nil, fmt.Errorf("failed to scan scenario: %w", err)
		}
		scenarios = append(scenarios, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}
	return scenarios, nil
}

// Update replaces the mutable fields of the user's scenario
func (r *scenarioRepository) Update(ctx context.Context, s *models.Scenario) error {
	s.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE user_scenarios SET
			company_research_id = $3, name = $4, description = $5,
			custom_assumptions = $6, selected_processes = $7, calculated_results = $8,
			updated_at = $9
		WHERE id = $1 AND user_id = $2
	`
	result, err := r.db.ExecContext(ctx, query,
		s.ID, s.UserID, s.CompanyResearchID, s.Name, s.Description,
		s.CustomAssumptions, s.SelectedProcesses, s.CalculatedResults,
		s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update scenario: %w", err)
	}
	return requireRow(result)
}

// Delete removes the user's scenario
func (r *scenarioRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM user_scenarios WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete scenario: %w", err)
	}
	return requireRow(result)
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
