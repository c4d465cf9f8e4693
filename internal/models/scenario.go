package models

import (
	"time"

	"github.com/google/uuid"
)

// Scenario is a user's saved set of assumptions and its last results
type Scenario struct {
	ID                uuid.UUID  `json:"id" db:"id"`
	UserID            uuid.UUID  `json:"user_id" db:"user_id"`
	CompanyResearchID *uuid.UUID `json:"company_research_id,omitempty" db:"company_research_id"`
	Name              string     `json:"name" db:"name"`
	Description       string     `json:"description" db:"description"`
	CustomAssumptions JSON       `json:"custom_assumptions" db:"custom_assumptions"`
	SelectedProcesses JSON       `json:"selected_processes" db:"selected_processes"`
	CalculatedResults JSON       `json:"calculated_results" db:"calculated_results"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" db:"updated_at"`
}

// AuditEntry records one engine calculation with its inputs and outputs
type AuditEntry struct {
	ID                 uuid.UUID  `json:"id" db:"id"`
	ScenarioID         *uuid.UUID `json:"scenario_id,omitempty" db:"scenario_id"`
	CalculationType    string     `json:"calculation_type" db:"calculation_type"`
	InputParameters    JSON       `json:"input_parameters" db:"input_parameters"`
	OutputResults      JSON       `json:"output_results" db:"output_results"`
	CalculationVersion string     `json:"calculation_version" db:"calculation_version"`
	EngineVersion      string     `json:"engine_version" db:"engine_version"`
	CalculatedAt       time.Time  `json:"calculated_at" db:"calculated_at"`
}
