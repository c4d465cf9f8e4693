package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CompanyResearch is a stored research result, one row per domain
type CompanyResearch struct {
	ID                    uuid.UUID `json:"id" db:"id"`
	Domain                string    `json:"domain" db:"domain"`
	CompanyName           string    `json:"company_name" db:"company_name"`
	Industry              string    `json:"industry" db:"industry"`
	SubIndustry           string    `json:"sub_industry" db:"sub_industry"`
	Revenue               float64   `json:"revenue" db:"revenue"`
	RevenueSource         string    `json:"revenue_source" db:"revenue_source"`
	Employees             int       `json:"employees" db:"employees"`
	EmployeesSource       string    `json:"employees_source" db:"employees_source"`
	SGAPercent            float64   `json:"sga_percent" db:"sga_percent"`
	AnnualSGACost         float64   `json:"annual_sga_cost" db:"annual_sga_cost"`
	AIOpportunity         JSON      `json:"ai_opportunity" db:"ai_opportunity"`
	Competitors           JSON      `json:"competitors" db:"competitors"`
	FiveYearProjection    JSON      `json:"five_year_projection" db:"five_year_projection"`
	DataQualityConfidence string    `json:"data_quality_confidence" db:"data_quality_confidence"`
	EstimationNotes       JSON      `json:"estimation_notes" db:"estimation_notes"`
	// Details holds result fields without a column of their own
	Details      JSON      `json:"details" db:"details"`
	ResearchedAt time.Time `json:"researched_at" db:"researched_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// JSON is a JSONB column kept as raw bytes
type JSON json.RawMessage

// MarshalJSON emits the raw document, or null when empty
func (j JSON) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return []byte("null"), nil
	}
	return j, nil
}

// UnmarshalJSON stores a copy of data
func (j *JSON) UnmarshalJSON(data []byte) error {
	*j = append((*j)[:0], data...)
	return nil
}

// Value implements driver.Valuer
func (j JSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return []byte(j), nil
}

// Scan implements sql.Scanner
func (j *JSON) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*j = nil
	case []byte:
		*j = append(JSON(nil), v...)
	case string:
		*j = JSON(v)
	default:
		return fmt.Errorf("cannot scan %T into JSON", value)
	}
	return nil
}

// Decode unmarshals the column into v; an empty column leaves v untouched
func (j JSON) Decode(v interface{}) error {
	if len(j) == 0 {
		return nil
	}
	return json.Unmarshal(j, v)
}

// NewJSON marshals v into a column value
func NewJSON(v interface{}) (JSON, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return JSON(raw), nil
}
