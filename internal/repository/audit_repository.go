package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/google/uuid"

	"github.com/red11scout/blueallygenaiwebsite/internal/models"
)

const auditTable = "calculation_audit_log"

var auditColumns = []interface{}{
	"id", "scenario_id", "calculation_type", "input_parameters", "output_results",
	"calculation_version", goqu.L(`COALESCE("engine_version", '')`).As("engine_version"), "calculated_at",
}

// auditLogRepository implements AuditLogRepository
type auditLogRepository struct {
	db      dbExecutor
	dialect goqu.DialectWrapper
}

// NewAuditLogRepository creates a new audit log repository
func NewAuditLogRepository(db dbExecutor) AuditLogRepository {
	return &auditLogRepository{db: db, dialect: goqu.Dialect("postgres")}
}

func scanAudit(row interface{ Scan(...interface{}) error }, e *models.AuditEntry) error {
	return row.Scan(
		&e.ID, &e.ScenarioID, &e.CalculationType, &e.InputParameters, &e.OutputResults,
		&e.CalculationVersion, &e.EngineVersion, &e.CalculatedAt,
	)
}

// Record inserts an audit entry
func (r *auditLogRepository) Record(ctx context.Context, e *models.AuditEntry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CalculatedAt.IsZero() {
		e.CalculatedAt = time.Now().UTC()
	}

	var scenarioID interface{}
	if e.ScenarioID != nil {
		scenarioID = *e.ScenarioID
	}

	query, args, err := r.dialect.Insert(auditTable).Prepared(true).Rows(goqu.Record{
		"id":                  e.ID,
		"scenario_id":         scenarioID,
		"calculation_type":    e.CalculationType,
		"input_parameters":    e.InputParameters,
		"output_results":      e.OutputResults,
		"calculation_version": e.CalculationVersion,
		"engine_version":      e.EngineVersion,
		"calculated_at":       e.CalculatedAt,
	}).ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build audit insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to record audit entry: %w", err)
	}
	return nil
}

// GetByID returns one audit entry, or ErrNotFound
func (r *auditLogRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.AuditEntry, error) {
	query, args, err := r.dialect.From(auditTable).Prepared(true).
		Select(auditColumns...).
		Where(goqu.C("id").Eq(id)).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build audit query: %w", err)
	}

	e := &models.AuditEntry{}
	if err := scanAudit(r.db.QueryRowContext(ctx, query, args...), e); err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get audit entry: %w", err)
	}
	return e, nil
}

// List returns audit entries matching filter, newest first
func (r *auditLogRepository) List(ctx context.Context, filter AuditFilter) ([]models.AuditEntry, error) {
	ds := r.dialect.From(auditTable).Prepared(true).
		Select(auditColumns...).
		Order(goqu.C("calculated_at").Desc(), goqu.C("id").Asc()).
		Limit(filter.limit())

	if filter.Offset > 0 {
		ds = ds.Offset(uint(filter.Offset))
	}

	where := goqu.Ex{}
	if filter.CalculationType != "" {
		where["calculation_type"] = filter.CalculationType
	}
	if filter.ScenarioID != nil {
		where["scenario_id"] = *filter.ScenarioID
	}
	if len(where) > 0 {
		ds = ds.Where(where)
	}
	if filter.From != nil {
		ds = ds.Where(goqu.C("calculated_at").Gte(*filter.From))
	}
	if filter.To != nil {
		ds = ds.Where(goqu.C("calculated_at").Lt(*filter.To))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build audit query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	entries := []models.AuditEntry{}
	for rows.Next() {
		var e models.AuditEntry
		if err := scanAudit(rows, &e); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	return entries, nil
}
