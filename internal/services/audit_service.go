package services

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"

	"github.com/google/uuid"

	"github.com/red11scout/blueallygenaiwebsite/internal/calculator"
	"github.com/red11scout/blueallygenaiwebsite/internal/errors"
	"github.com/red11scout/blueallygenaiwebsite/internal/models"
	"github.com/red11scout/blueallygenaiwebsite/internal/repository"
)

// VerifyResult compares a logged calculation with a fresh run of the same inputs
type VerifyResult struct {
	AuditID            uuid.UUID       `json:"auditId"`
	CalculationType    string          `json:"calculationType"`
	Matches            bool            `json:"matches"`
	RecordedVersion    string          `json:"recordedVersion"`
	CurrentVersion     string          `json:"currentVersion"`
	RecordedBenchmarks string          `json:"recordedBenchmarks"`
	CurrentBenchmarks  string          `json:"currentBenchmarks"`
	Recorded           json.RawMessage `json:"recorded"`
	Recomputed         json.RawMessage `json:"recomputed"`
}

type auditService struct {
	repo   repository.AuditLogRepository
	engine *calculator.Engine
}

func newAuditService(repo repository.AuditLogRepository, engine *calculator.Engine) *auditService {
	return &auditService{repo: repo, engine: engine}
}

func (s *auditService) Get(ctx context.Context, id uuid.UUID) (*models.AuditEntry, error) {
	entry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NotFound("audit entry not found", err)
		}
		return nil, errors.DatabaseError("failed to get audit entry", err)
	}
	return entry, nil
}

func (s *auditService) List(ctx context.Context, filter repository.AuditFilter) ([]models.AuditEntry, error) {
	if filter.From != nil && filter.To != nil && !filter.From.Before(*filter.To) {
		return nil, errors.ValidationError("from must be before to", nil)
	}
	entries, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, errors.DatabaseError("failed to list audit entries", err)
	}
	return entries, nil
}

// Verify reruns a logged calculation from its stored inputs. Outputs match
// when their canonical JSON encodings are byte-identical.
func (s *auditService) Verify(ctx context.Context, id uuid.UUID) (*VerifyResult, error) {
	entry, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	in, err := calculator.DecodeInput(calculator.Kind(entry.CalculationType), entry.InputParameters)
	if err != nil {
		return nil, errors.ValidationError("stored inputs cannot be replayed", err)
	}
	out, err := s.engine.Evaluate(in)
	if err != nil {
		return nil, errors.InternalError("failed to recompute calculation", err)
	}

	recomputed, err := json.Marshal(out)
	if err != nil {
		return nil, errors.InternalError("failed to encode recomputed output", err)
	}
	recorded, err := canonicalJSON(entry.OutputResults)
	if err != nil {
		return nil, errors.ValidationError("stored output is unreadable", err)
	}
	recomputed, err = canonicalJSON(recomputed)
	if err != nil {
		return nil, errors.InternalError("failed to encode recomputed output", err)
	}

	return &VerifyResult{
		AuditID:            entry.ID,
		CalculationType:    entry.CalculationType,
		Matches:            bytes.Equal(recorded, recomputed),
		RecordedVersion:    entry.CalculationVersion,
		CurrentVersion:     calculator.Version,
		RecordedBenchmarks: entry.EngineVersion,
		CurrentBenchmarks:  s.engine.Tables().Version,
		Recorded:           recorded,
		Recomputed:         recomputed,
	}, nil
}

// canonicalJSON re-encodes a document with sorted keys and no insignificant
// whitespace, undoing the key reordering of jsonb columns.
func canonicalJSON(raw []byte) ([]byte, error) {
	var v interface{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return json.Marshal(v)
}
