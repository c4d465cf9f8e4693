package services

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/red11scout/blueallygenaiwebsite/internal/errors"
	"github.com/red11scout/blueallygenaiwebsite/internal/logger"
	"github.com/red11scout/blueallygenaiwebsite/internal/models"
	"github.com/red11scout/blueallygenaiwebsite/internal/repository"
)

// ProcessAssumption is one process a scenario automates
type ProcessAssumption struct {
	ProcessType       string   `json:"processType"`
	HoursPerWeek      float64  `json:"hoursPerWeek"`
	EmployeesInvolved float64  `json:"employeesInvolved"`
	HourlyRate        *float64 `json:"hourlyRate,omitempty"`
	ApplyRiskFactors  *bool    `json:"applyRiskFactors,omitempty"`
}

// ScenarioAssumptions are the user-editable inputs of a scenario
type ScenarioAssumptions struct {
	Revenue            float64             `json:"revenue,omitempty"`
	Employees          int                 `json:"employees,omitempty"`
	Industry           string              `json:"industry,omitempty"`
	SGAPercent         *float64            `json:"sgaPercent,omitempty"`
	Processes          []ProcessAssumption `json:"processes,omitempty"`
	ImplementationCost *float64            `json:"implementationCost,omitempty"`
}

// ScenarioRequest creates or replaces a scenario
type ScenarioRequest struct {
	Name              string              `json:"name" binding:"required,max=255"`
	Description       string              `json:"description"`
	CompanyResearchID *uuid.UUID          `json:"companyResearchId,omitempty"`
	Assumptions       ScenarioAssumptions `json:"assumptions"`
	SelectedProcesses []string            `json:"selectedProcesses"`
}

// ScenarioResults are the figures last computed for a scenario
type ScenarioResults struct {
	Opportunity        *CompanyOpportunityResponse `json:"opportunity,omitempty"`
	Processes          []ProcessSavingsResponse    `json:"processes"`
	TotalAnnualSavings int64                       `json:"totalAnnualSavings"`
	FiveYearROI        *FiveYearROIResponse        `json:"fiveYearROI,omitempty"`
	CalculatedAt       time.Time                   `json:"calculatedAt"`
}

type scenarioService struct {
	repos  *repository.Repositories
	calc   *calculatorService
	logger logger.Logger
}

func newScenarioService(repos *repository.Repositories, calc *calculatorService, log logger.Logger) *scenarioService {
	return &scenarioService{repos: repos, calc: calc, logger: log}
}

// Create stores a new scenario for userID
func (s *scenarioService) Create(ctx context.Context, userID uuid.UUID, req ScenarioRequest) (*models.Scenario, error) {
	scenario := &models.Scenario{UserID: userID}
	if err := applyRequest(scenario, req); err != nil {
		return nil, err
	}
	if err := s.repos.Scenarios.Create(ctx, scenario); err != nil {
		return nil, errors.DatabaseError("failed to create scenario", err)
	}
	return scenario, nil
}

// Get returns one of userID's scenarios
func (s *scenarioService) Get(ctx context.Context, userID, id uuid.UUID) (*models.Scenario, error) {
	scenario, err := s.repos.Scenarios.GetByID(ctx, userID, id)
	if err != nil {
		return nil, scenarioError(err, "failed to get scenario")
	}
	return scenario, nil
}

// List returns userID's scenarios, most recently updated first
func (s *scenarioService) List(ctx context.Context, userID uuid.UUID) ([]models.Scenario, error) {
	list, err := s.repos.Scenarios.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.DatabaseError("failed to list scenarios", err)
	}
	return list, nil
}

// Update replaces a scenario's name, assumptions and selection. Stored
// results are cleared until the next recalculation.
func (s *scenarioService) Update(ctx context.Context, userID, id uuid.UUID, req ScenarioRequest) (*models.Scenario, error) {
	scenario, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := applyRequest(scenario, req); err != nil {
		return nil, err
	}
	scenario.CalculatedResults = nil

	if err := s.repos.Scenarios.Update(ctx, scenario); err != nil {
		return nil, scenarioError(err, "failed to update scenario")
	}
	return scenario, nil
}

// Delete removes one of userID's scenarios
func (s *scenarioService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.repos.Scenarios.Delete(ctx, userID, id); err != nil {
		return scenarioError(err, "failed to delete scenario")
	}
	return nil
}

// Recalculate reruns the engine over the stored assumptions and stores the
// results in the scenario. Every engine call is audited against the scenario,
// and the audit rows and stored results commit together or not at all.
func (s *scenarioService) Recalculate(ctx context.Context, userID, id uuid.UUID) (*models.Scenario, error) {
	scenario, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	var assumptions ScenarioAssumptions
	if err := scenario.CustomAssumptions.Decode(&assumptions); err != nil {
		return nil, errors.ValidationError("stored assumptions are unreadable", err)
	}
	var selected []string
	if err := scenario.SelectedProcesses.Decode(&selected); err != nil {
		return nil, errors.ValidationError("stored process selection is unreadable", err)
	}

	var results *ScenarioResults
	err = s.repos.Tx.WithTransaction(ctx, func(tx *repository.Repositories) error {
		calc := s.calc.withAudit(tx.Audit)
		var err error
		if results, err = s.calculate(ctx, calc, scenario.ID, assumptions, selected); err != nil {
			return err
		}
		if calc.auditErr != nil {
			return errors.DatabaseError("failed to record scenario audit entries", calc.auditErr)
		}
		if scenario.CalculatedResults, err = models.NewJSON(results); err != nil {
			return errors.InternalError("failed to encode results", err)
		}
		if err := tx.Scenarios.Update(ctx, scenario); err != nil {
			return scenarioError(err, "failed to store scenario results")
		}
		return nil
	})
	if err != nil {
		var appErr *errors.AppError
		if stderrors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, errors.DatabaseError("failed to store scenario results", err)
	}
	s.logger.Info("Scenario recalculated", "scenario_id", scenario.ID.String(),
		"processes", len(results.Processes), "total_annual_savings", results.TotalAnnualSavings)
	return scenario, nil
}

func (s *scenarioService) calculate(ctx context.Context, calc *calculatorService, scenarioID uuid.UUID, a ScenarioAssumptions, selected []string) (*ScenarioResults, error) {
	results := &ScenarioResults{Processes: []ProcessSavingsResponse{}, CalculatedAt: nowUTC()}
	id := &scenarioID

	if a.Revenue > 0 || a.Employees > 0 {
		opp, err := calc.companyOpportunity(ctx, CompanyOpportunityRequest{
			Revenue:    a.Revenue,
			Employees:  a.Employees,
			Industry:   a.Industry,
			SGAPercent: a.SGAPercent,
		}, id)
		if err != nil {
			return nil, err
		}
		results.Opportunity = opp
	}

	keep := selection(selected)
	for _, p := range a.Processes {
		if keep != nil && !keep[strings.ToLower(strings.TrimSpace(p.ProcessType))] {
			continue
		}
		savings, err := calc.processSavings(ctx, ProcessSavingsRequest(p), id)
		if err != nil {
			return nil, err
		}
		results.Processes = append(results.Processes, *savings)
		results.TotalAnnualSavings += savings.TotalSavings
	}

	annual := float64(results.TotalAnnualSavings)
	if len(results.Processes) == 0 && results.Opportunity != nil && results.Opportunity.ConservativeTarget > 0 {
		annual = float64(results.Opportunity.ConservativeTarget)
	}
	if annual > 0 {
		roi, err := calc.fiveYearROI(ctx, FiveYearROIRequest{
			AnnualSavings:      annual,
			ImplementationCost: a.ImplementationCost,
		}, id)
		if err != nil {
			return nil, err
		}
		results.FiveYearROI = roi
	}
	return results, nil
}

func selection(selected []string) map[string]bool {
	if len(selected) == 0 {
		return nil
	}
	keep := make(map[string]bool, len(selected))
	for _, name := range selected {
		keep[strings.ToLower(strings.TrimSpace(name))] = true
	}
	return keep
}

func applyRequest(scenario *models.Scenario, req ScenarioRequest) error {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return errors.ValidationError("name is required", nil)
	}

	assumptions, err := models.NewJSON(req.Assumptions)
	if err != nil {
		return errors.ValidationError("invalid assumptions", err)
	}
	selected := req.SelectedProcesses
	if selected == nil {
		selected = []string{}
	}
	selection, err := models.NewJSON(selected)
	if err != nil {
		return errors.ValidationError("invalid process selection", err)
	}

	scenario.Name = name
	scenario.Description = strings.TrimSpace(req.Description)
	scenario.CompanyResearchID = req.CompanyResearchID
	scenario.CustomAssumptions = assumptions
	scenario.SelectedProcesses = selection
	return nil
}

func scenarioError(err error, message string) error {
	if stderrors.Is(err, repository.ErrNotFound) {
		return errors.NotFound("scenario not found", err)
	}
	return errors.DatabaseError(message, err)
}
