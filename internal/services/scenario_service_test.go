package services

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/red11scout/blueallygenaiwebsite/internal/calculator"
	"github.com/red11scout/blueallygenaiwebsite/internal/errors"
	"github.com/red11scout/blueallygenaiwebsite/internal/logger"
	"github.com/red11scout/blueallygenaiwebsite/internal/repository"
)

func newTestScenarioService() (*scenarioService, *MockAuditRepository) {
	repos, audit := newMockRepositories()
	calc := newTestCalculator(audit)
	return newScenarioService(repos, calc, logger.Nop()), audit
}

func baseScenario() ScenarioRequest {
	return ScenarioRequest{
		Name: "  Base case ",
		Assumptions: ScenarioAssumptions{
			Revenue:   1e8,
			Employees: 450,
			Industry:  "Technology",
			Processes: []ProcessAssumption{
				{ProcessType: "Invoice Processing", HoursPerWeek: 20, EmployeesInvolved: 3},
				{ProcessType: "Customer Support", HoursPerWeek: 40, EmployeesInvolved: 5},
			},
		},
	}
}

func TestScenarioService_CRUD(t *testing.T) {
	svc, _ := newTestScenarioService()
	ctx := context.Background()
	owner, other := uuid.New(), uuid.New()

	created, err := svc.Create(ctx, owner, baseScenario())
	require.NoError(t, err)
	assert.Equal(t, "Base case", created.Name)
	assert.JSONEq(t, `[]`, string(created.SelectedProcesses))

	_, err = svc.Get(ctx, other, created.ID)
	assert.Equal(t, errors.ErrCodeNotFound, errors.Code(err), "scenarios are private to their owner")

	list, err := svc.List(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	req := baseScenario()
	req.Name = "Upside"
	updated, err := svc.Update(ctx, owner, created.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "Upside", updated.Name)

	require.NoError(t, svc.Delete(ctx, owner, created.ID))
	assert.Equal(t, errors.ErrCodeNotFound, errors.Code(svc.Delete(ctx, owner, created.ID)))
}

func TestScenarioService_CreateRequiresName(t *testing.T) {
	svc, _ := newTestScenarioService()

	_, err := svc.Create(context.Background(), uuid.New(), ScenarioRequest{Name: "   "})
	assert.Equal(t, errors.ErrCodeValidationError, errors.Code(err))
}

func TestScenarioService_Recalculate(t *testing.T) {
	svc, audit := newTestScenarioService()
	ctx := context.Background()
	owner := uuid.New()

	created, err := svc.Create(ctx, owner, baseScenario())
	require.NoError(t, err)

	recalculated, err := svc.Recalculate(ctx, owner, created.ID)
	require.NoError(t, err)

	var results ScenarioResults
	require.NoError(t, recalculated.CalculatedResults.Decode(&results))

	require.NotNil(t, results.Opportunity)
	assert.Equal(t, int64(3_000_000), results.Opportunity.ConservativeTarget)
	require.Len(t, results.Processes, 2)
	assert.Equal(t, results.Processes[0].TotalSavings+results.Processes[1].TotalSavings, results.TotalAnnualSavings)

	require.NotNil(t, results.FiveYearROI)
	annual := float64(results.TotalAnnualSavings)
	want := calculator.Default().FiveYearROI(annual, annual*0.15, annual*0.15*0.1)
	assert.Equal(t, want, results.FiveYearROI.Projection)

	scoped, err := audit.List(ctx, repository.AuditFilter{ScenarioID: &created.ID})
	require.NoError(t, err)
	// one opportunity, two labor costs, two savings, one projection
	assert.Len(t, scoped, 6)

	stored, err := svc.Get(ctx, owner, created.ID)
	require.NoError(t, err)
	assert.JSONEq(t, string(recalculated.CalculatedResults), string(stored.CalculatedResults))

	tx := svc.repos.Tx.(*MockTransactionManager)
	assert.Equal(t, 1, tx.commits)
	assert.Zero(t, tx.rollbacks)
}

func TestScenarioService_RecalculateRollsBackWhenAuditFails(t *testing.T) {
	svc, audit := newTestScenarioService()
	ctx := context.Background()
	owner := uuid.New()

	created, err := svc.Create(ctx, owner, baseScenario())
	require.NoError(t, err)

	audit.recordErr = stderrors.New("audit table unavailable")
	_, err = svc.Recalculate(ctx, owner, created.ID)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeDatabaseError, errors.Code(err))

	tx := svc.repos.Tx.(*MockTransactionManager)
	assert.Equal(t, 1, tx.rollbacks)
	assert.Zero(t, tx.commits)

	stored, err := svc.Get(ctx, owner, created.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.CalculatedResults, "results are not stored without their audit trail")
}

func TestCalculatorService_WithAuditKeepsFirstFailure(t *testing.T) {
	failing := &MockAuditRepository{recordErr: stderrors.New("boom")}
	base := newTestCalculator(nil)
	strict := base.withAudit(failing)

	resp, err := strict.FiveYearROI(context.Background(), FiveYearROIRequest{AnnualSavings: 100_000})
	require.NoError(t, err, "audit failures never fail the calculation itself")
	assert.Nil(t, resp.AuditID)
	assert.EqualError(t, strict.auditErr, "boom")

	assert.Nil(t, base.audit, "the original service is untouched")
	assert.NoError(t, base.auditErr)
}

func TestScenarioService_RecalculateHonoursSelection(t *testing.T) {
	svc, _ := newTestScenarioService()
	ctx := context.Background()
	owner := uuid.New()

	req := baseScenario()
	req.SelectedProcesses = []string{"customer support"}
	created, err := svc.Create(ctx, owner, req)
	require.NoError(t, err)

	recalculated, err := svc.Recalculate(ctx, owner, created.ID)
	require.NoError(t, err)

	var results ScenarioResults
	require.NoError(t, recalculated.CalculatedResults.Decode(&results))
	require.Len(t, results.Processes, 1)
	assert.Equal(t, "Customer Support", results.Processes[0].ProcessType)
}

func TestScenarioService_RecalculateWithoutProcessesUsesTarget(t *testing.T) {
	svc, _ := newTestScenarioService()
	ctx := context.Background()
	owner := uuid.New()

	req := baseScenario()
	req.Assumptions.Processes = nil
	created, err := svc.Create(ctx, owner, req)
	require.NoError(t, err)

	recalculated, err := svc.Recalculate(ctx, owner, created.ID)
	require.NoError(t, err)

	var results ScenarioResults
	require.NoError(t, recalculated.CalculatedResults.Decode(&results))
	require.NotNil(t, results.FiveYearROI)
	assert.Equal(t, int64(450_000), results.FiveYearROI.ImplementationCost)
}

func TestScenarioService_UpdateClearsResults(t *testing.T) {
	svc, _ := newTestScenarioService()
	ctx := context.Background()
	owner := uuid.New()

	created, err := svc.Create(ctx, owner, baseScenario())
	require.NoError(t, err)
	_, err = svc.Recalculate(ctx, owner, created.ID)
	require.NoError(t, err)

	updated, err := svc.Update(ctx, owner, created.ID, baseScenario())
	require.NoError(t, err)
	assert.Nil(t, updated.CalculatedResults)
}
