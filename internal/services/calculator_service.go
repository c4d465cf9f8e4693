package services

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/red11scout/blueallygenaiwebsite/internal/benchmarks"
	"github.com/red11scout/blueallygenaiwebsite/internal/calculator"
	"github.com/red11scout/blueallygenaiwebsite/internal/errors"
	"github.com/red11scout/blueallygenaiwebsite/internal/logger"
	"github.com/red11scout/blueallygenaiwebsite/internal/models"
	"github.com/red11scout/blueallygenaiwebsite/internal/repository"
	"github.com/red11scout/blueallygenaiwebsite/internal/telemetry"
)

// ProcessSavingsRequest values automating one process
type ProcessSavingsRequest struct {
	ProcessType       string   `json:"processType"`
	HoursPerWeek      float64  `json:"hoursPerWeek"`
	EmployeesInvolved float64  `json:"employeesInvolved"`
	HourlyRate        *float64 `json:"hourlyRate,omitempty"`
	ApplyRiskFactors  *bool    `json:"applyRiskFactors,omitempty"`
}

// SavingsFormatted holds display strings for a ProcessSavingsResponse
type SavingsFormatted struct {
	AnnualLaborCost      string `json:"annualLaborCost"`
	LaborSavings         string `json:"laborSavings"`
	TotalSavings         string `json:"totalSavings"`
	ConservativeEstimate string `json:"conservativeEstimate"`
}

// ProcessSavingsResponse is the labor cost and savings of one process
type ProcessSavingsResponse struct {
	ProcessType     string `json:"processType"`
	AnnualLaborCost int64  `json:"annualLaborCost"`
	calculator.Savings
	Formatted SavingsFormatted `json:"formatted"`
	AuditID   *uuid.UUID       `json:"auditId,omitempty"`
}

// FiveYearROIRequest projects savings over five years. A missing or zero
// implementation cost defaults to the benchmark share of annual savings.
type FiveYearROIRequest struct {
	AnnualSavings      float64  `json:"annualSavings"`
	ImplementationCost *float64 `json:"implementationCost,omitempty"`
	CompanyName        string   `json:"companyName,omitempty"`
}

// ProjectionFormatted holds display strings for a FiveYearROIResponse
type ProjectionFormatted struct {
	Year1              string `json:"year1"`
	Year2              string `json:"year2"`
	Year3              string `json:"year3"`
	Year4              string `json:"year4"`
	Year5              string `json:"year5"`
	TotalROI           string `json:"totalROI"`
	NPV                string `json:"npv"`
	ImplementationCost string `json:"implementationCost"`
}

// FiveYearROIResponse is a projection with the costs it was computed from
type FiveYearROIResponse struct {
	calculator.Projection
	ImplementationCost    int64               `json:"implementationCost"`
	MaintenanceCostAnnual int64               `json:"maintenanceCostAnnual"`
	Formatted             ProjectionFormatted `json:"formatted"`
	AuditID               *uuid.UUID          `json:"auditId,omitempty"`
}

// CompanyOpportunityRequest sizes a company's SG&A opportunity
type CompanyOpportunityRequest struct {
	Revenue    float64  `json:"revenue"`
	Employees  int      `json:"employees"`
	Industry   string   `json:"industry"`
	SGAPercent *float64 `json:"sgaPercent,omitempty"`
}

// OpportunityFormatted holds display strings for a CompanyOpportunityResponse.
// DisplayOpportunity never shows a negative gap.
type OpportunityFormatted struct {
	CurrentSGA         string `json:"currentSGA"`
	IndustryBenchmark  string `json:"industryBenchmark"`
	SGAGap             string `json:"sgaGap"`
	TotalOpportunity   string `json:"totalOpportunity"`
	ConservativeTarget string `json:"conservativeTarget"`
	DisplayOpportunity string `json:"displayOpportunity"`
}

// CompanyOpportunityResponse carries the signed engine figures
type CompanyOpportunityResponse struct {
	calculator.Opportunity
	HasOpportunity bool                 `json:"hasOpportunity"`
	Formatted      OpportunityFormatted `json:"formatted"`
	AuditID        *uuid.UUID           `json:"auditId,omitempty"`
}

// SGABenchmarks are an industry's SG&A ratios as percentages
type SGABenchmarks struct {
	Average     string `json:"average"`
	Efficient   string `json:"efficient"`
	Inefficient string `json:"inefficient"`
}

// BenchmarksResponse describes one industry when Industry is set, and the
// full tables otherwise
type BenchmarksResponse struct {
	Version             string                                    `json:"version"`
	Industry            string                                    `json:"industry,omitempty"`
	SGABenchmarks       *SGABenchmarks                            `json:"sgaBenchmarks,omitempty"`
	Industries          []string                                  `json:"industries,omitempty"`
	AutomationPotential map[string]benchmarks.AutomationPotential `json:"automationPotential"`
	CostAssumptions     *benchmarks.CostAssumptions               `json:"costAssumptions,omitempty"`
	RiskFactors         *benchmarks.RiskFactors                   `json:"riskFactors,omitempty"`
}

// ExportFormat selects the rendering of an exported projection
type ExportFormat string

const (
	ExportXLSX ExportFormat = "xlsx"
	ExportPDF  ExportFormat = "pdf"
)

// Export is a rendered document ready to be served
type Export struct {
	Filename    string
	ContentType string
	Data        []byte
}

type calculatorService struct {
	engine  *calculator.Engine
	audit   repository.AuditLogRepository
	metrics *telemetry.Metrics
	logger  logger.Logger

	// strict keeps the first audit failure in auditErr
	strict   bool
	auditErr error
}

func newCalculatorService(engine *calculator.Engine, audit repository.AuditLogRepository, metrics *telemetry.Metrics, log logger.Logger) *calculatorService {
	return &calculatorService{engine: engine, audit: audit, metrics: metrics, logger: log}
}

// withAudit returns a copy that records into audit and keeps the first audit
// failure, so the caller can abort the surrounding transaction.
func (s *calculatorService) withAudit(audit repository.AuditLogRepository) *calculatorService {
	c := *s
	c.audit = audit
	c.strict = true
	c.auditErr = nil
	return &c
}

// ProcessSavings computes the annual labor cost of a process and the value of automating it
func (s *calculatorService) ProcessSavings(ctx context.Context, req ProcessSavingsRequest) (*ProcessSavingsResponse, error) {
	return s.processSavings(ctx, req, nil)
}

func (s *calculatorService) processSavings(ctx context.Context, req ProcessSavingsRequest, scenarioID *uuid.UUID) (resp *ProcessSavingsResponse, err error) {
	ctx, span := telemetry.StartSpan(ctx, "calculator.process_savings", attribute.String("process", req.ProcessType))
	defer func() { telemetry.EndSpan(span, err) }()

	if err := validateProcess(req); err != nil {
		return nil, err
	}

	applyRisk := true
	if req.ApplyRiskFactors != nil {
		applyRisk = *req.ApplyRiskFactors
	}

	laborIn := calculator.LaborCostInput{
		HoursPerWeek:      req.HoursPerWeek,
		EmployeesInvolved: req.EmployeesInvolved,
		HourlyRate:        req.HourlyRate,
	}
	laborCost := s.engine.AnnualLaborCost(laborIn.HoursPerWeek, laborIn.EmployeesInvolved, laborIn.HourlyRate)
	s.record(ctx, laborIn, laborCost, scenarioID)

	savingsIn := calculator.SavingsInput{
		ProcessType:      req.ProcessType,
		AnnualLaborCost:  float64(laborCost),
		ApplyRiskFactors: applyRisk,
	}
	savings := s.engine.AutomationSavings(savingsIn.ProcessType, savingsIn.AnnualLaborCost, savingsIn.ApplyRiskFactors)
	auditID := s.record(ctx, savingsIn, savings, scenarioID)

	return &ProcessSavingsResponse{
		ProcessType:     req.ProcessType,
		AnnualLaborCost: laborCost,
		Savings:         savings,
		Formatted: SavingsFormatted{
			AnnualLaborCost:      currency(laborCost),
			LaborSavings:         currency(savings.LaborSavings),
			TotalSavings:         currency(savings.TotalSavings),
			ConservativeEstimate: currency(savings.ConservativeEstimate),
		},
		AuditID: auditID,
	}, nil
}

// FiveYearROI projects net cash flow for a level of annual savings
func (s *calculatorService) FiveYearROI(ctx context.Context, req FiveYearROIRequest) (*FiveYearROIResponse, error) {
	return s.fiveYearROI(ctx, req, nil)
}

func (s *calculatorService) fiveYearROI(ctx context.Context, req FiveYearROIRequest, scenarioID *uuid.UUID) (resp *FiveYearROIResponse, err error) {
	ctx, span := telemetry.StartSpan(ctx, "calculator.five_year_roi")
	defer func() { telemetry.EndSpan(span, err) }()

	in, err := s.roiInput(req)
	if err != nil {
		return nil, err
	}

	projection := s.engine.FiveYearROI(in.AnnualSavings, in.ImplementationCost, in.MaintenanceCostAnnual)
	auditID := s.record(ctx, in, projection, scenarioID)

	return &FiveYearROIResponse{
		Projection:            projection,
		ImplementationCost:    int64(math.Floor(in.ImplementationCost + 0.5)),
		MaintenanceCostAnnual: int64(math.Floor(in.MaintenanceCostAnnual + 0.5)),
		Formatted: ProjectionFormatted{
			Year1:              currency(projection.Year1),
			Year2:              currency(projection.Year2),
			Year3:              currency(projection.Year3),
			Year4:              currency(projection.Year4),
			Year5:              currency(projection.Year5),
			TotalROI:           currency(projection.TotalROI),
			NPV:                currency(projection.NPV),
			ImplementationCost: calculator.FormatCurrency(in.ImplementationCost, false),
		},
		AuditID: auditID,
	}, nil
}

func (s *calculatorService) roiInput(req FiveYearROIRequest) (calculator.ROIInput, error) {
	if err := nonNegative("annualSavings", req.AnnualSavings); err != nil {
		return calculator.ROIInput{}, err
	}

	var implCost float64
	if req.ImplementationCost != nil {
		if err := nonNegative("implementationCost", *req.ImplementationCost); err != nil {
			return calculator.ROIInput{}, err
		}
		implCost = *req.ImplementationCost
	}
	if implCost == 0 {
		implCost = s.engine.ImplementationCost(req.AnnualSavings)
	}

	return calculator.ROIInput{
		AnnualSavings:         req.AnnualSavings,
		ImplementationCost:    implCost,
		MaintenanceCostAnnual: s.engine.MaintenanceCost(implCost),
	}, nil
}

// CompanyOpportunity estimates the company-wide SG&A automation opportunity
func (s *calculatorService) CompanyOpportunity(ctx context.Context, req CompanyOpportunityRequest) (*CompanyOpportunityResponse, error) {
	return s.companyOpportunity(ctx, req, nil)
}

func (s *calculatorService) companyOpportunity(ctx context.Context, req CompanyOpportunityRequest, scenarioID *uuid.UUID) (resp *CompanyOpportunityResponse, err error) {
	ctx, span := telemetry.StartSpan(ctx, "calculator.company_opportunity", attribute.String("industry", req.Industry))
	defer func() { telemetry.EndSpan(span, err) }()

	if err := validateOpportunity(req); err != nil {
		return nil, err
	}

	in := calculator.OpportunityInput{
		Revenue:    req.Revenue,
		Employees:  req.Employees,
		Industry:   req.Industry,
		SGAPercent: req.SGAPercent,
	}
	opp := s.engine.CompanyOpportunity(in.Revenue, in.Employees, in.Industry, in.SGAPercent)
	auditID := s.record(ctx, in, opp, scenarioID)

	display := opp.TotalOpportunity
	if display < 0 {
		display = 0
	}

	return &CompanyOpportunityResponse{
		Opportunity:    opp,
		HasOpportunity: opp.SGAGap > 0,
		Formatted: OpportunityFormatted{
			CurrentSGA:         currency(opp.CurrentSGA),
			IndustryBenchmark:  currency(opp.IndustryBenchmark),
			SGAGap:             currency(opp.SGAGap),
			TotalOpportunity:   currency(opp.TotalOpportunity),
			ConservativeTarget: currency(opp.ConservativeTarget),
			DisplayOpportunity: currency(display),
		},
		AuditID: auditID,
	}, nil
}

// Benchmarks returns one industry's SG&A ratios, or the full tables when industry is empty
func (s *calculatorService) Benchmarks(industry string) *BenchmarksResponse {
	tables := s.engine.Tables()
	resp := &BenchmarksResponse{
		Version:             tables.Version,
		AutomationPotential: tables.Automation,
	}

	industry = strings.TrimSpace(industry)
	if industry != "" {
		b := tables.BenchmarkForIndustry(industry)
		resp.Industry = industry
		resp.SGABenchmarks = &SGABenchmarks{
			Average:     calculator.FormatPercent(b.Average, 1),
			Efficient:   calculator.FormatPercent(b.Efficient, 1),
			Inefficient: calculator.FormatPercent(b.Inefficient, 1),
		}
		return resp
	}

	costs := tables.Costs
	risk := tables.Risk
	resp.Industries = tables.IndustryNames()
	resp.CostAssumptions = &costs
	resp.RiskFactors = &risk
	return resp
}

// ExportFiveYearROI renders a projection as the audit workbook or a PDF summary
func (s *calculatorService) ExportFiveYearROI(ctx context.Context, req FiveYearROIRequest, format ExportFormat) (exp *Export, err error) {
	ctx, span := telemetry.StartSpan(ctx, "calculator.export", attribute.String("format", string(format)))
	defer func() { telemetry.EndSpan(span, err) }()

	in, err := s.roiInput(req)
	if err != nil {
		return nil, err
	}

	switch format {
	case ExportXLSX:
		var buf bytes.Buffer
		if err := s.engine.ExportWorkbook(&buf, in); err != nil {
			return nil, errors.InternalError("failed to export workbook", err)
		}
		return &Export{
			Filename:    "five-year-roi.xlsx",
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Data:        buf.Bytes(),
		}, nil
	case ExportPDF:
		projection := s.engine.FiveYearROI(in.AnnualSavings, in.ImplementationCost, in.MaintenanceCostAnnual)
		data, err := calculator.RenderProjectionPDF(calculator.ProjectionReport{
			CompanyName:           req.CompanyName,
			AnnualSavings:         in.AnnualSavings,
			ImplementationCost:    in.ImplementationCost,
			MaintenanceCostAnnual: in.MaintenanceCostAnnual,
			Projection:            projection,
			BenchmarksVersion:     s.engine.Tables().Version,
			GeneratedAt:           nowUTC(),
		})
		if err != nil {
			return nil, errors.InternalError("failed to render report", err)
		}
		return &Export{Filename: "five-year-roi.pdf", ContentType: "application/pdf", Data: data}, nil
	default:
		return nil, errors.ValidationError(fmt.Sprintf("unsupported export format %q", format), nil)
	}
}

// record stores an audit entry for one engine call. Failures are logged and
// counted, never returned; a strict copy also keeps the first one.
func (s *calculatorService) record(ctx context.Context, in calculator.Input, out interface{}, scenarioID *uuid.UUID) *uuid.UUID {
	kind := string(in.Kind())
	s.metrics.RecordCalculation(ctx, kind)
	if s.audit == nil {
		return nil
	}

	input, err := models.NewJSON(in)
	if err != nil {
		s.auditFailed(ctx, kind, err)
		return nil
	}
	output, err := models.NewJSON(out)
	if err != nil {
		s.auditFailed(ctx, kind, err)
		return nil
	}

	entry := &models.AuditEntry{
		ScenarioID:         scenarioID,
		CalculationType:    kind,
		InputParameters:    input,
		OutputResults:      output,
		CalculationVersion: calculator.Version,
		EngineVersion:      s.engine.Tables().Version,
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		s.auditFailed(ctx, kind, err)
		return nil
	}
	return &entry.ID
}

func (s *calculatorService) auditFailed(ctx context.Context, kind string, err error) {
	if s.strict && s.auditErr == nil {
		s.auditErr = err
	}
	s.metrics.RecordAuditFailure(ctx, kind)
	s.logger.Error("Failed to record calculation audit entry", err, "calculation_type", kind)
}

func currency(v int64) string {
	return calculator.FormatCurrency(float64(v), false)
}

// validateProcess accepts any process name; an empty or unknown one is
// valued with the default automation ratios.
func validateProcess(req ProcessSavingsRequest) error {
	if err := nonNegative("hoursPerWeek", req.HoursPerWeek); err != nil {
		return err
	}
	if !finite(req.EmployeesInvolved) || req.EmployeesInvolved < 1 {
		return errors.ValidationError("employeesInvolved must be at least 1", nil)
	}
	if req.HourlyRate != nil {
		return nonNegative("hourlyRate", *req.HourlyRate)
	}
	return nil
}

func validateOpportunity(req CompanyOpportunityRequest) error {
	if err := nonNegative("revenue", req.Revenue); err != nil {
		return err
	}
	if req.Employees < 1 {
		return errors.ValidationError("employees must be at least 1", nil)
	}
	if req.SGAPercent != nil {
		v := *req.SGAPercent
		if !finite(v) || v < 0 || v > 1 {
			return errors.ValidationError("sgaPercent must be between 0 and 1", nil)
		}
	}
	return nil
}

func nonNegative(field string, v float64) error {
	if !finite(v) || v < 0 {
		return errors.ValidationError(field+" must be a non-negative number", nil)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
