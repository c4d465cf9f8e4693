package calculator

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/red11scout/blueallygenaiwebsite/internal/formula"
)

// Kind names a calculation for audit records and exports.
type Kind string

const (
	KindAnnualLaborCost    Kind = "annual_labor_cost"
	KindAutomationSavings  Kind = "automation_savings"
	KindFiveYearROI        Kind = "five_year_roi"
	KindCompanyOpportunity Kind = "company_opportunity"
)

// Input is the argument set of one engine calculation.
type Input interface {
	Kind() Kind
}

// LaborCostInput are the arguments of AnnualLaborCost.
type LaborCostInput struct {
	HoursPerWeek      float64  `json:"hoursPerWeek"`
	EmployeesInvolved float64  `json:"employeesInvolved"`
	HourlyRate        *float64 `json:"hourlyRate,omitempty"`
}

// SavingsInput are the arguments of AutomationSavings.
type SavingsInput struct {
	ProcessType      string  `json:"processType"`
	AnnualLaborCost  float64 `json:"annualLaborCost"`
	ApplyRiskFactors bool    `json:"applyRiskFactors"`
}

// ROIInput are the arguments of FiveYearROI.
type ROIInput struct {
	AnnualSavings         float64 `json:"annualSavings"`
	ImplementationCost    float64 `json:"implementationCost"`
	MaintenanceCostAnnual float64 `json:"maintenanceCostAnnual"`
}

// OpportunityInput are the arguments of CompanyOpportunity.
type OpportunityInput struct {
	Revenue    float64  `json:"revenue"`
	Employees  int      `json:"employees"`
	Industry   string   `json:"industry"`
	SGAPercent *float64 `json:"sgaPercent,omitempty"`
}

func (LaborCostInput) Kind() Kind   { return KindAnnualLaborCost }
func (SavingsInput) Kind() Kind     { return KindAutomationSavings }
func (ROIInput) Kind() Kind         { return KindFiveYearROI }
func (OpportunityInput) Kind() Kind { return KindCompanyOpportunity }

// DecodeInput restores a stored input of the given kind.
func DecodeInput(kind Kind, raw []byte) (Input, error) {
	var in Input
	switch kind {
	case KindAnnualLaborCost:
		var v LaborCostInput
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("failed to decode %s input: %w", kind, err)
		}
		in = v
	case KindAutomationSavings:
		var v SavingsInput
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("failed to decode %s input: %w", kind, err)
		}
		in = v
	case KindFiveYearROI:
		var v ROIInput
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("failed to decode %s input: %w", kind, err)
		}
		in = v
	case KindCompanyOpportunity:
		var v OpportunityInput
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("failed to decode %s input: %w", kind, err)
		}
		in = v
	default:
		return nil, fmt.Errorf("unknown calculation kind %q", kind)
	}
	return in, nil
}

// Evaluate runs the calculation described by in and returns its result.
func (e *Engine) Evaluate(in Input) (interface{}, error) {
	switch v := in.(type) {
	case LaborCostInput:
		return e.AnnualLaborCost(v.HoursPerWeek, v.EmployeesInvolved, v.HourlyRate), nil
	case SavingsInput:
		return e.AutomationSavings(v.ProcessType, v.AnnualLaborCost, v.ApplyRiskFactors), nil
	case ROIInput:
		return e.FiveYearROI(v.AnnualSavings, v.ImplementationCost, v.MaintenanceCostAnnual), nil
	case OpportunityInput:
		return e.CompanyOpportunity(v.Revenue, v.Employees, v.Industry, v.SGAPercent), nil
	default:
		return nil, fmt.Errorf("unsupported calculation input %T", in)
	}
}

// ExportWorkbook writes the exact grid behind a calculation as an .xlsx workbook.
func (e *Engine) ExportWorkbook(w io.Writer, in Input) error {
	s, err := e.sheetFor(in)
	if err != nil {
		return err
	}
	defer s.Close()

	s.Describe(fmt.Sprintf("ROI calculation: %s", in.Kind()),
		fmt.Sprintf("engine %s, benchmarks %s", Version, e.tables.Version))
	if _, err := s.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// Trace lists the cells behind a calculation.
func (e *Engine) Trace(in Input) ([]formula.Cell, error) {
	s, err := e.sheetFor(in)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return s.Cells(), nil
}

func (e *Engine) sheetFor(in Input) (*formula.Sheet, error) {
	switch v := in.(type) {
	case LaborCostInput:
		return e.laborCostSheet(v), nil
	case SavingsInput:
		return e.savingsSheet(v), nil
	case ROIInput:
		return e.roiSheet(v), nil
	case OpportunityInput:
		return e.opportunitySheet(v), nil
	default:
		return nil, fmt.Errorf("unsupported calculation input %T", in)
	}
}

func (e *Engine) laborCostSheet(in LaborCostInput) *formula.Sheet {
	rate := e.tables.Costs.AvgHourlyLaborCost
	if in.HourlyRate != nil {
		rate = *in.HourlyRate
	}

	s := formula.NewSheet()
	s.SetRow(1, in.HoursPerWeek, in.EmployeesInvolved, rate, weeksPerYear)
	s.SetRow(2, "=A1*B1*C1*D1")
	return s
}

func (e *Engine) savingsSheet(in SavingsInput) *formula.Sheet {
	p := e.tables.AutomationPotentialForProcess(in.ProcessType)

	s := formula.NewSheet()
	s.SetRow(1, in.AnnualLaborCost, p.LaborReduction, p.ErrorReduction, p.TimeReduction, e.RiskMultiplier(in.ApplyRiskFactors))
	// labor, error avoidance at 10% of labor cost, time value at 5%
	s.SetRow(2, "=A1*B1*E1", "=A1*C1*0.1*E1", "=A1*D1*0.05*E1")
	s.SetRow(3, "=A2+B2+C2")
	s.SetRow(4, "=A3*0.7")
	return s
}

func (e *Engine) roiSheet(in ROIInput) *formula.Sheet {
	s := formula.NewSheet()
	s.SetRow(1, in.AnnualSavings, in.ImplementationCost, in.MaintenanceCostAnnual, DiscountRate)
	s.SetRow(2, "=A1*0.5-B1-C1", "=A1-C1", "=A1*1.03-C1", "=A1*1.06-C1", "=A1*1.09-C1")
	s.SetRow(3, "=A2+B2+C2+D2+E2")
	s.SetRow(4, "=A2/((1+D1)^1)+B2/((1+D1)^2)+C2/((1+D1)^3)+D2/((1+D1)^4)+E2/((1+D1)^5)")
	return s
}

func (e *Engine) opportunitySheet(in OpportunityInput) *formula.Sheet {
	b := e.tables.BenchmarkForIndustry(in.Industry)
	actual := b.Average
	if in.SGAPercent != nil && *in.SGAPercent != 0 {
		actual = *in.SGAPercent
	}

	s := formula.NewSheet()
	s.SetRow(1, in.Revenue, actual, b.Efficient, ConservativeShare)
	// current cost, efficient cost, gap, conservative target
	s.SetRow(2, "=A1*B1", "=A1*C1", "=A2-B2", "=C2*D1")

	allocations := make([]interface{}, len(e.tables.Allocations))
	shares := make([]interface{}, len(e.tables.Allocations))
	for i, a := range e.tables.Allocations {
		allocations[i] = a.Allocation
		shares[i] = "=$D$2*" + cellName(i+1, 3)
	}
	s.SetRow(3, allocations...)
	s.SetRow(4, shares...)
	return s
}

func cellName(col, row int) string {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return ""
	}
	return name
}
