// Package calculator turns company and process inputs into cost, savings
// and five-year ROI figures.
//
// Every monetary computation runs through a fresh formula.Sheet so the grid
// behind any figure can be exported and re-checked. Engine methods are pure:
// they never perform I/O and never fail; unknown industries and processes
// degrade to the benchmark defaults and unresolvable cells count as zero.
package calculator

import (
	"math"
	"sort"

	"github.com/red11scout/blueallygenaiwebsite/internal/benchmarks"
)

// Version is recorded with every audited calculation.
const Version = "1.0.0"

const (
	// PaybackSentinel marks a projection whose monthly net benefit is not positive.
	PaybackSentinel = 999
	// MaxPaybackMonths caps the reported payback period.
	MaxPaybackMonths = 60
	// DiscountRate is the annual rate used for NPV.
	DiscountRate = 0.10
	// ConservativeShare of the SG&A gap AI is expected to address.
	ConservativeShare = 0.30
	// ConservativeEstimateShare of total savings reported as the conservative estimate.
	ConservativeEstimateShare = 0.70
	weeksPerYear              = 52
)

// CompanySize buckets a company by headcount.
type CompanySize string

const (
	SizeSmall      CompanySize = "small"
	SizeMedium     CompanySize = "medium"
	SizeLarge      CompanySize = "large"
	SizeEnterprise CompanySize = "enterprise"
)

// Savings is the annual value of automating one process.
type Savings struct {
	LaborSavings         int64 `json:"laborSavings"`
	ErrorReductionValue  int64 `json:"errorReductionValue"`
	TimeValue            int64 `json:"timeValue"`
	TotalSavings         int64 `json:"totalSavings"`
	ConservativeEstimate int64 `json:"conservativeEstimate"`
}

// Projection is a five-year net cash flow projection.
type Projection struct {
	Year1         int64 `json:"year1"`
	Year2         int64 `json:"year2"`
	Year3         int64 `json:"year3"`
	Year4         int64 `json:"year4"`
	Year5         int64 `json:"year5"`
	TotalROI      int64 `json:"totalROI"`
	PaybackMonths int   `json:"paybackMonths"`
	NPV           int64 `json:"npv"`
}

// Years returns the yearly figures in order.
func (p Projection) Years() []int64 {
	return []int64{p.Year1, p.Year2, p.Year3, p.Year4, p.Year5}
}

// ProcessOpportunity is one process's share of the conservative target.
type ProcessOpportunity struct {
	Process     string                `json:"process"`
	Opportunity int64                 `json:"opportunity"`
	Confidence  benchmarks.Confidence `json:"confidence"`
}

// Opportunity is the company-wide SG&A automation opportunity.
// SGAGap and TotalOpportunity are signed: a company already below the
// efficient benchmark has a negative gap.
type Opportunity struct {
	CurrentSGA         int64                `json:"currentSGA"`
	IndustryBenchmark  int64                `json:"industryBenchmark"`
	SGAGap             int64                `json:"sgaGap"`
	TotalOpportunity   int64                `json:"totalOpportunity"`
	ConservativeTarget int64                `json:"conservativeTarget"`
	CompanySize        CompanySize          `json:"companySize"`
	ProcessBreakdown   []ProcessOpportunity `json:"processBreakdown"`
}

// TopProcesses returns the n largest process opportunities. Ties keep
// allocation-table order.
func (o Opportunity) TopProcesses(n int) []ProcessOpportunity {
	sorted := make([]ProcessOpportunity, len(o.ProcessBreakdown))
	copy(sorted, o.ProcessBreakdown)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Opportunity > sorted[j].Opportunity
	})
	if n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

// Engine runs calculations against one set of benchmark tables.
type Engine struct {
	tables *benchmarks.Tables
}

// New creates an engine. A nil tables argument selects the built-in tables.
func New(tables *benchmarks.Tables) *Engine {
	if tables == nil {
		tables = benchmarks.Default()
	}
	return &Engine{tables: tables}
}

// Tables exposes the benchmark tables the engine was built with.
func (e *Engine) Tables() *benchmarks.Tables {
	return e.tables
}

// ClassifyCompanySize buckets a headcount; boundary values belong to the upper bucket.
func ClassifyCompanySize(employees int) CompanySize {
	switch {
	case employees < 100:
		return SizeSmall
	case employees < 1000:
		return SizeMedium
	case employees < 10000:
		return SizeLarge
	default:
		return SizeEnterprise
	}
}

// AnnualLaborCost is hours × employees × hourly rate × 52. A nil rate uses
// the average hourly labor cost assumption.
func (e *Engine) AnnualLaborCost(hoursPerWeek, employeesInvolved float64, hourlyRate *float64) int64 {
	s := e.laborCostSheet(LaborCostInput{
		HoursPerWeek:      hoursPerWeek,
		EmployeesInvolved: employeesInvolved,
		HourlyRate:        hourlyRate,
	})
	defer s.Close()

	return roundMoney(s.Number("A2"))
}

// AutomationSavings values the automation of one process. With applyRisk
// the raw figures are discounted by the combined risk multiplier.
func (e *Engine) AutomationSavings(processType string, annualLaborCost float64, applyRisk bool) Savings {
	s := e.savingsSheet(SavingsInput{
		ProcessType:      processType,
		AnnualLaborCost:  annualLaborCost,
		ApplyRiskFactors: applyRisk,
	})
	defer s.Close()

	return Savings{
		LaborSavings:         roundMoney(s.Number("A2")),
		ErrorReductionValue:  roundMoney(s.Number("B2")),
		TimeValue:            roundMoney(s.Number("C2")),
		TotalSavings:         roundMoney(s.Number("A3")),
		ConservativeEstimate: roundMoney(s.Number("A4")),
	}
}

// FiveYearROI projects net cash flow over five years: 50% of savings in
// year one against the full implementation cost, then full savings growing
// 3% a year, maintenance charged every year.
func (e *Engine) FiveYearROI(annualSavings, implementationCost, maintenanceCostAnnual float64) Projection {
	s := e.roiSheet(ROIInput{
		AnnualSavings:         annualSavings,
		ImplementationCost:    implementationCost,
		MaintenanceCostAnnual: maintenanceCostAnnual,
	})
	defer s.Close()

	return Projection{
		Year1:         roundMoney(s.Number("A2")),
		Year2:         roundMoney(s.Number("B2")),
		Year3:         roundMoney(s.Number("C2")),
		Year4:         roundMoney(s.Number("D2")),
		Year5:         roundMoney(s.Number("E2")),
		TotalROI:      roundMoney(s.Number("A3")),
		PaybackMonths: PaybackMonths(annualSavings, implementationCost, maintenanceCostAnnual),
		NPV:           roundMoney(s.Number("A4")),
	}
}

// PaybackMonths is the implementation cost divided by the year-one monthly
// net benefit, rounded up and capped at MaxPaybackMonths.
func PaybackMonths(annualSavings, implementationCost, maintenanceCostAnnual float64) int {
	monthly := (annualSavings*0.5 - maintenanceCostAnnual) / 12
	months := float64(PaybackSentinel)
	if monthly > 0 {
		months = math.Ceil(implementationCost / monthly)
	}
	if months > MaxPaybackMonths {
		return MaxPaybackMonths
	}
	return int(months)
}

// CompanyOpportunity estimates the SG&A gap against the industry's efficient
// benchmark and splits the conservative target across the allocation table.
// A nil or zero sgaOverride uses the industry average.
func (e *Engine) CompanyOpportunity(revenue float64, employees int, industry string, sgaOverride *float64) Opportunity {
	in := OpportunityInput{
		Revenue:    revenue,
		Employees:  employees,
		Industry:   industry,
		SGAPercent: sgaOverride,
	}
	s := e.opportunitySheet(in)
	defer s.Close()

	breakdown := make([]ProcessOpportunity, len(e.tables.Allocations))
	for i, a := range e.tables.Allocations {
		breakdown[i] = ProcessOpportunity{
			Process:     a.Process,
			Opportunity: roundMoney(s.Number(cellName(i+1, 4))),
			Confidence:  a.Confidence,
		}
	}

	gap := roundMoney(s.Number("C2"))
	return Opportunity{
		CurrentSGA:         roundMoney(s.Number("A2")),
		IndustryBenchmark:  roundMoney(s.Number("B2")),
		SGAGap:             gap,
		TotalOpportunity:   gap,
		ConservativeTarget: roundMoney(s.Number("D2")),
		CompanySize:        ClassifyCompanySize(employees),
		ProcessBreakdown:   breakdown,
	}
}

// ImplementationCost is the default implementation cost for a level of annual savings.
func (e *Engine) ImplementationCost(annualSavings float64) float64 {
	return annualSavings * e.tables.Costs.ImplementationCostMultiplier
}

// MaintenanceCost is the annual maintenance cost for an implementation cost.
func (e *Engine) MaintenanceCost(implementationCost float64) float64 {
	return implementationCost * e.tables.Costs.MaintenanceCostAnnual
}

// RiskMultiplier returns the combined risk discount, or 1 when risk is not applied.
func (e *Engine) RiskMultiplier(applyRisk bool) float64 {
	if !applyRisk {
		return 1
	}
	return e.tables.Risk.Multiplier()
}

// roundMoney rounds half up, matching spreadsheet and browser rounding of
// whole currency units.
func roundMoney(v float64) int64 {
	return int64(math.Floor(v + 0.5))
}

var defaultEngine = New(nil)

// Default returns an engine over the built-in tables.
func Default() *Engine {
	return defaultEngine
}
