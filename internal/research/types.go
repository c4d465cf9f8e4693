package research

import (
	"time"

	"github.com/red11scout/blueallygenaiwebsite/internal/benchmarks"
	"github.com/red11scout/blueallygenaiwebsite/internal/calculator"
)

// Source says where a figure came from.
type Source string

const (
	SourcePublic    Source = "public"
	SourceEstimated Source = "estimated"
)

// AIMaturity grades a competitor's AI adoption.
type AIMaturity string

const (
	MaturityLeader  AIMaturity = "leader"
	MaturityAdopter AIMaturity = "adopter"
	MaturityLaggard AIMaturity = "laggard"
)

type Competitor struct {
	Name             string     `json:"name"`
	AIMaturity       AIMaturity `json:"aiMaturity"`
	KnownInitiatives []string   `json:"knownInitiatives"`
}

// rawFacts is the model's answer before sanitising. Numbers are float64 so
// "1.2e9" or "4500.0" decode without error.
type rawFacts struct {
	CompanyName         string       `json:"companyName"`
	Industry            string       `json:"industry"`
	SubIndustry         string       `json:"subIndustry"`
	Revenue             float64      `json:"revenue"`
	RevenueSource       string       `json:"revenueSource"`
	Employees           float64      `json:"employees"`
	EmployeesSource     string       `json:"employeesSource"`
	Description         string       `json:"description"`
	Competitors         []Competitor `json:"competitors"`
	PublicDataAvailable bool         `json:"publicDataAvailable"`
	EstimationNotes     []string     `json:"estimationNotes"`
}

// ProcessInsight is one of the top processes with a short rationale.
type ProcessInsight struct {
	Process     string                `json:"process"`
	Opportunity int64                 `json:"opportunity"`
	Confidence  benchmarks.Confidence `json:"confidence"`
	Rationale   string                `json:"rationale"`
}

type AIOpportunity struct {
	TotalOpportunity   int64            `json:"totalOpportunity"`
	ConservativeTarget int64            `json:"conservativeTarget"`
	TopProcesses       []ProcessInsight `json:"topProcesses"`
}

type DataQuality struct {
	OverallConfidence   benchmarks.Confidence `json:"overallConfidence"`
	PublicDataAvailable bool                  `json:"publicDataAvailable"`
	EstimationNotes     []string              `json:"estimationNotes"`
}

// Result is a researched company with its opportunity assessment.
type Result struct {
	CompanyName     string `json:"companyName"`
	Domain          string `json:"domain"`
	Description     string `json:"description,omitempty"`
	Industry        string `json:"industry"`
	SubIndustry     string `json:"subIndustry"`
	// BenchmarkIndustry is the benchmark row actually used, "Default" when
	// the reported industry is unknown.
	BenchmarkIndustry string                 `json:"benchmarkIndustry"`
	Revenue           float64                `json:"revenue"`
	RevenueSource     Source                 `json:"revenueSource"`
	Employees         int                    `json:"employees"`
	EmployeesSource   Source                 `json:"employeesSource"`
	CompanySize       calculator.CompanySize `json:"companySize"`

	SGAPercent     float64 `json:"sgaPercent"`
	IndustryAvgSGA float64 `json:"industryAvgSga"`
	AnnualSGACost  int64   `json:"annualSGACost"`

	Competitors []Competitor `json:"competitors"`

	AIOpportunity         AIOpportunity         `json:"aiOpportunity"`
	FiveYearProjection    calculator.Projection `json:"fiveYearProjection"`
	ImplementationCost    int64                 `json:"implementationCost"`
	MaintenanceCostAnnual int64                 `json:"maintenanceCostAnnual"`

	DataQuality  DataQuality `json:"dataQuality"`
	ResearchedAt time.Time   `json:"researchedAt"`
}

// QuickLookupResult validates a domain before a full research run.
type QuickLookupResult struct {
	Valid       bool   `json:"valid"`
	CompanyName string `json:"companyName,omitempty"`
	Industry    string `json:"industry,omitempty"`
}
