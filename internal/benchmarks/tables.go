// Package benchmarks holds the reference data the ROI engine is conditioned
// on: industry SG&A ratios, per-process automation potential, cost
// assumptions, risk factors and the process allocation table.
package benchmarks

import (
	"sort"
	"strings"
)

// DefaultIndustry is the fallback industry key.
const DefaultIndustry = "Default"

// IndustryBenchmark holds SG&A-to-revenue ratios for an industry.
type IndustryBenchmark struct {
	Average     float64 `json:"average" yaml:"average"`
	Efficient   float64 `json:"efficient" yaml:"efficient"`
	Inefficient float64 `json:"inefficient" yaml:"inefficient"`
}

// AutomationPotential holds the reduction ratios AI automation achieves for a process.
type AutomationPotential struct {
	LaborReduction float64 `json:"laborReduction" yaml:"labor_reduction"`
	ErrorReduction float64 `json:"errorReduction" yaml:"error_reduction"`
	TimeReduction  float64 `json:"timeReduction" yaml:"time_reduction"`
}

// CostAssumptions are process-wide cost constants.
type CostAssumptions struct {
	AvgHourlyLaborCost           float64 `json:"avgHourlyLaborCost" yaml:"avg_hourly_labor_cost"`
	AITokenCostPer1000           float64 `json:"aiTokenCostPer1000" yaml:"ai_token_cost_per_1000"`
	ImplementationCostMultiplier float64 `json:"implementationCostMultiplier" yaml:"implementation_cost_multiplier"`
	MaintenanceCostAnnual        float64 `json:"maintenanceCostAnnual" yaml:"maintenance_cost_annual"`
	TrainingCostPerEmployee      float64 `json:"trainingCostPerEmployee" yaml:"training_cost_per_employee"`
}

// RiskFactors discount raw savings into risk-adjusted savings.
type RiskFactors struct {
	AdoptionRate     float64 `json:"adoptionRate" yaml:"adoption_rate"`
	TechnicalSuccess float64 `json:"technicalSuccess" yaml:"technical_success"`
	ChangeManagement float64 `json:"changeManagement" yaml:"change_management"`
}

// Multiplier is the product of all three factors.
func (r RiskFactors) Multiplier() float64 {
	return r.AdoptionRate * r.TechnicalSuccess * r.ChangeManagement
}

// ImplementationTimeline is the phased rollout schedule in months.
type ImplementationTimeline struct {
	Pilot        int `json:"pilot" yaml:"pilot"`
	PhaseOne     int `json:"phaseOne" yaml:"phase_one"`
	FullRollout  int `json:"fullRollout" yaml:"full_rollout"`
	Optimization int `json:"optimization" yaml:"optimization"`
}

// Confidence labels how reliable a process opportunity estimate is.
type Confidence string

const (
	ConfidenceHigh   Confidence = "High"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceLow    Confidence = "Low"
)

// ProcessAllocation is the fixed share of the conservative target assigned to a process.
type ProcessAllocation struct {
	Process    string     `json:"process" yaml:"process"`
	Allocation float64    `json:"allocation" yaml:"allocation"`
	Confidence Confidence `json:"confidence" yaml:"confidence"`
}

// Tables is one versioned set of benchmark data.
type Tables struct {
	Version           string                         `json:"version" yaml:"version"`
	Industries        map[string]IndustryBenchmark   `json:"industries" yaml:"industries"`
	Automation        map[string]AutomationPotential `json:"automationPotential" yaml:"automation"`
	DefaultAutomation AutomationPotential            `json:"defaultAutomation" yaml:"default_automation"`
	Costs             CostAssumptions                `json:"costAssumptions" yaml:"costs"`
	Risk              RiskFactors                    `json:"riskFactors" yaml:"risk"`
	Timeline          ImplementationTimeline         `json:"implementationTimeline" yaml:"timeline"`
	Allocations       []ProcessAllocation            `json:"processAllocations" yaml:"allocations"`
}

// Default returns the built-in tables. Each call returns an independent copy.
func Default() *Tables {
	return &Tables{
		Version: "2025.1",
		Industries: map[string]IndustryBenchmark{
			"Technology":            {Average: 0.35, Efficient: 0.25, Inefficient: 0.45},
			"Financial Services":    {Average: 0.40, Efficient: 0.30, Inefficient: 0.50},
			"Healthcare":            {Average: 0.30, Efficient: 0.22, Inefficient: 0.38},
			"Manufacturing":         {Average: 0.20, Efficient: 0.15, Inefficient: 0.28},
			"Retail":                {Average: 0.25, Efficient: 0.18, Inefficient: 0.32},
			"Professional Services": {Average: 0.45, Efficient: 0.35, Inefficient: 0.55},
			"Energy":                {Average: 0.15, Efficient: 0.10, Inefficient: 0.22},
			"Telecommunications":    {Average: 0.28, Efficient: 0.20, Inefficient: 0.35},
			DefaultIndustry:         {Average: 0.30, Efficient: 0.22, Inefficient: 0.38},
		},
		Automation: map[string]AutomationPotential{
			"Invoice Processing":      {LaborReduction: 0.65, ErrorReduction: 0.80, TimeReduction: 0.70},
			"Customer Support":        {LaborReduction: 0.40, ErrorReduction: 0.50, TimeReduction: 0.55},
			"Contract Review":         {LaborReduction: 0.50, ErrorReduction: 0.60, TimeReduction: 0.65},
			"Compliance Audit":        {LaborReduction: 0.35, ErrorReduction: 0.70, TimeReduction: 0.45},
			"HR Onboarding":           {LaborReduction: 0.45, ErrorReduction: 0.55, TimeReduction: 0.50},
			"Sales Forecasting":       {LaborReduction: 0.30, ErrorReduction: 0.40, TimeReduction: 0.35},
			"Data Entry":              {LaborReduction: 0.75, ErrorReduction: 0.85, TimeReduction: 0.80},
			"Report Generation":       {LaborReduction: 0.60, ErrorReduction: 0.65, TimeReduction: 0.70},
			"Email Management":        {LaborReduction: 0.35, ErrorReduction: 0.45, TimeReduction: 0.40},
			"Document Classification": {LaborReduction: 0.70, ErrorReduction: 0.75, TimeReduction: 0.75},
		},
		DefaultAutomation: AutomationPotential{LaborReduction: 0.30, ErrorReduction: 0.40, TimeReduction: 0.35},
		Costs: CostAssumptions{
			AvgHourlyLaborCost:           75,
			AITokenCostPer1000:           0.002,
			ImplementationCostMultiplier: 0.15,
			MaintenanceCostAnnual:        0.10,
			TrainingCostPerEmployee:      500,
		},
		Risk: RiskFactors{
			AdoptionRate:     0.75,
			TechnicalSuccess: 0.85,
			ChangeManagement: 0.80,
		},
		Timeline: ImplementationTimeline{
			Pilot:        2,
			PhaseOne:     4,
			FullRollout:  8,
			Optimization: 12,
		},
		Allocations: []ProcessAllocation{
			{Process: "Invoice Processing", Allocation: 0.12, Confidence: ConfidenceHigh},
			{Process: "Customer Support", Allocation: 0.18, Confidence: ConfidenceHigh},
			{Process: "Contract Review", Allocation: 0.08, Confidence: ConfidenceMedium},
			{Process: "Compliance Audit", Allocation: 0.10, Confidence: ConfidenceMedium},
			{Process: "HR Onboarding", Allocation: 0.07, Confidence: ConfidenceHigh},
			{Process: "Report Generation", Allocation: 0.15, Confidence: ConfidenceHigh},
			{Process: "Data Entry", Allocation: 0.10, Confidence: ConfidenceHigh},
			{Process: "Email Management", Allocation: 0.08, Confidence: ConfidenceMedium},
			{Process: "Document Classification", Allocation: 0.12, Confidence: ConfidenceHigh},
		},
	}
}

// BenchmarkForIndustry returns the industry stored under exactly name, or
// the Default entry.
func (t *Tables) BenchmarkForIndustry(name string) IndustryBenchmark {
	if b, ok := t.Industries[name]; ok {
		return b
	}
	return t.Industries[DefaultIndustry]
}

// CanonicalIndustry maps free-text industry names such as "technology " onto
// a table key. Exact keys win; otherwise keys are compared case-insensitively
// in sorted order. Validate guarantees at most one key can match.
func (t *Tables) CanonicalIndustry(name string) (string, bool) {
	if _, ok := t.Industries[name]; ok {
		return name, true
	}
	want := strings.TrimSpace(name)
	if want == "" {
		return "", false
	}
	for _, key := range sortedKeys(t.Industries) {
		if strings.EqualFold(key, want) {
			return key, true
		}
	}
	return "", false
}

// AutomationPotentialForProcess returns the process stored under exactly
// name, or the default ratios.
func (t *Tables) AutomationPotentialForProcess(name string) AutomationPotential {
	if p, ok := t.Automation[name]; ok {
		return p
	}
	return t.DefaultAutomation
}

// IndustryNames lists every industry key, including Default, sorted.
func (t *Tables) IndustryNames() []string {
	return sortedKeys(t.Industries)
}

// ProcessNames lists every process with known automation potential, sorted.
func (t *Tables) ProcessNames() []string {
	return sortedKeys(t.Automation)
}

// foldCollision returns two keys of m that differ only by case.
func foldCollision[V any](m map[string]V) (string, string, bool) {
	seen := make(map[string]string, len(m))
	for _, key := range sortedKeys(m) {
		folded := strings.ToLower(key)
		if prev, ok := seen[folded]; ok {
			return prev, key, true
		}
		seen[folded] = key
	}
	return "", "", false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
