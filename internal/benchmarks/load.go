package benchmarks

import (
	"fmt"
	"io"
	"math"
	"os"

	"gopkg.in/yaml.v2"
)

const allocationTolerance = 1e-9

// Load reads a YAML override and merges it over the built-in tables.
// Industries and processes present in the file replace or extend the
// defaults; scalar sections only change the fields they mention.
func Load(r io.Reader) (*Tables, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read benchmarks: %w", err)
	}

	tables := Default()
	if err := yaml.Unmarshal(data, tables); err != nil {
		return nil, fmt.Errorf("failed to parse benchmarks: %w", err)
	}

	if err := tables.Validate(); err != nil {
		return nil, err
	}
	return tables, nil
}

// LoadFile loads an override file from disk.
func LoadFile(path string) (*Tables, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open benchmarks file: %w", err)
	}
	defer f.Close()

	return Load(f)
}

// Validate checks the invariants the engine relies on.
func (t *Tables) Validate() error {
	if t.Version == "" {
		return fmt.Errorf("benchmarks: version is required")
	}
	if _, ok := t.Industries[DefaultIndustry]; !ok {
		return fmt.Errorf("benchmarks: %q industry is required", DefaultIndustry)
	}
	if a, b, ok := foldCollision(t.Industries); ok {
		return fmt.Errorf("benchmarks: industries %q and %q differ only by case", a, b)
	}
	if a, b, ok := foldCollision(t.Automation); ok {
		return fmt.Errorf("benchmarks: processes %q and %q differ only by case", a, b)
	}
	for name, b := range t.Industries {
		if b.Efficient > b.Average || b.Average > b.Inefficient {
			return fmt.Errorf("benchmarks: industry %q must satisfy efficient <= average <= inefficient", name)
		}
		if b.Efficient < 0 || b.Inefficient > 1 {
			return fmt.Errorf("benchmarks: industry %q ratios must be within [0,1]", name)
		}
	}

	if err := validatePotential("default", t.DefaultAutomation); err != nil {
		return err
	}
	for name, p := range t.Automation {
		if err := validatePotential(name, p); err != nil {
			return err
		}
	}

	for name, v := range map[string]float64{
		"adoption_rate":     t.Risk.AdoptionRate,
		"technical_success": t.Risk.TechnicalSuccess,
		"change_management": t.Risk.ChangeManagement,
	} {
		if !unit(v) {
			return fmt.Errorf("benchmarks: risk factor %s must be within [0,1]", name)
		}
	}

	if t.Costs.AvgHourlyLaborCost < 0 || t.Costs.ImplementationCostMultiplier < 0 || t.Costs.MaintenanceCostAnnual < 0 {
		return fmt.Errorf("benchmarks: cost assumptions must be non-negative")
	}

	var total float64
	for _, a := range t.Allocations {
		if a.Process == "" {
			return fmt.Errorf("benchmarks: allocation entries need a process name")
		}
		if a.Confidence != ConfidenceHigh && a.Confidence != ConfidenceMedium && a.Confidence != ConfidenceLow {
			return fmt.Errorf("benchmarks: allocation %q has unknown confidence %q", a.Process, a.Confidence)
		}
		total += a.Allocation
	}
	if math.Abs(total-1) > allocationTolerance {
		return fmt.Errorf("benchmarks: process allocations must sum to 1.0, got %.4f", total)
	}

	return nil
}

func validatePotential(name string, p AutomationPotential) error {
	if !unit(p.LaborReduction) || !unit(p.ErrorReduction) || !unit(p.TimeReduction) {
		return fmt.Errorf("benchmarks: automation potential %q ratios must be within [0,1]", name)
	}
	return nil
}

func unit(v float64) bool {
	return v >= 0 && v <= 1
}
