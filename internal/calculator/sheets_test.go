package calculator

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/red11scout/blueallygenaiwebsite/internal/formula"
)

func TestDecodeInput_RoundTripsThroughEvaluate(t *testing.T) {
	e := Default()

	tests := []struct {
		name string
		in   Input
	}{
		{"labor cost", LaborCostInput{HoursPerWeek: 20, EmployeesInvolved: 4, HourlyRate: floatPtr(60)}},
		{"savings", SavingsInput{ProcessType: "Data Entry", AnnualLaborCost: 250000, ApplyRiskFactors: true}},
		{"roi", ROIInput{AnnualSavings: 1e6, ImplementationCost: 150000, MaintenanceCostAnnual: 15000}},
		{"opportunity", OpportunityInput{Revenue: 8e7, Employees: 640, Industry: "Healthcare"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := json.Marshal(tt.in)
			require.NoError(t, err)

			decoded, err := DecodeInput(tt.in.Kind(), raw)
			require.NoError(t, err)
			assert.Equal(t, tt.in, decoded)

			want, err := e.Evaluate(tt.in)
			require.NoError(t, err)
			got, err := e.Evaluate(decoded)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestDecodeInput_UnknownKind(t *testing.T) {
	_, err := DecodeInput("mystery", []byte(`{}`))
	assert.Error(t, err)
}

func TestExportWorkbook_ContainsFormulas(t *testing.T) {
	var buf bytes.Buffer
	err := Default().ExportWorkbook(&buf, ROIInput{AnnualSavings: 1e6, ImplementationCost: 150000, MaintenanceCostAnnual: 15000})
	require.NoError(t, err)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	year1, err := f.GetCellFormula(formula.SheetName, "A2")
	require.NoError(t, err)
	assert.Equal(t, "A1*0.5-B1-C1", year1)

	props, err := f.GetDocProps()
	require.NoError(t, err)
	assert.Contains(t, props.Title, string(KindFiveYearROI))
}

func TestTrace_ListsOpportunityGrid(t *testing.T) {
	cells, err := Default().Trace(OpportunityInput{Revenue: 1e8, Employees: 100, Industry: "Energy"})
	require.NoError(t, err)

	// 4 inputs, 4 derived figures, 9 allocations, 9 process shares
	assert.Len(t, cells, 26)
	assert.Equal(t, "=$D$2*A3", cells[17].Formula)
}

func TestRenderProjectionPDF(t *testing.T) {
	e := Default()
	report := ProjectionReport{
		CompanyName:           "Acme Corp",
		AnnualSavings:         1e6,
		ImplementationCost:    150000,
		MaintenanceCostAnnual: 15000,
		Projection:            e.FiveYearROI(1e6, 150000, 15000),
		BenchmarksVersion:     e.Tables().Version,
		GeneratedAt:           time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	}

	pdf, err := RenderProjectionPDF(report)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
}
