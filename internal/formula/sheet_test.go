package formula

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestSheet_EvaluatesFormulas(t *testing.T) {
	s := NewSheet()
	defer s.Close()

	s.SetRow(1, 40.0, 3, 75.0, 52)
	s.SetRow(2, "=A1*B1*C1*D1")

	require.NoError(t, s.Err())
	assert.Equal(t, 468000.0, s.Number("A2"))
}

func TestSheet_PrecisionRounding(t *testing.T) {
	s := NewSheet()
	defer s.Close()

	s.SetRow(1, 0.1, 0.2)
	s.SetRow(2, "=A1+B1")

	assert.Equal(t, 0.3, s.Number("A2"))
}

func TestSheet_NonNumericIsZero(t *testing.T) {
	tests := []struct {
		name    string
		formula string
	}{
		{"division by zero", "=A1/0"},
		{"unknown function", "=NOPE(A1)"},
		{"text result", "=\"abc\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSheet()
			defer s.Close()

			s.SetRow(1, 10.0)
			s.Set("B1", tt.formula)

			_, ok := s.Value("B1")
			assert.False(t, ok)
			assert.Equal(t, 0.0, s.Number("B1"))
		})
	}
}

func TestSheet_UnsupportedValueBreaksGrid(t *testing.T) {
	s := NewSheet()
	defer s.Close()

	s.SetRow(1, 1.0, "plain text")
	s.Set("A2", "=A1")

	assert.Error(t, s.Err())
	assert.Equal(t, 0.0, s.Number("A2"))
}

func TestSheet_IsolatedPerCalculation(t *testing.T) {
	var wg sync.WaitGroup
	results := make([]float64, 32)

	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s := NewSheet()
			defer s.Close()
			s.SetRow(1, float64(i), 2.0)
			s.SetRow(2, "=A1*B1")
			results[i] = s.Number("A2")
		}(i)
	}
	wg.Wait()

	for i, got := range results {
		assert.Equal(t, float64(i*2), got)
	}
}

func TestSheet_CellsAndWorkbook(t *testing.T) {
	s := NewSheet()
	defer s.Close()

	s.SetRow(1, 2.0, 3.0)
	s.SetRow(2, "=A1*B1")

	cells := s.Cells()
	require.Len(t, cells, 3)
	assert.Equal(t, "A1", cells[0].Ref)
	assert.Equal(t, 2.0, *cells[0].Value)
	assert.Equal(t, "=A1*B1", cells[2].Formula)

	var buf bytes.Buffer
	_, err := s.WriteTo(&buf)
	require.NoError(t, err)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	formula, err := f.GetCellFormula(SheetName, "A2")
	require.NoError(t, err)
	assert.Equal(t, "A1*B1", formula)
}
