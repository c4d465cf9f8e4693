// Package formula evaluates calculation grids with a spreadsheet engine.
//
// A Sheet owns its own workbook. It is not safe for concurrent use and is
// never shared between calculations; callers create one per calculation and
// close it when done.
package formula

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Precision is the number of decimal places every evaluated cell is rounded
// to before it is handed back to callers.
const Precision = 10

// SheetName is the worksheet that holds calculation cells.
const SheetName = "Calculations"

// Cell is one populated cell of a calculation grid.
type Cell struct {
	Ref     string   `json:"ref"`
	Value   *float64 `json:"value,omitempty"`
	Formula string   `json:"formula,omitempty"`
}

// Sheet is an isolated calculation grid.
type Sheet struct {
	file  *excelize.File
	cells []Cell
	err   error
}

// NewSheet creates an empty grid backed by a fresh workbook.
func NewSheet() *Sheet {
	f := excelize.NewFile()
	s := &Sheet{file: f}
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		s.err = fmt.Errorf("failed to name sheet: %w", err)
	}
	return s
}

// SetRow fills row (1-based) from column A onwards. Strings starting with
// "=" are formulas; numbers are literal values.
func (s *Sheet) SetRow(row int, values ...interface{}) {
	for i, v := range values {
		ref, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			s.fail(fmt.Errorf("invalid cell at row %d col %d: %w", row, i+1, err))
			return
		}
		s.Set(ref, v)
	}
}

// Set writes a value or formula into a single cell.
func (s *Sheet) Set(ref string, v interface{}) {
	switch val := v.(type) {
	case string:
		if !strings.HasPrefix(val, "=") {
			s.fail(fmt.Errorf("cell %s: text values are not supported", ref))
			return
		}
		if err := s.file.SetCellFormula(SheetName, ref, strings.TrimPrefix(val, "=")); err != nil {
			s.fail(fmt.Errorf("cell %s: %w", ref, err))
			return
		}
		s.cells = append(s.cells, Cell{Ref: ref, Formula: val})
	case float64:
		s.setFloat(ref, val)
	case int:
		s.setFloat(ref, float64(val))
	case int64:
		s.setFloat(ref, float64(val))
	default:
		s.fail(fmt.Errorf("cell %s: unsupported value type %T", ref, v))
	}
}

func (s *Sheet) setFloat(ref string, v float64) {
	if err := s.file.SetCellFloat(SheetName, ref, v, -1, 64); err != nil {
		s.fail(fmt.Errorf("cell %s: %w", ref, err))
		return
	}
	val := v
	s.cells = append(s.cells, Cell{Ref: ref, Value: &val})
}

func (s *Sheet) fail(err error) {
	if s.err == nil {
		s.err = err
	}
}

// Err reports the first error raised while populating the grid.
func (s *Sheet) Err() error {
	return s.err
}

// Value evaluates a cell. ok is false when the grid is broken or the cell
// does not resolve to a finite number.
func (s *Sheet) Value(ref string) (float64, bool) {
	if s.err != nil {
		return 0, false
	}
	raw, err := s.file.CalcCellValue(SheetName, ref, excelize.Options{RawCellValue: true})
	if err != nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return roundPrecision(v), true
}

// Number evaluates a cell, treating anything non-numeric as 0.
func (s *Sheet) Number(ref string) float64 {
	v, _ := s.Value(ref)
	return v
}

// Cells lists every populated cell in the order it was written.
func (s *Sheet) Cells() []Cell {
	out := make([]Cell, len(s.cells))
	copy(out, s.cells)
	return out
}

// Describe sets the workbook title and description shown by spreadsheet apps.
func (s *Sheet) Describe(title, description string) {
	if err := s.file.SetDocProps(&excelize.DocProperties{
		Title:       title,
		Description: description,
		Creator:     "roi-calculator",
	}); err != nil {
		s.fail(fmt.Errorf("failed to set workbook properties: %w", err))
	}
}

// WriteTo serialises the grid as an .xlsx workbook.
func (s *Sheet) WriteTo(w io.Writer) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	return s.file.WriteTo(w)
}

// Close releases the workbook.
func (s *Sheet) Close() error {
	return s.file.Close()
}

func roundPrecision(v float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', Precision, 64), 64)
	if err != nil {
		return v
	}
	return r
}
