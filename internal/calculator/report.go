package calculator

import (
	"fmt"
	"time"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// ProjectionReport is the content of a printable five-year ROI summary.
type ProjectionReport struct {
	CompanyName           string
	AnnualSavings         float64
	ImplementationCost    float64
	MaintenanceCostAnnual float64
	Projection            Projection
	BenchmarksVersion     string
	GeneratedAt           time.Time
}

var (
	mutedColor  = &props.Color{Red: 90, Green: 90, Blue: 90}
	headerColor = &props.Color{Red: 0, Green: 51, Blue: 102}
	whiteColor  = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// RenderProjectionPDF returns a one-page PDF summarising a projection.
func RenderProjectionPDF(r ProjectionReport) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(15).
		WithTopMargin(15).
		WithRightMargin(15).
		Build()

	m := maroto.New(cfg)

	title := "AI ROI Projection"
	if r.CompanyName != "" {
		title = fmt.Sprintf("AI ROI Projection: %s", r.CompanyName)
	}
	m.AddRows(
		row.New(14).Add(
			col.New(12).Add(text.New(title, props.Text{Size: 16, Style: fontstyle.Bold, Align: align.Center})),
		),
		row.New(8).Add(
			col.New(12).Add(text.New("Generated "+r.GeneratedAt.Format("January 2, 2006"), props.Text{
				Size: 9, Align: align.Center, Color: mutedColor,
			})),
		),
		row.New(6),
	)

	addAssumptions(m, r)
	addYearTable(m, r.Projection)
	addTotals(m, r.Projection)

	m.AddRows(
		row.New(10),
		row.New(8).Add(
			col.New(12).Add(text.New(
				fmt.Sprintf("Engine %s, benchmarks %s. Figures are risk-adjusted, conservative estimates.", Version, r.BenchmarksVersion),
				props.Text{Size: 7, Align: align.Left, Color: mutedColor},
			)),
		),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return doc.GetBytes(), nil
}

func addAssumptions(m core.Maroto, r ProjectionReport) {
	label := props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Left}
	value := props.Text{Size: 10, Align: align.Right}

	for _, item := range []struct {
		name   string
		amount float64
	}{
		{"Annual savings", r.AnnualSavings},
		{"Implementation cost", r.ImplementationCost},
		{"Annual maintenance", r.MaintenanceCostAnnual},
	} {
		m.AddRows(row.New(7).Add(
			col.New(8).Add(text.New(item.name, label)),
			col.New(4).Add(text.New(FormatCurrency(item.amount, false), value)),
		))
	}
	m.AddRows(row.New(6))
}

func addYearTable(m core.Maroto, p Projection) {
	header := props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Center, Color: whiteColor}
	cell := props.Text{Size: 10, Align: align.Center}
	headerStyle := &props.Cell{BackgroundColor: headerColor}

	headers := row.New(8)
	values := row.New(8)
	for i, v := range p.Years() {
		headers.Add(col.New(2).Add(text.New(fmt.Sprintf("Year %d", i+1), header)).WithStyle(headerStyle))
		values.Add(col.New(2).Add(text.New(FormatCurrency(float64(v), false), cell)))
	}
	headers.Add(col.New(2).Add(text.New("Total", header)).WithStyle(headerStyle))
	values.Add(col.New(2).Add(text.New(FormatCurrency(float64(p.TotalROI), false), cell)))

	m.AddRows(headers, values, row.New(6))
}

func addTotals(m core.Maroto, p Projection) {
	label := props.Text{Size: 11, Style: fontstyle.Bold, Align: align.Left}
	value := props.Text{Size: 11, Style: fontstyle.Bold, Align: align.Right}

	payback := fmt.Sprintf("%d months", p.PaybackMonths)
	if p.PaybackMonths >= MaxPaybackMonths {
		payback = "60+ months"
	}

	m.AddRows(
		row.New(8).Add(
			col.New(8).Add(text.New("Net present value (10%)", label)),
			col.New(4).Add(text.New(FormatCurrency(float64(p.NPV), false), value)),
		),
		row.New(8).Add(
			col.New(8).Add(text.New("Payback period", label)),
			col.New(4).Add(text.New(payback, value)),
		),
	)
}
