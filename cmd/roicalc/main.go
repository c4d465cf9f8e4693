// Command roicalc runs one ROI calculation from the command line and prints
// the result as JSON.
//
//	roicalc -calc process -process "Invoice Processing" -hours 20 -employees 3
//	roicalc -calc roi -savings 250000 -xlsx roi.xlsx -pdf roi.pdf
//	roicalc -calc opportunity -revenue 1e8 -employees 450 -industry Technology
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/red11scout/blueallygenaiwebsite/internal/benchmarks"
	"github.com/red11scout/blueallygenaiwebsite/internal/calculator"
	"github.com/red11scout/blueallygenaiwebsite/internal/errors"
	"github.com/red11scout/blueallygenaiwebsite/internal/services"
)

type options struct {
	calc       string
	benchmarks string
	xlsx       string
	pdf        string

	process   string
	hours     float64
	employees float64
	rate      float64
	risk      bool

	savings float64
	impl    float64
	company string

	revenue  float64
	industry string
	sga      float64
}

func main() {
	var o options
	flag.StringVar(&o.calc, "calc", "roi", "calculation: process, roi or opportunity")
	flag.StringVar(&o.benchmarks, "benchmarks", "", "YAML benchmark tables (default: built-in)")
	flag.StringVar(&o.xlsx, "xlsx", "", "write the audit workbook to this path")
	flag.StringVar(&o.pdf, "pdf", "", "write a PDF summary to this path (roi only)")

	flag.StringVar(&o.process, "process", "", "process type; empty uses the default ratios (process)")
	flag.Float64Var(&o.hours, "hours", 0, "hours per week spent on the process (process)")
	flag.Float64Var(&o.employees, "employees", 0, "employees involved (process) or company headcount (opportunity)")
	flag.Float64Var(&o.rate, "rate", 0, "hourly rate; 0 uses the benchmark rate (process)")
	flag.BoolVar(&o.risk, "risk", true, "apply risk factors (process)")

	flag.Float64Var(&o.savings, "savings", 0, "annual savings (roi)")
	flag.Float64Var(&o.impl, "impl", 0, "implementation cost; 0 uses the default share of savings (roi)")
	flag.StringVar(&o.company, "company", "", "company name for the PDF header (roi)")

	flag.Float64Var(&o.revenue, "revenue", 0, "annual revenue (opportunity)")
	flag.StringVar(&o.industry, "industry", "", "industry (opportunity)")
	flag.Float64Var(&o.sga, "sga", 0, "SG&A as a fraction of revenue; 0 uses the industry average (opportunity)")
	flag.Parse()

	if err := run(context.Background(), o); err != nil {
		fmt.Fprintln(os.Stderr, "roicalc:", describe(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, o options) error {
	engine := calculator.Default()
	if o.benchmarks != "" {
		tables, err := benchmarks.LoadFile(o.benchmarks)
		if err != nil {
			return err
		}
		engine = calculator.New(tables)
	}
	calc := services.NewServices(services.Dependencies{Engine: engine}).Calculator

	var (
		result interface{}
		input  calculator.Input
		err    error
	)
	switch strings.ToLower(o.calc) {
	case "process":
		req := services.ProcessSavingsRequest{
			ProcessType:       o.process,
			HoursPerWeek:      o.hours,
			EmployeesInvolved: o.employees,
			ApplyRiskFactors:  &o.risk,
		}
		if o.rate > 0 {
			req.HourlyRate = &o.rate
		}
		var resp *services.ProcessSavingsResponse
		resp, err = calc.ProcessSavings(ctx, req)
		if err == nil {
			result = resp
			input = calculator.SavingsInput{
				ProcessType:      o.process,
				AnnualLaborCost:  float64(resp.AnnualLaborCost),
				ApplyRiskFactors: o.risk,
			}
		}
	case "roi":
		req := services.FiveYearROIRequest{AnnualSavings: o.savings, CompanyName: o.company}
		if o.impl > 0 {
			req.ImplementationCost = &o.impl
		}
		var resp *services.FiveYearROIResponse
		resp, err = calc.FiveYearROI(ctx, req)
		if err == nil {
			result = resp
			if o.pdf != "" {
				if err := export(ctx, calc, req, services.ExportPDF, o.pdf); err != nil {
					return err
				}
			}
			if o.xlsx != "" {
				if err := export(ctx, calc, req, services.ExportXLSX, o.xlsx); err != nil {
					return err
				}
			}
		}
	case "opportunity":
		req := services.CompanyOpportunityRequest{
			Revenue:   o.revenue,
			Employees: int(o.employees),
			Industry:  o.industry,
		}
		if o.sga > 0 {
			req.SGAPercent = &o.sga
		}
		var resp *services.CompanyOpportunityResponse
		resp, err = calc.CompanyOpportunity(ctx, req)
		if err == nil {
			result = resp
			input = calculator.OpportunityInput{
				Revenue:    req.Revenue,
				Employees:  req.Employees,
				Industry:   req.Industry,
				SGAPercent: req.SGAPercent,
			}
		}
	default:
		return fmt.Errorf("unknown calculation %q", o.calc)
	}
	if err != nil {
		return err
	}

	if input != nil {
		if o.pdf != "" {
			return fmt.Errorf("-pdf is only available for -calc roi")
		}
		if o.xlsx != "" {
			if err := writeWorkbook(engine, input, o.xlsx); err != nil {
				return err
			}
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func export(ctx context.Context, calc services.CalculatorService, req services.FiveYearROIRequest, format services.ExportFormat, path string) error {
	exp, err := calc.ExportFiveYearROI(ctx, req, format)
	if err != nil {
		return err
	}
	return os.WriteFile(path, exp.Data, 0o644)
}

func writeWorkbook(engine *calculator.Engine, in calculator.Input, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := engine.ExportWorkbook(f, in); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// describe prefers the user-facing message of an application error
func describe(err error) string {
	if errors.Code(err) == errors.ErrCodeInternalError {
		return err.Error()
	}
	return errors.Message(err)
}
