package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/subcommands"

	"fieldops-insights-go/internal/export"
	"fieldops-insights-go/internal/processor"
	"fieldops-insights-go/internal/render"
)

// varianceCmd compares two weekly sheets of a workbook.
type varianceCmd struct {
	source    string
	current   string
	reference string
	metrics   string
	out       string
	width     int
}

func (*varianceCmd) Name() string     { return "variance" }
func (*varianceCmd) Synopsis() string { return "compare two periods of weekly metrics" }
func (*varianceCmd) Usage() string {
	return `report variance [-f <workbook>] [-current <sheet>] [-reference <sheet>] [-metrics a,b] [-o <file.csv|file.xlsx>]

  Computes the week by week percentage variance of the current sheet against
  the reference sheet. The workbook may be a local path or an http(s) URL.
`
}

func (c *varianceCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.source, "f", envOr("VARIANCE_PATH", "Ecart.xlsx"), "workbook path or URL")
	f.StringVar(&c.current, "current", envOr("CURRENT_SHEET", "SUIVI HEBDOMADAIRE MAI"), "sheet of the current period")
	f.StringVar(&c.reference, "reference", envOr("REFERENCE_SHEET", "SUIVI HEBDOMADAIRE Avril"), "sheet of the reference period")
	f.StringVar(&c.metrics, "metrics", "", "comma separated metric columns; defaults to the weekly follow-up columns")
	f.StringVar(&c.out, "o", "", "also write the variance table to this .csv or .xlsx file")
	f.IntVar(&c.width, "width", 120, "terminal width")
}

func (c *varianceCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	req := processor.Request{Source: c.source, CurrentSheet: c.current, ReferenceSheet: c.reference}
	if c.metrics != "" {
		for _, m := range strings.Split(c.metrics, ",") {
			if m = strings.TrimSpace(m); m != "" {
				req.Metrics = append(req.Metrics, m)
			}
		}
	}
	res, err := processor.Compare(ctx, req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.out != "" {
		err := writeFile(c.out, func(w io.Writer) error {
			if strings.HasSuffix(strings.ToLower(c.out), ".xlsx") {
				return export.VarianceXLSX(w, res.Variance)
			}
			return export.VarianceCSV(w, res.Variance)
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %q: %v\n", c.out, err)
			return subcommands.ExitFailure
		}
	}
	out, err := render.Terminal(render.Comparison(res), c.width)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error rendering report: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Print(out)
	return subcommands.ExitSuccess
}

func writeFile(name string, write func(io.Writer) error) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
