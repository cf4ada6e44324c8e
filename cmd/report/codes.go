package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/subcommands"

	"fieldops-insights-go/internal/aggregator"
	"fieldops-insights-go/internal/dataset"
	"fieldops-insights-go/internal/export"
	"fieldops-insights-go/internal/render"
)

// listFlag collects a repeatable string flag.
type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ",") }
func (l *listFlag) Set(v string) error {
	*l = append(*l, v)
	return nil
}

// codesCmd reports KPIs and the billing / extra-work code distribution.
type codesCmd struct {
	source      string
	technicians listFlag
	providers   listFlag
	out         string
	width       int
}

func (*codesCmd) Name() string     { return "codes" }
func (*codesCmd) Synopsis() string { return "count billing and extra-work codes of interventions" }
func (*codesCmd) Usage() string {
	return `report codes [-f <workbook>] [-tech <name>]... [-provider <name>]... [-o <file.csv|file.xlsx>]

  Displays the intervention KPIs and the code distribution, optionally
  restricted to some technicians and providers.
`
}

func (c *codesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.source, "f", envOr("INTERVENTIONS_PATH", "Canal Mai.xlsx"), "workbook path or URL")
	f.Var(&c.technicians, "tech", "keep this technician (repeatable)")
	f.Var(&c.providers, "provider", "keep this provider (repeatable)")
	f.StringVar(&c.out, "o", "", "also write the code distribution to this .csv or .xlsx file")
	f.IntVar(&c.width, "width", 120, "terminal width")
}

func (c *codesCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	snap, err := dataset.LoadAndSummarize(ctx, c.source)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading %q: %v\n", c.source, err)
		return subcommands.ExitFailure
	}
	records := dataset.Filter{Technicians: c.technicians, Providers: c.providers}.Apply(snap.Records)
	ins := aggregator.Aggregate(records)
	if c.out != "" {
		err := writeFile(c.out, func(w io.Writer) error {
			if strings.HasSuffix(strings.ToLower(c.out), ".xlsx") {
				return export.CodesXLSX(w, ins.Codes.Combined)
			}
			return export.CodesCSV(w, ins.Codes.Combined)
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %q: %v\n", c.out, err)
			return subcommands.ExitFailure
		}
	}
	out, err := render.Terminal(render.Codes(ins), c.width)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error rendering report: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Print(out)
	return subcommands.ExitSuccess
}
