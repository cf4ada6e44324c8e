package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"fieldops-insights-go/internal/aggregator"
	"fieldops-insights-go/internal/dataset"
	"fieldops-insights-go/internal/render"
)

// followupCmd reports the daily activity of one technician.
type followupCmd struct {
	source     string
	sheet      string
	technician string
	width      int
}

func (*followupCmd) Name() string     { return "followup" }
func (*followupCmd) Synopsis() string { return "summarize the daily activity of a technician" }
func (*followupCmd) Usage() string {
	return `report followup [-f <workbook>] [-sheet <name>] [-tech <name>]

  Displays the OT totals, the mean rates and the day by day OT Réalisé of one
  technician. Without -tech the first technician by name is shown.
`
}

func (c *followupCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.source, "f", envOr("DAILY_PATH", "Canal inter.xlsx"), "workbook path or URL")
	f.StringVar(&c.sheet, "sheet", os.Getenv("DAILY_SHEET"), "sheet name; defaults to the first sheet")
	f.StringVar(&c.technician, "tech", "", "technician name")
	f.IntVar(&c.width, "width", 120, "terminal width")
}

func (c *followupCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	records, err := dataset.LoadDailySource(ctx, c.source, c.sheet)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading %q: %v\n", c.source, err)
		return subcommands.ExitFailure
	}
	tech := c.technician
	if techs := aggregator.Technicians(records); tech == "" && len(techs) > 0 {
		tech = techs[0]
	}
	fu := aggregator.TechnicianFollowUp(records, tech)
	if fu.Interventions == 0 {
		fmt.Fprintf(os.Stderr, "No daily rows for technician %q\n", tech)
		return subcommands.ExitFailure
	}
	out, err := render.Terminal(render.FollowUp(fu), c.width)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error rendering report: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Print(out)
	return subcommands.ExitSuccess
}
