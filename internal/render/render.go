// Package render formats reports as markdown and renders them for the terminal.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"fieldops-insights-go/internal/aggregator"
	"fieldops-insights-go/internal/codes"
	"fieldops-insights-go/internal/processor"
	"fieldops-insights-go/internal/variance"
)

// Terminal renders markdown with glamour, wrapped at width columns.
func Terminal(md string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("create renderer: %w", err)
	}
	return r.Render(md)
}

// Comparison renders the variance report of two periods.
func Comparison(c processor.Comparison) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Variance %s vs %s\n\n", c.CurrentSheet, c.ReferenceSheet)
	varianceTable(&sb, c.Variance.Metrics(), c.Variance.Rows())
	fmt.Fprintf(&sb, "\nGrand mean: %s\n\n", cellText(c.GrandMean))
	for _, g := range variance.Groups {
		series, ok := c.Groups[g.Name]
		if !ok || len(series.Metrics()) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "## %s\n\n", g.Name)
		rows := make([]variance.Row, 0, len(series.Weeks()))
		for _, w := range series.Weeks() {
			rows = append(rows, variance.Row{Week: w, Values: series.Row(w)})
		}
		varianceTable(&sb, series.Metrics(), rows)
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "> **%s**  \n> %s  \n> %s\n", c.ActionCard.Insight, c.ActionCard.Action, c.ActionCard.Impact)
	return sb.String()
}

func varianceTable(sb *strings.Builder, metrics []string, rows []variance.Row) {
	sb.WriteString("| Semaine |")
	for _, m := range metrics {
		fmt.Fprintf(sb, " %s |", escape(m))
	}
	sb.WriteString("\n|---|")
	sb.WriteString(strings.Repeat("---:|", len(metrics)))
	sb.WriteString("\n")
	for _, r := range rows {
		fmt.Fprintf(sb, "| %s |", escape(r.Week))
		for _, m := range metrics {
			fmt.Fprintf(sb, " %s |", cellText(r.Values[m]))
		}
		sb.WriteString("\n")
	}
}

// Codes renders the KPIs and code distribution of a set of interventions.
func Codes(ins aggregator.Insight) string {
	var sb strings.Builder
	sb.WriteString("# Interventions\n\n")
	fmt.Fprintf(&sb, "- Montant GSET (€): %.2f\n", ins.GSETTotal)
	fmt.Fprintf(&sb, "- Montant STT (€): %.2f\n", ins.STTTotal)
	fmt.Fprintf(&sb, "- Nombre de Ref PXO: %d\n\n", ins.RefPXOCount)
	if len(ins.ByTechnician) > 0 {
		sb.WriteString("| Technicien | STT | Ref PXO |\n|---|---:|---:|\n")
		for _, t := range ins.ByTechnician {
			fmt.Fprintf(&sb, "| %s | %.2f | %d |\n", escape(t.Technician), t.STT, t.RefCount)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("## Codes\n\n")
	distribution(&sb, ins.Codes.Combined)
	return sb.String()
}

// FollowUp renders the daily activity summary of one technician.
func FollowUp(fu aggregator.FollowUp) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Suivi D3 %s\n\n", fu.Technician)
	fmt.Fprintf(&sb, "- Nombre d'interventions: %d\n", fu.Interventions)
	fmt.Fprintf(&sb, "- OT Réalisés: %.0f\n", fu.Done)
	fmt.Fprintf(&sb, "- OT OK / NOK: %.0f / %.0f\n", fu.OK, fu.NOK)
	fmt.Fprintf(&sb, "- Types d'État rencontrés: %d\n", fu.States)
	for _, r := range aggregator.DailyRates {
		fmt.Fprintf(&sb, "- %s: %s\n", r, cellText(fu.Rates[r]))
	}
	if len(fu.Daily) > 0 {
		sb.WriteString("\n| Date | OT Réalisé |\n|---|---:|\n")
		for _, p := range fu.Daily {
			fmt.Fprintf(&sb, "| %s | %.0f |\n", p.Date.Format("02/01/2006"), p.Done)
		}
	}
	return sb.String()
}

func distribution(sb *strings.Builder, d codes.Distribution) {
	if d.Len() == 0 {
		sb.WriteString("_no codes_\n")
		return
	}
	sb.WriteString("| Code | Nombre |\n|---|---:|\n")
	for _, e := range d.Entries() {
		fmt.Fprintf(sb, "| %s | %d |\n", escape(e.Code), e.Count)
	}
}

func cellText(v variance.Value) string {
	if !v.Valid {
		return "–"
	}
	return v.String() + "%"
}

func escape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
