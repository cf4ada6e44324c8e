package processor

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"fieldops-insights-go/internal/actionable"
	"fieldops-insights-go/internal/dataset"
	"fieldops-insights-go/internal/logger"
	"fieldops-insights-go/internal/types"
	"fieldops-insights-go/internal/variance"
)

// Request names the workbook and the two weekly sheets to compare.
type Request struct {
	Source         string   `json:"source"`
	CurrentSheet   string   `json:"current_sheet"`
	ReferenceSheet string   `json:"reference_sheet"`
	Metrics        []string `json:"metrics,omitempty"`
}

type Comparison struct {
	Request
	Variance   *variance.Table           `json:"variance"`
	Groups     map[string]*variance.Grid `json:"groups"`
	GrandMean  variance.Value            `json:"grand_mean"`
	ActionCard actionable.ActionCard     `json:"action_card"`
	DurationMs int64                     `json:"duration_ms"`
}

// Compare opens req.Source and compares its two weekly sheets.
func Compare(ctx context.Context, req Request) (Comparison, error) {
	f, err := dataset.OpenWorkbook(ctx, req.Source)
	if err != nil {
		return Comparison{Request: req}, err
	}
	defer f.Close()
	return CompareWorkbook(f, req)
}

// CompareWorkbook runs the comparison on an already open workbook.
// An empty metric list compares the standard weekly follow-up columns.
func CompareWorkbook(f *excelize.File, req Request) (Comparison, error) {
	log := logger.Component("processor").WithWorkbook(req.Source, "").
		WithField("current_sheet", req.CurrentSheet).
		WithField("reference_sheet", req.ReferenceSheet)
	start := time.Now()
	res := Comparison{Request: req}
	metrics := req.Metrics
	if len(metrics) == 0 {
		metrics = types.WeeklyMetrics
	}

	current, err := dataset.LoadWeekly(f, req.CurrentSheet, metrics)
	if err != nil {
		return res, fmt.Errorf("load current period: %w", err)
	}
	reference, err := dataset.LoadWeekly(f, req.ReferenceSheet, metrics)
	if err != nil {
		return res, fmt.Errorf("load reference period: %w", err)
	}
	table, err := variance.Compute(current, reference)
	if err != nil {
		log.WithError(err).Warn("periods cannot be compared")
		return res, err
	}

	res.Variance = table
	res.Groups = make(map[string]*variance.Grid, len(variance.Groups))
	for _, g := range variance.Groups {
		res.Groups[g.Name] = variance.GroupSeries(table, g.Metrics)
	}
	res.GrandMean = variance.GrandMean(table)
	res.ActionCard = actionable.Generate(table)
	res.DurationMs = time.Since(start).Milliseconds()
	log.WithField("weeks", len(table.Weeks())).WithField("duration_ms", res.DurationMs).Info("comparison complete")
	return res, nil
}
