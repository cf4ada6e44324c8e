package dataset

import (
	"context"
	"fmt"

	"fieldops-insights-go/internal/logger"
	"fieldops-insights-go/internal/types"
)

// Snapshot is the intervention workbook held in memory by the service,
// with the filter options offered to the user.
type Snapshot struct {
	Source      string               `json:"source"`
	Records     []types.Intervention `json:"-"`
	Columns     []string             `json:"columns"`
	Technicians []string             `json:"technicians"`
	Providers   []string             `json:"providers"`
}

// LoadAndSummarize reads the intervention workbook and collects the filter options.
func LoadAndSummarize(ctx context.Context, source string) (Snapshot, error) {
	log := logger.Component("dataset.summary").WithWorkbook(source, "")
	log.Info("opening intervention workbook")
	f, err := OpenWorkbook(ctx, source)
	if err != nil {
		log.WithError(err).Error("open failed")
		return Snapshot{}, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	records, columns, err := LoadInterventions(f, "")
	if err != nil {
		log.WithError(err).Error("read interventions failed")
		return Snapshot{}, fmt.Errorf("read: %w", err)
	}
	if len(records) == 0 {
		log.Error("no data rows")
		return Snapshot{}, fmt.Errorf("no data rows")
	}

	s := Snapshot{
		Source:      source,
		Records:     records,
		Columns:     columns,
		Technicians: distinct(records, func(r types.Intervention) string { return r.Technician }),
		Providers:   distinct(records, func(r types.Intervention) string { return r.Provider }),
	}
	log.WithFields(map[string]interface{}{
		"interventions": len(s.Records),
		"technicians":   len(s.Technicians),
		"providers":     len(s.Providers),
	}).Info("intervention workbook loaded")
	return s, nil
}
