package dataset

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"fieldops-insights-go/internal/logger"
	"fieldops-insights-go/internal/types"
	"fieldops-insights-go/internal/variance"
)

// LoadWeekly reads a weekly follow-up sheet keyed by the Semaine column.
// Only the listed metrics are kept, or every other column when metrics is empty.
// A listed metric absent from the sheet is left out of the table so that the
// comparison reports it as a schema mismatch.
func LoadWeekly(f *excelize.File, sheet string, metrics []string) (*variance.WeeklyTable, error) {
	log := logger.Component("dataset.weekly").WithWorkbook("", sheet)
	header, rows, err := readSheet(f, sheet)
	if err != nil {
		return nil, err
	}
	weekIdx := -1
	byName := map[string]int{}
	for i, h := range header {
		if weekIdx == -1 && strings.EqualFold(h, types.WeekColumn) {
			weekIdx = i
			continue
		}
		if h != "" {
			if _, dup := byName[h]; !dup {
				byName[h] = i
			}
		}
	}
	if weekIdx == -1 {
		return nil, fmt.Errorf("sheet %q has no %q column", sheet, types.WeekColumn)
	}

	var cols []string
	if len(metrics) == 0 {
		for i, h := range header {
			if i != weekIdx && h != "" && byName[h] == i {
				cols = append(cols, h)
			}
		}
	} else {
		for _, m := range metrics {
			if _, ok := byName[m]; ok {
				cols = append(cols, m)
			} else {
				log.WithField("metric", m).Warn("metric column missing")
			}
		}
	}

	t := variance.NewWeeklyTable(cols...)
	for _, r := range rows {
		week := cellAt(r, weekIdx)
		if week == "" {
			continue
		}
		if t.HasWeek(week) {
			log.WithField("week", week).Warn("duplicate week ignored")
			continue
		}
		t.AddWeek(week)
		for _, m := range cols {
			if v, ok := ParseNumber(cellAt(r, byName[m])); ok {
				t.Set(week, m, v)
			}
		}
	}
	log.WithField("weeks", len(t.Weeks())).WithField("metrics", len(cols)).Debug("weekly sheet loaded")
	return t, nil
}
