package dataset

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"fieldops-insights-go/internal/logger"
	"fieldops-insights-go/internal/types"
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"02/01/2006",
	"02/01/2006 15:04",
	"02-01-2006",
}

// LoadDaily reads the daily follow-up rows of sheet, or of the first sheet when
// sheet is empty. Rows without a technician name or a readable date are dropped.
func LoadDaily(f *excelize.File, sheet string) ([]types.DailyActivity, error) {
	log := logger.Component("dataset.daily").WithWorkbook("", sheet)
	header, rows, err := readSheet(f, sheet)
	if err != nil {
		return nil, err
	}
	byName := map[string]int{}
	for i, h := range header {
		if _, dup := byName[strings.ToLower(h)]; h != "" && !dup {
			byName[strings.ToLower(h)] = i
		}
	}
	col := func(name string) int {
		if i, ok := byName[strings.ToLower(name)]; ok {
			return i
		}
		return -1
	}
	nameIdx := col(types.ColDailyName)
	if nameIdx == -1 {
		nameIdx = col(types.ColDailyNameAlt)
	}
	dateIdx := col(types.ColDailyDate)
	if nameIdx == -1 || dateIdx == -1 {
		return nil, fmt.Errorf("daily sheet needs %q and %q columns", types.ColDailyName, types.ColDailyDate)
	}
	stateIdx := col(types.ColDailyState)

	var out []types.DailyActivity
	dropped := 0
	for _, r := range rows {
		name := cellAt(r, nameIdx)
		date, ok := ParseDate(cellAt(r, dateIdx))
		if name == "" || !ok {
			if !blankRow(r) {
				dropped++
			}
			continue
		}
		rec := types.DailyActivity{
			Technician: name,
			Date:       date,
			State:      cellAt(r, stateIdx),
			Values:     make(map[string]float64, len(types.DailyValueColumns)),
		}
		for _, c := range types.DailyValueColumns {
			if v, ok := ParseNumber(cellAt(r, col(c))); ok {
				rec.Values[c] = v
			}
		}
		out = append(out, rec)
	}
	if dropped > 0 {
		log.WithField("dropped", dropped).Warn("rows without name or date dropped")
	}
	log.WithField("rows", len(out)).Debug("daily sheet loaded")
	return out, nil
}

// LoadDailySource opens source, a path or an http(s) URL, and reads its daily rows.
func LoadDailySource(ctx context.Context, source, sheet string) ([]types.DailyActivity, error) {
	f, err := OpenWorkbook(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()
	return LoadDaily(f, sheet)
}

// ParseDate reads a spreadsheet date, either an Excel serial number or a
// day-first text date.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		if serial <= 0 {
			return time.Time{}, false
		}
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
