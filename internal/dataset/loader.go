package dataset

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"fieldops-insights-go/internal/types"
)

// LoadInterventions reads intervention rows from sheet, or from the first sheet
// when sheet is empty, and returns them with the non-empty header names.
// Columns are located by header heuristics.
func LoadInterventions(f *excelize.File, sheet string) ([]types.Intervention, []string, error) {
	header, rows, err := readSheet(f, sheet)
	if err != nil {
		return nil, nil, err
	}
	techIdx, provIdx, billIdx, extraIdx, gsetIdx, sttIdx, refIdx := -1, -1, -1, -1, -1, -1, -1
	for i, h := range header {
		l := strings.ToLower(h)
		switch {
		case strings.Contains(l, "technicien"):
			if techIdx == -1 {
				techIdx = i
			}
		case strings.Contains(l, "prestataire"):
			if provIdx == -1 {
				provIdx = i
			}
		case strings.Contains(l, "facturation"):
			if billIdx == -1 {
				billIdx = i
			}
		case strings.Contains(l, "travaux"):
			if extraIdx == -1 {
				extraIdx = i
			}
		case l == "gset":
			gsetIdx = i
		case l == "stt":
			sttIdx = i
		case strings.Contains(l, "pxo"):
			if refIdx == -1 {
				refIdx = i
			}
		}
	}

	var out []types.Intervention
	for _, r := range rows {
		if blankRow(r) {
			continue
		}
		rec := types.Intervention{
			Technician:     cellAt(r, techIdx),
			Provider:       cellAt(r, provIdx),
			BillingCodes:   cellAt(r, billIdx),
			ExtraWorkCodes: cellAt(r, extraIdx),
			RefPXO:         cellAt(r, refIdx),
			Fields:         make(map[string]string, len(header)),
		}
		rec.GSET, _ = ParseNumber(cellAt(r, gsetIdx))
		rec.STT, _ = ParseNumber(cellAt(r, sttIdx))
		for i, h := range header {
			if h == "" {
				continue
			}
			rec.Fields[h] = cellAt(r, i)
		}
		out = append(out, rec)
	}
	var columns []string
	for _, h := range header {
		if h != "" {
			columns = append(columns, h)
		}
	}
	return out, columns, nil
}

// readSheet returns the trimmed header and the data rows of sheet.
func readSheet(f *excelize.File, sheet string) ([]string, [][]string, error) {
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, nil, fmt.Errorf("no sheets")
		}
		sheet = sheets[0]
	}
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, nil, fmt.Errorf("sheet %q not found", sheet)
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("sheet %q is empty", sheet)
	}
	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}
	return header, rows[1:], nil
}

func cellAt(r []string, idx int) string {
	if idx < 0 || idx >= len(r) {
		return ""
	}
	return strings.TrimSpace(r[idx])
}

func blankRow(r []string) bool {
	for _, c := range r {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// ParseNumber reads a spreadsheet number, tolerating currency and percent
// signs, spaces as thousands separators and either a decimal comma
// ("1.234,56") or a decimal point ("1,234.56").
func ParseNumber(s string) (float64, bool) {
	s = strings.NewReplacer("€", "", "%", "", " ", "", "\u00a0", "", "\u202f", "").Replace(strings.TrimSpace(s))
	if s == "" {
		return 0, false
	}
	// the separator appearing last is the decimal one
	comma, dot := strings.LastIndex(s, ","), strings.LastIndex(s, ".")
	switch {
	case comma > dot:
		s = strings.ReplaceAll(strings.ReplaceAll(s, ".", ""), ",", ".")
	case comma >= 0:
		s = strings.ReplaceAll(s, ",", "")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
