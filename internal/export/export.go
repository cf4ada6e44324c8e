// Package export writes report tables as CSV or XLSX downloads.
// Undefined variance cells are written as empty cells.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/xuri/excelize/v2"

	"fieldops-insights-go/internal/codes"
	"fieldops-insights-go/internal/types"
	"fieldops-insights-go/internal/variance"
)

// Sheet names of the XLSX exports.
const (
	VarianceSheet      = "Écarts"
	InterventionsSheet = "Feuille1"
	CodesSheet         = "Codes"
)

// Content types of the downloads.
const (
	CSVContentType  = "text/csv"
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// grid is a header row plus data rows; nil cells stay empty in XLSX.
type grid struct {
	header []string
	rows   [][]interface{}
}

func varianceGrid(t *variance.Table) grid {
	metrics := t.Metrics()
	g := grid{header: append([]string{types.WeekColumn}, metrics...)}
	for _, r := range t.Rows() {
		row := make([]interface{}, 0, len(metrics)+1)
		row = append(row, r.Week)
		for _, m := range metrics {
			if v, ok := r.Values[m].Get(); ok {
				row = append(row, v)
			} else {
				row = append(row, nil)
			}
		}
		g.rows = append(g.rows, row)
	}
	return g
}

// codesGrid lays the distribution out horizontally, one column per code.
func codesGrid(d codes.Distribution) grid {
	entries := d.Entries()
	g := grid{header: make([]string, 0, len(entries)+1)}
	row := make([]interface{}, 0, len(entries)+1)
	g.header = append(g.header, "")
	row = append(row, "Nombre")
	for _, e := range entries {
		g.header = append(g.header, e.Code)
		row = append(row, e.Count)
	}
	g.rows = [][]interface{}{row}
	return g
}

// interventionsGrid keeps every source column; header order is sorted
// unless columns is given.
func interventionsGrid(records []types.Intervention, columns []string) grid {
	if len(columns) == 0 {
		seen := map[string]bool{}
		for _, r := range records {
			for k := range r.Fields {
				if !seen[k] {
					seen[k] = true
					columns = append(columns, k)
				}
			}
		}
		sort.Strings(columns)
	}
	g := grid{header: columns}
	for _, r := range records {
		row := make([]interface{}, len(columns))
		for i, c := range columns {
			row[i] = r.Fields[c]
		}
		g.rows = append(g.rows, row)
	}
	return g
}

func (g grid) writeCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(g.header); err != nil {
		return err
	}
	rec := make([]string, len(g.header))
	for _, row := range g.rows {
		rec = rec[:0]
		for _, c := range row {
			rec = append(rec, csvCell(c))
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvCell(c interface{}) string {
	switch v := c.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func (g grid) writeXLSX(w io.Writer, sheet string) error {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	header := make([]interface{}, len(g.header))
	for i, h := range g.header {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, row := range g.rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	return f.Write(w)
}

func VarianceCSV(w io.Writer, t *variance.Table) error {
	return varianceGrid(t).writeCSV(w)
}

func VarianceXLSX(w io.Writer, t *variance.Table) error {
	return varianceGrid(t).writeXLSX(w, VarianceSheet)
}

func CodesCSV(w io.Writer, d codes.Distribution) error {
	return codesGrid(d).writeCSV(w)
}

func CodesXLSX(w io.Writer, d codes.Distribution) error {
	return codesGrid(d).writeXLSX(w, CodesSheet)
}

// InterventionsCSV writes the filtered detail table. columns fixes the column
// order; when empty every column seen in the records is written, sorted.
func InterventionsCSV(w io.Writer, records []types.Intervention, columns []string) error {
	return interventionsGrid(records, columns).writeCSV(w)
}

func InterventionsXLSX(w io.Writer, records []types.Intervention, columns []string) error {
	return interventionsGrid(records, columns).writeXLSX(w, InterventionsSheet)
}
