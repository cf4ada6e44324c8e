package variance

import (
	"encoding/json"
	"math"
)

// AverageKey is the synthetic row holding per-metric means.
const AverageKey = "AVERAGE"

// WeeklyTable holds one period of weekly metrics, week keys in insertion order.
type WeeklyTable struct {
	metrics []string
	weeks   []string
	rows    map[string]map[string]float64
}

// NewWeeklyTable returns an empty table with the given metric columns.
func NewWeeklyTable(metrics ...string) *WeeklyTable {
	t := &WeeklyTable{rows: map[string]map[string]float64{}}
	for _, m := range metrics {
		t.addMetric(m)
	}
	return t
}

func (t *WeeklyTable) addMetric(m string) {
	for _, have := range t.metrics {
		if have == m {
			return
		}
	}
	t.metrics = append(t.metrics, m)
}

// AddWeek registers a week with no values yet.
func (t *WeeklyTable) AddWeek(week string) {
	if _, ok := t.rows[week]; ok {
		return
	}
	t.weeks = append(t.weeks, week)
	t.rows[week] = map[string]float64{}
}

// Set stores a value, registering the week and metric if needed.
// NaN leaves the cell empty.
func (t *WeeklyTable) Set(week, metric string, v float64) {
	t.AddWeek(week)
	t.addMetric(metric)
	if math.IsNaN(v) {
		return
	}
	t.rows[week][metric] = v
}

// Get returns the value of a cell and whether it is present.
func (t *WeeklyTable) Get(week, metric string) (float64, bool) {
	v, ok := t.rows[week][metric]
	return v, ok
}

func (t *WeeklyTable) HasWeek(week string) bool {
	_, ok := t.rows[week]
	return ok
}

func (t *WeeklyTable) Weeks() []string   { return append([]string(nil), t.weeks...) }
func (t *WeeklyTable) Metrics() []string { return append([]string(nil), t.metrics...) }

// Grid is a week by metric table of variance cells.
type Grid struct {
	metrics []string
	weeks   []string
	cells   map[string]map[string]Value
}

func newGrid(metrics, weeks []string) Grid {
	g := Grid{
		metrics: metrics,
		weeks:   weeks,
		cells:   make(map[string]map[string]Value, len(weeks)),
	}
	for _, w := range weeks {
		g.cells[w] = make(map[string]Value, len(metrics))
	}
	return g
}

func (g *Grid) Metrics() []string { return append([]string(nil), g.metrics...) }
func (g *Grid) Weeks() []string   { return append([]string(nil), g.weeks...) }

// Cell returns Undefined for unknown weeks or metrics.
func (g *Grid) Cell(week, metric string) Value {
	return g.cells[week][metric]
}

// Row returns a copy of one week's cells.
func (g *Grid) Row(week string) map[string]Value {
	row, ok := g.cells[week]
	if !ok {
		return nil
	}
	return copyRow(row)
}

func copyRow(row map[string]Value) map[string]Value {
	out := make(map[string]Value, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}

// Column returns one metric's cells in week order.
func (g *Grid) Column(metric string) []Value {
	out := make([]Value, len(g.weeks))
	for i, w := range g.weeks {
		out[i] = g.cells[w][metric]
	}
	return out
}

// Row is one week of a Grid, or the AVERAGE row of a Table.
type Row struct {
	Week   string           `json:"week"`
	Values map[string]Value `json:"values"`
}

type jsonGrid struct {
	Metrics []string `json:"metrics"`
	Rows    []Row    `json:"rows"`
}

func (g *Grid) rows() []Row {
	rows := make([]Row, 0, len(g.weeks)+1)
	for _, w := range g.weeks {
		rows = append(rows, Row{Week: w, Values: g.cells[w]})
	}
	return rows
}

func (g *Grid) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonGrid{Metrics: g.metrics, Rows: g.rows()})
}

// Table is the result of Compute: one row per current week plus the AVERAGE row.
type Table struct {
	Grid
	average map[string]Value
}

// Cell also resolves AverageKey, which shadows a week of the same name.
// Use Rows to walk a table whose weeks may include that key.
func (t *Table) Cell(week, metric string) Value {
	if week == AverageKey {
		return t.average[metric]
	}
	return t.Grid.Cell(week, metric)
}

// Row also resolves AverageKey.
func (t *Table) Row(week string) map[string]Value {
	if week != AverageKey {
		return t.Grid.Row(week)
	}
	return copyRow(t.average)
}

// Average returns the mean variance of metric across the defined weeks.
func (t *Table) Average(metric string) Value {
	return t.average[metric]
}

// Keys lists the week keys followed by AverageKey.
func (t *Table) Keys() []string {
	return append(t.Weeks(), AverageKey)
}

// Rows returns copies of the week rows in order followed by the AVERAGE row.
func (t *Table) Rows() []Row {
	rows := append(t.rows(), Row{Week: AverageKey, Values: t.average})
	for i := range rows {
		rows[i].Values = copyRow(rows[i].Values)
	}
	return rows
}

func (t *Table) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonGrid{Metrics: t.metrics, Rows: t.Rows()})
}
