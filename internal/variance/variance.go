// Package variance compares two periods of weekly operational metrics.
//
// Each cell is the percentage change of the current period against the
// reference period for one week and one metric, clipped to [-ClipBound,
// ClipBound] and rounded to two decimals. A zero reference yields an undefined
// cell, which is carried through and left out of every mean.
package variance

import "math"

// ClipBound is the absolute limit of a variance cell, in percent.
const ClipBound = 100.0

// Compute aligns reference on the weeks of current and returns the variance table.
// It fails with *AlignmentError when reference lacks a current week and with
// *SchemaError when the metric sets differ. Extra reference weeks are ignored.
func Compute(current, reference *WeeklyTable) (*Table, error) {
	var missing []string
	for _, w := range current.weeks {
		if !reference.HasWeek(w) {
			missing = append(missing, w)
		}
	}
	if len(missing) > 0 {
		return nil, &AlignmentError{Missing: missing}
	}
	if err := checkSchema(current.metrics, reference.metrics); err != nil {
		return nil, err
	}

	t := &Table{
		Grid:    newGrid(current.Metrics(), current.Weeks()),
		average: make(map[string]Value, len(current.metrics)),
	}
	for _, w := range t.weeks {
		for _, m := range t.metrics {
			t.cells[w][m] = cell(current, reference, w, m)
		}
	}
	for _, m := range t.metrics {
		t.average[m] = mean(t.Column(m))
	}
	return t, nil
}

func cell(current, reference *WeeklyTable, week, metric string) Value {
	cur, ok := current.Get(week, metric)
	if !ok {
		return Undefined
	}
	ref, ok := reference.Get(week, metric)
	if !ok || ref == 0 {
		return Undefined
	}
	raw := (cur - ref) / ref * 100
	if math.IsNaN(raw) {
		return Undefined
	}
	// clip also bounds an overflow to ±Inf
	return Defined(round2(clip(raw)))
}

func checkSchema(current, reference []string) error {
	inCurrent := make(map[string]bool, len(current))
	for _, m := range current {
		inCurrent[m] = true
	}
	inReference := make(map[string]bool, len(reference))
	for _, m := range reference {
		inReference[m] = true
	}
	var e SchemaError
	for _, m := range current {
		if !inReference[m] {
			e.OnlyCurrent = append(e.OnlyCurrent, m)
		}
	}
	for _, m := range reference {
		if !inCurrent[m] {
			e.OnlyReference = append(e.OnlyReference, m)
		}
	}
	if len(e.OnlyCurrent) == 0 && len(e.OnlyReference) == 0 {
		return nil
	}
	return &e
}
