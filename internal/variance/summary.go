package variance

import "fieldops-insights-go/internal/types"

// Group is a named set of related metrics shown together in trend views.
type Group struct {
	Name    string   `json:"name"`
	Metrics []string `json:"metrics"`
}

var (
	ActivityGroup  = Group{Name: "activity", Metrics: []string{types.MetricOK, types.MetricNOK, types.MetricDeferred}}
	RateGroup      = Group{Name: "rates", Metrics: []string{types.MetricSuccessRate, types.MetricFailureRate, types.MetricDeferralRate, types.MetricClosureRate}}
	FinancialGroup = Group{Name: "financial", Metrics: []string{types.MetricPlannedAmount, types.MetricActualAmount, types.MetricLossAmount}}
)

// Groups lists the indicator groups of the weekly follow-up.
var Groups = []Group{ActivityGroup, RateGroup, FinancialGroup}

// GroupByName looks up one of Groups.
func GroupByName(name string) (Group, bool) {
	for _, g := range Groups {
		if g.Name == name {
			return g, true
		}
	}
	return Group{}, false
}

// GroupSeries restricts t to the given metrics, without the AVERAGE row.
// Metrics unknown to t are skipped; the order of metrics is kept.
func GroupSeries(t *Table, metrics []string) *Grid {
	known := make(map[string]bool, len(t.metrics))
	for _, m := range t.metrics {
		known[m] = true
	}
	var keep []string
	seen := map[string]bool{}
	for _, m := range metrics {
		if known[m] && !seen[m] {
			keep = append(keep, m)
			seen[m] = true
		}
	}
	g := newGrid(keep, t.Weeks())
	for _, w := range g.weeks {
		for _, m := range keep {
			g.cells[w][m] = t.cells[w][m]
		}
	}
	return &g
}

// GrandMean is the mean of every defined weekly cell of t.
func GrandMean(t *Table) Value {
	var all []Value
	for _, w := range t.weeks {
		for _, m := range t.metrics {
			all = append(all, t.cells[w][m])
		}
	}
	return mean(all)
}

// Point is one cell of a grid in long format.
type Point struct {
	Week   string `json:"week"`
	Metric string `json:"metric"`
	Value  Value  `json:"value"`
}

// Long flattens g week by week, metric by metric, for charting.
func Long(g *Grid) []Point {
	out := make([]Point, 0, len(g.weeks)*len(g.metrics))
	for _, w := range g.weeks {
		for _, m := range g.metrics {
			out = append(out, Point{Week: w, Metric: m, Value: g.cells[w][m]})
		}
	}
	return out
}
