package actionable

import (
	"fmt"
	"math"

	"fieldops-insights-go/internal/variance"
)

type ActionCard struct {
	Insight string `json:"insight"`
	Action  string `json:"action"`
	Impact  string `json:"impact"`
}

// DriftThreshold is the average variance, in percent, above which a metric is flagged.
const DriftThreshold = 20.0

// Generate flags the metric whose average variance drifted the most.
func Generate(t *variance.Table) ActionCard {
	worst := ""
	highest := 0.0
	for _, m := range t.Metrics() {
		v, ok := t.Average(m).Get()
		if !ok {
			continue
		}
		if math.Abs(v) > math.Abs(highest) {
			highest = v
			worst = m
		}
	}
	if worst != "" && math.Abs(highest) >= DriftThreshold {
		direction := "up"
		if highest < 0 {
			direction = "down"
		}
		return ActionCard{
			Insight: fmt.Sprintf("%s is %s %.2f%% on average versus the reference period", worst, direction, math.Abs(highest)),
			Action:  "Review the weeks driving the change with the technicians and providers concerned",
			Impact:  "Catch operational or billing drift before month-end closing",
		}
	}
	return ActionCard{
		Insight: "No strong drift between the two periods",
		Action:  "Monitor and compare again next week",
		Impact:  "Low immediate intervention",
	}
}
