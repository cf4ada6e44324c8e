package aggregator

import (
	"sort"
	"time"

	"fieldops-insights-go/internal/types"
	"fieldops-insights-go/internal/variance"
)

// DailyPoint is the OT Réalisé total of one day.
type DailyPoint struct {
	Date time.Time `json:"date"`
	Done float64   `json:"ot_done"`
}

// FollowUp is the daily activity summary of one technician.
type FollowUp struct {
	Technician    string                    `json:"technician"`
	Interventions int                       `json:"interventions"`
	Done          float64                   `json:"ot_done"`
	OK            float64                   `json:"ot_ok"`
	NOK           float64                   `json:"ot_nok"`
	States        int                       `json:"states"`
	Rates         map[string]variance.Value `json:"rates"`
	Daily         []DailyPoint              `json:"daily"`
	Detail        []types.DailyActivity     `json:"detail"`
}

// DailyRates are averaged over the rows where they are present.
var DailyRates = []string{types.ColDailySuccess, types.ColDailyFailure, types.ColDailyClosure, types.ColDailyDeferral}

// Technicians returns the sorted distinct technician names of the daily rows.
func Technicians(records []types.DailyActivity) []string {
	seen := map[string]bool{}
	var out []string
	for _, r := range records {
		if !seen[r.Technician] {
			seen[r.Technician] = true
			out = append(out, r.Technician)
		}
	}
	sort.Strings(out)
	return out
}

// TechnicianFollowUp summarizes the rows of one technician. Daily is sorted by
// ascending date and Detail by descending date. A rate with no value is undefined.
func TechnicianFollowUp(records []types.DailyActivity, technician string) FollowUp {
	fu := FollowUp{Technician: technician, Rates: make(map[string]variance.Value, len(DailyRates))}
	states := map[string]bool{}
	byDay := map[time.Time]float64{}
	rateSum := map[string]float64{}
	rateN := map[string]int{}
	for _, r := range records {
		if r.Technician != technician {
			continue
		}
		fu.Interventions++
		fu.Done += r.Values[types.ColOTDone]
		fu.OK += r.Values[types.ColOTOK]
		fu.NOK += r.Values[types.ColOTNOK]
		if r.State != "" {
			states[r.State] = true
		}
		byDay[r.Date] += r.Values[types.ColOTDone]
		for _, c := range DailyRates {
			if v, ok := r.Values[c]; ok {
				rateSum[c] += v
				rateN[c]++
			}
		}
		fu.Detail = append(fu.Detail, r)
	}
	fu.States = len(states)
	for _, c := range DailyRates {
		if rateN[c] == 0 {
			fu.Rates[c] = variance.Undefined
			continue
		}
		fu.Rates[c] = variance.Defined(rateSum[c] / float64(rateN[c]))
	}

	fu.Daily = make([]DailyPoint, 0, len(byDay))
	for d, done := range byDay {
		fu.Daily = append(fu.Daily, DailyPoint{Date: d, Done: done})
	}
	sort.Slice(fu.Daily, func(i, j int) bool { return fu.Daily[i].Date.Before(fu.Daily[j].Date) })
	sort.SliceStable(fu.Detail, func(i, j int) bool { return fu.Detail[i].Date.After(fu.Detail[j].Date) })
	return fu
}
