package aggregator

import (
	"sort"

	"fieldops-insights-go/internal/codes"
	"fieldops-insights-go/internal/types"
)

type TechnicianTotals struct {
	Technician string  `json:"technician"`
	STT        float64 `json:"stt"`
	RefCount   int     `json:"ref_count"`
}

type Insight struct {
	Interventions int                `json:"interventions"`
	GSETTotal     float64            `json:"gset_total"`
	STTTotal      float64            `json:"stt_total"`
	RefPXOCount   int                `json:"ref_pxo_count"`
	ByTechnician  []TechnicianTotals `json:"by_technician"`
	Codes         codes.Breakdown    `json:"codes"`
}

// Aggregate computes the dashboard KPIs over already filtered interventions.
// Only non-empty Ref PXO cells are counted.
func Aggregate(records []types.Intervention) Insight {
	ins := Insight{Interventions: len(records)}
	byTech := map[string]*TechnicianTotals{}
	for _, r := range records {
		ins.GSETTotal += r.GSET
		ins.STTTotal += r.STT
		t, ok := byTech[r.Technician]
		if !ok {
			t = &TechnicianTotals{Technician: r.Technician}
			byTech[r.Technician] = t
		}
		t.STT += r.STT
		if r.RefPXO != "" {
			ins.RefPXOCount++
			t.RefCount++
		}
	}
	ins.ByTechnician = make([]TechnicianTotals, 0, len(byTech))
	for _, t := range byTech {
		ins.ByTechnician = append(ins.ByTechnician, *t)
	}
	sort.Slice(ins.ByTechnician, func(i, j int) bool {
		return ins.ByTechnician[i].Technician < ins.ByTechnician[j].Technician
	})
	ins.Codes = codes.CountBreakdown(records)
	return ins
}
