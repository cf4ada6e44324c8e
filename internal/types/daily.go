package types

import "time"

// DailyActivity is one dated row of the daily follow-up workbook.
// Values holds the numeric columns that could be read from the row.
type DailyActivity struct {
	Technician string             `json:"technician"`
	Date       time.Time          `json:"date"`
	State      string             `json:"state,omitempty"`
	Values     map[string]float64 `json:"values"`
}

// Column headers of the daily follow-up workbook.
const (
	ColDailyName     = "NOM"
	ColDailyNameAlt  = "Nom technicien"
	ColDailyDate     = "Date"
	ColDailyState    = "État"
	ColOTPlanned     = "OT planifiés"
	ColOTDone        = "OT Réalisé"
	ColOTOK          = "OT OK"
	ColOTNOK         = "OT NOK"
	ColOTDeferred    = "OT Reportes"
	ColDailySuccess  = MetricSuccessRate
	ColDailyFailure  = MetricFailureRate
	ColDailyClosure  = MetricClosureRate
	ColDailyDeferral = MetricDeferralRate
)

// DailyValueColumns lists the numeric columns read from each daily row.
var DailyValueColumns = []string{
	ColOTPlanned, ColOTDone, ColOTOK, ColOTNOK, ColOTDeferred,
	ColDailySuccess, ColDailyFailure, ColDailyClosure, ColDailyDeferral,
}
