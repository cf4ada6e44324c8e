package types

// Intervention is one technician intervention row of the monthly workbook.
// Fields keeps the full row keyed by header so detail exports stay lossless.
type Intervention struct {
	Technician     string            `json:"technician"`
	Provider       string            `json:"provider"`
	BillingCodes   string            `json:"billing_codes,omitempty"`
	ExtraWorkCodes string            `json:"extra_work_codes,omitempty"`
	RefPXO         string            `json:"ref_pxo,omitempty"`
	GSET           float64           `json:"gset"`
	STT            float64           `json:"stt"`
	Fields         map[string]string `json:"fields,omitempty"`
}

// Column headers of the intervention workbook.
const (
	ColTechnician = "TECHNICIEN"
	ColProvider   = "PRESTATAIRE"
	ColBilling    = "FACTURATION"
	ColExtraWork  = "TRAVAUX SUPPLEMENTAIRES"
	ColGSET       = "GSET"
	ColSTT        = "STT"
	ColRefPXO     = "Ref PXO"
)

// WeekColumn keys the rows of a weekly follow-up sheet.
const WeekColumn = "Semaine"

// Metric columns of the weekly follow-up sheets.
const (
	MetricPlanned       = "Planifiés"
	MetricOK            = "Ok"
	MetricNOK           = "Nok"
	MetricDeferred      = "Reportés"
	MetricSuccessRate   = "Taux Réussite"
	MetricFailureRate   = "Taux Echec"
	MetricDeferralRate  = "Taux Report"
	MetricClosureRate   = "Taux Cloture"
	MetricPlannedAmount = "Montant prévu"
	MetricActualAmount  = "Montant réel"
	MetricLossAmount    = "Montant echec"
)

// WeeklyMetrics lists the compared metrics in sheet order.
var WeeklyMetrics = []string{
	MetricPlanned, MetricOK, MetricNOK, MetricDeferred,
	MetricSuccessRate, MetricFailureRate, MetricDeferralRate, MetricClosureRate,
	MetricPlannedAmount, MetricActualAmount, MetricLossAmount,
}
