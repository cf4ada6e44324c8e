package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"fieldops-insights-go/internal/aggregator"
	"fieldops-insights-go/internal/codes"
	"fieldops-insights-go/internal/dataset"
	"fieldops-insights-go/internal/export"
	"fieldops-insights-go/internal/logger"
	"fieldops-insights-go/internal/processor"
	"fieldops-insights-go/internal/types"
	"fieldops-insights-go/internal/variance"
)

type server struct {
	cfg      config
	snapshot dataset.Snapshot
	compare  func(ctx context.Context, req processor.Request) (processor.Comparison, error)
	daily    func(ctx context.Context, source, sheet string) ([]types.DailyActivity, error)
}

func newServer(cfg config, snap dataset.Snapshot) *server {
	return &server{cfg: cfg, snapshot: snap, compare: processor.Compare, daily: dataset.LoadDailySource}
}

func (s *server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handle("health", s.health))
	mux.HandleFunc("/filters", s.handle("filters", s.filters))
	mux.HandleFunc("/kpi", s.handle("kpi", s.kpi))
	mux.HandleFunc("/codes", s.handle("codes", s.codes))
	mux.HandleFunc("/variance", s.handle("variance", s.variance))
	mux.HandleFunc("/variance/groups", s.handle("variance_groups", s.varianceGroups))
	mux.HandleFunc("/followup", s.handle("followup", s.followUp))
	mux.HandleFunc("/export/variance.csv", s.handle("export_variance", s.exportVariance(false)))
	mux.HandleFunc("/export/variance.xlsx", s.handle("export_variance", s.exportVariance(true)))
	mux.HandleFunc("/export/interventions.csv", s.handle("export_interventions", s.exportInterventions(false)))
	mux.HandleFunc("/export/interventions.xlsx", s.handle("export_interventions", s.exportInterventions(true)))
	mux.HandleFunc("/export/codes.csv", s.handle("export_codes", s.exportCodes(false)))
	mux.HandleFunc("/export/codes.xlsx", s.handle("export_codes", s.exportCodes(true)))
	return mux
}

type handlerFunc func(w http.ResponseWriter, r *http.Request, log *logrus.Entry)

// handle wires the request logger and the request id header around h.
func (s *server) handle(name string, h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reqID := logger.RequestID(r)
		w.Header().Set(logger.RequestIDHeader, reqID)
		reqLog := logger.New().WithRequest(r, reqID).WithField("handler", name)
		if r.Method != http.MethodGet {
			reqLog.Warn("method not allowed")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h(w, r, reqLog)
	}
}

func (s *server) health(w http.ResponseWriter, _ *http.Request, log *logrus.Entry) {
	log.Debug("health check")
	fmt.Fprint(w, "ok")
}

func (s *server) filters(w http.ResponseWriter, _ *http.Request, log *logrus.Entry) {
	writeJSON(w, http.StatusOK, s.snapshot, log)
}

func (s *server) filtered(r *http.Request) []types.Intervention {
	q := r.URL.Query()
	f := dataset.Filter{Technicians: q["technician"], Providers: q["provider"]}
	return f.Apply(s.snapshot.Records)
}

// searched also applies the free-text search of the detail table.
func (s *server) searched(r *http.Request) []types.Intervention {
	q := r.URL.Query()
	f := dataset.Filter{Technicians: q["technician"], Providers: q["provider"], Search: q.Get("search")}
	return f.Apply(s.snapshot.Records)
}

func (s *server) kpi(w http.ResponseWriter, r *http.Request, log *logrus.Entry) {
	records := s.filtered(r)
	log.WithField("interventions", len(records)).Info("kpi computed")
	writeJSON(w, http.StatusOK, aggregator.Aggregate(records), log)
}

func (s *server) codes(w http.ResponseWriter, r *http.Request, log *logrus.Entry) {
	b := codes.CountBreakdown(s.filtered(r))
	log.WithField("codes", b.Combined.Len()).Info("codes counted")
	writeJSON(w, http.StatusOK, struct {
		Entries []codes.Entry `json:"entries"`
		codes.Breakdown
	}{Entries: b.Combined.Entries(), Breakdown: b}, log)
}

func (s *server) comparisonRequest(r *http.Request) processor.Request {
	q := r.URL.Query()
	req := processor.Request{
		Source:         s.cfg.VariancePath,
		CurrentSheet:   s.cfg.CurrentSheet,
		ReferenceSheet: s.cfg.ReferenceSheet,
		Metrics:        q["metric"],
	}
	if v := q.Get("current"); v != "" {
		req.CurrentSheet = v
	}
	if v := q.Get("reference"); v != "" {
		req.ReferenceSheet = v
	}
	return req
}

// runComparison writes the error response itself and returns false on failure.
func (s *server) runComparison(w http.ResponseWriter, r *http.Request, log *logrus.Entry) (processor.Comparison, bool) {
	req := s.comparisonRequest(r)
	log = log.WithField("current_sheet", req.CurrentSheet).WithField("reference_sheet", req.ReferenceSheet)
	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.FetchTimeout)
	defer cancel()
	res, err := s.compare(ctx, req)
	if err == nil {
		return res, true
	}
	switch {
	case errors.Is(err, variance.ErrAlignment), errors.Is(err, variance.ErrSchema):
		log.WithError(err).Warn("comparison rejected")
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()}, log)
	default:
		log.WithError(err).Error("comparison failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()}, log)
	}
	return res, false
}

func (s *server) variance(w http.ResponseWriter, r *http.Request, log *logrus.Entry) {
	res, ok := s.runComparison(w, r, log)
	if !ok {
		return
	}
	log.WithField("duration_ms", res.DurationMs).Info("variance computed")
	writeJSON(w, http.StatusOK, res, log)
}

func (s *server) varianceGroups(w http.ResponseWriter, r *http.Request, log *logrus.Entry) {
	name := r.URL.Query().Get("group")
	group, found := variance.GroupByName(name)
	if !found {
		log.WithField("group", name).Warn("unknown group")
		http.Error(w, "unknown group", http.StatusBadRequest)
		return
	}
	res, ok := s.runComparison(w, r, log)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Group  variance.Group   `json:"group"`
		Points []variance.Point `json:"points"`
	}{Group: group, Points: variance.Long(res.Groups[group.Name])}, log)
}

// followUp summarizes the daily activity of one technician, the first one
// by name when none is given.
func (s *server) followUp(w http.ResponseWriter, r *http.Request, log *logrus.Entry) {
	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.FetchTimeout)
	defer cancel()
	records, err := s.daily(ctx, s.cfg.DailyPath, s.cfg.DailySheet)
	if err != nil {
		log.WithError(err).Error("daily follow-up load failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()}, log)
		return
	}
	techs := aggregator.Technicians(records)
	tech := r.URL.Query().Get("technician")
	if tech == "" && len(techs) > 0 {
		tech = techs[0]
	}
	fu := aggregator.TechnicianFollowUp(records, tech)
	if fu.Interventions == 0 {
		log.WithField("technician", tech).Warn("unknown technician")
		writeJSON(w, http.StatusNotFound, map[string]string{"error": fmt.Sprintf("no daily rows for technician %q", tech)}, log)
		return
	}
	log.WithField("technician", tech).WithField("rows", fu.Interventions).Info("follow-up computed")
	writeJSON(w, http.StatusOK, struct {
		Technicians []string `json:"technicians"`
		aggregator.FollowUp
	}{Technicians: techs, FollowUp: fu}, log)
}

func (s *server) exportVariance(xlsx bool) handlerFunc {
	return func(w http.ResponseWriter, r *http.Request, log *logrus.Entry) {
		res, ok := s.runComparison(w, r, log)
		if !ok {
			return
		}
		if xlsx {
			download(w, "ecarts.xlsx", func(out io.Writer) error { return export.VarianceXLSX(out, res.Variance) }, log)
			return
		}
		download(w, "ecarts.csv", func(out io.Writer) error { return export.VarianceCSV(out, res.Variance) }, log)
	}
}

func (s *server) exportInterventions(xlsx bool) handlerFunc {
	return func(w http.ResponseWriter, r *http.Request, log *logrus.Entry) {
		records := s.searched(r)
		if xlsx {
			download(w, "interventions.xlsx", func(out io.Writer) error {
				return export.InterventionsXLSX(out, records, s.snapshot.Columns)
			}, log)
			return
		}
		download(w, "interventions.csv", func(out io.Writer) error {
			return export.InterventionsCSV(out, records, s.snapshot.Columns)
		}, log)
	}
}

func (s *server) exportCodes(xlsx bool) handlerFunc {
	return func(w http.ResponseWriter, r *http.Request, log *logrus.Entry) {
		d := codes.Count(s.filtered(r))
		if xlsx {
			download(w, "codes.xlsx", func(out io.Writer) error { return export.CodesXLSX(out, d) }, log)
			return
		}
		download(w, "codes.csv", func(out io.Writer) error { return export.CodesCSV(out, d) }, log)
	}
}

// download buffers the export so a failure can still produce an error status.
func download(w http.ResponseWriter, name string, write func(io.Writer) error, log *logrus.Entry) {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		log.WithError(err).Error("export failed")
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}
	contentType := export.CSVContentType
	if strings.HasSuffix(name, ".xlsx") {
		contentType = export.XLSXContentType
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.WithError(err).Error("failed to write download")
		return
	}
	log.WithField("file", name).WithField("bytes", buf.Len()).Info("export sent")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}, log *logrus.Entry) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.WithError(err).Error("failed to write response")
	}
}
