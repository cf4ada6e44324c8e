package dataset

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"fieldops-insights-go/internal/types"
)

type sheet struct {
	name string
	rows [][]interface{}
}

func newWorkbook(t *testing.T, sheets ...sheet) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	t.Cleanup(func() { _ = f.Close() })
	for i, s := range sheets {
		if i == 0 {
			require.NoError(t, f.SetSheetName(f.GetSheetName(0), s.name))
		} else {
			_, err := f.NewSheet(s.name)
			require.NoError(t, err)
		}
		for r, row := range s.rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			row := row
			require.NoError(t, f.SetSheetRow(s.name, cell, &row))
		}
	}
	return f
}

func interventionSheet() sheet {
	return sheet{name: "Feuille1", rows: [][]interface{}{
		{" TECHNICIEN ", "PRESTATAIRE", "FACTURATION", "TRAVAUX SUPPLEMENTAIRES", "GSET", "STT", "Ref PXO"},
		{"Alice", "Acme", "F1", "t1, t2", 100.5, 40, "PXO-1"},
		{"Bob", "Beta", "", "T1", 50, 10.25, ""},
		{},
		{"Alice", "Beta", "f2 F1", nil, "1 200,50", "€ 12,5", "PXO-2"},
	}}
}

func TestLoadInterventions(t *testing.T) {
	f := newWorkbook(t, interventionSheet())

	records, columns, err := LoadInterventions(f, "")
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"TECHNICIEN", "PRESTATAIRE", "FACTURATION", "TRAVAUX SUPPLEMENTAIRES", "GSET", "STT", "Ref PXO"}, columns)

	first := records[0]
	assert.Equal(t, "Alice", first.Technician)
	assert.Equal(t, "Acme", first.Provider)
	assert.Equal(t, "F1", first.BillingCodes)
	assert.Equal(t, "t1, t2", first.ExtraWorkCodes)
	assert.Equal(t, 100.5, first.GSET)
	assert.Equal(t, 40.0, first.STT)
	assert.Equal(t, "PXO-1", first.RefPXO)
	assert.Equal(t, "Acme", first.Fields[types.ColProvider])

	last := records[2]
	assert.Equal(t, "", last.ExtraWorkCodes)
	assert.Equal(t, 1200.5, last.GSET)
	assert.Equal(t, 12.5, last.STT)
}

func TestLoadInterventionsErrors(t *testing.T) {
	f := newWorkbook(t, interventionSheet())
	_, _, err := LoadInterventions(f, "missing")
	assert.Error(t, err)
}

func TestLoadWeekly(t *testing.T) {
	f := newWorkbook(t, sheet{name: "SUIVI HEBDOMADAIRE MAI", rows: [][]interface{}{
		{"Semaine ", " Ok", "Nok", "Commentaire"},
		{"S19", 10, 2, "x"},
		{"S20", "", "n/a", ""},
		{"", 1, 1},
		{"S19", 99, 99},
		{"S21", "12,5", 0},
	}})

	t.Run("selected metrics", func(t *testing.T) {
		tbl, err := LoadWeekly(f, "SUIVI HEBDOMADAIRE MAI", []string{"Ok", "Nok", "Absent"})
		require.NoError(t, err)
		assert.Equal(t, []string{"S19", "S20", "S21"}, tbl.Weeks())
		assert.Equal(t, []string{"Ok", "Nok"}, tbl.Metrics())

		v, ok := tbl.Get("S19", "Ok")
		assert.True(t, ok)
		assert.Equal(t, 10.0, v)
		_, ok = tbl.Get("S20", "Ok")
		assert.False(t, ok)
		_, ok = tbl.Get("S20", "Nok")
		assert.False(t, ok)
		v, _ = tbl.Get("S21", "Ok")
		assert.Equal(t, 12.5, v)
	})

	t.Run("all columns", func(t *testing.T) {
		tbl, err := LoadWeekly(f, "SUIVI HEBDOMADAIRE MAI", nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"Ok", "Nok", "Commentaire"}, tbl.Metrics())
	})

	t.Run("no week column", func(t *testing.T) {
		g := newWorkbook(t, sheet{name: "S", rows: [][]interface{}{{"Week", "Ok"}, {"W1", 1}}})
		_, err := LoadWeekly(g, "S", nil)
		assert.ErrorContains(t, err, "Semaine")
	})
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"", 0, false},
		{"12", 12, true},
		{" 12.5 ", 12.5, true},
		{"12,5", 12.5, true},
		{"1 234,5 €", 1234.5, true},
		{"1,234.50", 1234.5, true},
		{"1.234,56", 1234.56, true},
		{"1.234.567,5", 1234567.5, true},
		{"1 234,56", 1234.56, true},
		{"45%", 45, true},
		{"-3", -3, true},
		{"abc", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseNumber(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestFilter(t *testing.T) {
	records := []types.Intervention{
		{Technician: "Alice", Provider: "Acme"},
		{Technician: "Bob", Provider: "Acme"},
		{Technician: "Alice", Provider: "Beta"},
		{Technician: "", Provider: "Beta"},
	}

	assert.Len(t, Filter{}.Apply(records), 4)
	assert.Len(t, Filter{Technicians: []string{"Alice"}}.Apply(records), 2)
	assert.Equal(t, []types.Intervention{records[2]},
		Filter{Technicians: []string{"Alice"}, Providers: []string{"Beta"}}.Apply(records))
	assert.Empty(t, Filter{Technicians: []string{"Nobody"}}.Apply(records))

	assert.Equal(t, []string{"Alice", "Bob"}, distinct(records, func(r types.Intervention) string { return r.Technician }))
}

func TestFilterSearch(t *testing.T) {
	records := []types.Intervention{
		{Technician: "Alice", Provider: "Acme", Fields: map[string]string{"TECHNICIEN": "Alice", "Commune": "Pointe-à-Pitre"}},
		{Technician: "Bob", Provider: "Acme", Fields: map[string]string{"TECHNICIEN": "Bob", "Commune": "Basse-Terre"}},
		{Technician: "Alice", Provider: "Beta", Fields: map[string]string{"TECHNICIEN": "Alice", "Commune": "Basse-Terre"}},
	}

	assert.Equal(t, []types.Intervention{records[1], records[2]}, Filter{Search: "basse"}.Apply(records))
	assert.Equal(t, []types.Intervention{records[2]}, Filter{Search: "  ALICE terre "}.Apply(records))
	assert.Equal(t, []types.Intervention{records[2]}, Filter{Providers: []string{"Beta"}, Search: "basse"}.Apply(records))
	assert.Empty(t, Filter{Search: "Marie-Galante"}.Apply(records))
	assert.Len(t, Filter{Search: "   "}.Apply(records), 3)
}

func TestLoadDaily(t *testing.T) {
	f := newWorkbook(t, sheet{name: "Canal inter", rows: [][]interface{}{
		{"Nom technicien", "Date", "État", "OT Réalisé", "OT OK", "OT NOK", "Taux Réussite"},
		{"Alice", "2025-05-02", "Clôturé", 4, 3, 1, "75%"},
		{"Alice", "01/05/2025", "En cours", "2", "", "", ""},
		{"Bob", 45658, "Clôturé", 1, 1, 0, 100},
		{"", "2025-05-03", "Clôturé", 9, 9, 0, 100},
		{"Bob", "pas de date", "", 9, 9, 0, 100},
		{},
	}})

	records, err := LoadDaily(f, "")
	require.NoError(t, err)
	require.Len(t, records, 3)

	first := records[0]
	assert.Equal(t, "Alice", first.Technician)
	assert.Equal(t, time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC), first.Date)
	assert.Equal(t, "Clôturé", first.State)
	assert.Equal(t, map[string]float64{
		types.ColOTDone: 4, types.ColOTOK: 3, types.ColOTNOK: 1, types.ColDailySuccess: 75,
	}, first.Values)

	assert.Equal(t, time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), records[1].Date)
	assert.Equal(t, map[string]float64{types.ColOTDone: 2}, records[1].Values)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), records[2].Date)

	g := newWorkbook(t, sheet{name: "S", rows: [][]interface{}{{"Technicien", "Jour"}, {"Alice", "2025-05-02"}}})
	_, err = LoadDaily(g, "S")
	assert.ErrorContains(t, err, "NOM")
}

func TestParseDate(t *testing.T) {
	for _, in := range []string{"", "0", "-3", "2025-13-01", "hier"} {
		_, ok := ParseDate(in)
		assert.False(t, ok, in)
	}
	d, ok := ParseDate("45658.5")
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC), d)
}

func workbookBytes(t *testing.T) []byte {
	t.Helper()
	f := newWorkbook(t, interventionSheet())
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func TestOpenWorkbookRemote(t *testing.T) {
	body := workbookBytes(t)

	t.Run("retries server errors", func(t *testing.T) {
		var calls int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&calls, 1) == 1 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			_, _ = w.Write(body)
		}))
		defer srv.Close()

		f, err := OpenWorkbook(context.Background(), srv.URL+"/canal.xlsx")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, int32(2), atomic.LoadInt32(&calls))

		records, _, err := LoadInterventions(f, "")
		require.NoError(t, err)
		assert.Len(t, records, 3)
	})

	t.Run("client errors are not retried", func(t *testing.T) {
		var calls int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			http.NotFound(w, r)
		}))
		defer srv.Close()

		_, err := OpenWorkbook(context.Background(), srv.URL)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "404")
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})

	t.Run("gives up after max elapsed", func(t *testing.T) {
		prev := MaxFetchElapsed
		MaxFetchElapsed = 300 * time.Millisecond
		defer func() { MaxFetchElapsed = prev }()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		_, err := OpenWorkbook(context.Background(), srv.URL)
		assert.ErrorContains(t, err, "server error")
	})
}

func TestIsRemote(t *testing.T) {
	assert.True(t, IsRemote("HTTPS://example.com/a.xlsx"))
	assert.True(t, IsRemote("http://x"))
	assert.False(t, IsRemote("Canal Mai.xlsx"))
}
