package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"fieldops-insights-go/internal/codes"
	"fieldops-insights-go/internal/types"
	"fieldops-insights-go/internal/variance"
)

func sampleTable(t *testing.T) *variance.Table {
	t.Helper()
	cur := variance.NewWeeklyTable("Ok", "Nok")
	ref := variance.NewWeeklyTable("Ok", "Nok")
	cur.Set("S1", "Ok", 15)
	cur.Set("S1", "Nok", 3)
	ref.Set("S1", "Ok", 10)
	ref.Set("S1", "Nok", 0)
	tbl, err := variance.Compute(cur, ref)
	require.NoError(t, err)
	return tbl
}

func TestVarianceCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, VarianceCSV(&buf, sampleTable(t)))
	assert.Equal(t, "Semaine,Ok,Nok\nS1,50,\nAVERAGE,50,\n", buf.String())
}

func TestVarianceCSVWeekNamedAverage(t *testing.T) {
	cur := variance.NewWeeklyTable("Ok")
	ref := variance.NewWeeklyTable("Ok")
	cur.Set(variance.AverageKey, "Ok", 20)
	cur.Set("S2", "Ok", 10)
	ref.Set(variance.AverageKey, "Ok", 10)
	ref.Set("S2", "Ok", 10)
	tbl, err := variance.Compute(cur, ref)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, VarianceCSV(&buf, tbl))
	assert.Equal(t, "Semaine,Ok\nAVERAGE,100\nS2,0\nAVERAGE,50\n", buf.String())
}

func TestVarianceXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, VarianceXLSX(&buf, sampleTable(t)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{VarianceSheet}, f.GetSheetList())
	rows, err := f.GetRows(VarianceSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Semaine", "Ok", "Nok"}, rows[0])
	assert.Equal(t, "S1", rows[1][0])
	assert.Equal(t, "50", rows[1][1])
	assert.Equal(t, "AVERAGE", rows[2][0])
	nok, err := f.GetCellValue(VarianceSheet, "C2")
	require.NoError(t, err)
	assert.Equal(t, "", nok)
}

func TestCodes(t *testing.T) {
	d := codes.Count([]types.Intervention{{BillingCodes: "b a", ExtraWorkCodes: "b"}})

	var buf bytes.Buffer
	require.NoError(t, CodesCSV(&buf, d))
	assert.Equal(t, ",A,B\nNombre,1,2\n", buf.String())

	buf.Reset()
	require.NoError(t, CodesXLSX(&buf, d))
	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(CodesSheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"", "A", "B"}, {"Nombre", "1", "2"}}, rows)
}

func TestInterventions(t *testing.T) {
	records := []types.Intervention{
		{Fields: map[string]string{"TECHNICIEN": "Alice", "STT": "12.5"}},
		{Fields: map[string]string{"TECHNICIEN": "Bob, Jr", "GSET": "3"}},
	}

	t.Run("given column order", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, InterventionsCSV(&buf, records, []string{"TECHNICIEN", "STT"}))
		assert.Equal(t, "TECHNICIEN,STT\nAlice,12.5\n\"Bob, Jr\",\n", buf.String())
	})

	t.Run("sorted union of columns", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, InterventionsCSV(&buf, records, nil))
		assert.Equal(t, "GSET,STT,TECHNICIEN\n,12.5,Alice\n3,,\"Bob, Jr\"\n", buf.String())
	})

	t.Run("xlsx", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, InterventionsXLSX(&buf, records, []string{"TECHNICIEN"}))
		f, err := excelize.OpenReader(&buf)
		require.NoError(t, err)
		defer f.Close()
		v, err := f.GetCellValue(InterventionsSheet, "A3")
		require.NoError(t, err)
		assert.Equal(t, "Bob, Jr", v)
	})
}
