package export

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/finstmt/fsg/pkg/report"
)

func sampleRendered() *report.Rendered {
	return &report.Rendered{
		RunID:       "run-1",
		ReportID:    "income",
		Title:       "Income Statement",
		GeneratedAt: time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC),
		Years:       []int{2024, 2025},
		Rows: []report.RenderedRow{
			{Position: 1, Kind: report.RowHeader, Label: "Operations"},
			{Position: 2, Kind: report.RowVariable, Label: "Revenue", Values: map[int]float64{2024: 1500, 2025: 2000}},
			{Position: 3, Kind: report.RowSpacer},
			{Position: 4, Kind: report.RowCalc, Label: "Gross margin", Bold: true, Values: map[int]float64{2024: 600, 2025: 800}},
		},
	}
}

func TestWriterLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")

	w, err := NewWriter()
	require.NoError(t, err)
	require.NoError(t, w.AddReport(sampleRendered()))
	require.NoError(t, w.Save(path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck // read-only verification

	assert.Equal(t, "income", f.GetSheetName(0))

	title, err := f.GetCellValue("income", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Income Statement", title)

	year1, err := f.GetCellValue("income", "B4")
	require.NoError(t, err)
	assert.Equal(t, "2024", year1)

	label, err := f.GetCellValue("income", "A6")
	require.NoError(t, err)
	assert.Equal(t, "Revenue", label)

	value, err := f.GetCellValue("income", "C6")
	require.NoError(t, err)
	assert.Equal(t, "2,000.00", value)

	// Spacer row stays empty.
	spacer, err := f.GetCellValue("income", "A7")
	require.NoError(t, err)
	assert.Empty(t, spacer)

	margin, err := f.GetCellValue("income", "A8")
	require.NoError(t, err)
	assert.Equal(t, "Gross margin", margin)
}

func TestWriterWarningRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")

	rendered := sampleRendered()
	rendered.Warning = "missing data for year(s) 2023"

	w, err := NewWriter()
	require.NoError(t, err)
	require.NoError(t, w.AddReport(rendered))
	require.NoError(t, w.Save(path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck // read-only verification

	warning, err := f.GetCellValue("income", "A2")
	require.NoError(t, err)
	assert.Contains(t, warning, "2023")
}

func TestWriterMultipleReports(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")

	second := sampleRendered()
	second.ReportID = "balance"

	w, err := NewWriter()
	require.NoError(t, err)
	require.NoError(t, w.AddReport(sampleRendered()))
	require.NoError(t, w.AddReport(second))
	require.NoError(t, w.Save(path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck // read-only verification

	assert.Equal(t, []string{"income", "balance"}, f.GetSheetList())
}
