package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finstmt/fsg/internal/testutil"
	"github.com/finstmt/fsg/pkg/cache"
	"github.com/finstmt/fsg/pkg/dataset"
	"github.com/finstmt/fsg/pkg/report"
)

func newTestApp(t *testing.T, renderCache *cache.Cache) *fiber.App {
	t.Helper()

	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)

	reports := report.NewService(&report.Config{Dir: testutil.WriteReportDir(t)}, log)
	require.NoError(t, reports.Start(context.Background()))

	store := dataset.NewStore()
	store.Put("fy", testutil.Movements())

	app := fiber.New(fiber.Config{ErrorHandler: errorHandler})
	NewServer(reports, store, renderCache, log).Register(app.Group("/api/v1"))

	return app
}

func doGet(t *testing.T, app *fiber.App, path string, out interface{}) int {
	t.Helper()

	req := httptest.NewRequest("GET", path, http.NoBody)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode == http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, out))
	}

	return resp.StatusCode
}

func TestGetHealth(t *testing.T) {
	app := newTestApp(t, nil)

	var body map[string]string
	status := doGet(t, app, "/api/v1/health", &body)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestListReports(t *testing.T) {
	app := newTestApp(t, nil)

	var resp ReportsResponse
	status := doGet(t, app, "/api/v1/reports", &resp)

	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, "income", resp.Reports[0].ID)
	assert.Equal(t, "Income Statement", resp.Reports[0].Title)
}

func TestGetReport(t *testing.T) {
	app := newTestApp(t, nil)

	var detail ReportDetail
	status := doGet(t, app, "/api/v1/reports/income", &detail)

	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "income", detail.ID)
	assert.Equal(t, []string{"costs", "revenue"}, detail.Variables)
	require.Len(t, detail.Rows, 4)
	assert.Equal(t, "header", detail.Rows[0].Kind)
	assert.Equal(t, "@2 + @3", detail.Rows[3].Expression)
	assert.False(t, detail.LTMEnabled)
}

func TestGetReportNotFound(t *testing.T) {
	app := newTestApp(t, nil)

	status := doGet(t, app, "/api/v1/reports/cashflow", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestRenderReport(t *testing.T) {
	app := newTestApp(t, nil)

	var rendered report.Rendered
	status := doGet(t, app, "/api/v1/reports/income/render?dataset=fy", &rendered)

	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "income", rendered.ReportID)
	assert.Equal(t, []int{2024, 2025}, rendered.Years)
	require.Len(t, rendered.Rows, 4)

	assert.Equal(t, map[int]float64{2024: 1500, 2025: 2000}, rendered.Rows[1].Values)
	assert.Equal(t, map[int]float64{2024: -900, 2025: -1200}, rendered.Rows[2].Values)
	assert.Equal(t, map[int]float64{2024: 600, 2025: 800}, rendered.Rows[3].Values)
}

func TestRenderReportSingleYear(t *testing.T) {
	app := newTestApp(t, nil)

	var rendered report.Rendered
	status := doGet(t, app, "/api/v1/reports/income/render?dataset=fy&year=2024", &rendered)

	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []int{2024}, rendered.Years)
	assert.Equal(t, map[int]float64{2024: 1500}, rendered.Rows[1].Values)
	assert.Equal(t, map[int]float64{2024: 600}, rendered.Rows[3].Values)
}

func TestRenderReportErrors(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{
			name:       "missing dataset parameter",
			path:       "/api/v1/reports/income/render",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown dataset",
			path:       "/api/v1/reports/income/render?dataset=missing",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "unknown report",
			path:       "/api/v1/reports/cashflow/render?dataset=fy",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "invalid ltm parameter",
			path:       "/api/v1/reports/income/render?dataset=fy&ltm=sometimes",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid year parameter",
			path:       "/api/v1/reports/income/render?dataset=fy&year=FY24",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t, nil)
			assert.Equal(t, tt.wantStatus, doGet(t, app, tt.path, nil))
		})
	}
}

func TestRenderReportLTMOverride(t *testing.T) {
	app := newTestApp(t, nil)

	var rendered report.Rendered
	status := doGet(t, app, "/api/v1/reports/income/render?dataset=fy&ltm=true", &rendered)

	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, rendered.LTM)
	assert.Len(t, rendered.LTM.Ranges, 2)
}

func TestRenderReportCached(t *testing.T) {
	r := testutil.NewRedis(t)
	renderCache := cache.New(r.Client, &cache.Config{Prefix: "fsg", TTL: time.Minute})

	app := newTestApp(t, renderCache)

	var first report.Rendered
	require.Equal(t, http.StatusOK, doGet(t, app, "/api/v1/reports/income/render?dataset=fy", &first))
	assert.Len(t, r.Server.Keys(), 1)

	var second report.Rendered
	require.Equal(t, http.StatusOK, doGet(t, app, "/api/v1/reports/income/render?dataset=fy", &second))

	assert.Equal(t, first.RunID, second.RunID)
	assert.Equal(t, first.Rows, second.Rows)
}

func TestListDatasets(t *testing.T) {
	app := newTestApp(t, nil)

	var resp DatasetsResponse
	status := doGet(t, app, "/api/v1/datasets", &resp)

	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, "fy", resp.Datasets[0].Name)
	assert.Equal(t, 6, resp.Datasets[0].Rows)
	assert.Equal(t, []int{2024, 2025}, resp.Datasets[0].Years)
	assert.NotEmpty(t, resp.Datasets[0].Fingerprint)
}

func TestGetDataset(t *testing.T) {
	app := newTestApp(t, nil)

	var info DatasetInfo
	require.Equal(t, http.StatusOK, doGet(t, app, "/api/v1/datasets/fy", &info))
	assert.Equal(t, "fy", info.Name)

	assert.Equal(t, http.StatusNotFound, doGet(t, app, "/api/v1/datasets/other", nil))
}
