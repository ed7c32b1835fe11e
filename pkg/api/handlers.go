package api

import (
	"context"
	"errors"
	"sort"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/finstmt/fsg/pkg/cache"
	"github.com/finstmt/fsg/pkg/dataset"
	"github.com/finstmt/fsg/pkg/report"
)

// Server holds the handler dependencies for the report API
type Server struct {
	reports  report.Service
	datasets *dataset.Store
	cache    *cache.Cache
	renderer *report.Renderer
	log      logrus.FieldLogger
}

// NewServer creates a new API server instance. The cache may be nil when
// report caching is disabled.
func NewServer(reports report.Service, datasets *dataset.Store, renderCache *cache.Cache, log logrus.FieldLogger) *Server {
	return &Server{
		reports:  reports,
		datasets: datasets,
		cache:    renderCache,
		renderer: report.NewRenderer(log),
		log:      log.WithField("component", "api.handlers"),
	}
}

// Register mounts all routes on an API route group
func (s *Server) Register(router fiber.Router) {
	router.Get("/health", s.GetHealth)
	router.Get("/reports", s.ListReports)
	router.Get("/reports/:id", s.GetReport)
	router.Get("/reports/:id/render", s.RenderReport)
	router.Get("/datasets", s.ListDatasets)
	router.Get("/datasets/:name", s.GetDataset)
}

// GetHealth handles GET /api/v1/health
func (s *Server) GetHealth(c fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
}

// ListReports handles GET /api/v1/reports
func (s *Server) ListReports(c fiber.Ctx) error {
	summaries := s.reports.List()
	return c.Status(fiber.StatusOK).JSON(ReportsResponse{
		Reports: summaries,
		Total:   len(summaries),
	})
}

// GetReport handles GET /api/v1/reports/:id
func (s *Server) GetReport(c fiber.Ctx) error {
	def, err := s.reports.Get(c.Params("id"))
	if err != nil {
		return ErrReportNotFound
	}

	variables := make([]string, 0, len(def.Variables))
	for name := range def.Variables {
		variables = append(variables, name)
	}
	sort.Strings(variables)

	rows := make([]RowDetail, 0, len(def.Rows))
	for i := range def.Rows {
		row := &def.Rows[i]
		rows = append(rows, RowDetail{
			Position:   i + 1,
			Kind:       string(row.Kind),
			Label:      row.Label,
			Variable:   row.Variable,
			Expression: row.Expression,
			Bold:       row.Bold,
		})
	}

	detail := ReportDetail{
		ID:         def.ID,
		Title:      def.Title,
		Variables:  variables,
		Rows:       rows,
		LTMEnabled: def.LTM.Enabled,
	}
	if def.LTM.Enabled {
		detail.MonthsBack = def.LTM.MonthsBack
	}

	return c.Status(fiber.StatusOK).JSON(detail)
}

// RenderReport handles GET /api/v1/reports/:id/render. The dataset query
// parameter names the dataset to render over; year restricts the render to
// one fiscal year and ltm overrides the definition's trailing-window
// setting.
func (s *Server) RenderReport(c fiber.Ctx) error {
	name := c.Query("dataset")
	if name == "" {
		return ErrDatasetRequired
	}

	d, err := s.datasets.Get(name)
	if err != nil {
		return ErrDatasetNotFound
	}

	def, err := s.reports.Get(c.Params("id"))
	if err != nil {
		return ErrReportNotFound
	}

	yearSuffix := ""
	if raw := c.Query("year"); raw != "" {
		year, parseErr := strconv.Atoi(raw)
		if parseErr != nil {
			return ErrInvalidYearParam
		}
		rows := make([]dataset.Row, 0)
		for _, row := range d.Rows() {
			if row.Year == year {
				rows = append(rows, row)
			}
		}
		d = dataset.NewWithYears(rows, []int{year})
		yearSuffix = ":y" + raw
	}

	if raw := c.Query("ltm"); raw != "" {
		override, parseErr := strconv.ParseBool(raw)
		if parseErr != nil {
			return ErrInvalidLTMParam
		}
		if override != def.LTM.Enabled {
			clone := *def
			clone.LTM.Enabled = override
			def = &clone
		}
	}

	window := "full"
	if def.LTM.Enabled {
		window = "ltm" + strconv.Itoa(def.LTM.MonthsBack)
	}
	window += yearSuffix

	var key string
	if s.cache != nil {
		key = s.cache.Key(def.ID, d.Fingerprint(), window)
		cached, cacheErr := s.cache.Get(context.Background(), key)
		if cacheErr != nil {
			s.log.WithError(cacheErr).Warn("Render cache lookup failed")
		}
		if cached != nil {
			return c.Status(fiber.StatusOK).JSON(cached)
		}
	}

	rendered, err := s.renderer.Render(def, d)
	if err != nil {
		if errors.Is(err, report.ErrReportNotFound) {
			return ErrReportNotFound
		}
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	}

	if s.cache != nil {
		if cacheErr := s.cache.Set(context.Background(), key, rendered); cacheErr != nil {
			s.log.WithError(cacheErr).Warn("Render cache store failed")
		}
	}

	return c.Status(fiber.StatusOK).JSON(rendered)
}

// ListDatasets handles GET /api/v1/datasets
func (s *Server) ListDatasets(c fiber.Ctx) error {
	names := s.datasets.Names()

	infos := make([]DatasetInfo, 0, len(names))
	for _, name := range names {
		d, err := s.datasets.Get(name)
		if err != nil {
			continue
		}
		infos = append(infos, datasetInfo(name, d))
	}

	return c.Status(fiber.StatusOK).JSON(DatasetsResponse{
		Datasets: infos,
		Total:    len(infos),
	})
}

// GetDataset handles GET /api/v1/datasets/:name
func (s *Server) GetDataset(c fiber.Ctx) error {
	name := c.Params("name")

	d, err := s.datasets.Get(name)
	if err != nil {
		return ErrDatasetNotFound
	}

	return c.Status(fiber.StatusOK).JSON(datasetInfo(name, d))
}

func datasetInfo(name string, d *dataset.Dataset) DatasetInfo {
	return DatasetInfo{
		Name:        name,
		Rows:        d.Len(),
		Years:       d.Years(),
		Fingerprint: d.Fingerprint(),
	}
}
