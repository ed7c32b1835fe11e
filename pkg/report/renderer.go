package report

import (
	"bytes"
	"fmt"
	"text/template"
	"time"

	"github.com/Masterminds/sprig/v3"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/finstmt/fsg/pkg/dataset"
	"github.com/finstmt/fsg/pkg/expr"
	"github.com/finstmt/fsg/pkg/observability"
	"github.com/finstmt/fsg/pkg/period"
	"github.com/finstmt/fsg/pkg/resolver"
)

// RenderedRow is one output row: its 1-based position, display label and
// per-year values (nil for header and spacer rows).
type RenderedRow struct {
	Position int             `json:"position"`
	Kind     RowKind         `json:"kind"`
	Label    string          `json:"label,omitempty"`
	Bold     bool            `json:"bold,omitempty"`
	Values   map[int]float64 `json:"values,omitempty"`
}

// Rendered is a generated report: ordered rows with per-year values, the
// templated title and, when LTM is enabled, the window and its completeness
// warning.
type Rendered struct {
	RunID       string        `json:"runId"`
	ReportID    string        `json:"reportId"`
	Title       string        `json:"title"`
	GeneratedAt time.Time     `json:"generatedAt"`
	Years       []int         `json:"years"`
	Rows        []RenderedRow `json:"rows"`
	LTM         *period.Info  `json:"ltm,omitempty"`
	Warning     string        `json:"warning,omitempty"`
}

// Renderer walks a definition's ordered rows, resolving variables and
// evaluating calculated expressions per year.
type Renderer struct {
	log logrus.FieldLogger
}

// NewRenderer creates a renderer
func NewRenderer(log logrus.FieldLogger) *Renderer {
	return &Renderer{log: log.WithField("component", "report.renderer")}
}

// Render generates a report over a dataset. With LTM enabled the working
// dataset is restricted to the trailing window first; an incomplete window
// surfaces as a warning on the result, not an error.
func (r *Renderer) Render(def *Definition, d *dataset.Dataset) (*Rendered, error) {
	started := time.Now()
	working := d

	var ltmInfo *period.Info
	if def.LTM.Enabled {
		info := period.CalculateLTMInfo(d, d.Years(), def.LTM.MonthsBack)
		ltmInfo = &info
		working = info.Data
	}

	values, err := resolver.ResolveAll(def.Variables, working,
		resolver.WithOnResolve(func(string) {
			observability.VariablesResolved.WithLabelValues(def.ID).Inc()
		}),
	)
	if err != nil {
		observability.ReportsRendered.WithLabelValues(def.ID, "failed").Inc()
		return nil, fmt.Errorf("report %q: %w", def.ID, err)
	}

	years := working.Years()
	if ltmInfo != nil {
		// Display only the years the window touches; excluded years would
		// render as zero-filled columns otherwise.
		years = make([]int, 0, len(ltmInfo.Ranges))
		seen := make(map[int]struct{}, len(ltmInfo.Ranges))
		for _, rng := range ltmInfo.Ranges {
			if _, ok := seen[rng.Year]; !ok {
				seen[rng.Year] = struct{}{}
				years = append(years, rng.Year)
			}
		}
	}

	rendered := &Rendered{
		RunID:       uuid.New().String(),
		ReportID:    def.ID,
		GeneratedAt: started,
		Years:       years,
		LTM:         ltmInfo,
	}
	if ltmInfo != nil && !ltmInfo.Availability.Complete {
		rendered.Warning = ltmInfo.Availability.Message
	}

	title, err := r.renderTitle(def, rendered)
	if err != nil {
		observability.ReportsRendered.WithLabelValues(def.ID, "failed").Inc()
		return nil, err
	}
	rendered.Title = title

	rowValues, err := r.computeRows(def, values, years)
	if err != nil {
		observability.ReportsRendered.WithLabelValues(def.ID, "failed").Inc()
		return nil, fmt.Errorf("report %q: %w", def.ID, err)
	}

	rendered.Rows = make([]RenderedRow, len(def.Rows))
	for i := range def.Rows {
		row := &def.Rows[i]
		rendered.Rows[i] = RenderedRow{
			Position: i + 1,
			Kind:     row.Kind,
			Label:    rowLabel(row),
			Bold:     row.Bold,
			Values:   rowValues[i],
		}
	}

	observability.ReportsRendered.WithLabelValues(def.ID, "success").Inc()
	observability.RenderDuration.WithLabelValues(def.ID).Observe(time.Since(started).Seconds())

	r.log.WithField("report", def.ID).
		WithField("run_id", rendered.RunID).
		WithField("years", len(years)).
		WithField("rows", len(rendered.Rows)).
		Debug("Report rendered")

	return rendered, nil
}

// computeRows produces per-year values for every value-producing row. Calc
// rows are evaluated lazily so @N references resolve regardless of layout
// order; acyclicity was verified at load time.
func (r *Renderer) computeRows(def *Definition, values map[string]resolver.ResolvedValue, years []int) ([]map[int]float64, error) {
	rowValues := make([]map[int]float64, len(def.Rows))

	for _, year := range years {
		ctx := make(expr.Context, len(values))
		for name, resolved := range values {
			ctx[name] = resolved[year]
		}

		computed := make(map[int]float64, len(def.Rows))
		for i := range def.Rows {
			if !def.Rows[i].HasValues() {
				continue
			}
			value, err := r.computeRow(def, i, year, ctx, computed)
			if err != nil {
				return nil, err
			}
			if rowValues[i] == nil {
				rowValues[i] = make(map[int]float64, len(years))
			}
			rowValues[i][year] = value
		}
	}

	return rowValues, nil
}

func (r *Renderer) computeRow(def *Definition, i, year int, ctx expr.Context, computed map[int]float64) (float64, error) {
	if value, ok := computed[i]; ok {
		return value, nil
	}

	row := &def.Rows[i]
	if row.Kind == RowVariable {
		value := ctx[row.Variable]
		computed[i] = value
		return value, nil
	}

	deps, err := expr.Dependencies(row.Expression)
	if err != nil {
		return 0, fmt.Errorf("row %d: %w", i+1, err)
	}
	for _, dep := range deps {
		target, ok := parseOrderRef(dep)
		if !ok {
			continue
		}
		depValue, depErr := r.computeRow(def, target-1, year, ctx, computed)
		if depErr != nil {
			return 0, depErr
		}
		ctx[dep] = depValue
	}

	value, err := expr.EvaluateExpression(row.Expression, ctx)
	if err != nil {
		return 0, fmt.Errorf("row %d year %d: %w", i+1, year, err)
	}

	computed[i] = value
	return value, nil
}

// titleData is the template context for report titles
type titleData struct {
	ID        string
	Years     []int
	Window    string
	Generated time.Time
}

func (r *Renderer) renderTitle(def *Definition, rendered *Rendered) (string, error) {
	tmpl, err := template.New("title").Funcs(sprig.TxtFuncMap()).Parse(def.Title)
	if err != nil {
		return "", fmt.Errorf("report %q: failed to parse title template: %w", def.ID, err)
	}

	data := titleData{
		ID:        def.ID,
		Years:     rendered.Years,
		Generated: rendered.GeneratedAt,
	}
	if rendered.LTM != nil {
		data.Window = rendered.LTM.Label
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("report %q: failed to execute title template: %w", def.ID, err)
	}

	return buf.String(), nil
}

func rowLabel(row *RowDef) string {
	if row.Label != "" {
		return row.Label
	}
	if row.Kind == RowVariable {
		return row.Variable
	}
	return ""
}
