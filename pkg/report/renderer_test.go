package report

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finstmt/fsg/pkg/dataset"
	"github.com/finstmt/fsg/pkg/filter"
	"github.com/finstmt/fsg/pkg/resolver"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func testMovements() *dataset.Dataset {
	return dataset.New([]dataset.Row{
		{Year: 2024, Period: 1, Code1: "700", StatementType: "income", AccountCode: "7001", Amount: 1000},
		{Year: 2024, Period: 2, Code1: "700", StatementType: "income", AccountCode: "7001", Amount: 500},
		{Year: 2024, Period: 2, Code1: "600", StatementType: "income", AccountCode: "6001", Amount: -900},
		{Year: 2025, Period: 1, Code1: "700", StatementType: "income", AccountCode: "7001", Amount: 2000},
		{Year: 2025, Period: 1, Code1: "600", StatementType: "income", AccountCode: "6001", Amount: -1200},
	})
}

func TestRender(t *testing.T) {
	renderer := NewRenderer(testLogger())
	def := validDefinition()
	require.NoError(t, def.Validate())

	rendered, err := renderer.Render(def, testMovements())
	require.NoError(t, err)

	assert.Equal(t, "income", rendered.ReportID)
	assert.Equal(t, "Income Statement", rendered.Title)
	assert.NotEmpty(t, rendered.RunID)
	assert.Equal(t, []int{2024, 2025}, rendered.Years)
	assert.Empty(t, rendered.Warning)
	require.Len(t, rendered.Rows, 6)

	// Header and spacer rows carry no values.
	assert.Nil(t, rendered.Rows[0].Values)
	assert.Nil(t, rendered.Rows[4].Values)
	assert.Equal(t, "Operations", rendered.Rows[0].Label)

	revenue := rendered.Rows[1]
	assert.Equal(t, 2, revenue.Position)
	assert.Equal(t, map[int]float64{2024: 1500, 2025: 2000}, revenue.Values)

	cogs := rendered.Rows[2]
	assert.Equal(t, map[int]float64{2024: -900, 2025: -1200}, cogs.Values)

	margin := rendered.Rows[3]
	assert.True(t, margin.Bold)
	assert.Equal(t, map[int]float64{2024: 600, 2025: 800}, margin.Values)

	ratio := rendered.Rows[5]
	require.NotNil(t, ratio.Values)
	assert.InDelta(t, 0.4, ratio.Values[2024], 1e-9)
	assert.InDelta(t, 0.4, ratio.Values[2025], 1e-9)
}

func TestRenderForwardReference(t *testing.T) {
	renderer := NewRenderer(testLogger())
	def := validDefinition()
	def.Rows[3].Expression = "@6 * 2"
	def.Rows[5].Expression = "revenue - cogs"
	require.NoError(t, def.Validate())

	rendered, err := renderer.Render(def, testMovements())
	require.NoError(t, err)

	// @6 = revenue - cogs = 2400 for 2024; @4 = @6 * 2.
	assert.Equal(t, 2400.0, rendered.Rows[5].Values[2024])
	assert.Equal(t, 4800.0, rendered.Rows[3].Values[2024])
}

func TestRenderTitleTemplate(t *testing.T) {
	renderer := NewRenderer(testLogger())
	def := validDefinition()
	def.Title = `{{ .ID | upper }} for {{ .Years | len }} years`

	rendered, err := renderer.Render(def, testMovements())
	require.NoError(t, err)
	assert.Equal(t, "INCOME for 2 years", rendered.Title)
}

func TestRenderLTMWindow(t *testing.T) {
	renderer := NewRenderer(testLogger())
	def := validDefinition()
	def.LTM = LTMConfig{Enabled: true, MonthsBack: 12}
	require.NoError(t, def.Validate())

	// Latest period is 2025 P1, so the window is 2024 P2 .. 2025 P1; the
	// 2024 P1 movement of 1000 falls outside it.
	rendered, err := renderer.Render(def, testMovements())
	require.NoError(t, err)

	require.NotNil(t, rendered.LTM)
	assert.Equal(t, []int{2024, 2025}, rendered.Years)
	assert.True(t, rendered.LTM.Availability.Complete)
	assert.Equal(t, map[int]float64{2024: 500, 2025: 2000}, rendered.Rows[1].Values)
}

func TestRenderLTMIncompleteDataWarns(t *testing.T) {
	renderer := NewRenderer(testLogger())
	def := validDefinition()
	def.LTM = LTMConfig{Enabled: true, MonthsBack: 12}

	// Only 2025 is loaded; the trailing window needs 2024 too.
	ds := dataset.New([]dataset.Row{
		{Year: 2025, Period: 1, Code1: "700", Amount: 100},
	})

	rendered, err := renderer.Render(def, ds)
	require.NoError(t, err)
	assert.NotEmpty(t, rendered.Warning)
	assert.Contains(t, rendered.Warning, "2024")
}

func TestRenderDivisionByZeroFails(t *testing.T) {
	renderer := NewRenderer(testLogger())
	def := &Definition{
		ID: "broken",
		Variables: map[string]resolver.Definition{
			"empty": {Filter: filter.Spec{"code1": "999"}, Aggregate: resolver.AggregateSum},
		},
		Rows: []RowDef{
			{Kind: RowVariable, Variable: "empty"},
			{Kind: RowCalc, Expression: "100 / @1"},
		},
	}
	require.NoError(t, def.Validate())

	_, err := renderer.Render(def, testMovements())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "division by zero")
}

func TestRenderVariableRowDefaultLabel(t *testing.T) {
	renderer := NewRenderer(testLogger())
	def := validDefinition()
	def.Rows[1].Label = ""

	rendered, err := renderer.Render(def, testMovements())
	require.NoError(t, err)
	assert.Equal(t, "revenue", rendered.Rows[1].Label)
}
