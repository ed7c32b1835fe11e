package report

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const incomeYAML = `id: income
title: Income Statement
ltm:
  enabled: true
variables:
  revenue:
    filter:
      code1: "700"
    aggregate: sum
    description: Net revenue
  cogs:
    filter:
      code1: ["600", "610"]
    aggregate: sum
rows:
  - kind: header
    label: Operations
  - kind: variable
    label: Revenue
    variable: revenue
  - kind: variable
    label: Cost of goods sold
    variable: cogs
  - kind: calc
    label: Gross margin
    expression: "@2 + @3"
    bold: true
`

const brokenYAML = `id: broken
variables:
  x:
    aggregate: median
rows:
  - kind: variable
    variable: x
`

func writeDefinitions(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}
	return dir
}

func TestLoad(t *testing.T) {
	dir := writeDefinitions(t, map[string]string{"income.yaml": incomeYAML})

	def, err := Load(filepath.Join(dir, "income.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "income", def.ID)
	assert.Equal(t, "Income Statement", def.Title)
	assert.True(t, def.LTM.Enabled)
	assert.Equal(t, 12, def.LTM.MonthsBack, "monthsBack defaults to 12")
	assert.Len(t, def.Variables, 2)
	assert.Len(t, def.Rows, 4)
	assert.Equal(t, "Net revenue", def.Variables["revenue"].Description)
	assert.True(t, def.Rows[3].Bold)
	assert.NotEmpty(t, def.SourceFile)
}

func TestLoadTitleDefaultsToID(t *testing.T) {
	dir := writeDefinitions(t, map[string]string{"min.yaml": `id: minimal
variables:
  total:
    aggregate: count
rows:
  - kind: variable
    variable: total
`})

	def, err := Load(filepath.Join(dir, "min.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "minimal", def.Title)
}

func TestLoadInvalidDefinition(t *testing.T) {
	dir := writeDefinitions(t, map[string]string{"broken.yaml": brokenYAML})

	_, err := Load(filepath.Join(dir, "broken.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "aggregate")
}

func TestLoadDirSkipsInvalid(t *testing.T) {
	dir := writeDefinitions(t, map[string]string{
		"income.yaml": incomeYAML,
		"broken.yaml": brokenYAML,
		"notes.txt":   "not a definition",
	})

	definitions, err := LoadDir(dir, testLogger())
	require.NoError(t, err)
	require.Len(t, definitions, 1)
	assert.Contains(t, definitions, "income")
}

func TestLoadDirMissingDirectoryIsEmpty(t *testing.T) {
	definitions, err := LoadDir(filepath.Join(t.TempDir(), "absent"), testLogger())
	require.NoError(t, err)
	assert.Empty(t, definitions)
}

func TestServiceCatalog(t *testing.T) {
	dir := writeDefinitions(t, map[string]string{"income.yaml": incomeYAML})

	svc := NewService(&Config{Dir: dir}, testLogger())
	require.NoError(t, svc.Start(context.Background()))
	defer func() { _ = svc.Stop() }()

	summaries := svc.List()
	require.Len(t, summaries, 1)
	assert.Equal(t, "income", summaries[0].ID)
	assert.Equal(t, 4, summaries[0].Rows)
	assert.Equal(t, 2, summaries[0].Variables)
	assert.True(t, summaries[0].LTMEnabled)

	def, err := svc.Get("income")
	require.NoError(t, err)
	assert.Equal(t, "Income Statement", def.Title)

	_, err = svc.Get("missing")
	assert.ErrorIs(t, err, ErrReportNotFound)
}

func TestServiceRender(t *testing.T) {
	dir := writeDefinitions(t, map[string]string{"income.yaml": incomeYAML})

	svc := NewService(&Config{Dir: dir}, testLogger())
	require.NoError(t, svc.Start(context.Background()))

	rendered, err := svc.Render("income", testMovements())
	require.NoError(t, err)
	assert.Equal(t, "income", rendered.ReportID)
	require.Len(t, rendered.Rows, 4)
}
