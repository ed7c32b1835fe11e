package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/finstmt/fsg/pkg/dataset"
)

// Movements returns a small two-year trial balance exercising every
// filterable field: income-statement accounts under code1 600/700 and a
// balance-sheet account under 100.
func Movements() *dataset.Dataset {
	return dataset.New([]dataset.Row{
		{Year: 2024, Period: 1, Code1: "700", Code2: "701", Name1: "Revenue", Name2: "Product sales", StatementType: "income", AccountCode: "7001", Amount: 1000},
		{Year: 2024, Period: 2, Code1: "700", Code2: "701", Name1: "Revenue", Name2: "Product sales", StatementType: "income", AccountCode: "7001", Amount: 500},
		{Year: 2024, Period: 2, Code1: "600", Code2: "601", Name1: "Costs", Name2: "Materials", StatementType: "income", AccountCode: "6001", Amount: -900},
		{Year: 2024, Period: 3, Code1: "100", Code2: "101", Name1: "Assets", Name2: "Machinery", StatementType: "balance", AccountCode: "1000", Amount: 2500},
		{Year: 2025, Period: 1, Code1: "700", Code2: "701", Name1: "Revenue", Name2: "Product sales", StatementType: "income", AccountCode: "7001", Amount: 2000},
		{Year: 2025, Period: 1, Code1: "600", Code2: "601", Name1: "Costs", Name2: "Materials", StatementType: "income", AccountCode: "6001", Amount: -1200},
	})
}

// IncomeReportYAML is a valid income-statement report definition
const IncomeReportYAML = `id: income
title: Income Statement
variables:
  revenue:
    filter:
      code1: "700"
    aggregate: sum
  costs:
    filter:
      code1: "600"
    aggregate: sum
rows:
  - kind: header
    label: Operations
  - kind: variable
    label: Revenue
    variable: revenue
  - kind: variable
    label: Costs
    variable: costs
  - kind: calc
    label: Gross margin
    expression: "@2 + @3"
    bold: true
`

// TrialBalanceCSV matches the Movements fixture in long CSV layout
const TrialBalanceCSV = `year,period,code1,code2,name1,name2,statement_type,account_code,movement_amount
2024,1,700,701,Revenue,Product sales,income,7001,1000
2024,2,700,701,Revenue,Product sales,income,7001,500
2024,2,600,601,Costs,Materials,income,6001,-900
2024,3,100,101,Assets,Machinery,balance,1000,2500
2025,1,700,701,Revenue,Product sales,income,7001,2000
2025,1,600,601,Costs,Materials,income,6001,-1200
`

// WriteReportDir writes the income report definition into a temp directory
// and returns its path.
func WriteReportDir(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "income.yaml"), []byte(IncomeReportYAML), 0o600))
	return dir
}

// WriteDataDir writes the trial-balance CSV fixture as dataset "fy" into a
// temp directory and returns its path.
func WriteDataDir(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fy.csv"), []byte(TrialBalanceCSV), 0o600))
	return dir
}
