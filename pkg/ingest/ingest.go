// Package ingest reads trial-balance movement tables from CSV and XLSX
// files into movements datasets, including the wide-to-long transformation
// for spreadsheets carrying one amount column per period.
package ingest

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/finstmt/fsg/pkg/dataset"
	"github.com/finstmt/fsg/pkg/period"
)

var (
	// ErrNoHeader is returned for an input without a header row
	ErrNoHeader = errors.New("input has no header row")
	// ErrMissingColumn is returned when a required column is absent
	ErrMissingColumn = errors.New("required column missing")
)

// columns maps header names to their positions in one input table
type columns struct {
	year          int
	periodCol     int // -1 in wide layout
	code          [3]int
	name          [3]int
	statementType int
	accountCode   int
	amount        int   // -1 in wide layout
	periods       []int // wide layout: index per period 1..12, -1 when absent
}

// mapColumns resolves the header row. Long layout needs period and
// movement_amount columns; wide layout instead carries p1..p12 amount
// columns, one per period.
func mapColumns(header []string) (*columns, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[normalizeHeader(h)] = i
	}

	lookup := func(names ...string) int {
		for _, name := range names {
			if i, ok := index[name]; ok {
				return i
			}
		}
		return -1
	}

	cols := &columns{
		year:          lookup("year"),
		periodCol:     lookup("period", "month"),
		statementType: lookup("statement_type", "statement"),
		accountCode:   lookup("account_code", "account"),
		amount:        lookup("movement_amount", "amount", "movement"),
	}
	for i := 0; i < 3; i++ {
		cols.code[i] = lookup(fmt.Sprintf("code%d", i+1))
		cols.name[i] = lookup(fmt.Sprintf("name%d", i+1))
	}

	if cols.year < 0 {
		return nil, fmt.Errorf("%w: year", ErrMissingColumn)
	}

	if cols.periodCol >= 0 && cols.amount >= 0 {
		return cols, nil
	}

	// Wide layout: p1..p12 columns.
	cols.periods = make([]int, period.MonthsPerYear)
	found := 0
	for p := 1; p <= period.MonthsPerYear; p++ {
		cols.periods[p-1] = lookup(fmt.Sprintf("p%d", p), fmt.Sprintf("period_%d", p))
		if cols.periods[p-1] >= 0 {
			found++
		}
	}
	if found == 0 {
		return nil, fmt.Errorf("%w: period and movement_amount (or p1..p12)", ErrMissingColumn)
	}

	return cols, nil
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

// parseRecords turns header-mapped records into movement rows. Wide records
// expand to one row per non-empty period column.
func parseRecords(records [][]string, source string) ([]dataset.Row, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: %w", source, ErrNoHeader)
	}

	cols, err := mapColumns(records[0])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}

	rows := make([]dataset.Row, 0, len(records)-1)
	for lineNo, record := range records[1:] {
		if isBlank(record) {
			continue
		}

		parsed, parseErr := parseRecord(cols, record)
		if parseErr != nil {
			return nil, fmt.Errorf("%s row %d: %w", source, lineNo+2, parseErr)
		}
		rows = append(rows, parsed...)
	}

	return rows, nil
}

func parseRecord(cols *columns, record []string) ([]dataset.Row, error) {
	year, err := intCell(record, cols.year, "year")
	if err != nil {
		return nil, err
	}

	base := dataset.Row{
		Year:          year,
		Code1:         cell(record, cols.code[0]),
		Code2:         cell(record, cols.code[1]),
		Code3:         cell(record, cols.code[2]),
		Name1:         cell(record, cols.name[0]),
		Name2:         cell(record, cols.name[1]),
		Name3:         cell(record, cols.name[2]),
		StatementType: cell(record, cols.statementType),
		AccountCode:   cell(record, cols.accountCode),
	}

	if cols.periods == nil {
		p, err := intCell(record, cols.periodCol, "period")
		if err != nil {
			return nil, err
		}
		if p < 1 || p > period.MonthsPerYear {
			return nil, fmt.Errorf("period %d outside 1-%d", p, period.MonthsPerYear)
		}
		amount, err := floatCell(record, cols.amount, "movement_amount")
		if err != nil {
			return nil, err
		}
		base.Period = p
		base.Amount = amount
		return []dataset.Row{base}, nil
	}

	// Wide-to-long: one movement per non-empty period column.
	rows := make([]dataset.Row, 0, period.MonthsPerYear)
	for p := 1; p <= period.MonthsPerYear; p++ {
		col := cols.periods[p-1]
		if col < 0 || strings.TrimSpace(cell(record, col)) == "" {
			continue
		}
		amount, err := floatCell(record, col, fmt.Sprintf("p%d", p))
		if err != nil {
			return nil, err
		}
		row := base
		row.Period = p
		row.Amount = amount
		rows = append(rows, row)
	}

	return rows, nil
}

func isBlank(record []string) bool {
	for _, c := range record {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func cell(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func intCell(record []string, i int, name string) (int, error) {
	raw := cell(record, i)
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return value, nil
}

func floatCell(record []string, i int, name string) (float64, error) {
	raw := strings.ReplaceAll(cell(record, i), ",", "")
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return value, nil
}
