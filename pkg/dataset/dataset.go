// Package dataset provides the immutable movements dataset the report engine
// computes over: coded, period-stamped trial-balance movement rows grouped
// into read-only tables with derived, never-mutating views.
package dataset

import (
	"sort"
)

// Row is a single financial movement: a signed amount carrying its fiscal
// year, period (1-12), classification hierarchy and account code.
type Row struct {
	Year          int     `json:"year"`
	Period        int     `json:"period"`
	Code1         string  `json:"code1"`
	Code2         string  `json:"code2"`
	Code3         string  `json:"code3"`
	Name1         string  `json:"name1"`
	Name2         string  `json:"name2"`
	Name3         string  `json:"name3"`
	StatementType string  `json:"statement_type"`
	AccountCode   string  `json:"account_code"`
	Amount        float64 `json:"movement_amount"`
}

// FilterableFields is the closed set of row fields filter specifications may
// reference.
//
//nolint:gochecknoglobals // fixed field allow-list
var FilterableFields = []string{
	"code1", "code2", "code3",
	"name1", "name2", "name3",
	"statement_type", "account_code",
}

// Field returns the named filterable field's value. The second return is
// false for fields outside the allow-list.
func (r Row) Field(name string) (string, bool) {
	switch name {
	case "code1":
		return r.Code1, true
	case "code2":
		return r.Code2, true
	case "code3":
		return r.Code3, true
	case "name1":
		return r.Name1, true
	case "name2":
		return r.Name2, true
	case "name3":
		return r.Name3, true
	case "statement_type":
		return r.StatementType, true
	case "account_code":
		return r.AccountCode, true
	default:
		return "", false
	}
}

// Dataset is an immutable table of movement rows plus the set of years known
// to be loaded. Derived views share rows with their parent and keep the
// parent's year set, so filtering never shrinks the set of years a resolved
// variable reports on.
type Dataset struct {
	rows  []Row
	years []int
}

// New builds a dataset from rows, deriving the known year set from the rows
// themselves.
func New(rows []Row) *Dataset {
	yearSet := make(map[int]struct{})
	for i := range rows {
		yearSet[rows[i].Year] = struct{}{}
	}

	years := make([]int, 0, len(yearSet))
	for year := range yearSet {
		years = append(years, year)
	}
	sort.Ints(years)

	return &Dataset{rows: rows, years: years}
}

// NewWithYears builds a dataset whose known year set is declared by the
// caller rather than derived from the rows. Years are deduplicated and
// sorted.
func NewWithYears(rows []Row, years []int) *Dataset {
	yearSet := make(map[int]struct{})
	for _, year := range years {
		yearSet[year] = struct{}{}
	}

	unique := make([]int, 0, len(yearSet))
	for year := range yearSet {
		unique = append(unique, year)
	}
	sort.Ints(unique)

	return &Dataset{rows: rows, years: unique}
}

// Rows returns the dataset's rows in iteration order. The returned slice is
// shared and must not be modified.
func (d *Dataset) Rows() []Row {
	return d.rows
}

// Years returns the sorted set of years known to the dataset.
func (d *Dataset) Years() []int {
	years := make([]int, len(d.years))
	copy(years, d.years)
	return years
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	return len(d.rows)
}

// Restrict returns a derived view holding only the rows the predicate
// accepts. The view keeps the parent's known year set.
func (d *Dataset) Restrict(pred func(Row) bool) *Dataset {
	kept := make([]Row, 0, len(d.rows))
	for i := range d.rows {
		if pred(d.rows[i]) {
			kept = append(kept, d.rows[i])
		}
	}
	return &Dataset{rows: kept, years: d.years}
}
