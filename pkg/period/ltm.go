// Package period derives trailing-N-month (LTM) reporting windows from a
// movements dataset: contiguous per-year period ranges walking back across
// year boundaries, plus a data-completeness report for the window.
package period

import (
	"fmt"
	"sort"
	"strings"

	"github.com/finstmt/fsg/pkg/dataset"
)

// MonthsPerYear is the number of fiscal periods in a calendar year
const MonthsPerYear = 12

// Range is the part of an LTM window falling inside one calendar year
type Range struct {
	Year        int `json:"year"`
	StartPeriod int `json:"startPeriod"`
	EndPeriod   int `json:"endPeriod"`
}

// Months returns the number of periods the range covers
func (r Range) Months() int {
	return r.EndPeriod - r.StartPeriod + 1
}

// LatestAvailablePeriod scans the dataset for the maximum year and the
// maximum period within that year. The third return is false for an empty
// dataset.
func LatestAvailablePeriod(d *dataset.Dataset) (year, maxPeriod int, ok bool) {
	rows := d.Rows()
	if len(rows) == 0 {
		return 0, 0, false
	}

	for _, row := range rows {
		if row.Year > year {
			year = row.Year
			maxPeriod = row.Period
		} else if row.Year == year && row.Period > maxPeriod {
			maxPeriod = row.Period
		}
	}

	return year, maxPeriod, true
}

// CalculateLTMRange walks backward from (year, period), producing one range
// per calendar year touched by the trailing monthsBack-month window, ordered
// oldest to newest. Invalid inputs (year <= 0, period outside 1-12,
// monthsBack <= 0) yield an empty list rather than an error; downstream
// callers treat an empty window as "no data available".
func CalculateLTMRange(year, endPeriod, monthsBack int) []Range {
	if year <= 0 || endPeriod < 1 || endPeriod > MonthsPerYear || monthsBack <= 0 {
		return []Range{}
	}

	ranges := make([]Range, 0, monthsBack/MonthsPerYear+2)
	remaining := monthsBack

	for remaining > 0 && year > 0 {
		take := remaining
		if take > endPeriod {
			take = endPeriod
		}
		ranges = append(ranges, Range{
			Year:        year,
			StartPeriod: endPeriod - take + 1,
			EndPeriod:   endPeriod,
		})
		remaining -= take
		year--
		endPeriod = MonthsPerYear
	}

	// Walked oldest-last; reverse to oldest-first.
	for i, j := 0, len(ranges)-1; i < j; i, j = i+1, j-1 {
		ranges[i], ranges[j] = ranges[j], ranges[i]
	}

	return ranges
}

// Availability reports whether a window's ranges are fully covered by the
// years known to be loaded.
type Availability struct {
	Complete       bool   `json:"complete"`
	ActualMonths   int    `json:"actualMonths"`
	ExpectedMonths int    `json:"expectedMonths"`
	Message        string `json:"message,omitempty"`
}

// CheckDataAvailability flags window years missing from the loaded year set
// by name, and flags partial coverage when the covered months fall short of
// expectedMonths.
func CheckDataAvailability(ranges []Range, availableYears []int, expectedMonths int) Availability {
	available := make(map[int]struct{}, len(availableYears))
	for _, year := range availableYears {
		available[year] = struct{}{}
	}

	var missing []int
	actualMonths := 0
	for _, r := range ranges {
		if _, ok := available[r.Year]; !ok {
			missing = append(missing, r.Year)
			continue
		}
		actualMonths += r.Months()
	}
	sort.Ints(missing)

	result := Availability{
		ActualMonths:   actualMonths,
		ExpectedMonths: expectedMonths,
	}

	switch {
	case len(missing) > 0:
		names := make([]string, len(missing))
		for i, year := range missing {
			names[i] = fmt.Sprintf("%d", year)
		}
		result.Message = fmt.Sprintf("missing data for year(s) %s; %d of %d months covered",
			strings.Join(names, ", "), actualMonths, expectedMonths)
	case actualMonths < expectedMonths:
		result.Message = fmt.Sprintf("only %d of %d months covered", actualMonths, expectedMonths)
	default:
		result.Complete = true
	}

	return result
}

// Info is the composed LTM window consumed by report generation: the
// per-year ranges, a display label, the dataset restricted to the window and
// the completeness report.
type Info struct {
	Ranges       []Range          `json:"ranges"`
	Label        string           `json:"label"`
	Availability Availability     `json:"availability"`
	Data         *dataset.Dataset `json:"-"`
}

// CalculateLTMInfo derives the trailing window ending at the dataset's
// latest available period and restricts the dataset to it. An empty dataset
// or invalid monthsBack yields an Info with no ranges and an incomplete
// availability report.
func CalculateLTMInfo(d *dataset.Dataset, availableYears []int, monthsBack int) Info {
	year, endPeriod, ok := LatestAvailablePeriod(d)
	if !ok {
		return Info{
			Ranges: []Range{},
			Label:  "no data",
			Availability: Availability{
				ExpectedMonths: monthsBack,
				Message:        "dataset contains no rows",
			},
			Data: d,
		}
	}

	ranges := CalculateLTMRange(year, endPeriod, monthsBack)
	availability := CheckDataAvailability(ranges, availableYears, monthsBack)

	return Info{
		Ranges:       ranges,
		Label:        windowLabel(ranges, monthsBack),
		Availability: availability,
		Data:         d.Restrict(InWindow(ranges)),
	}
}

// InWindow builds a row predicate matching rows inside any of the ranges
func InWindow(ranges []Range) func(dataset.Row) bool {
	return func(row dataset.Row) bool {
		for _, r := range ranges {
			if row.Year == r.Year && row.Period >= r.StartPeriod && row.Period <= r.EndPeriod {
				return true
			}
		}
		return false
	}
}

func windowLabel(ranges []Range, monthsBack int) string {
	if len(ranges) == 0 {
		return "no data"
	}
	first := ranges[0]
	last := ranges[len(ranges)-1]
	return fmt.Sprintf("Last %d months (%d P%02d to %d P%02d)",
		monthsBack, first.Year, first.StartPeriod, last.Year, last.EndPeriod)
}
