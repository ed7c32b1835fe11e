// Package filter compiles declarative row-filter specifications into
// predicates over the movements dataset. A specification maps field names to
// a scalar (exact match), a list of scalars (OR), or a range object with
// gte/lte/gt/lt operators; fields conjoin.
package filter

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/finstmt/fsg/pkg/dataset"
)

// Spec is a declarative filter: field name to scalar, list or range value.
// The value shapes mirror what yaml.v3 produces for untyped mappings.
type Spec map[string]any

// Predicate reports whether a row matches a compiled specification
type Predicate func(dataset.Row) bool

// Range operator keys accepted inside a range value
const (
	opGTE = "gte"
	opLTE = "lte"
	opGT  = "gt"
	opLT  = "lt"
)

// Compile turns a specification into a row predicate. Compile assumes the
// specification has passed Validate; callers needing safety use ApplySafe.
// An empty specification compiles to a predicate accepting every row.
func Compile(spec Spec) Predicate {
	if len(spec) == 0 {
		return func(dataset.Row) bool { return true }
	}

	// Sort fields for deterministic evaluation order.
	fields := make([]string, 0, len(spec))
	for field := range spec {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	preds := make([]Predicate, 0, len(fields))
	for _, field := range fields {
		preds = append(preds, compileField(field, spec[field]))
	}

	return func(row dataset.Row) bool {
		for _, pred := range preds {
			if !pred(row) {
				return false
			}
		}
		return true
	}
}

func compileField(field string, value any) Predicate {
	switch v := value.(type) {
	case []any:
		return func(row dataset.Row) bool {
			actual, ok := row.Field(field)
			if !ok {
				return false
			}
			for _, candidate := range v {
				if scalarMatches(actual, candidate) {
					return true
				}
			}
			return false
		}

	case map[string]any:
		return func(row dataset.Row) bool {
			actual, ok := row.Field(field)
			if !ok {
				return false
			}
			return rangeMatches(actual, v)
		}

	default:
		return func(row dataset.Row) bool {
			actual, ok := row.Field(field)
			if !ok {
				return false
			}
			return scalarMatches(actual, value)
		}
	}
}

// scalarMatches compares a row field against a specification scalar. Numeric
// specification values compare numerically against the field's parsed value,
// string values compare as strings.
func scalarMatches(actual string, expected any) bool {
	if num, ok := asNumber(expected); ok {
		parsed, err := strconv.ParseFloat(actual, 64)
		if err != nil {
			return false
		}
		return parsed == num
	}
	return actual == fmt.Sprintf("%v", expected)
}

// rangeMatches conjoins the comparison operators present in the range value.
func rangeMatches(actual string, bounds map[string]any) bool {
	for op, bound := range bounds {
		cmp, ok := compareScalar(actual, bound)
		if !ok {
			return false
		}
		switch op {
		case opGTE:
			if cmp < 0 {
				return false
			}
		case opLTE:
			if cmp > 0 {
				return false
			}
		case opGT:
			if cmp <= 0 {
				return false
			}
		case opLT:
			if cmp >= 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// compareScalar orders a row field against a bound of the bound's own type:
// numerically when the bound is a number, lexicographically when it is a
// string.
func compareScalar(actual string, bound any) (int, bool) {
	if num, ok := asNumber(bound); ok {
		parsed, err := strconv.ParseFloat(actual, 64)
		if err != nil {
			return 0, false
		}
		switch {
		case parsed < num:
			return -1, true
		case parsed > num:
			return 1, true
		default:
			return 0, true
		}
	}

	expected := fmt.Sprintf("%v", bound)
	switch {
	case actual < expected:
		return -1, true
	case actual > expected:
		return 1, true
	default:
		return 0, true
	}
}

func asNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float64:
		return v, true
	case float32:
		return float64(v), true
	default:
		return 0, false
	}
}

// Apply restricts a dataset to the rows matching the specification. The
// original dataset is returned unchanged for an empty specification. Apply
// never validates; call Validate (or use ApplySafe) first.
func Apply(spec Spec, d *dataset.Dataset) *dataset.Dataset {
	if len(spec) == 0 {
		return d
	}
	return d.Restrict(Compile(spec))
}

// ApplySafe validates the specification before applying it, surfacing
// validation failure as a typed error.
func ApplySafe(spec Spec, d *dataset.Dataset) (*dataset.Dataset, error) {
	result := Validate(spec)
	if !result.IsValid {
		return nil, &ValidationError{Errors: result.Errors}
	}
	return Apply(spec, d), nil
}
