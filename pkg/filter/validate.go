package filter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/finstmt/fsg/pkg/dataset"
)

// ValidationResult collects every problem found in a specification; it is
// never partial on failure, so one pass reports all offending fields.
type ValidationResult struct {
	IsValid bool
	Errors  []string
}

// ValidationError carries a failed validation through an error return
type ValidationError struct {
	Errors []string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid filter specification: %s", strings.Join(e.Errors, "; "))
}

//nolint:gochecknoglobals // fixed allow-lists derived once at init
var (
	allowedFields    = buildAllowedFields()
	allowedRangeOps  = map[string]struct{}{opGTE: {}, opLTE: {}, opGT: {}, opLT: {}}
	allowedFieldList = strings.Join(dataset.FilterableFields, ", ")
)

func buildAllowedFields() map[string]struct{} {
	fields := make(map[string]struct{}, len(dataset.FilterableFields))
	for _, field := range dataset.FilterableFields {
		fields[field] = struct{}{}
	}
	return fields
}

// Validate checks a specification against the field allow-list and value
// shape rules. It never mutates the input and collects all errors instead of
// failing fast.
func Validate(spec Spec) ValidationResult {
	errs := make([]string, 0)

	// Sort fields so error order is stable.
	fields := make([]string, 0, len(spec))
	for field := range spec {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	for _, field := range fields {
		if _, ok := allowedFields[field]; !ok {
			errs = append(errs, fmt.Sprintf("unknown filter field %q (allowed: %s)", field, allowedFieldList))
			continue
		}
		errs = append(errs, validateValue(field, spec[field])...)
	}

	return ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}

func validateValue(field string, value any) []string {
	switch v := value.(type) {
	case nil:
		return []string{fmt.Sprintf("field %q: value must not be null", field)}

	case []any:
		if len(v) == 0 {
			return []string{fmt.Sprintf("field %q: list value must not be empty", field)}
		}
		var errs []string
		for i, item := range v {
			if item == nil {
				errs = append(errs, fmt.Sprintf("field %q: list item %d must not be null", field, i))
				continue
			}
			if !isScalar(item) {
				errs = append(errs, fmt.Sprintf("field %q: list item %d must be a string or number", field, i))
			}
		}
		return errs

	case map[string]any:
		return validateRange(field, v)

	default:
		if !isScalar(value) {
			return []string{fmt.Sprintf("field %q: value must be a string, number, list or range", field)}
		}
		return nil
	}
}

func validateRange(field string, bounds map[string]any) []string {
	if len(bounds) == 0 {
		return []string{fmt.Sprintf("field %q: range must contain at least one of gte, lte, gt, lt", field)}
	}

	ops := make([]string, 0, len(bounds))
	for op := range bounds {
		ops = append(ops, op)
	}
	sort.Strings(ops)

	var errs []string
	numeric, stringly := 0, 0
	for _, op := range ops {
		if _, ok := allowedRangeOps[op]; !ok {
			errs = append(errs, fmt.Sprintf("field %q: unknown range operator %q", field, op))
			continue
		}
		bound := bounds[op]
		if bound == nil {
			errs = append(errs, fmt.Sprintf("field %q: range operator %q must not be null", field, op))
			continue
		}
		if !isScalar(bound) {
			errs = append(errs, fmt.Sprintf("field %q: range operator %q must be a string or number", field, op))
			continue
		}
		if _, ok := asNumber(bound); ok {
			numeric++
		} else {
			stringly++
		}
	}

	if numeric > 0 && stringly > 0 {
		errs = append(errs, fmt.Sprintf("field %q: range bounds must all be strings or all be numbers", field))
	}

	return errs
}

func isScalar(value any) bool {
	if _, ok := asNumber(value); ok {
		return true
	}
	_, ok := value.(string)
	return ok
}
