// Package report loads declarative report definitions (variables plus an
// ordered row layout) and renders them against a movements dataset using the
// resolver, expression and period engines.
package report

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/finstmt/fsg/pkg/expr"
	"github.com/finstmt/fsg/pkg/period"
	"github.com/finstmt/fsg/pkg/resolver"
)

// Definition-level errors
var (
	ErrReportNotFound  = errors.New("report not found")
	ErrInvalidRowKind  = errors.New("invalid row kind")
	ErrDefinitionCycle = errors.New("calculated rows form a cycle")
)

// RowKind discriminates layout row types
type RowKind string

// The closed set of layout row kinds
const (
	RowVariable RowKind = "variable"
	RowCalc     RowKind = "calc"
	RowHeader   RowKind = "header"
	RowSpacer   RowKind = "spacer"
)

// RowDef is one ordered layout item. Variable rows print a resolved
// variable; calc rows evaluate an expression over variable names and @N
// references to other rows' computed values; header and spacer rows carry no
// values.
type RowDef struct {
	Kind       RowKind `yaml:"kind"`
	Label      string  `yaml:"label,omitempty"`
	Variable   string  `yaml:"variable,omitempty"`
	Expression string  `yaml:"expression,omitempty"`
	Bold       bool    `yaml:"bold,omitempty"`
}

// HasValues reports whether the row produces numeric values
func (r *RowDef) HasValues() bool {
	return r.Kind == RowVariable || r.Kind == RowCalc
}

// LTMConfig controls the trailing-months window for a report
type LTMConfig struct {
	Enabled    bool `yaml:"enabled" default:"false"`
	MonthsBack int  `yaml:"monthsBack" default:"12"`
}

// Validate checks the LTM options
func (c *LTMConfig) Validate() error {
	if c.Enabled && (c.MonthsBack <= 0 || c.MonthsBack > 10*period.MonthsPerYear) {
		return fmt.Errorf("ltm monthsBack must be between 1 and %d, got %d", 10*period.MonthsPerYear, c.MonthsBack)
	}
	return nil
}

// Definition is a complete declarative report: a variable registry plus an
// ordered layout. Title is a template rendered with sprig functions at
// generation time.
type Definition struct {
	ID         string                         `yaml:"id"`
	Title      string                         `yaml:"title,omitempty"`
	Variables  map[string]resolver.Definition `yaml:"variables"`
	Rows       []RowDef                       `yaml:"rows"`
	LTM        LTMConfig                      `yaml:"ltm"`
	SourceFile string                         `yaml:"-"`
}

// Validate checks the definition: row kinds, variable references, calc
// expression syntax, @N reference targets and layout acyclicity.
func (d *Definition) Validate() error {
	if d.ID == "" {
		return errors.New("report id is required")
	}
	if len(d.Rows) == 0 {
		return fmt.Errorf("report %q has no rows", d.ID)
	}
	if err := d.LTM.Validate(); err != nil {
		return fmt.Errorf("report %q: %w", d.ID, err)
	}

	for name, varDef := range d.Variables {
		def := varDef
		if err := def.Validate(); err != nil {
			return fmt.Errorf("report %q variable %q: %w", d.ID, name, err)
		}
	}

	for i := range d.Rows {
		if err := d.validateRow(i); err != nil {
			return err
		}
	}

	if err := buildRowGraph(d); err != nil {
		return err
	}

	return nil
}

func (d *Definition) validateRow(i int) error {
	row := &d.Rows[i]
	position := i + 1

	switch row.Kind {
	case RowVariable:
		if row.Variable == "" {
			return fmt.Errorf("report %q row %d: variable rows need a variable name", d.ID, position)
		}
		if _, ok := d.Variables[row.Variable]; !ok {
			return fmt.Errorf("report %q row %d: undefined variable %q", d.ID, position, row.Variable)
		}

	case RowCalc:
		if row.Expression == "" {
			return fmt.Errorf("report %q row %d: calc rows need an expression", d.ID, position)
		}
		deps, err := expr.Dependencies(row.Expression)
		if err != nil {
			return fmt.Errorf("report %q row %d: %w", d.ID, position, err)
		}
		for _, dep := range deps {
			if err := d.validateReference(position, dep); err != nil {
				return err
			}
		}

	case RowHeader:
		if row.Label == "" {
			return fmt.Errorf("report %q row %d: header rows need a label", d.ID, position)
		}

	case RowSpacer:
		// Nothing to check.

	default:
		return fmt.Errorf("%w: report %q row %d kind %q", ErrInvalidRowKind, d.ID, position, row.Kind)
	}

	return nil
}

func (d *Definition) validateReference(position int, dep string) error {
	if target, ok := parseOrderRef(dep); ok {
		if target < 1 || target > len(d.Rows) {
			return fmt.Errorf("report %q row %d: reference %s is out of range (1-%d)", d.ID, position, dep, len(d.Rows))
		}
		if !d.Rows[target-1].HasValues() {
			return fmt.Errorf("report %q row %d: reference %s points at a %s row, which has no value",
				d.ID, position, dep, d.Rows[target-1].Kind)
		}
		return nil
	}

	if _, ok := d.Variables[dep]; !ok {
		return fmt.Errorf("report %q row %d: undefined variable %q in expression", d.ID, position, dep)
	}
	return nil
}

// parseOrderRef parses an "@N" dependency name into its 1-based row position
func parseOrderRef(dep string) (int, bool) {
	if !strings.HasPrefix(dep, "@") {
		return 0, false
	}
	n, err := strconv.Atoi(dep[1:])
	if err != nil {
		return 0, false
	}
	return n, true
}
