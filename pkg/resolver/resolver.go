// Package resolver turns named variable definitions (a row filter plus an
// aggregate function) into per-year numeric values over a movements dataset,
// memoizing results and detecting circular variable references within a
// single resolution pass.
package resolver

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/finstmt/fsg/pkg/dataset"
	"github.com/finstmt/fsg/pkg/filter"
)

var (
	// ErrCircularDependency is returned when variable resolution revisits a
	// name already being resolved
	ErrCircularDependency = errors.New("circular variable dependency")
	// ErrUnknownVariable is returned when a dependency names a variable
	// absent from the registry
	ErrUnknownVariable = errors.New("unknown variable")
)

// Definition is a named variable's recipe: a row filter plus the aggregate
// applied to the filtered rows per year.
type Definition struct {
	Filter      filter.Spec `yaml:"filter"`
	Aggregate   Aggregate   `yaml:"aggregate"`
	Description string      `yaml:"description,omitempty"`
}

// Validate checks the definition's aggregate and filter
func (d *Definition) Validate() error {
	if _, err := ParseAggregate(string(d.Aggregate)); err != nil {
		return err
	}
	if result := filter.Validate(d.Filter); !result.IsValid {
		return &filter.ValidationError{Errors: result.Errors}
	}
	return nil
}

// Registry maps variable names to their definitions
type Registry map[string]Definition

// ResolvedValue maps each of the dataset's known years to a numeric result
type ResolvedValue map[int]float64

// Resolve applies one definition to the dataset: filter, group the remaining
// rows by year over the dataset's full known year set, and aggregate each
// group. Years absent after filtering resolve to 0, never to a missing
// entry.
func Resolve(def Definition, d *dataset.Dataset) (ResolvedValue, error) {
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("invalid variable definition: %w", err)
	}

	filtered := filter.Apply(def.Filter, d)

	groups := make(map[int][]float64)
	for _, row := range filtered.Rows() {
		groups[row.Year] = append(groups[row.Year], row.Amount)
	}

	resolved := make(ResolvedValue, len(d.Years()))
	for _, year := range d.Years() {
		value, err := def.Aggregate.Apply(groups[year])
		if err != nil {
			return nil, fmt.Errorf("aggregating year %d: %w", year, err)
		}
		resolved[year] = value
	}

	return resolved, nil
}

// DependencyFunc reports which other variables a definition depends on.
// Today's filter language cannot reference variables, so registries are flat
// unless the caller models cross-references (the report renderer does, via
// expression dependencies).
type DependencyFunc func(name string, def Definition) []string

// Option configures a resolution pass
type Option func(*resolution)

// WithDependencies installs the dependency model for a resolution pass
func WithDependencies(deps DependencyFunc) Option {
	return func(r *resolution) {
		r.deps = deps
	}
}

// WithOnResolve installs a hook invoked once per variable actually resolved
// (cache hits do not fire it).
func WithOnResolve(onResolve func(name string)) Option {
	return func(r *resolution) {
		r.onResolve = onResolve
	}
}

// resolution is the short-lived context of one top-level ResolveAll call:
// the memo cache plus the in-progress stack used for cycle detection. It is
// created fresh per call and discarded afterward; concurrent passes never
// share one.
type resolution struct {
	registry  Registry
	data      *dataset.Dataset
	cache     map[string]ResolvedValue
	stack     []string
	inStack   map[string]bool
	deps      DependencyFunc
	onResolve func(name string)
}

// ResolveAll resolves every variable in the registry, memoizing each result
// so a variable's filter is applied at most once per pass. A dependency
// cycle fails with an error naming the full chain.
func ResolveAll(registry Registry, d *dataset.Dataset, opts ...Option) (map[string]ResolvedValue, error) {
	r := &resolution{
		registry: registry,
		data:     d,
		cache:    make(map[string]ResolvedValue, len(registry)),
		inStack:  make(map[string]bool),
	}
	for _, opt := range opts {
		opt(r)
	}

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if _, err := r.resolve(name); err != nil {
			return nil, err
		}
	}

	return r.cache, nil
}

func (r *resolution) resolve(name string) (ResolvedValue, error) {
	if cached, ok := r.cache[name]; ok {
		return cached, nil
	}

	if r.inStack[name] {
		chain := append(append([]string{}, r.stack...), name)
		return nil, fmt.Errorf("%w: %s", ErrCircularDependency, strings.Join(chain, " -> "))
	}

	def, ok := r.registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVariable, name)
	}

	r.stack = append(r.stack, name)
	r.inStack[name] = true
	defer func() {
		r.stack = r.stack[:len(r.stack)-1]
		delete(r.inStack, name)
	}()

	if r.deps != nil {
		for _, dep := range r.deps(name, def) {
			if _, err := r.resolve(dep); err != nil {
				return nil, err
			}
		}
	}

	resolved, err := Resolve(def, r.data)
	if err != nil {
		return nil, fmt.Errorf("resolving variable %q: %w", name, err)
	}

	if r.onResolve != nil {
		r.onResolve(name)
	}

	r.cache[name] = resolved
	return resolved, nil
}
