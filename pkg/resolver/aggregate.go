package resolver

import (
	"errors"
	"fmt"
)

// ErrUnknownAggregate is returned when a definition names an aggregate
// outside the closed function set
var ErrUnknownAggregate = errors.New("unknown aggregate function")

// Aggregate is one of the closed set of per-year aggregate functions
type Aggregate string

// The closed aggregate function enumeration
const (
	AggregateSum     Aggregate = "sum"
	AggregateAverage Aggregate = "average"
	AggregateCount   Aggregate = "count"
	AggregateMin     Aggregate = "min"
	AggregateMax     Aggregate = "max"
	AggregateFirst   Aggregate = "first"
	AggregateLast    Aggregate = "last"
)

// Aggregates lists every valid aggregate function
//
//nolint:gochecknoglobals // fixed enumeration
var Aggregates = []Aggregate{
	AggregateSum, AggregateAverage, AggregateCount,
	AggregateMin, AggregateMax, AggregateFirst, AggregateLast,
}

// ParseAggregate validates an aggregate function name
func ParseAggregate(name string) (Aggregate, error) {
	for _, agg := range Aggregates {
		if string(agg) == name {
			return agg, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAggregate, name)
}

// Apply reduces a year-group of amounts, in dataset iteration order, to one
// value. An empty group yields 0 for every function: sum/count/average by
// arithmetic, and min/max/first/last by explicit policy so no consumer has
// to branch on a "no data" marker.
func (a Aggregate) Apply(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, nil
	}

	switch a {
	case AggregateSum:
		return sum(values), nil
	case AggregateAverage:
		return sum(values) / float64(len(values)), nil
	case AggregateCount:
		return float64(len(values)), nil
	case AggregateMin:
		minValue := values[0]
		for _, v := range values[1:] {
			if v < minValue {
				minValue = v
			}
		}
		return minValue, nil
	case AggregateMax:
		maxValue := values[0]
		for _, v := range values[1:] {
			if v > maxValue {
				maxValue = v
			}
		}
		return maxValue, nil
	case AggregateFirst:
		return values[0], nil
	case AggregateLast:
		return values[len(values)-1], nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownAggregate, string(a))
	}
}

func sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}
