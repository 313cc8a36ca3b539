// Package filter provides row filters over tabular datasets.
//
// Every filter is a pure, column-local predicate that only removes rows, so
// applying a set of filters yields the same rows in any order.
package filter

import (
	"fmt"

	"github.com/iish/treemap-go/pkg/treemap/tabular"
	"github.com/shopspring/decimal"
)

// Filter narrows a dataset down to the rows matching a predicate.
type Filter interface {
	Filter(d tabular.Dataset) (*tabular.Filtered, error)
}

// Values keeps rows whose value in Column is one of Allowed, and rows where
// the value is null if IncludeMissing is set.
type Values struct {
	Column         string
	Allowed        map[string]struct{}
	IncludeMissing bool
}

// NewValues creates a values filter.
func NewValues(column string, allowed []string, includeMissing bool) *Values {
	set := make(map[string]struct{}, len(allowed))
	for _, v := range allowed {
		set[v] = struct{}{}
	}
	return &Values{Column: column, Allowed: set, IncludeMissing: includeMissing}
}

// Filter applies the filter.
func (f *Values) Filter(d tabular.Dataset) (*tabular.Filtered, error) {
	return keep(d, f.Column, func(v string, ok bool) bool {
		if !ok {
			return f.IncludeMissing
		}
		_, allowed := f.Allowed[v]
		return allowed
	})
}

func (f *Values) String() string {
	return fmt.Sprintf("values(%s, %d allowed, missing=%t)", f.Column, len(f.Allowed), f.IncludeMissing)
}

// Minimum keeps rows whose value in Column is strictly greater than
// Threshold. Rows with a value that is not a number are kept.
type Minimum struct {
	Column    string
	Threshold decimal.Decimal
}

// Filter applies the filter.
func (f *Minimum) Filter(d tabular.Dataset) (*tabular.Filtered, error) {
	return keep(d, f.Column, func(v string, ok bool) bool {
		n, isNumber := tabular.ParseDecimal(v, ok)
		return !isNumber || n.GreaterThan(f.Threshold)
	})
}

func (f *Minimum) String() string {
	return fmt.Sprintf("min(%s > %s)", f.Column, f.Threshold)
}

// Maximum keeps rows whose value in Column is strictly less than
// Threshold. Rows with a value that is not a number are kept.
type Maximum struct {
	Column    string
	Threshold decimal.Decimal
}

// Filter applies the filter.
func (f *Maximum) Filter(d tabular.Dataset) (*tabular.Filtered, error) {
	return keep(d, f.Column, func(v string, ok bool) bool {
		n, isNumber := tabular.ParseDecimal(v, ok)
		return !isNumber || n.LessThan(f.Threshold)
	})
}

func (f *Maximum) String() string {
	return fmt.Sprintf("max(%s < %s)", f.Column, f.Threshold)
}

// Func adapts a function to the Filter interface.
type Func func(d tabular.Dataset) (*tabular.Filtered, error)

// Filter calls fn(d).
func (fn Func) Filter(d tabular.Dataset) (*tabular.Filtered, error) {
	return fn(d)
}

// Apply runs all filters against d, each on the result of the previous one.
// With no filters, d is returned unchanged.
func Apply(d tabular.Dataset, filters ...Filter) (tabular.Dataset, error) {
	for _, f := range filters {
		filtered, err := f.Filter(d)
		if err != nil {
			return nil, err
		}
		d = filtered
	}
	return d, nil
}

func keep(d tabular.Dataset, column string, pred func(string, bool) bool) (*tabular.Filtered, error) {
	col, err := d.Column(column)
	if err != nil {
		return nil, fmt.Errorf("filter on %q: %w", column, err)
	}
	rows := make([]int, 0, d.Size())
	for row := 0; row < d.Size(); row++ {
		if pred(col.Value(row)) {
			rows = append(rows, row)
		}
	}
	return tabular.NewFiltered(d, rows)
}
