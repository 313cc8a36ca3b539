package filter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Spec holds the filters of a request, keyed by column.
type Spec struct {
	// Values maps a column to the values to keep.
	Values map[string][]string
	// Min maps a column to its exclusive lower bound.
	Min map[string]string
	// Max maps a column to its exclusive upper bound.
	Max map[string]string
}

// ParseSpec parses filter expressions of the form "filter:column=value",
// "min:column=number" and "max:column=number". Repeated values filters on the
// same column accumulate.
func ParseSpec(exprs []string) (Spec, error) {
	spec := Spec{
		Values: make(map[string][]string),
		Min:    make(map[string]string),
		Max:    make(map[string]string),
	}
	for _, expr := range exprs {
		kind, rest, found := strings.Cut(expr, ":")
		if !found {
			return spec, fmt.Errorf("invalid filter expression %q: missing kind", expr)
		}
		column, value, found := strings.Cut(rest, "=")
		if !found || column == "" {
			return spec, fmt.Errorf("invalid filter expression %q: expected column=value", expr)
		}
		switch kind {
		case "filter":
			spec.Values[column] = append(spec.Values[column], value)
		case "min":
			spec.Min[column] = value
		case "max":
			spec.Max[column] = value
		default:
			return spec, fmt.Errorf("invalid filter expression %q: unknown kind %q", expr, kind)
		}
	}
	return spec, nil
}

// Build turns the spec into filters. Blank values are ignored and a values
// filter also keeps nulls when its values contain the empty placeholder.
// Bounds that are not numbers are rejected.
func (s Spec) Build(emptyPlaceholder string) ([]Filter, error) {
	var filters []Filter

	for _, column := range sortedColumns(s.Values) {
		var allowed []string
		includeMissing := false
		for _, v := range s.Values[column] {
			if strings.TrimSpace(v) == "" {
				continue
			}
			allowed = append(allowed, v)
			if v == emptyPlaceholder {
				includeMissing = true
			}
		}
		if len(allowed) > 0 {
			filters = append(filters, NewValues(column, allowed, includeMissing))
		}
	}

	for _, column := range sortedColumns(s.Min) {
		threshold, err := decimal.NewFromString(s.Min[column])
		if err != nil {
			return nil, fmt.Errorf("min filter on %q: %w", column, err)
		}
		filters = append(filters, &Minimum{Column: column, Threshold: threshold})
	}

	for _, column := range sortedColumns(s.Max) {
		threshold, err := decimal.NewFromString(s.Max[column])
		if err != nil {
			return nil, fmt.Errorf("max filter on %q: %w", column, err)
		}
		filters = append(filters, &Maximum{Column: column, Threshold: threshold})
	}

	return filters, nil
}

func sortedColumns[V any](m map[string]V) []string {
	cols := make([]string, 0, len(m))
	for c := range m {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}
