// Package filterinfo derives, per column of a dataset, how the column may
// be filtered: by a numeric range or by an enumerated set of values.
package filterinfo

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/iish/treemap-go/pkg/treemap/models"
	"github.com/iish/treemap-go/pkg/treemap/tabular"
)

// ValuesEnricher adds domain information to values filter information.
type ValuesEnricher interface {
	EnrichValues(d tabular.Dataset, info *models.FilterInfo) error
}

// Deriver derives filter information.
type Deriver struct {
	// Empty replaces null values.
	Empty string
	// AlwaysCategorical lists columns that never get a range filter.
	AlwaysCategorical map[string]struct{}
	// Labels maps columns to user-facing labels; the column name is used
	// when a column has no label.
	Labels map[string]string
	// Enricher, if set, is applied to every values filter information.
	Enricher ValuesEnricher
}

// Derive returns the filter information for the requested columns, in
// request order. A numeric column holding a single distinct value, or a
// column of a dataset without rows, yields no information at all.
func (dr *Deriver) Derive(d tabular.Dataset, columns []string) ([]models.FilterInfo, error) {
	var infos []models.FilterInfo
	for _, column := range columns {
		values, err := dr.distinct(d, column)
		if err != nil {
			return nil, err
		}

		label := column
		if l, ok := dr.Labels[column]; ok && l != "" {
			label = l
		}

		if _, categorical := dr.AlwaysCategorical[column]; !categorical {
			if lo, hi, numeric := bounds(values); numeric {
				if !lo.Equal(hi) {
					infos = append(infos, models.NewRangeFilterInfo(column, label, lo, hi))
				}
				continue
			}
		}

		info := models.NewValuesFilterInfo(column, label, values)
		if dr.Enricher != nil {
			if err := dr.Enricher.EnrichValues(d, &info); err != nil {
				return nil, err
			}
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// distinct returns the sorted distinct values of a column.
func (dr *Deriver) distinct(d tabular.Dataset, column string) ([]string, error) {
	col, err := d.Column(column)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	for row := 0; row < d.Size(); row++ {
		v, ok := col.Value(row)
		if !ok {
			v = dr.Empty
		}
		seen[v] = struct{}{}
	}
	values := make([]string, 0, len(seen))
	for v := range seen {
		values = append(values, v)
	}
	sort.Strings(values)
	return values, nil
}

// bounds returns the minimum and maximum of the values if all of them are
// numbers. An empty value set is numeric with equal bounds, so it yields
// no information.
func bounds(values []string) (decimal.Decimal, decimal.Decimal, bool) {
	if len(values) == 0 {
		return decimal.Zero, decimal.Zero, true
	}
	var lo, hi decimal.Decimal
	for i, v := range values {
		n, ok := tabular.ParseDecimal(v, true)
		if !ok {
			return decimal.Zero, decimal.Zero, false
		}
		if i == 0 || n.LessThan(lo) {
			lo = n
		}
		if i == 0 || n.GreaterThan(hi) {
			hi = n
		}
	}
	return lo, hi, true
}
