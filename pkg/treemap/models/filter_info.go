package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// FilterKind distinguishes range and values filter information.
type FilterKind int

const (
	// KindRange describes a numeric column filtered by a min/max range.
	KindRange FilterKind = iota
	// KindValues describes a categorical column filtered by its values.
	KindValues
)

// FilterInfo describes how a column of a dataset may be filtered.
type FilterInfo struct {
	Kind FilterKind
	// Column is the column the information applies to.
	Column string
	// Label is the user-facing label of the column.
	Label string

	// Min and Max bound a range filter.
	Min decimal.Decimal
	Max decimal.Decimal

	// Values lists the distinct values of a values filter, sorted.
	Values []string
	// TimePeriods optionally maps each value to its matched time periods.
	TimePeriods map[string]TimePeriodMatches
}

// NewRangeFilterInfo creates range filter information.
func NewRangeFilterInfo(column, label string, min, max decimal.Decimal) FilterInfo {
	return FilterInfo{Kind: KindRange, Column: column, Label: label, Min: min, Max: max}
}

// NewValuesFilterInfo creates values filter information.
func NewValuesFilterInfo(column, label string, values []string) FilterInfo {
	return FilterInfo{Kind: KindValues, Column: column, Label: label, Values: values}
}

// MarshalJSON encodes the fields of the filter kind only.
func (f FilterInfo) MarshalJSON() ([]byte, error) {
	switch f.Kind {
	case KindRange:
		return json.Marshal(struct {
			Type   string      `json:"type"`
			Column string      `json:"column"`
			Label  string      `json:"label"`
			Min    json.Number `json:"min"`
			Max    json.Number `json:"max"`
		}{"range", f.Column, f.Label, json.Number(f.Min.String()), json.Number(f.Max.String())})
	default:
		values := f.Values
		if values == nil {
			values = []string{}
		}
		return json.Marshal(struct {
			Type        string                       `json:"type"`
			Column      string                       `json:"column"`
			Label       string                       `json:"label"`
			Values      []string                     `json:"values"`
			TimePeriods map[string]TimePeriodMatches `json:"timePeriods,omitempty"`
		}{"values", f.Column, f.Label, values, f.TimePeriods})
	}
}
