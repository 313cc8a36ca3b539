package tabular

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// ParseDecimal parses a cell value as a decimal number. Parsing is total:
// a null or non-numeric value yields false rather than an error.
func ParseDecimal(value string, ok bool) (decimal.Decimal, bool) {
	if !ok || value == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// ParseInt parses a cell value as an integer. A null or non-integer value
// yields false.
func ParseInt(value string, ok bool) (int, bool) {
	if !ok || value == "" {
		return 0, false
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, false
	}
	return n, true
}
