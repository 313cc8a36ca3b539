// Package tabular provides the row/column dataset abstraction the treemap
// pipeline operates on, together with filtered and combined views over it.
//
// A missing cell is represented as null. Tables never store empty strings:
// an empty string handed to NewTable is stored, and read back, as null.
package tabular

import (
	"sort"
)

// Dataset is a read-only, row-addressable table of nullable strings.
type Dataset interface {
	// Headers returns the column names, sorted.
	Headers() []string
	// Size returns the number of rows.
	Size() int
	// Column resolves a column by name. It fails with a *LookupError
	// wrapping ErrUnknownColumn if the column is absent.
	Column(name string) (Column, error)
}

// Column reads the values of one resolved column.
// Value must only be called with rows in [0, Size()).
type Column interface {
	Name() string
	Value(row int) (string, bool)
}

// Rows returns the row indices 0..Size()-1 of a dataset.
func Rows(d Dataset) []int {
	rows := make([]int, d.Size())
	for i := range rows {
		rows[i] = i
	}
	return rows
}

// Value returns the value of a column in a row, with both the column name
// and the row index checked. The boolean is false for a null cell.
func Value(d Dataset, column string, row int) (string, bool, error) {
	col, err := d.Column(column)
	if err != nil {
		return "", false, err
	}
	if row < 0 || row >= d.Size() {
		return "", false, rowError(row, d.Size())
	}
	v, ok := col.Value(row)
	return v, ok, nil
}

// Table is a concrete, in-memory dataset.
type Table struct {
	headers map[string]int
	rows    [][]string
}

// NewTable creates a table from a header mapping (column name to index)
// and rows. Every row must cover every mapped index; shorter rows are
// padded with nulls. The table takes ownership of the given slices.
func NewTable(headers map[string]int, rows [][]string) *Table {
	width := 0
	for _, idx := range headers {
		if idx+1 > width {
			width = idx + 1
		}
	}
	for i, row := range rows {
		if len(row) < width {
			padded := make([]string, width)
			copy(padded, row)
			rows[i] = padded
		}
	}
	return &Table{headers: headers, rows: rows}
}

// Headers returns the column names, sorted.
func (t *Table) Headers() []string {
	return sortedKeys(t.headers)
}

// HeaderIndex returns the header mapping. The returned map must not be modified.
func (t *Table) HeaderIndex() map[string]int {
	return t.headers
}

// RawRows returns the underlying rows. The returned slices must not be modified.
func (t *Table) RawRows() [][]string {
	return t.rows
}

// Size returns the number of rows.
func (t *Table) Size() int {
	return len(t.rows)
}

// Column resolves a column by name.
func (t *Table) Column(name string) (Column, error) {
	idx, ok := t.headers[name]
	if !ok {
		return nil, columnError(name)
	}
	return tableColumn{table: t, name: name, idx: idx}, nil
}

type tableColumn struct {
	table *Table
	name  string
	idx   int
}

func (c tableColumn) Name() string { return c.name }

func (c tableColumn) Value(row int) (string, bool) {
	v := c.table.rows[row][c.idx]
	return v, v != ""
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
