package tabular

import (
	"sort"
)

// Filtered is a read-only projection of a base dataset onto a subset of its
// rows. It always points at a dataset that is not itself a Filtered view, so
// a row lookup costs a single indirection however often the data was filtered.
type Filtered struct {
	base Dataset
	rows []int
}

// NewFiltered creates a view on base holding the given rows, which are
// indices into base. When base is itself a Filtered view, the rows are
// re-based onto its underlying dataset. The rows are sorted and deduplicated.
func NewFiltered(base Dataset, rows []int) (*Filtered, error) {
	mapped := make([]int, 0, len(rows))
	size := base.Size()
	parent, isFiltered := base.(*Filtered)
	for _, row := range rows {
		if row < 0 || row >= size {
			return nil, rowError(row, size)
		}
		if isFiltered {
			row = parent.rows[row]
		}
		mapped = append(mapped, row)
	}
	if isFiltered {
		base = parent.base
	}
	return &Filtered{base: base, rows: normalizeRows(mapped)}, nil
}

// Base returns the dataset the view projects.
func (f *Filtered) Base() Dataset {
	return f.base
}

// BaseRows returns the rows of the base dataset held by the view.
// The returned slice must not be modified.
func (f *Filtered) BaseRows() []int {
	return f.rows
}

// Headers returns the headers of the base dataset.
func (f *Filtered) Headers() []string {
	return f.base.Headers()
}

// Size returns the number of rows in the view.
func (f *Filtered) Size() int {
	return len(f.rows)
}

// Column resolves a column of the base dataset.
func (f *Filtered) Column(name string) (Column, error) {
	col, err := f.base.Column(name)
	if err != nil {
		return nil, err
	}
	return filteredColumn{col: col, rows: f.rows}, nil
}

type filteredColumn struct {
	col  Column
	rows []int
}

func (c filteredColumn) Name() string { return c.col.Name() }

func (c filteredColumn) Value(row int) (string, bool) {
	return c.col.Value(c.rows[row])
}

// normalizeRows sorts rows in place and drops duplicates.
func normalizeRows(rows []int) []int {
	if len(rows) < 2 {
		return rows
	}
	sort.Ints(rows)
	out := rows[:1]
	for _, r := range rows[1:] {
		if r != out[len(out)-1] {
			out = append(out, r)
		}
	}
	return out
}
