package tabular

import (
	"sort"
)

// Multi concatenates several datasets into one virtual row-address space.
// Its headers are the union of the headers of its datasets; a column that a
// dataset lacks reads as null for that dataset's rows.
type Multi struct {
	datasets []Dataset
	size     int
}

// NewMulti combines the given datasets in order. Nested Multi datasets are
// flattened.
func NewMulti(datasets ...Dataset) *Multi {
	m := &Multi{}
	for _, d := range datasets {
		if nested, ok := d.(*Multi); ok {
			m.datasets = append(m.datasets, nested.datasets...)
		} else {
			m.datasets = append(m.datasets, d)
		}
	}
	for _, d := range m.datasets {
		m.size += d.Size()
	}
	return m
}

// Datasets returns the combined datasets.
func (m *Multi) Datasets() []Dataset {
	return m.datasets
}

// Headers returns the union of all headers, sorted.
func (m *Multi) Headers() []string {
	seen := make(map[string]struct{})
	for _, d := range m.datasets {
		for _, h := range d.Headers() {
			seen[h] = struct{}{}
		}
	}
	headers := make([]string, 0, len(seen))
	for h := range seen {
		headers = append(headers, h)
	}
	sort.Strings(headers)
	return headers
}

// Size returns the total number of rows.
func (m *Multi) Size() int {
	return m.size
}

// Column resolves a column present in at least one of the datasets.
func (m *Multi) Column(name string) (Column, error) {
	cols := make([]Column, len(m.datasets))
	found := false
	for i, d := range m.datasets {
		col, err := d.Column(name)
		if err != nil {
			continue
		}
		cols[i] = col
		found = true
	}
	if !found {
		return nil, columnError(name)
	}
	return multiColumn{name: name, multi: m, cols: cols}, nil
}

// Locate resolves a combined row index to a dataset and a row within it.
func (m *Multi) Locate(row int) (int, int, error) {
	if row < 0 || row >= m.size {
		return 0, 0, rowError(row, m.size)
	}
	idx := row
	for i, d := range m.datasets {
		if idx < d.Size() {
			return i, idx, nil
		}
		idx -= d.Size()
	}
	return 0, 0, rowError(row, m.size)
}

type multiColumn struct {
	name  string
	multi *Multi
	cols  []Column
}

func (c multiColumn) Name() string { return c.name }

func (c multiColumn) Value(row int) (string, bool) {
	i, local, err := c.multi.Locate(row)
	if err != nil {
		panic(err)
	}
	if c.cols[i] == nil {
		return "", false
	}
	return c.cols[i].Value(local)
}
