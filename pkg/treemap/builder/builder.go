// Package builder aggregates a dataset into a treemap over an ordered list
// of hierarchy columns.
package builder

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iish/treemap-go/pkg/treemap/models"
	"github.com/iish/treemap-go/pkg/treemap/tabular"
)

// DefaultEmptyLabel names groups of missing values when a column has no
// configured empty label.
const DefaultEmptyLabel = "-"

// Options configures a treemap build.
type Options struct {
	// Hierarchy lists the grouping columns, outermost first.
	Hierarchy []string
	// SizeColumn is summed into leaf sizes; non-numbers count as zero.
	SizeColumn string
	// RoundSize rounds leaf sizes to whole numbers, half away from zero.
	RoundSize bool
	// ColorColumn and CodeColumn, when set, decorate every node with the
	// distinct colors and codes of its rows.
	ColorColumn string
	CodeColumn  string
	// EmptyLabels names the group of missing values per hierarchy column.
	EmptyLabels map[string]string
	// Suffixes adds a display suffix per hierarchy column.
	Suffixes map[string]string
	// Multiples substitutes the column that is actually read, for
	// hierarchy columns and the code column.
	Multiples map[string]string
}

type builder struct {
	data  tabular.Dataset
	opts  Options
	size  tabular.Column
	color tabular.Column
	code  tabular.Column
	cols  map[string]tabular.Column
}

// Build aggregates the dataset into a treemap whose root is a composite
// called name.
func Build(d tabular.Dataset, name string, opts Options) (*models.Node, error) {
	b := &builder{data: d, opts: opts, cols: make(map[string]tabular.Column)}
	if err := b.resolve(); err != nil {
		return nil, err
	}

	root := models.NewComposite(name, name, name)
	if len(opts.Hierarchy) > 0 {
		b.branch(opts.Hierarchy, tabular.Rows(d), root)
	}
	return root, nil
}

// resolve looks up all columns before building so lookups cannot fail
// halfway through a tree.
func (b *builder) resolve() error {
	var err error
	if b.size, err = b.data.Column(b.opts.SizeColumn); err != nil {
		return err
	}
	if b.opts.ColorColumn != "" {
		if b.color, err = b.data.Column(b.opts.ColorColumn); err != nil {
			return err
		}
	}
	if b.opts.CodeColumn != "" {
		if b.code, err = b.data.Column(b.substitute(b.opts.CodeColumn)); err != nil {
			return err
		}
	}
	for _, h := range b.opts.Hierarchy {
		column := b.substitute(h)
		if b.cols[column], err = b.data.Column(column); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) substitute(column string) string {
	if s, ok := b.opts.Multiples[column]; ok && s != "" {
		return s
	}
	return column
}

func (b *builder) branch(hierarchy []string, rows []int, parent *models.Node) {
	original := hierarchy[0]
	column := b.substitute(original)
	rest := hierarchy[1:]

	keys, groups := group(b.cols[column], rows)
	for _, key := range keys {
		groupRows := groups[key]
		if len(rest) == 0 {
			parent.AddChild(b.leaf(original, column, key, groupRows))
			continue
		}

		next := models.NewComposite(original, column, b.displayName(original, key))
		b.decorate(next, original, key, groupRows)
		b.branch(rest, groupRows, next)

		switch {
		case len(next.Children) == 0 || (len(next.Children) == 1 && next.Children[0].Empty):
			parent.AddChild(b.leaf(original, column, key, groupRows))
		case len(next.Children) == 1 && next.Children[0].Name == next.Name:
			parent.AddChild(next.Children[0])
		default:
			parent.AddChild(next)
		}
	}
}

func (b *builder) leaf(original, column, key string, rows []int) *models.Node {
	total := decimal.Zero
	for _, row := range rows {
		if v, ok := tabular.ParseDecimal(b.size.Value(row)); ok {
			total = total.Add(v)
		}
	}
	if b.opts.RoundSize {
		total = total.Round(0)
	}

	leaf := models.NewLeaf(original, column, b.displayName(original, key), total)
	b.decorate(leaf, original, key, rows)
	return leaf
}

func (b *builder) decorate(n *models.Node, original, key string, rows []int) {
	n.Suffix = b.opts.Suffixes[original]
	n.Empty = key == ""
	if b.color != nil {
		n.Color = collect(b.color, rows, ";", ";")
	}
	if b.code != nil {
		n.Code = collect(b.code, rows, ",", " or ")
	}
}

func (b *builder) displayName(original, key string) string {
	if key != "" {
		return key
	}
	if label, ok := b.opts.EmptyLabels[original]; ok {
		return label
	}
	return DefaultEmptyLabel
}

// group partitions rows by column value, null as the empty key. Keys are
// returned in order of first occurrence.
func group(col tabular.Column, rows []int) ([]string, map[string][]int) {
	var keys []string
	groups := make(map[string][]int)
	for _, row := range rows {
		v, _ := col.Value(row)
		if _, ok := groups[v]; !ok {
			keys = append(keys, v)
		}
		groups[v] = append(groups[v], row)
	}
	return keys, groups
}

// collect joins the distinct tokens of a column over rows, in order of
// first occurrence.
func collect(col tabular.Column, rows []int, sep, join string) string {
	var tokens []string
	seen := make(map[string]struct{})
	for _, row := range rows {
		v, ok := col.Value(row)
		if !ok {
			continue
		}
		for _, token := range strings.Split(v, sep) {
			if token == "" {
				continue
			}
			if _, dup := seen[token]; dup {
				continue
			}
			seen[token] = struct{}{}
			tokens = append(tokens, token)
		}
	}
	return strings.Join(tokens, join)
}
