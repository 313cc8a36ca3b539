// Package treemap turns labour relations datasets into filtered, aggregated
// treemaps together with the metadata needed to present them.
package treemap

import (
	"strings"

	"github.com/iish/treemap-go/pkg/treemap/filter"
)

// Request describes a treemap to build.
type Request struct {
	// Datasets lists dataset ids: spreadsheet or snapshot paths, or
	// "dataset" for the configured standard dataset.
	Datasets []string
	// Hierarchy lists the grouping columns, outermost first. Blank and
	// whitespace-only entries are ignored.
	Hierarchy []string
	// Size is the column summed into leaf sizes. If empty, the configured
	// size column is used.
	Size string
	// Filters restricts the rows.
	Filters filter.Spec
	// FilterInfo lists the columns to describe filter information for.
	FilterInfo []string
	// Multiples shows combined labour relations instead of listing every
	// distinct one.
	Multiples bool
	// Population adds the population not covered by the datasets.
	Population bool
	// Window keeps, per country, only the years matched to a time period.
	Window bool
}

func nonBlank(values []string) []string {
	var out []string
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
