package labour

import (
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/iish/treemap-go/pkg/treemap/tabular"
)

// WindowFilter keeps, per country, only the rows whose year is the year
// matched to one of the time periods for that country.
type WindowFilter struct {
	CountryColumn string
	Periods       *TimePeriods
}

// NewWindowFilter creates the default time-window filter.
func NewWindowFilter(countryColumn string, periods *TimePeriods) *WindowFilter {
	return &WindowFilter{CountryColumn: countryColumn, Periods: periods}
}

// Filter applies the filter. Countries are matched concurrently.
func (w *WindowFilter) Filter(d tabular.Dataset) (*tabular.Filtered, error) {
	countries, err := d.Column(w.CountryColumn)
	if err != nil {
		return nil, err
	}
	yearCol, err := d.Column(w.Periods.YearColumn())
	if err != nil {
		return nil, err
	}

	// Null countries form their own group.
	groups := groupRows(d.Size(), countries)

	matched := make([]map[string]struct{}, len(groups.keys))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, key := range groups.keys {
		g.Go(func() error {
			view, err := tabular.NewFiltered(d, groups.rows[key])
			if err != nil {
				return err
			}
			matches, err := w.Periods.MatchFor(view, false)
			if err != nil {
				return err
			}
			years := make(map[string]struct{}, len(matches))
			for _, y := range matches.Years() {
				years[y] = struct{}{}
			}
			matched[i] = years
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var keep []int
	for i, key := range groups.keys {
		for _, row := range groups.rows[key] {
			year, ok := yearCol.Value(row)
			if !ok {
				continue
			}
			if _, hit := matched[i][year]; hit {
				keep = append(keep, row)
			}
		}
	}
	return tabular.NewFiltered(d, keep)
}

// grouping holds row indices per column value, keys in first-seen order.
type grouping struct {
	keys []string
	rows map[string][]int
}

func groupRows(size int, col tabular.Column) grouping {
	g := grouping{rows: make(map[string][]int)}
	for row := 0; row < size; row++ {
		v, _ := col.Value(row)
		if _, ok := g.rows[v]; !ok {
			g.keys = append(g.keys, v)
		}
		g.rows[v] = append(g.rows[v], row)
	}
	return g
}
