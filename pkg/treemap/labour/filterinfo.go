package labour

import (
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/iish/treemap-go/pkg/treemap/filterinfo"
	"github.com/iish/treemap-go/pkg/treemap/models"
	"github.com/iish/treemap-go/pkg/treemap/tabular"
)

// FilterInfoDeriver derives filter information and attaches, to every
// values filter, the time periods matched by the rows of each value.
type FilterInfoDeriver struct {
	deriver      filterinfo.Deriver
	periods      *TimePeriods
	bucketColumn string
}

// NewFilterInfoDeriver wraps base. Values filters on bucketColumn, the
// column holding time-period labels, are not enriched.
func NewFilterInfoDeriver(base filterinfo.Deriver, periods *TimePeriods, bucketColumn string) *FilterInfoDeriver {
	fd := &FilterInfoDeriver{periods: periods, bucketColumn: bucketColumn}
	fd.deriver = base
	fd.deriver.Enricher = fd
	return fd
}

// Derive returns the filter information for the requested columns.
// Requesting the bucket column implies requesting the year column.
func (fd *FilterInfoDeriver) Derive(d tabular.Dataset, columns []string) ([]models.FilterInfo, error) {
	year := fd.periods.YearColumn()
	if slices.Contains(columns, fd.bucketColumn) && !slices.Contains(columns, year) {
		columns = append(slices.Clone(columns), year)
	}
	return fd.deriver.Derive(d, columns)
}

// EnrichValues computes the time periods per value concurrently. Rows with
// a null value count towards the empty placeholder.
func (fd *FilterInfoDeriver) EnrichValues(d tabular.Dataset, info *models.FilterInfo) error {
	if info.Column == fd.bucketColumn {
		return nil
	}
	col, err := d.Column(info.Column)
	if err != nil {
		return err
	}

	groups := groupRows(d.Size(), col)
	empty := fd.deriver.Empty

	matched := make([]models.TimePeriodMatches, len(info.Values))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, value := range info.Values {
		g.Go(func() error {
			key := value
			if value == empty {
				key = ""
			}
			view, err := tabular.NewFiltered(d, groups.rows[key])
			if err != nil {
				return err
			}
			matches, err := fd.periods.MatchFor(view, false)
			if err != nil {
				return err
			}
			matched[i] = matches
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	info.TimePeriods = make(map[string]models.TimePeriodMatches, len(info.Values))
	for i, value := range info.Values {
		info.TimePeriods[value] = matched[i]
	}
	return nil
}
