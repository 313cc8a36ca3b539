package labour

import (
	"strconv"

	"github.com/iish/treemap-go/pkg/treemap/models"
	"github.com/iish/treemap-go/pkg/treemap/tabular"
)

// TimePeriod is a bucket of years represented by a target year.
// MinYear is inclusive, MaxYear exclusive.
type TimePeriod struct {
	Year    int
	MinYear int
	MaxYear int
}

// Contains reports whether year lies within [MinYear, MaxYear).
func (p TimePeriod) Contains(year int) bool {
	return year >= p.MinYear && year < p.MaxYear
}

// Label is the name of the period, its target year.
func (p TimePeriod) Label() string {
	return strconv.Itoa(p.Year)
}

// TimePeriods matches the years of a dataset to a fixed, ordered list of
// time periods. It is immutable and safe for concurrent use.
type TimePeriods struct {
	periods     []TimePeriod
	yearColumn  string
	placeholder string
}

// NewTimePeriods creates a matcher reading years from yearColumn. The
// placeholder is reported for periods without a matching year.
func NewTimePeriods(periods []TimePeriod, yearColumn, placeholder string) *TimePeriods {
	return &TimePeriods{
		periods:     append([]TimePeriod(nil), periods...),
		yearColumn:  yearColumn,
		placeholder: placeholder,
	}
}

// Periods returns the configured periods in order.
func (tp *TimePeriods) Periods() []TimePeriod {
	return tp.periods
}

// YearColumn returns the column years are read from.
func (tp *TimePeriods) YearColumn() string {
	return tp.yearColumn
}

// PeriodFor returns the first period containing year.
func (tp *TimePeriods) PeriodFor(year int) (TimePeriod, bool) {
	for _, p := range tp.periods {
		if p.Contains(year) {
			return p, true
		}
	}
	return TimePeriod{}, false
}

// MatchFor picks, for every period, the year of the dataset closest to the
// period's target year. On ties the year of the first row wins. A period
// whose closest year falls outside its range is reported with the
// placeholder when includeUnmatched is set and left out otherwise.
func (tp *TimePeriods) MatchFor(d tabular.Dataset, includeUnmatched bool) (models.TimePeriodMatches, error) {
	col, err := d.Column(tp.yearColumn)
	if err != nil {
		return nil, err
	}

	years := make([]int, 0, d.Size())
	for row := 0; row < d.Size(); row++ {
		if year, ok := tabular.ParseInt(col.Value(row)); ok {
			years = append(years, year)
		}
	}

	matches := make(models.TimePeriodMatches, 0, len(tp.periods))
	for _, p := range tp.periods {
		year, found := closest(years, p.Year)
		switch {
		case found && p.Contains(year):
			matches = append(matches, models.TimePeriodMatch{Period: p.Label(), Year: strconv.Itoa(year)})
		case includeUnmatched:
			matches = append(matches, models.TimePeriodMatch{Period: p.Label(), Year: tp.placeholder})
		}
	}
	return matches, nil
}

func closest(years []int, target int) (int, bool) {
	if len(years) == 0 {
		return 0, false
	}
	best := years[0]
	for _, y := range years[1:] {
		if abs(y-target) < abs(best-target) {
			best = y
		}
	}
	return best, true
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
