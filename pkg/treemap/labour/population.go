package labour

import (
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/iish/treemap-go/pkg/treemap/tabular"
)

// WorldPopulation holds the world population per year and continent and how
// the population missing from a dataset is presented.
type WorldPopulation struct {
	Label  string
	Color  string
	Code   string
	Totals map[int]map[string]int64
}

// PopulationColumns names the columns of the synthetic population rows.
type PopulationColumns struct {
	Year      string
	Continent string
	Total     string
	Color     string
	// Labels receive the population label, typically the distinct and
	// combined level-1 label columns.
	Labels []string
	Code   string
}

// Population adds the part of the world population a dataset does not
// cover as synthetic rows.
type Population struct {
	world   WorldPopulation
	columns PopulationColumns
	headers map[string]int
}

// NewPopulation creates the enrichment.
func NewPopulation(world WorldPopulation, columns PopulationColumns) *Population {
	names := []string{columns.Year, columns.Continent, columns.Total, columns.Color}
	names = append(names, columns.Labels...)
	names = append(names, columns.Code)

	headers := make(map[string]int, len(names))
	for i, name := range names {
		headers[name] = i
	}
	return &Population{world: world, columns: columns, headers: headers}
}

// Enrich returns the original dataset combined with one row per configured
// year and continent holding the missing population: the world total minus
// the rounded dataset total for that year and continent, never below zero.
func (p *Population) Enrich(original tabular.Dataset) (tabular.Dataset, error) {
	sums, err := p.datasetTotals(original)
	if err != nil {
		return nil, err
	}

	years := make([]int, 0, len(p.world.Totals))
	for year := range p.world.Totals {
		years = append(years, year)
	}
	sort.Ints(years)

	var rows [][]string
	for _, year := range years {
		totals := p.world.Totals[year]
		continents := make([]string, 0, len(totals))
		for continent := range totals {
			continents = append(continents, continent)
		}
		sort.Strings(continents)

		for _, continent := range continents {
			key := populationKey{year: strconv.Itoa(year), continent: continent}
			covered := sums[key].Round(0)
			missing := decimal.NewFromInt(totals[continent]).Sub(covered)
			if missing.IsNegative() {
				missing = decimal.Zero
			}
			rows = append(rows, p.row(key, missing))
		}
	}

	extension := tabular.NewTable(p.headers, rows)
	return tabular.NewMulti(original, extension), nil
}

type populationKey struct {
	year      string
	continent string
}

func (p *Population) datasetTotals(d tabular.Dataset) (map[populationKey]decimal.Decimal, error) {
	yearCol, err := d.Column(p.columns.Year)
	if err != nil {
		return nil, err
	}
	continentCol, err := d.Column(p.columns.Continent)
	if err != nil {
		return nil, err
	}
	totalCol, err := d.Column(p.columns.Total)
	if err != nil {
		return nil, err
	}

	sums := make(map[populationKey]decimal.Decimal)
	for row := 0; row < d.Size(); row++ {
		year, _ := yearCol.Value(row)
		continent, _ := continentCol.Value(row)
		key := populationKey{year: year, continent: continent}
		if total, ok := tabular.ParseDecimal(totalCol.Value(row)); ok {
			sums[key] = sums[key].Add(total)
		}
	}
	return sums, nil
}

func (p *Population) row(key populationKey, missing decimal.Decimal) []string {
	row := make([]string, len(p.headers))
	row[p.headers[p.columns.Year]] = key.year
	row[p.headers[p.columns.Continent]] = key.continent
	row[p.headers[p.columns.Total]] = missing.String()
	row[p.headers[p.columns.Color]] = p.world.Color
	for _, label := range p.columns.Labels {
		row[p.headers[label]] = p.world.Label
	}
	row[p.headers[p.columns.Code]] = p.world.Code
	return row
}
