// Package config loads the treemap configuration from defaults, a YAML
// file, TREEMAP_ environment variables and command line flags.
package config

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/iish/treemap-go/pkg/treemap/labour"
	"github.com/iish/treemap-go/pkg/treemap/parser"
)

// Config holds the complete configuration.
type Config struct {
	XLSX                 XLSX              `koanf:"xlsx"`
	LabourRelations      LabourRelations   `koanf:"labour_relations"`
	TimePeriods          []TimePeriod      `koanf:"time_periods" validate:"required,min=1,dive"`
	CountriesToContinent map[string]string `koanf:"countries_to_continent"`
	Treemap              Treemap           `koanf:"treemap"`
	WorldPopulation      WorldPopulation   `koanf:"world_population"`
	// StandardDataset is a snapshot served for the dataset id "dataset".
	StandardDataset string `koanf:"standard_dataset"`
	Cache           Cache  `koanf:"cache"`
	Log             Log    `koanf:"log"`
}

// XLSX describes the layout of labour relations spreadsheets.
type XLSX struct {
	Sheet          string         `koanf:"sheet"`
	Empty          string         `koanf:"empty" validate:"required"`
	FirstDataRow   int            `koanf:"first_data_row" validate:"min=1"`
	Columns        Columns        `koanf:"columns"`
	VirtualColumns VirtualColumns `koanf:"virtual_columns"`
}

// Columns names the spreadsheet columns, after header normalization.
type Columns struct {
	Primary string `koanf:"primary" validate:"required"`
	Level1  string `koanf:"level1" validate:"required"`
	Level2  string `koanf:"level2" validate:"required"`
	Level3  string `koanf:"level3" validate:"required"`
	Year    string `koanf:"year" validate:"required"`
	Country string `koanf:"country" validate:"required"`
	Total   string `koanf:"total" validate:"required"`
}

// VirtualColumns names the derived columns. The label columns are named
// by a prefix followed by the source and level number, e.g. labrel23.
type VirtualColumns struct {
	LabRelPrefix         string `koanf:"labrel_prefix" validate:"required"`
	LabRelMultiplePrefix string `koanf:"labrel_multiple_prefix" validate:"required,nefield=LabRelPrefix"`
	Code                 string `koanf:"code" validate:"required"`
	CodeMultiple         string `koanf:"code_multiple" validate:"required,nefield=Code"`
	Color                string `koanf:"color" validate:"required"`
	TimePeriod           string `koanf:"time_period" validate:"required"`
	Continent            string `koanf:"continent" validate:"required"`
}

// LabourRelations configures the labour relation code tables.
type LabourRelations struct {
	Codes    map[string]string `koanf:"codes" validate:"required,min=1"`
	Level1   []Level           `koanf:"level1" validate:"required,min=1,dive"`
	Level2   []Level           `koanf:"level2" validate:"dive"`
	Unknown  Mapping           `koanf:"unknown"`
	Multiple Mapping           `koanf:"multiple"`
}

// Mapping is a label with its color and code.
type Mapping struct {
	Label string `koanf:"label" validate:"required"`
	Color string `koanf:"color"`
	Code  string `koanf:"code"`
}

// Level is a level-1 or level-2 labour relation covering a range of
// two-digit code prefixes.
type Level struct {
	Label string `koanf:"label" validate:"required"`
	Color string `koanf:"color"`
	Code  string `koanf:"code"`
	Range []int  `koanf:"range" validate:"len=2"`
}

// TimePeriod is a target year with the years it covers, MaxYear exclusive.
type TimePeriod struct {
	TimePeriod int `koanf:"time_period"`
	MinYear    int `koanf:"min_year"`
	MaxYear    int `koanf:"max_year" validate:"gtfield=MinYear"`
}

// Treemap configures treemap building.
type Treemap struct {
	// Empty is the placeholder for missing values in filters and time periods.
	Empty             string            `koanf:"empty" validate:"required"`
	Name              string            `koanf:"name" validate:"required"`
	Size              string            `koanf:"size" validate:"required"`
	RoundSize         bool              `koanf:"round_size"`
	Suffix            map[string]string `koanf:"suffix"`
	EmptyLabels       map[string]string `koanf:"empty_labels"`
	Labels            map[string]string `koanf:"labels"`
	AlwaysCategorical []string          `koanf:"always_categorical"`
	// Multiples overrides the derived distinct-to-combined column mapping.
	Multiples map[string]string `koanf:"multiples"`
}

// WorldPopulation configures the missing-population enrichment.
type WorldPopulation struct {
	Label  string                      `koanf:"label"`
	Color  string                      `koanf:"color"`
	Code   string                      `koanf:"code"`
	Totals map[string]map[string]int64 `koanf:"totals"`
}

// Cache bounds the dataset cache.
type Cache struct {
	MaximumSize   int           `koanf:"maximum_size" validate:"min=0"`
	MaxAccessTime time.Duration `koanf:"max_access_time" validate:"min=0"`
	SweepInterval time.Duration `koanf:"sweep_interval" validate:"min=0"`
}

// Log configures logging.
type Log struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=text json"`
}

// Relations converts the labour relations section.
func (c *Config) Relations() labour.RelationsConfig {
	lr := c.LabourRelations
	return labour.RelationsConfig{
		Codes:    lr.Codes,
		Level1:   levels(lr.Level1),
		Level2:   levels(lr.Level2),
		Unknown:  labour.Mapping(lr.Unknown),
		Multiple: labour.Mapping(lr.Multiple),
	}
}

func levels(in []Level) []labour.Level {
	out := make([]labour.Level, len(in))
	for i, l := range in {
		out[i] = labour.Level{
			Mapping: labour.Mapping{Label: l.Label, Color: l.Color, Code: l.Code},
			Min:     l.Range[0],
			Max:     l.Range[1],
		}
	}
	return out
}

// Periods converts the time periods, keeping their order.
func (c *Config) Periods() []labour.TimePeriod {
	out := make([]labour.TimePeriod, len(c.TimePeriods))
	for i, tp := range c.TimePeriods {
		out[i] = labour.TimePeriod{Year: tp.TimePeriod, MinYear: tp.MinYear, MaxYear: tp.MaxYear}
	}
	return out
}

// Virtual returns the derived column names.
func (c *Config) Virtual() parser.VirtualColumns {
	vc := c.XLSX.VirtualColumns
	v := parser.VirtualColumns{
		Code:         vc.Code,
		CodeMultiple: vc.CodeMultiple,
		Color:        vc.Color,
		TimePeriod:   vc.TimePeriod,
		Continent:    vc.Continent,
	}
	for source := range 3 {
		for level := range 3 {
			suffix := strconv.Itoa(source+1) + strconv.Itoa(level+1)
			v.LabRel[source][level] = vc.LabRelPrefix + suffix
			v.LabRelMultiple[source][level] = vc.LabRelMultiplePrefix + suffix
		}
	}
	return v
}

// Multiples returns the configured multiples mapping, or the one derived
// from the virtual columns when none is configured.
func (c *Config) Multiples() map[string]string {
	if len(c.Treemap.Multiples) > 0 {
		return c.Treemap.Multiples
	}
	return c.Virtual().Multiples()
}

// Ingester returns the ingester configuration.
func (c *Config) Ingester() parser.Config {
	cols := c.XLSX.Columns
	return parser.Config{
		Sheet:        c.XLSX.Sheet,
		Empty:        c.XLSX.Empty,
		FirstDataRow: c.XLSX.FirstDataRow,
		Columns: parser.Columns{
			Primary: cols.Primary,
			Level1:  cols.Level1,
			Level2:  cols.Level2,
			Level3:  cols.Level3,
			Year:    cols.Year,
			Country: cols.Country,
		},
		Virtual:              c.Virtual(),
		CountriesToContinent: c.CountriesToContinent,
	}
}

// World converts the world population section. Years must be integers.
func (c *Config) World() (labour.WorldPopulation, error) {
	wp := c.WorldPopulation
	totals := make(map[int]map[string]int64, len(wp.Totals))
	years := make([]string, 0, len(wp.Totals))
	for year := range wp.Totals {
		years = append(years, year)
	}
	sort.Strings(years)
	for _, year := range years {
		y, err := strconv.Atoi(year)
		if err != nil {
			return labour.WorldPopulation{}, fmt.Errorf("world population year %q: %w", year, err)
		}
		totals[y] = wp.Totals[year]
	}
	return labour.WorldPopulation{Label: wp.Label, Color: wp.Color, Code: wp.Code, Totals: totals}, nil
}

// PopulationColumns returns the columns the missing-population rows fill.
func (c *Config) PopulationColumns() labour.PopulationColumns {
	v := c.Virtual()
	return labour.PopulationColumns{
		Year:      v.TimePeriod,
		Continent: v.Continent,
		Total:     c.XLSX.Columns.Total,
		Color:     v.Color,
		Labels:    []string{v.LabRel[0][0], v.LabRelMultiple[0][0]},
		Code:      v.Code,
	}
}

// AlwaysCategorical returns the always-categorical columns as a set.
func (c *Config) AlwaysCategorical() map[string]struct{} {
	set := make(map[string]struct{}, len(c.Treemap.AlwaysCategorical))
	for _, col := range c.Treemap.AlwaysCategorical {
		set[col] = struct{}{}
	}
	return set
}
