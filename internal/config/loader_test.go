package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = "../../configs/treemap.yaml"

func TestLoad_SampleConfig(t *testing.T) {
	cfg, err := Load(sampleConfig, nil)
	require.NoError(t, err)

	assert.Equal(t, "NA", cfg.XLSX.Empty)
	assert.Equal(t, 3, cfg.XLSX.FirstDataRow)
	assert.Equal(t, "Employers", cfg.LabourRelations.Codes["12.2"])
	assert.Equal(t, "America", cfg.CountriesToContinent["St. Lucia"])
	assert.Len(t, cfg.TimePeriods, 5)
	assert.Equal(t, 1500, cfg.TimePeriods[0].TimePeriod)
	assert.Equal(t, time.Hour, cfg.Cache.MaxAccessTime)
	assert.Equal(t, []int{12, 18}, cfg.LabourRelations.Level1[3].Range)

	rel := cfg.Relations()
	assert.Equal(t, 12, rel.Level1[3].Min)
	assert.Equal(t, "Unknown", rel.Unknown.Label)

	world, err := cfg.World()
	require.NoError(t, err)
	assert.Equal(t, int64(3714000000), world.Totals[2000]["Asia"])

	assert.Equal(t, "labrelmultiple11", cfg.Multiples()["labrel11"])
	assert.Equal(t, "codemultiple", cfg.Multiples()["code"])
	assert.Equal(t, []string{"labrel11", "labrelmultiple11"}, cfg.PopulationColumns().Labels)
	assert.Contains(t, cfg.AlwaysCategorical(), "bmyear")

	ing := cfg.Ingester()
	assert.Equal(t, "labourrelationlevel1", ing.Columns.Primary)
	assert.Equal(t, "bmyear", ing.Virtual.TimePeriod)
	assert.Equal(t, "labrel23", ing.Virtual.LabRel[1][2])
}

func TestLoad_Precedence(t *testing.T) {
	t.Setenv("TREEMAP_CACHE__MAXIMUM_SIZE", "7")
	t.Setenv("TREEMAP_LOG__LEVEL", "warn")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("log-level", "info", "")
	flags.String("log-format", "text", "")
	require.NoError(t, flags.Parse([]string{"--log-level", "debug"}))

	cfg, err := Load(sampleConfig, flags)
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Cache.MaximumSize, "env overrides file")
	assert.Equal(t, "debug", cfg.Log.Level, "flag overrides env")
	assert.Equal(t, "text", cfg.Log.Format, "unset flag keeps file value")
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "treemap.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
labour_relations:
  level1:
    - label: Broken
      range: [1]
time_periods:
  - time_period: 1900
    min_year: 1950
    max_year: 1900
log:
  format: xml
`), 0644))

	_, err := Load(path, nil)
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))

	failed := make(map[string]string)
	for _, f := range verr.Fields {
		failed[f.Namespace()] = f.Tag()
	}
	assert.Equal(t, "required", failed["Config.LabourRelations.Codes"])
	assert.Equal(t, "len", failed["Config.LabourRelations.Level1[0].Range"])
	assert.Equal(t, "gtfield", failed["Config.TimePeriods[0].MaxYear"])
	assert.Equal(t, "oneof", failed["Config.Log.Format"])
}

func TestLoad_DefaultAlwaysCategorical(t *testing.T) {
	path := filepath.Join(t.TempDir(), "treemap.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
labour_relations:
  codes:
    "1": Cannot work
  level1:
    - label: Non-working
      range: [1, 3]
  unknown:
    label: Unknown
  multiple:
    label: Multiple
time_periods:
  - time_period: 1900
    min_year: 1875
    max_year: 1925
`), 0644))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"bmyear"}, cfg.Treemap.AlwaysCategorical)
	assert.Contains(t, cfg.AlwaysCategorical(), "bmyear")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)
}

func TestWorld_InvalidYear(t *testing.T) {
	cfg := &Config{WorldPopulation: WorldPopulation{Totals: map[string]map[string]int64{"soon": {"Europe": 1}}}}
	_, err := cfg.World()
	assert.Error(t, err)
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "cache/maximum_size", envKey("TREEMAP_CACHE__MAXIMUM_SIZE"))
	assert.Equal(t, "standard_dataset", envKey("TREEMAP_STANDARD_DATASET"))
}
