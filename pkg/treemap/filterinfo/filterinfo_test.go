package filterinfo

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iish/treemap-go/pkg/treemap/models"
	"github.com/iish/treemap-go/pkg/treemap/tabular"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func column(values ...string) *tabular.Table {
	rows := make([][]string, len(values))
	for i, v := range values {
		rows[i] = []string{v}
	}
	return tabular.NewTable(map[string]int{"c": 0}, rows)
}

func TestDerive(t *testing.T) {
	tests := []struct {
		name        string
		values      []string
		categorical bool
		want        []models.FilterInfo
	}{
		{
			name:   "numeric range",
			values: []string{"1", "2", "2"},
			want:   []models.FilterInfo{models.NewRangeFilterInfo("c", "c", dec("1"), dec("2"))},
		},
		{
			name:   "single numeric value",
			values: []string{"1", "1"},
			want:   nil,
		},
		{
			name:   "text values",
			values: []string{"b", "a", "b"},
			want:   []models.FilterInfo{models.NewValuesFilterInfo("c", "c", []string{"a", "b"})},
		},
		{
			name:   "null becomes placeholder",
			values: []string{"1", "", "3"},
			want:   []models.FilterInfo{models.NewValuesFilterInfo("c", "c", []string{"-", "1", "3"})},
		},
		{
			name:   "no rows",
			values: nil,
			want:   nil,
		},
		{
			name:        "no rows always categorical",
			values:      nil,
			categorical: true,
			want:        []models.FilterInfo{models.NewValuesFilterInfo("c", "c", []string{})},
		},
		{
			name:   "all null",
			values: []string{"", ""},
			want:   []models.FilterInfo{models.NewValuesFilterInfo("c", "c", []string{"-"})},
		},
		{
			name:        "always categorical",
			values:      []string{"1", "2"},
			categorical: true,
			want:        []models.FilterInfo{models.NewValuesFilterInfo("c", "c", []string{"1", "2"})},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dr := &Deriver{Empty: "-"}
			if tt.categorical {
				dr.AlwaysCategorical = map[string]struct{}{"c": {}}
			}
			got, err := dr.Derive(column(tt.values...), []string{"c"})
			require.NoError(t, err)
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.Equal(t, tt.want[i].Kind, got[i].Kind)
				assert.Equal(t, tt.want[i].Values, got[i].Values)
				assert.True(t, tt.want[i].Min.Equal(got[i].Min))
				assert.True(t, tt.want[i].Max.Equal(got[i].Max))
			}
		})
	}
}

func TestDerive_Label(t *testing.T) {
	dr := &Deriver{Empty: "-", Labels: map[string]string{"c": "Country"}}
	got, err := dr.Derive(column("x", "y"), []string{"c"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Country", got[0].Label)
}

func TestDerive_UnknownColumn(t *testing.T) {
	dr := &Deriver{Empty: "-"}
	_, err := dr.Derive(column("x"), []string{"missing"})
	assert.ErrorIs(t, err, tabular.ErrUnknownColumn)
}

type recordingEnricher struct{ columns []string }

func (r *recordingEnricher) EnrichValues(_ tabular.Dataset, info *models.FilterInfo) error {
	r.columns = append(r.columns, info.Column)
	info.TimePeriods = map[string]models.TimePeriodMatches{}
	return nil
}

func TestDerive_EnrichesValuesOnly(t *testing.T) {
	table := tabular.NewTable(map[string]int{"n": 0, "s": 1}, [][]string{{"1", "a"}, {"2", "b"}})
	enricher := &recordingEnricher{}
	dr := &Deriver{Empty: "-", Enricher: enricher}

	got, err := dr.Derive(table, []string{"n", "s"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []string{"s"}, enricher.columns)
	assert.NotNil(t, got[1].TimePeriods)
}
