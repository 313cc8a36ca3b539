package parser

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iish/treemap-go/internal/testutil"
	"github.com/iish/treemap-go/pkg/treemap/labour"
	"github.com/iish/treemap-go/pkg/treemap/tabular"
)

func testIngester(t *testing.T) *Ingester {
	t.Helper()
	relations, err := labour.NewRelations(labour.RelationsConfig{
		Codes: map[string]string{"11": "Kin producers", "12": "Kin receivers", "21": "Leading producers"},
		Level1: []labour.Level{
			{Mapping: labour.Mapping{Label: "Non-market", Color: "#aaa", Code: "1"}, Min: 10, Max: 19},
			{Mapping: labour.Mapping{Label: "Market", Color: "#bbb", Code: "2"}, Min: 20, Max: 29},
		},
		Level2: []labour.Level{
			{Mapping: labour.Mapping{Label: "Kin"}, Min: 11, Max: 12},
			{Mapping: labour.Mapping{Label: "Leading"}, Min: 21, Max: 21},
		},
		Unknown:  labour.Mapping{Label: "Unknown", Color: "#000", Code: "u"},
		Multiple: labour.Mapping{Label: "Multiple", Color: "#fff", Code: "m"},
	})
	require.NoError(t, err)

	periods := labour.NewTimePeriods([]labour.TimePeriod{
		{Year: 1950, MinYear: 1940, MaxYear: 1960},
		{Year: 2000, MinYear: 1990, MaxYear: 2010},
	}, "year", "-")

	return NewIngester(Config{
		Empty:                "NA",
		Columns:              DefaultColumns(),
		Virtual:              DefaultVirtualColumns(),
		CountriesToContinent: map[string]string{"Netherlands": "Europe", "Japan": "Asia"},
	}, relations, periods, testutil.NewTestLogger(t))
}

func headerCells() map[string]interface{} {
	return map[string]interface{}{
		"A1": "Labour relation Level 1",
		"B1": "Labour relation level 2",
		"C1": "Labour relation level 3",
		"D1": "Year",
		"E1": "Country",
		"F1": "Total",
	}
}

func TestIngest(t *testing.T) {
	cells := headerCells()
	for cell, value := range map[string]interface{}{
		"A2": "110", "E2": "description",
		"A3": "110", "E3": "description",
		"A4": "110", "B4": "110", "C4": "120", "D4": 1955, "E4": "Netherlands", "F4": 100,
		"A5": "210", "C5": "na", "D5": 2003, "E5": "Japan", "F5": 50,
		"E6": "Netherlands", "F6": 10,
		"A7": " 110210 ", "D7": 1800, "E7": "Atlantis", "F7": 7,
	} {
		cells[cell] = value
	}
	path := writeWorkbook(t, cells)

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	table, err := testIngester(t).Ingest(context.Background(), file)
	require.NoError(t, err)
	require.Equal(t, 3, table.Size())

	assert.Equal(t, 6, table.HeaderIndex()["labrel11"])
	assert.Equal(t, 6+22, table.HeaderIndex()["continent"])

	value := func(column string, row int) string {
		t.Helper()
		v, _, err := tabular.Value(table, column, row)
		require.NoError(t, err)
		return v
	}

	assert.Equal(t, "110", value("labourrelationlevel1", 0))
	assert.Equal(t, "Non-market", value("labrel11", 0))
	assert.Equal(t, "Kin", value("labrel12", 0))
	assert.Equal(t, "Kin producers", value("labrel13", 0))
	assert.Equal(t, "Kin producers", value("labrel23", 0))
	assert.Equal(t, "Kin receivers", value("labrel33", 0))
	assert.Equal(t, "1", value("code", 0))
	assert.Equal(t, "#aaa", value("color", 0))
	assert.Equal(t, "1950", value("bmyear", 0))
	assert.Equal(t, "Europe", value("continent", 0))
	assert.Equal(t, "100", value("total", 0))

	_, ok, err := tabular.Value(table, "labourrelationlevel3", 1)
	require.NoError(t, err)
	assert.False(t, ok, "empty sentinel is read as null")
	assert.Equal(t, "", value("labrel31", 1))
	assert.Equal(t, "Market", value("labrel11", 1))
	assert.Equal(t, "2000", value("bmyear", 1))
	assert.Equal(t, "Asia", value("continent", 1))

	assert.Equal(t, "110210", value("labourrelationlevel1", 2))
	assert.Equal(t, "Non-market or Market", value("labrel11", 2))
	assert.Equal(t, "Multiple", value("labrelmultiple11", 2))
	assert.Equal(t, "1,2", value("code", 2))
	assert.Equal(t, "m", value("codemultiple", 2))
	assert.Equal(t, "#aaa;#bbb", value("color", 2))
	assert.Equal(t, "", value("bmyear", 2))
	assert.Equal(t, "", value("continent", 2))
}

func TestIngestEvents_Errors(t *testing.T) {
	in := testIngester(t)

	_, err := in.IngestEvents(nil)
	assert.ErrorIs(t, err, ErrNoHeader)

	_, err = in.IngestEvents([]RowEvent{{Index: 3, Cells: map[int]string{0: "110"}, LastColumn: 0}})
	assert.ErrorIs(t, err, ErrNoHeader)

	_, err = in.IngestEvents([]RowEvent{{Index: 0, Cells: map[int]string{0: "Year"}, LastColumn: 0}})
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestIngestEvents_IgnoresCellsBeyondHeader(t *testing.T) {
	header := RowEvent{Index: 0, LastColumn: 4, Cells: map[int]string{
		0: "labourRelationLevel1", 1: "labourRelationLevel2", 2: "labourRelationLevel3", 3: "year", 4: "country",
	}}
	row := RowEvent{Index: 3, LastColumn: 9, Cells: map[int]string{0: "110", 3: "1950", 9: "stray"}}

	table, err := testIngester(t).IngestEvents([]RowEvent{header, row})
	require.NoError(t, err)
	require.Equal(t, 1, table.Size())
	assert.Len(t, table.RawRows()[0], 5+23)
	assert.Equal(t, "1950", table.RawRows()[0][table.HeaderIndex()["bmyear"]])
}

func TestNormalizeHeader(t *testing.T) {
	tests := map[string]string{
		"Labour relation Level 1": "labourrelationlevel1",
		"Year":                    "year",
		"snake_case (x)":          "snake_casex",
		"Überschrift":             "berschrift",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeHeader(in), in)
	}
}

func TestVirtualColumns(t *testing.T) {
	v := DefaultVirtualColumns()
	names := v.Names()

	require.Len(t, names, 23)
	assert.Equal(t, "labrel11", names[0])
	assert.Equal(t, "labrel33", names[8])
	assert.Equal(t, "code", names[9])
	assert.Equal(t, "labrelmultiple11", names[10])
	assert.Equal(t, "codemultiple", names[19])
	assert.Equal(t, []string{"color", "bmyear", "continent"}, names[20:])

	assert.Equal(t, "labrelmultiple23", v.Multiples()["labrel23"])
	assert.Equal(t, "codemultiple", v.Multiples()["code"])
}
