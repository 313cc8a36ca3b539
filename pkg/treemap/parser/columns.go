package parser

import "strconv"

// Columns names the source columns of a labour relations spreadsheet,
// in their normalized form.
type Columns struct {
	// Primary must be non-blank for a row to be kept; codes and colors are
	// decoded from it.
	Primary string
	Level1  string
	Level2  string
	Level3  string
	Year    string
	Country string
}

// DefaultColumns returns the column names of the labour relations
// spreadsheets.
func DefaultColumns() Columns {
	return Columns{
		Primary: "labourrelationlevel1",
		Level1:  "labourrelationlevel1",
		Level2:  "labourrelationlevel2",
		Level3:  "labourrelationlevel3",
		Year:    "year",
		Country: "country",
	}
}

// VirtualColumns names the columns derived during ingestion.
type VirtualColumns struct {
	// LabRel holds the decoded labels per source column and level:
	// LabRel[source][level], both counted from level 1.
	LabRel         [3][3]string
	Code           string
	LabRelMultiple [3][3]string
	CodeMultiple   string
	Color          string
	TimePeriod     string
	Continent      string
}

// DefaultVirtualColumns returns labrel11..labrel33, code,
// labrelmultiple11..labrelmultiple33, codemultiple, color, bmyear and
// continent.
func DefaultVirtualColumns() VirtualColumns {
	v := VirtualColumns{
		Code:         "code",
		CodeMultiple: "codemultiple",
		Color:        "color",
		TimePeriod:   "bmyear",
		Continent:    "continent",
	}
	for source := range 3 {
		for level := range 3 {
			suffix := strconv.Itoa(source+1) + strconv.Itoa(level+1)
			v.LabRel[source][level] = "labrel" + suffix
			v.LabRelMultiple[source][level] = "labrelmultiple" + suffix
		}
	}
	return v
}

// Names returns the derived columns in the order they are appended to a row.
func (v VirtualColumns) Names() []string {
	names := make([]string, 0, 23)
	for _, mode := range []struct {
		labels [3][3]string
		code   string
	}{{v.LabRel, v.Code}, {v.LabRelMultiple, v.CodeMultiple}} {
		for _, levels := range mode.labels {
			names = append(names, levels[:]...)
		}
		names = append(names, mode.code)
	}
	return append(names, v.Color, v.TimePeriod, v.Continent)
}

// Multiples maps every distinct-mode column to its combined-mode column.
func (v VirtualColumns) Multiples() map[string]string {
	m := make(map[string]string, 10)
	for source := range 3 {
		for level := range 3 {
			m[v.LabRel[source][level]] = v.LabRelMultiple[source][level]
		}
	}
	m[v.Code] = v.CodeMultiple
	return m
}
