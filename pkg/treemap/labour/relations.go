// Package labour holds the labour-relations specific parts of the treemap
// pipeline: decoding of multi-valued labour relation codes, time periods,
// the default time-window filter and the missing-population enrichment.
package labour

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/iish/treemap-go/pkg/treemap/models"
)

// Delimiters used to join several distinct decoded values.
const (
	LabelDelimiter = " or "
	CodeDelimiter  = ","
	ColorDelimiter = ";"
)

// Mapping is the label, color and code a labour relation code maps to.
type Mapping struct {
	Label string
	Color string
	Code  string
}

// Level defines a level-1 or level-2 labour relation covering all level-3
// codes whose two-digit prefix lies within [Min, Max].
type Level struct {
	Mapping
	Min int
	Max int
}

// RelationsConfig configures the labour relation lookup tables.
type RelationsConfig struct {
	// Codes maps level-3 codes to their label.
	Codes  map[string]string
	Level1 []Level
	Level2 []Level
	// Unknown is used for codes without a mapping.
	Unknown Mapping
	// Multiple replaces several distinct values when multiples are combined.
	Multiple Mapping
}

// Relations decodes labour relation cells into labels, colors and codes.
// It is immutable after construction and safe for concurrent use.
type Relations struct {
	level1   map[string]Mapping
	level2   map[string]Mapping
	level3   map[string]Mapping
	unknown  Mapping
	multiple Mapping
	legend   []models.LegendValue
}

// NewRelations builds the lookup tables. Every level-3 code must contain at
// least one digit.
func NewRelations(cfg RelationsConfig) (*Relations, error) {
	prefixes := make(map[string]int, len(cfg.Codes))
	for code := range cfg.Codes {
		prefix, err := codePrefix(code)
		if err != nil {
			return nil, err
		}
		prefixes[code] = prefix
	}

	r := &Relations{
		level1:   bucket(prefixes, cfg.Level1),
		level2:   bucket(prefixes, cfg.Level2),
		level3:   make(map[string]Mapping, len(cfg.Codes)),
		unknown:  cfg.Unknown,
		multiple: cfg.Multiple,
	}

	for code, label := range cfg.Codes {
		m, ok := r.level1[code]
		if !ok {
			m = cfg.Unknown
		}
		r.level3[code] = Mapping{Label: label, Color: m.Color, Code: m.Code}
	}

	for _, l := range cfg.Level1 {
		r.legend = append(r.legend, models.LegendValue{Label: l.Label, Color: l.Color, Code: l.Code})
	}

	return r, nil
}

// codePrefix strips all non-digits from a code and parses its first two digits.
func codePrefix(code string) (int, error) {
	var digits strings.Builder
	for _, c := range code {
		if c >= '0' && c <= '9' {
			digits.WriteRune(c)
		}
	}
	clean := digits.String()
	if clean == "" {
		return 0, fmt.Errorf("labour relation code %q contains no digits", code)
	}
	if len(clean) > 2 {
		clean = clean[:2]
	}
	return strconv.Atoi(clean)
}

func bucket(prefixes map[string]int, levels []Level) map[string]Mapping {
	table := make(map[string]Mapping)
	for _, l := range levels {
		for code, prefix := range prefixes {
			if prefix >= l.Min && prefix <= l.Max {
				table[code] = l.Mapping
			}
		}
	}
	return table
}

// Legend returns the level-1 labour relations in configured order.
func (r *Relations) Legend() []models.LegendValue {
	return r.legend
}

// Level1 decodes a cell into level-1 labels. An empty value stays empty.
func (r *Relations) Level1(value string, combineMultiples bool) string {
	return r.decode(value, r.level1, labelOf, combineMultiples, LabelDelimiter)
}

// Level2 decodes a cell into level-2 labels.
func (r *Relations) Level2(value string, combineMultiples bool) string {
	return r.decode(value, r.level2, labelOf, combineMultiples, LabelDelimiter)
}

// Level3 decodes a cell into level-3 labels.
func (r *Relations) Level3(value string, combineMultiples bool) string {
	return r.decode(value, r.level3, labelOf, combineMultiples, LabelDelimiter)
}

// Code decodes a cell into level-1 codes.
func (r *Relations) Code(value string, combineMultiples bool) string {
	return r.decode(value, r.level1, codeOf, combineMultiples, CodeDelimiter)
}

// Color decodes a cell into level-1 colors. Colors are never combined.
func (r *Relations) Color(value string) string {
	return r.decode(value, r.level1, colorOf, false, ColorDelimiter)
}

func labelOf(m Mapping) string { return m.Label }
func codeOf(m Mapping) string  { return m.Code }
func colorOf(m Mapping) string { return m.Color }

func (r *Relations) decode(value string, table map[string]Mapping, field func(Mapping) string,
	combineMultiples bool, delimiter string) string {
	if value == "" {
		return ""
	}

	tokens := SplitCodes(value)
	if len(tokens) == 0 {
		return field(r.unknown)
	}
	sort.Strings(tokens)

	var distinct []string
	seen := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		m, ok := table[token]
		if !ok {
			m = r.unknown
		}
		mapped := field(m)
		if _, dup := seen[mapped]; dup {
			continue
		}
		seen[mapped] = struct{}{}
		distinct = append(distinct, mapped)
	}

	if len(distinct) == 1 {
		return distinct[0]
	}
	if combineMultiples {
		return field(r.multiple)
	}
	return strings.Join(distinct, delimiter)
}

// SplitCodes splits a multi-valued code cell. Codes are terminated by a '0'
// that is not followed by another '0'; within a run of zeros only the last
// one terminates. Trailing empty codes are dropped.
func SplitCodes(value string) []string {
	var tokens []string
	start := 0
	for i := 0; i < len(value); i++ {
		if value[i] != '0' {
			continue
		}
		if i+1 < len(value) && value[i+1] == '0' {
			continue
		}
		tokens = append(tokens, value[start:i])
		start = i + 1
	}
	tokens = append(tokens, value[start:])

	for len(tokens) > 0 && tokens[len(tokens)-1] == "" {
		tokens = tokens[:len(tokens)-1]
	}
	if len(tokens) == 0 {
		return nil
	}
	return tokens
}

// JoinCodes encodes codes into a single cell, the inverse of SplitCodes for
// codes that contain no zero followed by a non-zero digit.
func JoinCodes(codes []string) string {
	var b strings.Builder
	for _, c := range codes {
		b.WriteString(c)
		b.WriteByte('0')
	}
	return b.String()
}
