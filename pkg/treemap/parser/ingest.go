package parser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/iish/treemap-go/pkg/treemap/labour"
	"github.com/iish/treemap-go/pkg/treemap/tabular"
)

// ErrNoHeader indicates the sheet has no header row.
var ErrNoHeader = errors.New("sheet has no header row")

// ErrMissingColumn indicates a required column is absent from the header row.
var ErrMissingColumn = errors.New("missing column")

// DefaultFirstDataRow is the index of the first row holding data; the rows
// between the header and it hold descriptions.
const DefaultFirstDataRow = 3

// Config configures an Ingester.
type Config struct {
	// Sheet names the sheet to read; empty selects the first sheet.
	Sheet string
	// Empty is a case-insensitive sentinel read as a missing value.
	Empty string
	// FirstDataRow is the index of the first data row.
	FirstDataRow int
	Columns      Columns
	Virtual      VirtualColumns
	// CountriesToContinent maps countries to their continent.
	CountriesToContinent map[string]string
}

// Ingester turns labour relations spreadsheets into datasets, adding the
// decoded labour relations, the color, the time period and the continent
// of every row.
type Ingester struct {
	cfg       Config
	relations *labour.Relations
	periods   *labour.TimePeriods
	logger    *slog.Logger
}

// NewIngester creates an ingester. A nil logger discards log output.
func NewIngester(cfg Config, relations *labour.Relations, periods *labour.TimePeriods, logger *slog.Logger) *Ingester {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Ingester{cfg: cfg, relations: relations, periods: periods, logger: logger}
}

// Ingest reads a workbook. No partial dataset is returned on failure.
func (in *Ingester) Ingest(ctx context.Context, r io.Reader) (*tabular.Table, error) {
	start := time.Now()
	s := in.newSession()
	if err := Rows(ctx, r, in.cfg.Sheet, s.handle); err != nil {
		return nil, err
	}
	table, err := s.table()
	if err != nil {
		return nil, err
	}
	in.logger.Debug("ingested workbook",
		slog.Int("rows", table.Size()),
		slog.Int("dropped", s.dropped),
		slog.Duration("duration", time.Since(start)))
	return table, nil
}

// IngestEvents builds a dataset from row events that were already read.
func (in *Ingester) IngestEvents(events []RowEvent) (*tabular.Table, error) {
	s := in.newSession()
	for _, ev := range events {
		if err := s.handle(ev); err != nil {
			return nil, err
		}
	}
	return s.table()
}

func (in *Ingester) newSession() *session {
	return &session{in: in}
}

// session holds the state of a single ingestion.
type session struct {
	in      *Ingester
	headers map[string]int
	// real is the number of spreadsheet columns, width includes the
	// derived columns.
	real, width int
	// indices of the source columns
	primary, year, country int
	levels                 [3]int
	rows                   [][]string
	dropped                int
}

func (s *session) handle(ev RowEvent) error {
	if ev.Index == 0 {
		return s.header(ev)
	}
	if s.headers == nil {
		return ErrNoHeader
	}

	first := s.in.cfg.FirstDataRow
	if first <= 0 {
		first = DefaultFirstDataRow
	}
	if ev.Index < first {
		return nil
	}

	primary := s.value(ev, s.primary)
	if primary == "" {
		s.dropped++
		return nil
	}

	row := make([]string, s.real, s.width)
	for col, raw := range ev.Cells {
		if col < s.real {
			row[col] = s.clean(raw)
		}
	}

	rel := s.in.relations
	for _, combine := range []bool{false, true} {
		for _, idx := range s.levels {
			v := s.value(ev, idx)
			row = append(row, rel.Level1(v, combine), rel.Level2(v, combine), rel.Level3(v, combine))
		}
		row = append(row, rel.Code(primary, combine))
	}
	row = append(row, rel.Color(primary), s.timePeriod(s.value(ev, s.year)))
	row = append(row, s.in.cfg.CountriesToContinent[s.value(ev, s.country)])

	s.rows = append(s.rows, row)
	return nil
}

func (s *session) header(ev RowEvent) error {
	s.headers = make(map[string]int, len(ev.Cells))
	for col, raw := range ev.Cells {
		s.headers[NormalizeHeader(raw)] = col
	}

	cols := s.in.cfg.Columns
	var err error
	lookup := func(name string) int {
		idx, ok := s.headers[name]
		if !ok && err == nil {
			err = fmt.Errorf("%w: %q", ErrMissingColumn, name)
		}
		return idx
	}
	s.primary = lookup(cols.Primary)
	s.levels = [3]int{lookup(cols.Level1), lookup(cols.Level2), lookup(cols.Level3)}
	s.year = lookup(cols.Year)
	s.country = lookup(cols.Country)
	if err != nil {
		return err
	}

	s.real = ev.LastColumn + 1
	next := s.real
	for _, name := range s.in.cfg.Virtual.Names() {
		s.headers[name] = next
		next++
	}
	s.width = next
	return nil
}

func (s *session) table() (*tabular.Table, error) {
	if s.headers == nil {
		return nil, ErrNoHeader
	}
	return tabular.NewTable(s.headers, s.rows), nil
}

func (s *session) value(ev RowEvent, col int) string {
	return s.clean(ev.Cells[col])
}

// clean trims a value and turns blanks and the empty sentinel into null.
func (s *session) clean(raw string) string {
	v := strings.TrimSpace(raw)
	if s.in.cfg.Empty != "" && strings.EqualFold(v, s.in.cfg.Empty) {
		return ""
	}
	return v
}

func (s *session) timePeriod(year string) string {
	y, err := strconv.Atoi(year)
	if err != nil {
		return ""
	}
	p, ok := s.in.periods.PeriodFor(y)
	if !ok {
		return ""
	}
	return p.Label()
}

// NormalizeHeader strips all characters other than ASCII letters, digits
// and underscores from a header and lowercases it.
func NormalizeHeader(name string) string {
	var b strings.Builder
	for _, c := range name {
		if c < unicode.MaxASCII && (c == '_' || unicode.IsLetter(c) || unicode.IsDigit(c)) {
			b.WriteRune(unicode.ToLower(c))
		}
	}
	return b.String()
}
