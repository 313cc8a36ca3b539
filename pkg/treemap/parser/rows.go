// Package parser reads labour relation spreadsheets into tabular datasets.
package parser

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ErrNoSheet indicates the workbook has no sheet to read.
var ErrNoSheet = errors.New("workbook has no sheets")

// RowEvent is a single spreadsheet row. Index is 0-based; row 0 is the
// header row. Cells maps 0-based column indices to raw values and omits
// blank cells. LastColumn is the highest index in Cells, or -1.
type RowEvent struct {
	Index      int
	Cells      map[int]string
	LastColumn int
}

// RowHandler consumes row events in order.
type RowHandler func(RowEvent) error

// Rows streams the rows of a sheet of the workbook read from r. An empty
// sheet name selects the first sheet. Iteration stops at the first error
// returned by fn.
func Rows(ctx context.Context, r io.Reader, sheet string, fn RowHandler) error {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return ErrNoSheet
		}
		sheet = sheets[0]
	}

	rows, err := f.Rows(sheet)
	if err != nil {
		return fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	defer rows.Close()

	for index := 0; rows.Next(); index++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		cols, err := rows.Columns()
		if err != nil {
			return fmt.Errorf("read row %d of sheet %q: %w", index+1, sheet, err)
		}
		if err := fn(newRowEvent(index, cols)); err != nil {
			return err
		}
	}
	return rows.Error()
}

func newRowEvent(index int, cols []string) RowEvent {
	ev := RowEvent{Index: index, Cells: make(map[int]string, len(cols)), LastColumn: -1}
	for col, value := range cols {
		if value == "" {
			continue
		}
		ev.Cells[col] = value
		ev.LastColumn = col
	}
	return ev
}
