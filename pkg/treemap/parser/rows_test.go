package parser

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, cells map[string]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for cell, value := range cells {
		if err := f.SetCellValue("Sheet1", cell, value); err != nil {
			t.Fatalf("Failed to set %s: %v", cell, err)
		}
	}

	path := filepath.Join(t.TempDir(), "test.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("Failed to save test file: %v", err)
	}
	return path
}

func TestRows(t *testing.T) {
	path := writeWorkbook(t, map[string]interface{}{
		"A1": "Header1",
		"C1": "Header3",
		"A2": 100,
		"B2": 200.5,
		"A3": "Text",
	})

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open test file: %v", err)
	}
	defer file.Close()

	var events []RowEvent
	err = Rows(context.Background(), file, "", func(ev RowEvent) error {
		events = append(events, ev)
		return nil
	})
	if err != nil {
		t.Fatalf("Rows failed: %v", err)
	}

	if len(events) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(events))
	}

	for i, ev := range events {
		if ev.Index != i {
			t.Errorf("Expected index %d, got %d", i, ev.Index)
		}
	}

	header := events[0]
	if header.Cells[0] != "Header1" || header.Cells[2] != "Header3" {
		t.Errorf("Unexpected header cells: %v", header.Cells)
	}
	if _, ok := header.Cells[1]; ok {
		t.Errorf("Expected blank cell to be omitted, got %v", header.Cells)
	}
	if header.LastColumn != 2 {
		t.Errorf("Expected last column 2, got %d", header.LastColumn)
	}

	if events[1].Cells[0] != "100" || events[1].Cells[1] != "200.5" {
		t.Errorf("Unexpected number cells: %v", events[1].Cells)
	}
	if events[2].LastColumn != 0 {
		t.Errorf("Expected last column 0, got %d", events[2].LastColumn)
	}
}

func TestRows_UnknownSheet(t *testing.T) {
	path := writeWorkbook(t, map[string]interface{}{"A1": "x"})

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open test file: %v", err)
	}
	defer file.Close()

	err = Rows(context.Background(), file, "Missing", func(RowEvent) error { return nil })
	if err == nil {
		t.Error("Expected an error for an unknown sheet")
	}
}

func TestRows_Cancelled(t *testing.T) {
	path := writeWorkbook(t, map[string]interface{}{"A1": "x"})

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open test file: %v", err)
	}
	defer file.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = Rows(ctx, file, "", func(RowEvent) error { return nil })
	if err != context.Canceled {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestRows_NotAWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.xlsx")
	if err := os.WriteFile(path, []byte("not a zip"), 0644); err != nil {
		t.Fatal(err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()

	if err := Rows(context.Background(), file, "", func(RowEvent) error { return nil }); err == nil {
		t.Error("Expected an error for a file that is not a workbook")
	}
}
