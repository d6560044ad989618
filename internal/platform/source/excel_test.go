package source

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func writeTempXLSX(t *testing.T, rows [][]string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}

	path := filepath.Join(t.TempDir(), "namaste.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}

// =========== LoadNamasteXLSX ===========

func TestLoadNamasteXLSX(t *testing.T) {
	path := writeTempXLSX(t, [][]string{
		{"Sr_No", "NAMC_ID", "NAMC_CODE", "NAMC_TERM", "NAMC_term_diacritical", "Short_definition", "Long_definition", "Reference"},
		{"1", "101", "AY-12", "Jvara (Fever)", "Jvarah", "Fever. Elevated body temperature.", "A long account.", "Charaka"},
		{"2", "102", "AY-34", "Kasa", "", "Cough.", "", ""},
	})

	records, err := LoadNamasteXLSX(path)
	if err != nil {
		t.Fatalf("LoadNamasteXLSX: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2 (header skipped)", len(records))
	}

	first := records[0]
	if first.Code != "AY-12" || first.Term != "Jvara (Fever)" || first.TermDiacritical != "Jvarah" {
		t.Errorf("first = %+v", first)
	}
	if first.Reference != "Charaka" {
		t.Errorf("Reference = %q", first.Reference)
	}
	if records[1].Code != "AY-34" || records[1].LongDefinition != "" {
		t.Errorf("second = %+v", records[1])
	}
}

func TestLoadNamasteXLSX_NoHeader(t *testing.T) {
	path := writeTempXLSX(t, [][]string{
		{"1", "101", "AY-12", "Jvara"},
	})

	records, err := LoadNamasteXLSX(path)
	if err != nil {
		t.Fatalf("LoadNamasteXLSX: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("records = %d, want 1 (data row must not be mistaken for a header)", len(records))
	}
}

func TestLoadNamasteXLSX_MissingFile(t *testing.T) {
	if _, err := LoadNamasteXLSX(filepath.Join(t.TempDir(), "absent.xlsx")); err == nil {
		t.Error("LoadNamasteXLSX on a missing file returned nil error")
	}
}

// =========== SheetNames ===========

func TestSheetNames(t *testing.T) {
	path := writeTempXLSX(t, [][]string{{"1", "101", "AY-12", "Jvara"}})

	sheets, err := SheetNames(path)
	if err != nil {
		t.Fatalf("SheetNames: %v", err)
	}
	if len(sheets) != 1 {
		t.Errorf("sheets = %v, want one sheet", sheets)
	}
}

// =========== FileChecker ===========

func TestFileChecker_CheckSources(t *testing.T) {
	xlsxPath := writeTempXLSX(t, [][]string{{"1", "101", "AY-12", "Jvara"}})
	csvPath := writeTempCSV(t, "2024-01,1C62,Dengue fever,01,Infectious diseases\n")

	checker := NewFileChecker([]FileSource{
		{Name: "AYURVEDA", Path: xlsxPath},
		{Name: "ICD11", Path: csvPath},
		{Name: "UNANI", Path: filepath.Join(t.TempDir(), "missing.xlsx")},
	})

	statuses := checker.CheckSources(context.Background())
	if len(statuses) != 3 {
		t.Fatalf("statuses = %d, want 3", len(statuses))
	}

	if statuses[0].Status != "Connected" || len(statuses[0].Tables) == 0 {
		t.Errorf("workbook status = %+v", statuses[0])
	}
	if statuses[1].Status != "Connected" || len(statuses[1].Tables) != 1 || statuses[1].Tables[0] != "icd11" {
		t.Errorf("csv status = %+v", statuses[1])
	}
	if statuses[2].Status != "File not found" {
		t.Errorf("missing file status = %+v", statuses[2])
	}
	if statuses[2].Tables == nil {
		t.Error("missing file Tables is nil, want empty slice")
	}
}
