package source

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/termbridge/termbridge/internal/domain/terminology"
)

// LoadNamasteXLSX reads one NAMASTE system's workbook. The first sheet
// is the data table; columns map positionally to the canonical schema.
func LoadNamasteXLSX(path string) ([]terminology.NamasteRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s of %s: %w", sheets[0], path, err)
	}

	var records []terminology.NamasteRecord
	for i, row := range rows {
		if i == 0 && isHeaderRow(row) {
			continue
		}
		if rec, ok := namasteRecordFromRow(row); ok {
			records = append(records, rec)
		}
	}
	return records, nil
}

// SheetNames lists the sheets of a workbook, for source diagnostics.
func SheetNames(path string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return f.GetSheetList(), nil
}
