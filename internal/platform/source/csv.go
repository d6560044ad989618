package source

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/termbridge/termbridge/internal/domain/terminology"
)

// ICD-11 table columns: version, code, title, chapter_number,
// chapter_title, then up to seven free-text reason columns that are
// concatenated into full_description.
const (
	icd11FixedColumns = 5
	icd11MaxReasons   = 7
	reasonSeparator   = " → "
)

// LoadICD11CSV reads the local ICD-11 classification table.
func LoadICD11CSV(path string) ([]terminology.ICD11Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open icd-11 table %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read icd-11 table %s: %w", path, err)
	}

	var records []terminology.ICD11Record
	for i, row := range rows {
		if i == 0 && isHeaderRow(row) {
			continue
		}
		if rec, ok := icd11RecordFromRow(row); ok {
			records = append(records, rec)
		}
	}
	return records, nil
}

func icd11RecordFromRow(row []string) (terminology.ICD11Record, bool) {
	get := func(i int) string {
		if i < len(row) {
			return cleanField(row[i])
		}
		return ""
	}

	rec := terminology.ICD11Record{
		Version:       get(0),
		Code:          get(1),
		Title:         get(2),
		ChapterNumber: get(3),
		ChapterTitle:  get(4),
	}

	var reasons []string
	for i := 0; i < icd11MaxReasons; i++ {
		if v := get(icd11FixedColumns + i); v != "" {
			reasons = append(reasons, v)
		}
	}
	rec.FullDescription = strings.Join(reasons, reasonSeparator)

	if rec.Code == "" && rec.Title == "" && rec.FullDescription == "" {
		return terminology.ICD11Record{}, false
	}
	return rec, true
}
