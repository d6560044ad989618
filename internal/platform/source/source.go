// Package source loads the static terminology tables that back the
// in-memory store. Sources are read once at startup; a missing or
// unreadable source is reported to the caller, who logs it and
// continues with an empty table.
package source

import (
	"strings"
	"unicode"

	"github.com/termbridge/termbridge/internal/domain/terminology"
)

// Positional column schema shared by all NAMASTE sources: the published
// datasets carry unnamed columns, so position is authoritative.
// 1 sequence_no, 2 internal_id, 3 code, 4 term, 5 term_diacritical,
// 6 short_definition, 7 long_definition, 8 reference.
const namasteColumns = 8

// cleanField strips non-printable characters, folds line breaks and
// tabs to spaces, and trims the result.
func cleanField(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			b.WriteByte(' ')
		case unicode.IsPrint(r):
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// namasteRecordFromRow maps a raw row to a record by position. Rows
// with no content at all are dropped.
func namasteRecordFromRow(row []string) (terminology.NamasteRecord, bool) {
	fields := make([]string, namasteColumns)
	empty := true
	for i := 0; i < namasteColumns && i < len(row); i++ {
		fields[i] = cleanField(row[i])
		if fields[i] != "" {
			empty = false
		}
	}
	if empty {
		return terminology.NamasteRecord{}, false
	}
	return terminology.NamasteRecord{
		SequenceNo:      fields[0],
		InternalID:      fields[1],
		Code:            fields[2],
		Term:            fields[3],
		TermDiacritical: fields[4],
		ShortDefinition: fields[5],
		LongDefinition:  fields[6],
		Reference:       fields[7],
	}, true
}

// isHeaderRow detects the header line the published exports carry.
func isHeaderRow(row []string) bool {
	joined := strings.ToLower(strings.Join(row, " "))
	if strings.Contains(joined, "namc") {
		return true
	}
	return strings.Contains(joined, "code") && (strings.Contains(joined, "term") || strings.Contains(joined, "title"))
}
