package terminology

// Store holds the loaded terminology tables. It is built once at startup
// and never mutated afterwards, so request handlers share it by
// reference without locking.
type Store struct {
	tables map[System][]NamasteRecord
	icd11  []ICD11Record
}

// NewStore builds a Store from per-system NAMASTE tables and the local
// ICD-11 table. Each record is tagged with its system so the derived
// merged view needs no extra bookkeeping. Missing tables are simply
// empty: a source that failed to load never aborts construction.
func NewStore(tables map[System][]NamasteRecord, icd11 []ICD11Record) *Store {
	s := &Store{tables: make(map[System][]NamasteRecord, len(SourceSystems))}
	for _, sys := range SourceSystems {
		rows := tables[sys]
		tagged := make([]NamasteRecord, len(rows))
		for i, r := range rows {
			r.System = sys
			tagged[i] = r
		}
		s.tables[sys] = tagged
	}
	s.icd11 = append([]ICD11Record(nil), icd11...)
	return s
}

// Records returns the table for one source system, in load order.
func (s *Store) Records(sys System) []NamasteRecord {
	return s.tables[sys]
}

// Merged returns the derived all-systems view, concatenated in the
// fixed source order. Per-system tables stay authoritative for targeted
// search; this view exists for counts and diagnostics.
func (s *Store) Merged() []NamasteRecord {
	out := make([]NamasteRecord, 0, s.TotalCount())
	for _, sys := range SourceSystems {
		out = append(out, s.tables[sys]...)
	}
	return out
}

// ICD11 returns the local classification table, in load order.
func (s *Store) ICD11() []ICD11Record {
	return s.icd11
}

// Count returns the number of rows loaded for one system.
func (s *Store) Count(sys System) int {
	if sys == SystemICD11 {
		return len(s.icd11)
	}
	return len(s.tables[sys])
}

// TotalCount returns the number of NAMASTE rows across all systems.
func (s *Store) TotalCount() int {
	n := 0
	for _, sys := range SourceSystems {
		n += len(s.tables[sys])
	}
	return n
}

// FindByCode scans the source systems in their fixed order for an exact
// normalized code match and returns the first hit. The bool result
// distinguishes "not found" from a record that happens to be zero.
func (s *Store) FindByCode(code string) (NamasteRecord, bool) {
	want := NormalizeCode(code)
	if want == "" {
		return NamasteRecord{}, false
	}
	for _, sys := range SourceSystems {
		for _, r := range s.tables[sys] {
			if NormalizeCode(r.Code) == want {
				return r, true
			}
		}
	}
	return NamasteRecord{}, false
}
