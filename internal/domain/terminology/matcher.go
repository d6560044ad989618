package terminology

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Matcher performs tiered lexical search over the store's tables. It is
// deterministic and side-effect free: row order is preserved and no
// scoring happens beyond the tier short-circuit.
//
// Tier order per table: exact code, then numeric identity, then
// word-boundary free text. A tier that produces matches suppresses the
// tiers below it for that table.
type Matcher struct {
	store *Store
	topK  int
}

// NewMatcher creates a matcher with the given default result cap.
func NewMatcher(store *Store, topK int) *Matcher {
	if topK <= 0 {
		topK = 5
	}
	return &Matcher{store: store, topK: topK}
}

// TopK returns the matcher's default result cap.
func (m *Matcher) TopK() int { return m.topK }

// Search runs the tiered search over the requested NAMASTE systems, in
// the caller's order (store order for ALL or an empty selection).
// Results are merged across systems, de-duplicated by primary code
// (first occurrence wins, codeless rows kept), and truncated to topK.
func (m *Matcher) Search(query string, systems []System) []MatchResult {
	scan := resolveSystems(systems)

	results := make([]MatchResult, 0, m.topK)
	seen := make(map[string]bool)
	for _, sys := range scan {
		for _, res := range m.searchNamasteTable(m.store.Records(sys), query) {
			key := primaryKeyOf(res)
			if key != "" {
				if seen[key] {
					continue
				}
				seen[key] = true
			}
			results = append(results, res)
			if len(results) >= m.topK {
				return results
			}
		}
	}
	return results
}

// SearchICD11 runs the tiered search against the local ICD-11 table.
// topK <= 0 falls back to the matcher default.
func (m *Matcher) SearchICD11(query string, topK int) []MatchResult {
	if topK <= 0 {
		topK = m.topK
	}
	var results []MatchResult

	shape := classifyQuery(query)
	if shape == shapeCodeLike || shape == shapeNumeric {
		want := NormalizeCode(query)
		for _, r := range m.store.ICD11() {
			if NormalizeCode(r.Code) == want {
				results = append(results, icd11MatchResult(r, []string{"code"}, MatchExactCode))
				if len(results) >= topK {
					return results
				}
			}
		}
		if len(results) > 0 {
			return results
		}
	}

	fields := []struct {
		name  string
		value func(ICD11Record) string
	}{
		{"title", func(r ICD11Record) string { return r.Title }},
		{"full_description", func(r ICD11Record) string { return r.FullDescription }},
		{"chapter_title", func(r ICD11Record) string { return r.ChapterTitle }},
	}
	for _, r := range m.store.ICD11() {
		var matched []string
		for _, f := range fields {
			if containsWord(f.value(r), query) {
				matched = append(matched, f.name)
			}
		}
		if len(matched) > 0 {
			results = append(results, icd11MatchResult(r, matched, MatchTextSearch))
			if len(results) >= topK {
				break
			}
		}
	}
	return results
}

func resolveSystems(systems []System) []System {
	if len(systems) == 0 {
		return SourceSystems
	}
	var scan []System
	for _, sys := range systems {
		if sys == SystemAll {
			return SourceSystems
		}
		for _, known := range SourceSystems {
			if sys == known {
				scan = append(scan, sys)
				break
			}
		}
	}
	if len(scan) == 0 {
		return SourceSystems
	}
	return scan
}

// searchNamasteTable applies the tier policy to one system's table and
// returns matches in row order, uncapped. The caller handles merging
// and truncation.
func (m *Matcher) searchNamasteTable(records []NamasteRecord, query string) []MatchResult {
	shape := classifyQuery(query)

	// Tier 1: exact code. A hit short-circuits the lower tiers.
	if shape == shapeCodeLike || shape == shapeNumeric {
		want := NormalizeCode(query)
		var results []MatchResult
		for _, r := range records {
			if NormalizeCode(r.Code) == want {
				results = append(results, namasteMatchResult(r, []string{"code"}, MatchExactCode))
			}
		}
		if len(results) > 0 {
			return results
		}
	}

	// Tier 2: numeric identity against identifier fields.
	if shape == shapeNumeric {
		want := strings.TrimSpace(query)
		var results []MatchResult
		for _, r := range records {
			var matched []string
			if strings.TrimSpace(r.SequenceNo) == want {
				matched = append(matched, "sequence_no")
			}
			if strings.TrimSpace(r.InternalID) == want {
				matched = append(matched, "internal_id")
			}
			if len(matched) > 0 {
				results = append(results, namasteMatchResult(r, matched, MatchExactCode))
			}
		}
		if len(results) > 0 {
			return results
		}
	}

	// Tier 3: word-boundary free text over the fixed field order.
	fields := []struct {
		name  string
		value func(NamasteRecord) string
	}{
		{"term", func(r NamasteRecord) string { return r.Term }},
		{"term_diacritical", func(r NamasteRecord) string { return r.TermDiacritical }},
		{"short_definition", func(r NamasteRecord) string { return r.ShortDefinition }},
		{"long_definition", func(r NamasteRecord) string { return r.LongDefinition }},
		{"reference", func(r NamasteRecord) string { return r.Reference }},
	}
	var results []MatchResult
	for _, r := range records {
		var matched []string
		for _, f := range fields {
			if containsWord(f.value(r), query) {
				matched = append(matched, f.name)
			}
		}
		if len(matched) > 0 {
			results = append(results, namasteMatchResult(r, matched, MatchTextSearch))
		}
	}
	return results
}

// containsWord reports whether needle occurs in haystack at word
// boundaries, case-insensitively. An empty or blank needle never
// matches, so an empty query returns no free-text results.
func containsWord(haystack, needle string) bool {
	n := normalizeText(needle)
	if n == "" || haystack == "" {
		return false
	}
	h := strings.ToLower(haystack)
	for from := 0; ; {
		idx := strings.Index(h[from:], n)
		if idx < 0 {
			return false
		}
		start := from + idx
		end := start + len(n)
		if boundaryBefore(h, start) && boundaryAfter(h, end) {
			return true
		}
		from = start + 1
	}
}

func boundaryBefore(s string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func boundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func namasteMatchResult(r NamasteRecord, matched []string, kind MatchKind) MatchResult {
	return MatchResult{
		System:          r.System,
		SequenceNo:      r.SequenceNo,
		InternalID:      r.InternalID,
		Code:            r.Code,
		Term:            r.Term,
		TermDiacritical: r.TermDiacritical,
		ShortDefinition: r.ShortDefinition,
		LongDefinition:  r.LongDefinition,
		Reference:       r.Reference,
		MatchedFields:   matched,
		MatchKind:       kind,
	}
}

func icd11MatchResult(r ICD11Record, matched []string, kind MatchKind) MatchResult {
	return MatchResult{
		System:          SystemICD11,
		Version:         r.Version,
		Code:            r.Code,
		Title:           r.Title,
		ChapterNumber:   r.ChapterNumber,
		ChapterTitle:    r.ChapterTitle,
		FullDescription: r.FullDescription,
		MatchedFields:   matched,
		MatchKind:       kind,
	}
}

func primaryKeyOf(res MatchResult) string {
	if c := NormalizeCode(res.Code); c != "" {
		return c
	}
	return NormalizeCode(res.InternalID)
}
