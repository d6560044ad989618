package terminology

import (
	"fmt"
	"strings"
	"unicode"
)

const (
	maxDerivedTerms   = 5
	extraTokenMinLen  = 4
	maxExtraTokens    = 3
	perTermTopK       = 3
	accumulationCap   = 8
	maxMappingResults = 5
	minTermLen        = 2
	minDefinitionLen  = 3
)

// Mapper resolves a NAMASTE code to its record and re-searches the
// ICD-11 table with terms derived from that record's text fields. This
// turns an exact-identifier lookup in one terminology into a best-effort
// fuzzy lookup in an unrelated terminology with no shared keys.
type Mapper struct {
	store   *Store
	matcher *Matcher
}

// NewMapper creates a mapper over the given store and matcher.
func NewMapper(store *Store, matcher *Matcher) *Mapper {
	return &Mapper{store: store, matcher: matcher}
}

// Map resolves sourceCode and returns its ICD-11 candidate mappings.
// An unknown code yields an empty MappingResult, never an error.
func (m *Mapper) Map(sourceCode string) MappingResult {
	rec, ok := m.store.FindByCode(sourceCode)
	if !ok {
		return MappingResult{TargetMatches: []MatchResult{}}
	}

	var accumulated []MatchResult
	for _, term := range DeriveSearchTerms(rec) {
		reason := fmt.Sprintf("Matched: %s", term)
		for _, res := range m.matcher.SearchICD11(term, perTermTopK) {
			res.MatchReason = reason
			accumulated = append(accumulated, res)
			if len(accumulated) >= accumulationCap {
				break
			}
		}
		if len(accumulated) >= accumulationCap {
			break
		}
	}

	// First occurrence wins; rows without a code are never deduplicated.
	deduped := make([]MatchResult, 0, len(accumulated))
	seen := make(map[string]bool)
	for _, res := range accumulated {
		key := NormalizeCode(res.Code)
		if key != "" {
			if seen[key] {
				continue
			}
			seen[key] = true
		}
		deduped = append(deduped, res)
	}
	if len(deduped) > maxMappingResults {
		deduped = deduped[:maxMappingResults]
	}

	source := rec
	return MappingResult{SourceRecord: &source, TargetMatches: deduped}
}

// DeriveSearchTerms extracts up to five candidate search terms from a
// record, in priority order:
//
//  1. the primary term truncated at its first parenthesis,
//  2. the short definition truncated at its first sentence boundary,
//  3. up to three further whole-word alphabetic tokens from the term
//     and short definition.
//
// Duplicates are removed case-sensitively.
func DeriveSearchTerms(rec NamasteRecord) []string {
	var terms []string
	chosen := make(map[string]bool)
	add := func(t string) bool {
		t = strings.TrimSpace(t)
		if t == "" || chosen[t] || len(terms) >= maxDerivedTerms {
			return false
		}
		chosen[t] = true
		terms = append(terms, t)
		return true
	}

	if t := truncateAt(rec.Term, "("); len(t) > minTermLen {
		add(t)
	}
	if d := truncateAt(rec.ShortDefinition, "."); len(d) > minDefinitionLen {
		add(d)
	}

	extras := 0
	for _, tok := range strings.Fields(rec.Term + " " + rec.ShortDefinition) {
		if extras >= maxExtraTokens {
			break
		}
		if len(tok) < extraTokenMinLen || !isAlphabetic(tok) || chosen[tok] {
			continue
		}
		if add(tok) {
			extras++
		}
	}
	return terms
}

func truncateAt(s, sep string) string {
	if i := strings.Index(s, sep); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

func isAlphabetic(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return s != ""
}
