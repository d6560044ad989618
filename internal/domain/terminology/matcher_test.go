package terminology

import "testing"

// =========== NAMASTE search ===========

func TestMatcher_Search_ExactCodeShortCircuits(t *testing.T) {
	m := NewMatcher(testStore(), 5)

	results := m.Search("ay-12", nil)
	if len(results) != 1 {
		t.Fatalf("Search(ay-12) = %d results, want 1 (cross-system dupe removed)", len(results))
	}
	res := results[0]
	if res.System != SystemAyurveda || res.Code != "AY-12" {
		t.Errorf("result = %s/%s, want AYURVEDA/AY-12", res.System, res.Code)
	}
	if res.MatchKind != MatchExactCode {
		t.Errorf("MatchKind = %q, want exact_code", res.MatchKind)
	}
	if len(res.MatchedFields) != 1 || res.MatchedFields[0] != "code" {
		t.Errorf("MatchedFields = %v, want [code]", res.MatchedFields)
	}
}

func TestMatcher_Search_FreeTextAcrossSystems(t *testing.T) {
	m := NewMatcher(testStore(), 5)

	results := m.Search("fever", nil)
	if len(results) != 3 {
		t.Fatalf("Search(fever) = %d results, want 3", len(results))
	}
	// Store scan order: ayurveda, unani, siddha.
	wantCodes := []string{"AY-12", "UN-07", "SD-90"}
	for i, want := range wantCodes {
		if results[i].Code != want {
			t.Errorf("results[%d].Code = %q, want %q", i, results[i].Code, want)
		}
		if results[i].MatchKind != MatchTextSearch {
			t.Errorf("results[%d].MatchKind = %q, want text_search", i, results[i].MatchKind)
		}
	}
}

func TestMatcher_Search_CaseInsensitive(t *testing.T) {
	m := NewMatcher(testStore(), 5)
	upper := m.Search("FEVER", nil)
	lower := m.Search("fever", nil)
	if len(upper) != len(lower) {
		t.Errorf("case sensitivity: %d vs %d results", len(upper), len(lower))
	}
}

func TestMatcher_Search_WordBoundary(t *testing.T) {
	m := NewMatcher(testStore(), 5)
	// "chill" is a prefix of "chills" but not a whole word anywhere.
	if results := m.Search("chill", nil); len(results) != 0 {
		t.Errorf("Search(chill) = %d results, want 0 (substring must not match)", len(results))
	}
	if results := m.Search("chills", nil); len(results) != 1 {
		t.Errorf("Search(chills) = %d results, want 1", len(results))
	}
}

func TestMatcher_Search_EmptyQuery(t *testing.T) {
	m := NewMatcher(testStore(), 5)
	if results := m.Search("", nil); len(results) != 0 {
		t.Errorf("Search(empty) = %d results, want 0", len(results))
	}
	if results := m.Search("   ", nil); len(results) != 0 {
		t.Errorf("Search(blank) = %d results, want 0", len(results))
	}
}

func TestMatcher_Search_SystemFilter(t *testing.T) {
	m := NewMatcher(testStore(), 5)

	results := m.Search("fever", []System{SystemUnani})
	if len(results) != 1 || results[0].Code != "UN-07" {
		t.Fatalf("Search(fever, unani) = %v, want only UN-07", results)
	}

	// ALL behaves like no filter.
	all := m.Search("fever", []System{SystemAll})
	if len(all) != 3 {
		t.Errorf("Search(fever, ALL) = %d results, want 3", len(all))
	}
}

func TestMatcher_Search_TopKTruncation(t *testing.T) {
	m := NewMatcher(testStore(), 2)
	results := m.Search("fever", nil)
	if len(results) != 2 {
		t.Errorf("Search with topK=2 = %d results, want 2", len(results))
	}
}

func TestMatcher_Search_NumericIdentity(t *testing.T) {
	m := NewMatcher(testStore(), 5)

	results := m.Search("101", nil)
	if len(results) != 1 {
		t.Fatalf("Search(101) = %d results, want 1", len(results))
	}
	if results[0].InternalID != "101" {
		t.Errorf("InternalID = %q, want 101", results[0].InternalID)
	}
	if results[0].MatchKind != MatchExactCode {
		t.Errorf("MatchKind = %q, want exact_code", results[0].MatchKind)
	}
	if len(results[0].MatchedFields) != 1 || results[0].MatchedFields[0] != "internal_id" {
		t.Errorf("MatchedFields = %v, want [internal_id]", results[0].MatchedFields)
	}
}

// =========== ICD-11 search ===========

func TestMatcher_SearchICD11_ExactCode(t *testing.T) {
	m := NewMatcher(testStore(), 5)

	results := m.SearchICD11("1c62", 0)
	if len(results) != 1 {
		t.Fatalf("SearchICD11(1c62) = %d results, want 1", len(results))
	}
	res := results[0]
	if res.Code != "1C62" || res.Title != "Dengue fever" || res.System != SystemICD11 {
		t.Errorf("result = %+v", res)
	}
	if res.MatchKind != MatchExactCode {
		t.Errorf("MatchKind = %q, want exact_code", res.MatchKind)
	}
}

func TestMatcher_SearchICD11_TextSearch(t *testing.T) {
	m := NewMatcher(testStore(), 5)

	results := m.SearchICD11("fever", 0)
	if len(results) != 2 {
		t.Fatalf("SearchICD11(fever) = %d results, want 2", len(results))
	}
	if results[0].Code != "1C62" || results[1].Code != "MG26" {
		t.Errorf("codes = %s, %s", results[0].Code, results[1].Code)
	}
}

func TestMatcher_SearchICD11_TopKOverride(t *testing.T) {
	m := NewMatcher(testStore(), 5)
	if results := m.SearchICD11("fever", 1); len(results) != 1 {
		t.Errorf("SearchICD11 with topK=1 = %d results", len(results))
	}
}

// =========== containsWord ===========

func TestContainsWord(t *testing.T) {
	tests := []struct {
		haystack, needle string
		want             bool
	}{
		{"Jvara (Fever)", "fever", true},
		{"Jvara (Fever)", "jvara", true},
		{"Elevated body temperature", "body", true},
		{"Elevated body temperature", "bod", false},
		{"feverish condition", "fever", false},
		{"a fever, then chills", "fever", true},
		{"fever", "fever", true},
		{"", "fever", false},
		{"fever", "", false},
		{"fever", "  ", false},
	}
	for _, tt := range tests {
		if got := containsWord(tt.haystack, tt.needle); got != tt.want {
			t.Errorf("containsWord(%q, %q) = %v, want %v", tt.haystack, tt.needle, got, tt.want)
		}
	}
}
