package terminology

import (
	"regexp"
	"strings"
)

// System identifies one coded vocabulary: a NAMASTE source system or the
// ICD-11 target classification.
type System string

const (
	SystemAyurveda System = "AYURVEDA"
	SystemUnani    System = "UNANI"
	SystemSiddha   System = "SIDDHA"
	SystemICD11    System = "ICD11"

	// SystemAll is a search selector, not a stored system.
	SystemAll System = "ALL"
)

// SourceSystems is the fixed scan order for NAMASTE tables. The mapper
// resolves codes in this order and stops at the first hit.
var SourceSystems = []System{SystemAyurveda, SystemUnani, SystemSiddha}

// ParseSystem normalizes a caller-supplied system name. Unknown names
// return false so handlers can ignore them rather than fail the request.
func ParseSystem(s string) (System, bool) {
	switch System(strings.ToUpper(strings.TrimSpace(s))) {
	case SystemAyurveda:
		return SystemAyurveda, true
	case SystemUnani:
		return SystemUnani, true
	case SystemSiddha:
		return SystemSiddha, true
	case SystemICD11:
		return SystemICD11, true
	case SystemAll:
		return SystemAll, true
	}
	return "", false
}

// NamasteRecord is one row of a NAMASTE code table. All text fields are
// optional; blank fields are omitted from JSON, never emitted as null.
type NamasteRecord struct {
	System          System `json:"system,omitempty"`
	SequenceNo      string `json:"sequence_no,omitempty"`
	InternalID      string `json:"internal_id,omitempty"`
	Code            string `json:"code,omitempty"`
	Term            string `json:"term,omitempty"`
	TermDiacritical string `json:"term_diacritical,omitempty"`
	ShortDefinition string `json:"short_definition,omitempty"`
	LongDefinition  string `json:"long_definition,omitempty"`
	Reference       string `json:"reference,omitempty"`
}

// PrimaryKey returns the value used for cross-system de-duplication:
// the normalized code, falling back to the internal ID. Rows with
// neither are never deduplicated.
func (r *NamasteRecord) PrimaryKey() string {
	if c := NormalizeCode(r.Code); c != "" {
		return c
	}
	return NormalizeCode(r.InternalID)
}

// ICD11Record is one row of the local ICD-11 classification table.
type ICD11Record struct {
	Version         string `json:"version,omitempty"`
	Code            string `json:"code,omitempty"`
	Title           string `json:"title,omitempty"`
	ChapterNumber   string `json:"chapter_number,omitempty"`
	ChapterTitle    string `json:"chapter_title,omitempty"`
	FullDescription string `json:"full_description,omitempty"`
}

// MatchKind classifies how a result matched the query.
type MatchKind string

const (
	MatchExactCode  MatchKind = "exact_code"
	MatchTextSearch MatchKind = "text_search"
)

// MatchResult is a record projected to its non-empty fields plus match
// metadata. NAMASTE and ICD-11 rows share the shape; only the fields
// present on the underlying record are serialized.
type MatchResult struct {
	System          System `json:"system,omitempty"`
	SequenceNo      string `json:"sequence_no,omitempty"`
	InternalID      string `json:"internal_id,omitempty"`
	Code            string `json:"code,omitempty"`
	Term            string `json:"term,omitempty"`
	TermDiacritical string `json:"term_diacritical,omitempty"`
	ShortDefinition string `json:"short_definition,omitempty"`
	LongDefinition  string `json:"long_definition,omitempty"`
	Reference       string `json:"reference,omitempty"`

	Version         string `json:"version,omitempty"`
	Title           string `json:"title,omitempty"`
	ChapterNumber   string `json:"chapter_number,omitempty"`
	ChapterTitle    string `json:"chapter_title,omitempty"`
	FullDescription string `json:"full_description,omitempty"`

	MatchedFields []string  `json:"matched_fields,omitempty"`
	MatchKind     MatchKind `json:"match_kind"`
	MatchReason   string    `json:"match_reason,omitempty"`
}

// MappingResult is the outcome of mapping one NAMASTE code to ICD-11.
// A nil SourceRecord with empty TargetMatches is the valid "not found"
// result, not an error.
type MappingResult struct {
	SourceRecord  *NamasteRecord `json:"source_record,omitempty"`
	TargetMatches []MatchResult  `json:"target_matches"`
}

// ChatTurn is one prior turn of a chat conversation.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// NormalizeCode trims and upper-cases a code for comparison. It is
// idempotent: NormalizeCode(NormalizeCode(s)) == NormalizeCode(s).
func NormalizeCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func normalizeText(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

var (
	codeLikeRe = regexp.MustCompile(`^[A-Za-z]{0,8}-?[0-9][A-Za-z0-9.\-]*$`)
	numericRe  = regexp.MustCompile(`^[0-9]+$`)
)

// queryShape is the classification of a query string that decides which
// matcher tiers apply.
type queryShape int

const (
	shapeFreeText queryShape = iota
	shapeCodeLike
	shapeNumeric
)

func classifyQuery(q string) queryShape {
	q = strings.TrimSpace(q)
	switch {
	case q == "":
		return shapeFreeText
	case numericRe.MatchString(q):
		return shapeNumeric
	case codeLikeRe.MatchString(q):
		return shapeCodeLike
	default:
		return shapeFreeText
	}
}
