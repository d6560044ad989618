package terminology

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// NoICD11Matches and ICD11SearchError are the literal terminal results
// of an ICD-11 search that found nothing or failed upstream. Callers
// treat them as valid values, never as errors.
const (
	NoICD11Matches   = "No ICD-11 matches found"
	ICD11SearchError = "Error searching ICD-11"
)

const (
	chatFallbackMessage = "AI unavailable, but raw search is working."
	chatContextMatches  = 3
	maxContextBytes     = 4000
)

// RemoteSearcher searches a remote ICD-11 API and renders the outcome
// as a context string; sentinel strings stand in for empty or failed
// lookups.
type RemoteSearcher interface {
	SearchContext(ctx context.Context, query string, topK int) string
}

// Generator produces an AI chat response. Generate returns false when
// the upstream model is unavailable or returned nothing usable; the
// service then degrades to the fixed system fallback.
type Generator interface {
	Available() bool
	Generate(ctx context.Context, query string, history []ChatTurn, contextText string) (string, bool)
}

// SourceStatus reports connectivity and table listing for one
// configured source, for the /test-db diagnostic.
type SourceStatus struct {
	Source string   `json:"source"`
	Status string   `json:"status"`
	Tables []string `json:"tables"`
}

// SourceChecker probes the configured sources.
type SourceChecker interface {
	CheckSources(ctx context.Context) []SourceStatus
}

// SearchResponse is the /search response body. ICD11Matches is a list
// of MatchResult in local-table mode and a formatted string in remote
// mode.
type SearchResponse struct {
	Query          string        `json:"query"`
	Systems        []string      `json:"systems"`
	NamasteMatches []MatchResult `json:"namaste_matches"`
	ICD11Matches   interface{}   `json:"icd11_matches"`
}

// MapResponse is the /map response body.
type MapResponse struct {
	NamasteCode  string         `json:"namaste_code"`
	NamasteInfo  *NamasteRecord `json:"namaste_info,omitempty"`
	ICD11Matches []MatchResult  `json:"icd11_matches"`
}

// ChatResponse is the /chat response body. Source is "ai" for model
// output and "system" for the degradation fallback.
type ChatResponse struct {
	Response string `json:"response"`
	Source   string `json:"source"`
}

// StatusResponse is the /status response body.
type StatusResponse struct {
	AIAvailable   bool           `json:"ai_available"`
	DatasetLoaded bool           `json:"dataset_loaded"`
	DatasetSize   int            `json:"dataset_size"`
	Systems       map[string]int `json:"systems"`
	ICD11Size     int            `json:"icd11_size"`
	ICD11Mode     string         `json:"icd11_mode"`
	Timestamp     int64          `json:"timestamp"`
}

// Service orchestrates the matcher, mapper, and the external
// collaborators. All degradation policy lives here: upstream failures
// become valid degraded responses, never server errors.
type Service struct {
	store   *Store
	matcher *Matcher
	mapper  *Mapper
	remote  RemoteSearcher
	gen     Generator
	checker SourceChecker
	logger  zerolog.Logger
}

// NewService creates the terminology service. remote, gen, and checker
// may be nil: a nil remote selects local-table ICD-11 search, a nil gen
// forces the chat fallback, a nil checker reports no sources.
func NewService(store *Store, matcher *Matcher, mapper *Mapper, remote RemoteSearcher, gen Generator, checker SourceChecker, logger zerolog.Logger) *Service {
	return &Service{
		store:   store,
		matcher: matcher,
		mapper:  mapper,
		remote:  remote,
		gen:     gen,
		checker: checker,
		logger:  logger,
	}
}

// Search runs a NAMASTE search plus an ICD-11 search for the query.
func (s *Service) Search(ctx context.Context, query string, systems []string) SearchResponse {
	if len(systems) == 0 {
		systems = []string{string(SystemAll)}
	}

	var parsed []System
	for _, name := range systems {
		if sys, ok := ParseSystem(name); ok && sys != SystemICD11 {
			parsed = append(parsed, sys)
		}
	}

	namaste := s.matcher.Search(query, parsed)
	if namaste == nil {
		namaste = []MatchResult{}
	}

	var icd interface{}
	if s.remote != nil {
		icd = s.remote.SearchContext(ctx, query, s.matcher.TopK())
	} else {
		local := s.matcher.SearchICD11(query, 0)
		if local == nil {
			local = []MatchResult{}
		}
		icd = local
	}

	return SearchResponse{
		Query:          query,
		Systems:        systems,
		NamasteMatches: namaste,
		ICD11Matches:   icd,
	}
}

// MapCode maps one NAMASTE code to ICD-11 candidates. An unknown code
// yields an empty mapping with no NamasteInfo.
func (s *Service) MapCode(code string) MapResponse {
	mapping := s.mapper.Map(code)
	return MapResponse{
		NamasteCode:  code,
		NamasteInfo:  mapping.SourceRecord,
		ICD11Matches: mapping.TargetMatches,
	}
}

// Chat assembles terminology context for the query and relays it to the
// generative model. When the model is unavailable or fails, the caller
// gets the fixed fallback with source "system" rather than an error.
func (s *Service) Chat(ctx context.Context, query string, history []ChatTurn) ChatResponse {
	query = strings.TrimSpace(query)
	contextText := s.assembleContext(ctx, query)

	if s.gen != nil && s.gen.Available() {
		if text, ok := s.gen.Generate(ctx, query, history, contextText); ok {
			return ChatResponse{Response: text, Source: "ai"}
		}
		s.logger.Warn().Str("query", query).Msg("generative model unavailable, using fallback")
	}
	return ChatResponse{Response: chatFallbackMessage, Source: "system"}
}

// assembleContext renders the top NAMASTE matches and the ICD-11 search
// outcome into one bounded context block.
func (s *Service) assembleContext(ctx context.Context, query string) string {
	matches := s.matcher.Search(query, nil)
	if len(matches) > chatContextMatches {
		matches = matches[:chatContextMatches]
	}

	namasteBlock := "No NAMASTE matches found"
	if len(matches) > 0 {
		var b strings.Builder
		for i, m := range matches {
			if i > 0 {
				b.WriteByte('\n')
			}
			enc, err := json.Marshal(m)
			if err != nil {
				continue
			}
			b.WriteString("- ")
			b.Write(enc)
		}
		namasteBlock = b.String()
	}

	var icdBlock string
	if s.remote != nil {
		icdBlock = s.remote.SearchContext(ctx, query, s.matcher.TopK())
	} else {
		icdBlock = FormatICD11Context(s.matcher.SearchICD11(query, 0))
	}

	combined := fmt.Sprintf("NAMASTE:\n%s\n\nICD-11:\n%s", namasteBlock, icdBlock)
	if len(combined) > maxContextBytes {
		combined = combined[:maxContextBytes]
	}
	return combined
}

// FormatICD11Context renders local ICD-11 matches the same way the
// remote client renders API results, so chat context is uniform across
// modes.
func FormatICD11Context(matches []MatchResult) string {
	if len(matches) == 0 {
		return NoICD11Matches
	}
	lines := make([]string, 0, len(matches))
	for _, m := range matches {
		lines = append(lines, fmt.Sprintf("- %s → Code: %s", m.Title, m.Code))
	}
	return strings.Join(lines, "\n")
}

// Status reports dataset counts and collaborator availability.
func (s *Service) Status() StatusResponse {
	systems := make(map[string]int, len(SourceSystems))
	for _, sys := range SourceSystems {
		systems[string(sys)] = s.store.Count(sys)
	}
	mode := "local"
	if s.remote != nil {
		mode = "remote"
	}
	return StatusResponse{
		AIAvailable:   s.gen != nil && s.gen.Available(),
		DatasetLoaded: s.store.TotalCount() > 0,
		DatasetSize:   s.store.TotalCount(),
		Systems:       systems,
		ICD11Size:     s.store.Count(SystemICD11),
		ICD11Mode:     mode,
		Timestamp:     time.Now().Unix(),
	}
}

// TestSources probes each configured source for the /test-db
// diagnostic.
func (s *Service) TestSources(ctx context.Context) []SourceStatus {
	if s.checker == nil {
		return []SourceStatus{}
	}
	statuses := s.checker.CheckSources(ctx)
	if statuses == nil {
		return []SourceStatus{}
	}
	return statuses
}
