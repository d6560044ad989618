// Package icd11 provides a client for the remote ICD-11 flat-search
// API. Lookup failures are rendered as sentinel strings, never errors:
// the service treats "no matches" and "upstream error" as valid
// terminal results and degrades the response instead of failing it.
package icd11

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// Sentinel results for empty and failed searches. Callers must treat
// both as terminal values.
const (
	NoMatches   = "No ICD-11 matches found"
	SearchError = "Error searching ICD-11"
)

const defaultTimeout = 10 * time.Second

// Entity is one flat search result.
type Entity struct {
	Title string `json:"title"`
	Code  string `json:"theCode"`
}

type searchResponse struct {
	DestinationEntities []Entity `json:"destinationEntities"`
}

// Client calls the ICD-11 release API.
type Client struct {
	http   *resty.Client
	logger zerolog.Logger
}

// NewClient creates a client for the given API base URL (the release
// root, e.g. ".../icd/release/11/"). A zero timeout uses the default.
func NewClient(baseURL string, timeout time.Duration, logger zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	http := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &Client{http: http, logger: logger}
}

// Search returns up to topK flat results for the query.
func (c *Client) Search(ctx context.Context, query string, topK int) ([]Entity, error) {
	if topK <= 0 {
		topK = 5
	}

	var result searchResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":            query,
			"flatResults":  "true",
			"highlighting": "false",
		}).
		SetResult(&result).
		Get("/search")
	if err != nil {
		return nil, fmt.Errorf("icd-11 search: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("icd-11 search: status %d", resp.StatusCode())
	}

	entities := result.DestinationEntities
	if len(entities) > topK {
		entities = entities[:topK]
	}
	return entities, nil
}

// SearchContext runs Search and renders the outcome as a context block
// for chat and search responses. It implements
// terminology.RemoteSearcher.
func (c *Client) SearchContext(ctx context.Context, query string, topK int) string {
	entities, err := c.Search(ctx, query, topK)
	if err != nil {
		c.logger.Warn().Err(err).Str("query", query).Msg("icd-11 search failed")
		return SearchError
	}
	if len(entities) == 0 {
		return NoMatches
	}

	lines := make([]string, 0, len(entities))
	for _, e := range entities {
		title, code := e.Title, e.Code
		if title == "" {
			title = "N/A"
		}
		if code == "" {
			code = "N/A"
		}
		lines = append(lines, fmt.Sprintf("- %s → Code: %s", title, code))
	}
	return strings.Join(lines, "\n")
}
