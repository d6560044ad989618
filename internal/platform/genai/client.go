// Package genai provides a client for the Google generative-language
// API. The client is an opaque collaborator: it takes a query, prior
// turns, and an assembled context block and returns optional text.
// Any upstream failure yields "unavailable", never an error, so the
// chat endpoint can fall back to its fixed system response.
package genai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

const (
	defaultModel   = "gemini-1.5-flash"
	defaultTimeout = 20 * time.Second

	temperature     = 0.2
	maxOutputTokens = 600
)

// systemPrompt is the fixed opening instruction turn.
const systemPrompt = `You are a specialized medical terminology assistant.
You provide accurate, safe, evidence-based information about traditional
medicine codes and their WHO ICD-11 counterparts.
Never provide a definitive diagnosis—only educational information.
Always recommend consulting a healthcare professional. Keep answers concise.`

// Turn is one prior conversation turn.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Client calls the generateContent endpoint of one model.
type Client struct {
	http   *resty.Client
	apiKey string
	model  string
	logger zerolog.Logger
}

// NewClient creates a client. An empty API key leaves the client
// permanently unavailable; the service then always uses its fallback.
func NewClient(baseURL, apiKey, model string, timeout time.Duration, logger zerolog.Logger) *Client {
	if model == "" {
		model = defaultModel
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	http := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	return &Client{http: http, apiKey: apiKey, model: model, logger: logger}
}

// Available reports whether the client is configured with an API key.
func (c *Client) Available() bool {
	return c.apiKey != ""
}

// Generate relays the query plus context to the model and returns its
// text. The second result is false whenever no usable text came back.
func (c *Client) Generate(ctx context.Context, query string, history []Turn, contextText string) (string, bool) {
	if !c.Available() {
		return "", false
	}

	contents := []content{{Role: "user", Parts: []part{{Text: systemPrompt}}}}
	for _, turn := range history {
		role := "model"
		if turn.Role == "user" {
			role = "user"
		}
		contents = append(contents, content{Role: role, Parts: []part{{Text: turn.Content}}})
	}

	if contextText == "" {
		contextText = "No terminology match"
	}
	final := fmt.Sprintf("User asked: %s\nRelevant terminology context:\n%s\nPlease also map/search ICD-11 if relevant.", query, contextText)
	contents = append(contents, content{Role: "user", Parts: []part{{Text: final}}})

	var result generateResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("key", c.apiKey).
		SetBody(generateRequest{
			Contents:         contents,
			GenerationConfig: generationConfig{Temperature: temperature, MaxOutputTokens: maxOutputTokens},
		}).
		SetResult(&result).
		Post(fmt.Sprintf("/models/%s:generateContent", c.model))
	if err != nil {
		c.logger.Warn().Err(err).Msg("generative-language call failed")
		return "", false
	}
	if resp.IsError() {
		c.logger.Warn().Int("status", resp.StatusCode()).Msg("generative-language call failed")
		return "", false
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", false
	}
	text := strings.TrimSpace(result.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return "", false
	}
	return text, true
}
