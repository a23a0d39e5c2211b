package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/X-Luffy/Law-Agent/internal/llm"
)

// WebSearch queries the configured search backend and returns ranked
// hits (spec §4.7: "web_search (query → ranked hits with
// title/url/snippet)"), against the POST endpoint contract in spec §6
// (`{code, data:{webPages:{value:[...]}}}`, bearer auth).
type WebSearch struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	resultN    int
}

type webSearchRequest struct {
	Query string `json:"query"`
	Count int    `json:"count"`
}

type webSearchResponse struct {
	Code int `json:"code"`
	Data struct {
		WebPages struct {
			Value []struct {
				Name          string `json:"name"`
				URL           string `json:"url"`
				Snippet       string `json:"snippet"`
				Summary       string `json:"summary,omitempty"`
				DatePublished string `json:"datePublished,omitempty"`
			} `json:"value"`
		} `json:"webPages"`
	} `json:"data"`
}

// WebSearchResult is one ranked hit returned to the caller.
type WebSearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

func NewWebSearch(endpoint, apiKey string, resultN int) *WebSearch {
	if resultN <= 0 {
		resultN = 5
	}
	return &WebSearch{
		endpoint:   endpoint,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		resultN:    resultN,
	}
}

func (w *WebSearch) Name() string { return "web_search" }
func (w *WebSearch) Description() string {
	return "Searches the web for a query and returns ranked results with title, url, and snippet."
}

func (w *WebSearch) ToSchema() llm.ToolSchema {
	return llm.ToolSchema{
		Type: "function",
		Function: llm.FunctionSchema{
			Name:        w.Name(),
			Description: w.Description(),
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query": map[string]any{
						"type":        "string",
						"description": "Search query text",
					},
				},
				"required": []string{"query"},
			},
		},
	}
}

func (w *WebSearch) Execute(ctx context.Context, input string) (string, error) {
	query := ExtractPrimaryArgument(input)
	if strings.TrimSpace(query) == "" {
		return "", fmt.Errorf("web_search: empty query")
	}

	body, err := json.Marshal(webSearchRequest{Query: query, Count: w.resultN})
	if err != nil {
		return "", fmt.Errorf("web_search: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("web_search: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if w.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+w.apiKey)
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("web_search: request failed: %w", err)
	}
	defer resp.Body.Close()

	var parsed webSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("web_search: decode response: %w", err)
	}
	if resp.StatusCode >= 300 || parsed.Code >= 300 {
		return "", fmt.Errorf("web_search: provider returned status %d (code %d)", resp.StatusCode, parsed.Code)
	}

	results := make([]WebSearchResult, 0, len(parsed.Data.WebPages.Value))
	for _, v := range parsed.Data.WebPages.Value {
		results = append(results, WebSearchResult{Title: v.Name, URL: v.URL, Snippet: v.Snippet})
	}

	out, err := json.Marshal(results)
	if err != nil {
		return "", fmt.Errorf("web_search: marshal results: %w", err)
	}
	return string(out), nil
}
