package search

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
)

const searxngSearchPath = "/search"

// SearXNGSearchEngine queries a self-hosted SearXNG instance through its JSON API.
type SearXNGSearchEngine struct {
	client  *resty.Client
	baseURL string
}

type searxngResponse struct {
	Query   string `json:"query"`
	Results []struct {
		Title   string  `json:"title"`
		URL     string  `json:"url"`
		Content string  `json:"content"`
		Engine  string  `json:"engine"`
		Score   float64 `json:"score"`
	} `json:"results"`
}

func NewSearXNGSearchEngine(httpClient *http.Client, baseURL, userAgent string) *SearXNGSearchEngine {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	baseURL = strings.TrimSuffix(baseURL, "/")
	client := resty.NewWithClient(httpClient).
		SetBaseURL(baseURL).
		SetHeader("User-Agent", userAgent).
		SetRetryCount(0)

	return &SearXNGSearchEngine{
		client:  client,
		baseURL: baseURL,
	}
}

func (s *SearXNGSearchEngine) Name() string { return "searxng" }

func (s *SearXNGSearchEngine) Search(ctx context.Context, req *SearchRequest) ([]SearchResult, error) {
	maxResults := req.MaxResults
	if maxResults <= 0 {
		maxResults = 10
	}

	var results []SearchResult
	for page := 1; len(results) < maxResults && page <= 5; page++ {
		var body searxngResponse
		resp, err := s.client.R().
			SetContext(ctx).
			SetQueryParam("q", req.Query).
			SetQueryParam("format", "json").
			SetQueryParam("categories", "general").
			SetQueryParam("safesearch", "1").
			SetQueryParam("pageno", strconv.Itoa(page)).
			SetResult(&body).
			Get(searxngSearchPath)
		if err != nil {
			return nil, fmt.Errorf("failed to query SearXNG API: %w", err)
		}
		if resp.IsError() {
			return nil, &StatusError{Provider: s.Name(), StatusCode: resp.StatusCode(), Body: truncate(resp.String(), 200)}
		}

		if len(body.Results) == 0 {
			break
		}
		for _, r := range body.Results {
			results = append(results, SearchResult{
				URL:         r.URL,
				Title:       r.Title,
				Description: r.Content,
				Position:    len(results) + 1,
				Metadata: map[string]string{
					"engine": r.Engine,
					"page":   strconv.Itoa(page),
				},
			})
		}
	}

	return results, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
