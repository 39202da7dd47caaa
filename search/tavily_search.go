package search

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-resty/resty/v2"
)

const tavilySearchEndpointDefault = "https://api.tavily.com/search"

type TavilySearchEngine struct {
	client   *resty.Client
	endpoint string
}

type tavilySearchRequest struct {
	Query             string `json:"query"`
	SearchDepth       string `json:"search_depth,omitempty"`
	Topic             string `json:"topic,omitempty"`
	MaxResults        int    `json:"max_results,omitempty"`
	IncludeAnswer     bool   `json:"include_answer"`
	IncludeRawContent bool   `json:"include_raw_content"`
}

type tavilySearchResponse struct {
	Query   string `json:"query"`
	Results []struct {
		Title         string  `json:"title"`
		URL           string  `json:"url"`
		Content       string  `json:"content"`
		Score         float64 `json:"score"`
		PublishedDate string  `json:"published_date"`
	} `json:"results"`
}

func NewTavilySearchEngine(httpClient *http.Client, apiKey, endpoint string) *TavilySearchEngine {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if endpoint == "" {
		endpoint = tavilySearchEndpointDefault
	}
	client := resty.NewWithClient(httpClient).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json").
		SetRetryCount(0)

	return &TavilySearchEngine{
		client:   client,
		endpoint: endpoint,
	}
}

func (t *TavilySearchEngine) Name() string { return "tavily" }

func (t *TavilySearchEngine) Search(ctx context.Context, req *SearchRequest) ([]SearchResult, error) {
	maxResults := req.MaxResults
	if maxResults <= 0 {
		maxResults = 10
	}
	// Tavily rejects max_results above 20.
	if maxResults > 20 {
		maxResults = 20
	}

	var body tavilySearchResponse
	resp, err := t.client.R().
		SetContext(ctx).
		SetBody(tavilySearchRequest{
			Query:       req.Query,
			SearchDepth: "basic",
			Topic:       "general",
			MaxResults:  maxResults,
		}).
		SetResult(&body).
		Post(t.endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to query Tavily search API: %w", err)
	}
	if resp.IsError() {
		return nil, &StatusError{Provider: t.Name(), StatusCode: resp.StatusCode(), Body: truncate(resp.String(), 200)}
	}

	results := make([]SearchResult, 0, len(body.Results))
	for i, r := range body.Results {
		results = append(results, SearchResult{
			URL:         r.URL,
			Title:       r.Title,
			Description: r.Content,
			Position:    i + 1,
			Metadata: map[string]string{
				"score":          strconv.FormatFloat(r.Score, 'f', 3, 64),
				"published_date": r.PublishedDate,
			},
		})
	}
	return results, nil
}
