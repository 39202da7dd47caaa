package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

const serpApiEndpointDefault = "https://serpapi.com/search"

type SerpApiSearchEngine struct {
	client   *http.Client
	apiKey   string
	endpoint string
}

type serpApiResponse struct {
	OrganicResults []struct {
		Position int    `json:"position"`
		Title    string `json:"title"`
		Link     string `json:"link"`
		Snippet  string `json:"snippet"`
	} `json:"organic_results"`
	SearchMetadata struct {
		Status string `json:"status"`
	} `json:"search_metadata"`
}

func NewSerpApiSearchEngine(client *http.Client, apiKey, endpoint string) *SerpApiSearchEngine {
	if client == nil {
		client = &http.Client{}
	}
	if endpoint == "" {
		endpoint = serpApiEndpointDefault
	}
	return &SerpApiSearchEngine{
		client:   client,
		apiKey:   apiKey,
		endpoint: endpoint,
	}
}

func (s *SerpApiSearchEngine) Name() string { return "serpapi" }

func (s *SerpApiSearchEngine) Search(ctx context.Context, req *SearchRequest) ([]SearchResult, error) {
	var allResults []SearchResult

	maxResults := req.MaxResults
	if maxResults <= 0 {
		maxResults = 10
	}
	maxPages := (maxResults + 9) / 10

	for i := range maxPages {
		start := i * 10

		params := url.Values{}
		params.Set("engine", "google")
		params.Set("q", req.Query)
		params.Set("api_key", s.apiKey)
		params.Set("start", strconv.Itoa(start))
		params.Set("num", "10")

		page, err := s.fetchPage(ctx, s.endpoint+"?"+params.Encode())
		if err != nil {
			return nil, err
		}

		for _, item := range page.OrganicResults {
			allResults = append(allResults, SearchResult{
				URL:         item.Link,
				Title:       item.Title,
				Description: item.Snippet,
				Position:    item.Position,
				Metadata: map[string]string{
					"page":     strconv.Itoa(i + 1),
					"position": strconv.Itoa(item.Position),
					"query":    req.Query,
				},
			})
		}

		if len(page.OrganicResults) == 0 || len(allResults) >= maxResults {
			break
		}
	}

	return allResults, nil
}

func (s *SerpApiSearchEngine) fetchPage(ctx context.Context, apiURL string) (*serpApiResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Provider: s.Name(), StatusCode: resp.StatusCode}
	}

	var searchResp serpApiResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w: %w", errDecode, err)
	}
	return &searchResp, nil
}
