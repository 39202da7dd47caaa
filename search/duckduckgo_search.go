package search

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

const (
	duckDuckGoEndpointDefault = "https://html.duckduckgo.com/html/"
	duckDuckGoMaxPages        = 5
)

// DuckDuckGoSearchEngine scrapes the no-JavaScript DuckDuckGo result page.
// It needs no API key.
type DuckDuckGoSearchEngine struct {
	client   *resty.Client
	endpoint string
}

func NewDuckDuckGoSearchEngine(httpClient *http.Client, endpoint, userAgent string) *DuckDuckGoSearchEngine {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if endpoint == "" {
		endpoint = duckDuckGoEndpointDefault
	}
	client := resty.NewWithClient(httpClient).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8").
		SetHeader("Accept-Language", "en-US,en;q=0.5").
		SetRetryCount(0)

	return &DuckDuckGoSearchEngine{
		client:   client,
		endpoint: endpoint,
	}
}

func (d *DuckDuckGoSearchEngine) Name() string { return "duckduckgo" }

func (d *DuckDuckGoSearchEngine) Search(ctx context.Context, req *SearchRequest) ([]SearchResult, error) {
	maxResults := req.MaxResults
	if maxResults <= 0 {
		maxResults = 10
	}

	form := url.Values{}
	form.Set("q", req.Query)
	form.Set("kl", "us-en")

	var results []SearchResult
	for page := 1; page <= duckDuckGoMaxPages; page++ {
		resp, err := d.client.R().
			SetContext(ctx).
			SetFormDataFromValues(form).
			Post(d.endpoint)
		if err != nil {
			return nil, fmt.Errorf("failed to query DuckDuckGo: %w", err)
		}
		if resp.IsError() {
			return nil, &StatusError{Provider: d.Name(), StatusCode: resp.StatusCode()}
		}

		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
		if err != nil {
			return nil, fmt.Errorf("failed to parse DuckDuckGo page: %w: %w", errDecode, err)
		}

		pageResults := parseDuckDuckGoResults(doc)
		if len(pageResults) == 0 {
			break
		}
		for _, r := range pageResults {
			r.Position = len(results) + 1
			r.Metadata = map[string]string{"page": strconv.Itoa(page)}
			results = append(results, r)
		}

		if len(results) >= maxResults {
			break
		}
		next, ok := nextPageForm(doc)
		if !ok {
			break
		}
		form = next
	}

	return results, nil
}

func parseDuckDuckGoResults(doc *goquery.Document) []SearchResult {
	var results []SearchResult
	doc.Find("div.result").Each(func(_ int, s *goquery.Selection) {
		if s.HasClass("result--ad") {
			return
		}
		link := s.Find("a.result__a").First()
		href, ok := link.Attr("href")
		if !ok {
			return
		}
		target := unwrapDuckDuckGoLink(href)
		if target == "" {
			return
		}
		results = append(results, SearchResult{
			URL:         target,
			Title:       strings.TrimSpace(link.Text()),
			Description: strings.TrimSpace(s.Find(".result__snippet").First().Text()),
		})
	})
	return results
}

// unwrapDuckDuckGoLink resolves "//duckduckgo.com/l/?uddg=<target>" redirect links.
func unwrapDuckDuckGoLink(href string) string {
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if strings.HasSuffix(u.Host, "duckduckgo.com") || u.Host == "" {
		if strings.HasPrefix(u.Path, "/l/") {
			target := u.Query().Get("uddg")
			if target == "" {
				return ""
			}
			return target
		}
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return u.String()
}

// nextPageForm reads the hidden inputs of the "Next" form.
func nextPageForm(doc *goquery.Document) (url.Values, bool) {
	var form url.Values
	doc.Find("div.nav-link form").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		label, _ := s.Find("input[type=submit]").Attr("value")
		if !strings.Contains(strings.ToLower(label), "next") {
			return true
		}
		form = url.Values{}
		s.Find("input[type=hidden]").Each(func(_ int, in *goquery.Selection) {
			name, _ := in.Attr("name")
			value, _ := in.Attr("value")
			if name != "" {
				form.Set(name, value)
			}
		})
		return false
	})
	return form, len(form) > 0
}
