package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

const (
	FetchedViaHTTP    = "http"
	FetchedViaBrowser = "browser"
	FetchedViaPDF     = "pdf"
)

// Page is a fetched document before extraction.
type Page struct {
	URL         string
	FinalURL    string
	StatusCode  int
	ContentType string
	Body        []byte
	FetchedVia  string
}

func (p *Page) IsPDF() bool {
	ct := strings.ToLower(p.ContentType)
	if strings.Contains(ct, "application/pdf") {
		return true
	}
	return ct == "" && strings.HasSuffix(strings.ToLower(p.URL), ".pdf")
}

// FetchError carries the HTTP status of a failed fetch, 0 for transport errors.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Fetcher downloads single pages with colly over the shared transport.
type Fetcher struct {
	transport http.RoundTripper
	config    *CrawlerConfig
	logger    *zap.Logger
}

func NewFetcher(transport http.RoundTripper, config *CrawlerConfig, logger *zap.Logger) *Fetcher {
	if config == nil {
		config = DefaultConfig()
	}
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &Fetcher{
		transport: transport,
		config:    config,
		logger:    logger,
	}
}

// Fetch downloads rawURL. Any non-2xx status is an error.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	if f.config.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.config.FetchTimeout)
		defer cancel()
	}

	c := colly.NewCollector(
		colly.UserAgent(f.config.UserAgent),
		colly.MaxBodySize(f.config.MaxBodyBytes),
		colly.MaxDepth(1),
		colly.AllowURLRevisit(),
	)
	// Per-fetch client over the pooled transport; the shared client is never mutated.
	c.SetClient(&http.Client{
		Transport: &contextTransport{ctx: ctx, base: f.transport},
		Timeout:   f.config.FetchTimeout,
	})

	h := &fetchHandler{
		logger:         GetContextLogger(ctx, f.logger),
		acceptLanguage: f.config.AcceptLanguage,
	}
	c.OnRequest(h.OnRequest())
	c.OnResponse(h.OnResponse())
	c.OnError(h.OnError())

	visitErr := c.Visit(rawURL)
	if h.err != nil {
		return nil, h.err
	}
	if visitErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, &FetchError{URL: rawURL, Err: ctxErr}
		}
		return nil, &FetchError{URL: rawURL, Err: visitErr}
	}
	if h.page == nil {
		return nil, &FetchError{URL: rawURL, Err: errors.New("no response")}
	}

	h.page.URL = rawURL
	return h.page, nil
}
