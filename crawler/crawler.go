package crawler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Crawler fetches one URL and extracts its content, falling back to a
// headless browser when the plain fetch yields nothing usable.
type Crawler struct {
	fetcher   *Fetcher
	extractor *Extractor
	renderer  Renderer
	logger    *zap.Logger
}

// NewCrawler wires a crawler. renderer may be nil to disable the browser fallback.
func NewCrawler(fetcher *Fetcher, extractor *Extractor, renderer Renderer, logger *zap.Logger) *Crawler {
	return &Crawler{
		fetcher:   fetcher,
		extractor: extractor,
		renderer:  renderer,
		logger:    logger,
	}
}

func (c *Crawler) Crawl(ctx context.Context, pageURL string) (*Content, error) {
	logger := GetContextLogger(ctx, c.logger)
	start := time.Now()

	page, err := c.fetcher.Fetch(ctx, pageURL)
	if err == nil {
		var content *Content
		content, err = c.extractor.Extract(page)
		if err == nil {
			logger.Debug("page extracted",
				zap.String("via", content.FetchedVia),
				zap.String("extractor", content.Extractor),
				zap.Int("word_count", content.Quality.WordCount),
				zap.Duration("took", time.Since(start)))
			return content, nil
		}
		if page.IsPDF() {
			return nil, err
		}
	}

	if c.renderer == nil || ctx.Err() != nil || !shouldRender(err) {
		return nil, err
	}

	logger.Debug("falling back to browser", zap.Error(err))
	html, renderErr := c.renderer.RenderPage(ctx, pageURL)
	if renderErr != nil {
		return nil, fmt.Errorf("%w (browser fallback: %v)", err, renderErr)
	}

	content, extractErr := c.extractor.Extract(&Page{
		URL:         pageURL,
		FinalURL:    pageURL,
		ContentType: "text/html",
		Body:        []byte(html),
		FetchedVia:  FetchedViaBrowser,
	})
	if extractErr != nil {
		return nil, extractErr
	}
	return content, nil
}

// shouldRender skips the browser for statuses a real browser would also get.
func shouldRender(err error) bool {
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		switch fetchErr.StatusCode {
		case 404, 410:
			return false
		}
	}
	return true
}
