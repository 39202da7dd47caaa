package crawler

import (
	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

// fetchHandler collects the outcome of a single colly visit.
type fetchHandler struct {
	logger         *zap.Logger
	acceptLanguage string

	page *Page
	err  error
}

// OnRequest handles request events
func (h *fetchHandler) OnRequest() colly.RequestCallback {
	return func(r *colly.Request) {
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,application/pdf;q=0.8,*/*;q=0.7")
		if h.acceptLanguage != "" {
			r.Headers.Set("Accept-Language", h.acceptLanguage)
		}
		h.logger.Debug("fetching page", zap.String("url", r.URL.String()))
	}
}

// OnResponse handles successful responses
func (h *fetchHandler) OnResponse() colly.ResponseCallback {
	return func(r *colly.Response) {
		contentType := ""
		if r.Headers != nil {
			contentType = r.Headers.Get("Content-Type")
		}

		page := &Page{
			URL:         r.Request.URL.String(),
			FinalURL:    r.Request.URL.String(),
			StatusCode:  r.StatusCode,
			ContentType: contentType,
			Body:        r.Body,
			FetchedVia:  FetchedViaHTTP,
		}
		if page.IsPDF() {
			page.FetchedVia = FetchedViaPDF
		}
		h.page = page

		h.logger.Debug("page fetched",
			zap.String("url", page.FinalURL),
			zap.Int("status_code", r.StatusCode),
			zap.String("content_type", contentType),
			zap.Int("bytes", len(r.Body)))
	}
}

// OnError handles transport errors and non-2xx responses
func (h *fetchHandler) OnError() colly.ErrorCallback {
	return func(r *colly.Response, err error) {
		if r == nil || r.Request == nil {
			h.err = &FetchError{Err: err}
			return
		}

		h.err = &FetchError{
			URL:        r.Request.URL.String(),
			StatusCode: r.StatusCode,
			Err:        err,
		}
		h.logger.Debug("fetch failed",
			zap.String("url", r.Request.URL.String()),
			zap.Int("status_code", r.StatusCode),
			zap.Error(err))
	}
}
