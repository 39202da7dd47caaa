package crawler

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"go.uber.org/zap"
)

// ErrNoContent means a page was fetched but held no extractable text.
var ErrNoContent = errors.New("no extractable content")

// MinContentWords is the least text an HTML extractor must yield for a page
// to count as readable. Shorter output is usually navigation or a cookie banner.
const MinContentWords = 20

type Extractor struct {
	logger *zap.Logger
}

func NewExtractor(logger *zap.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// Extract turns a fetched page into text. PDFs go through the PDF reader;
// HTML tries trafilatura, then readability, then a plain goquery pass.
func (e *Extractor) Extract(page *Page) (*Content, error) {
	var content *Content
	var err error

	if page.IsPDF() {
		content, err = extractPDF(page.Body)
		if err != nil {
			return nil, err
		}
	} else {
		content, err = e.extractHTML(page)
		if err != nil {
			return nil, err
		}
	}

	if strings.TrimSpace(content.TextContent) == "" {
		return nil, ErrNoContent
	}

	content.URL = page.URL
	content.FetchedVia = page.FetchedVia
	if content.Metadata == nil {
		content.Metadata = &ContentMetadata{}
	}
	if content.Metadata.Title == "" && !page.IsPDF() {
		content.Metadata.Title = pageTitle(page.Body)
	}
	content.Quality = MeasureQuality(content.TextContent)

	if content.HtmlNode != "" {
		md, err := htmltomarkdown.ConvertString(content.HtmlNode)
		if err != nil {
			e.logger.Debug("markdown conversion failed", zap.String("url", page.URL), zap.Error(err))
		} else {
			content.TextMd = strings.TrimSpace(md)
		}
	}
	if content.TextMd == "" {
		content.TextMd = content.TextContent
	}

	e.logger.Debug("article_quality_metrics",
		zap.String("url", page.URL),
		zap.String("extractor", content.Extractor),
		zap.Int("word_count", content.Quality.WordCount),
		zap.Float64("vocab_richness", content.Quality.VocabRichness),
		zap.Int("sentence_count", content.Quality.SentenceCount),
		zap.Float64("avg_sentence_length", content.Quality.AvgSentenceLength),
		zap.Float64("score", content.Quality.Score))

	return content, nil
}

func (e *Extractor) extractHTML(page *Page) (*Content, error) {
	pageURL, err := url.Parse(page.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	extractors := []struct {
		name    string
		extract func() (*Content, error)
	}{
		{"trafilatura", func() (*Content, error) { return extractWithTrafilatura(page.Body, pageURL) }},
		{"readability", func() (*Content, error) { return extractWithReadability(page.Body, pageURL) }},
		{"goquery", func() (*Content, error) { return extractWithGoquery(page.Body) }},
	}

	for _, ex := range extractors {
		content, err := ex.extract()
		if err != nil {
			e.logger.Debug("extraction failed", zap.String("extractor", ex.name), zap.String("url", page.URL), zap.Error(err))
			continue
		}
		if words := MeasureQuality(content.TextContent).WordCount; words < MinContentWords {
			e.logger.Debug("extraction too short",
				zap.String("extractor", ex.name),
				zap.String("url", page.URL),
				zap.Int("word_count", words))
			continue
		}
		return content, nil
	}

	return nil, ErrNoContent
}
