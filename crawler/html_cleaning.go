package crawler

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// extractWithGoquery is the last resort: strip chrome elements and keep
// paragraphs and headings longer than 20 characters, one per line.
func extractWithGoquery(body []byte) (*Content, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("goquery: %w", err)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	description, _ := doc.Find(`meta[name="description"]`).Attr("content")

	doc.Find("script, style, noscript, nav, header, footer, aside, form, iframe").Remove()

	var texts []string
	doc.Find("p, h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		text := strings.Join(strings.Fields(s.Text()), " ")
		if len(text) > 20 {
			texts = append(texts, text)
		}
	})

	htmlStr, _ := doc.Find("body").Html()

	return &Content{
		HtmlNode:    htmlStr,
		TextContent: strings.Join(texts, "\n"),
		Extractor:   "goquery",
		Metadata: &ContentMetadata{
			Title:       title,
			Description: strings.TrimSpace(description),
		},
	}, nil
}

// pageTitle reads <title> when the content extractors found none.
func pageTitle(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}
