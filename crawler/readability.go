package crawler

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-shiori/go-readability"
)

func extractWithReadability(body []byte, pageURL *url.URL) (*Content, error) {
	article, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err != nil {
		return nil, fmt.Errorf("readability: %w", err)
	}

	return &Content{
		HtmlNode:    article.Content,
		TextContent: strings.TrimSpace(article.TextContent),
		Extractor:   "readability",
		Metadata: &ContentMetadata{
			Title:       article.Title,
			Author:      article.Byline,
			Description: article.Excerpt,
			SiteName:    article.SiteName,
		},
	}, nil
}
