package crawler

import (
	"bytes"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

type Content struct {
	URL         string
	HtmlNode    string
	TextContent string
	TextMd      string
	Metadata    *ContentMetadata
	Quality     QualityMetrics
	FetchedVia  string
	Extractor   string
}

type ContentMetadata struct {
	Title       string
	Author      string
	Description string
	SiteName    string
	Language    string
}

type QualityMetrics struct {
	WordCount         int
	VocabRichness     float64
	SentenceCount     int
	AvgSentenceLength float64
	Score             float64
}

var sentenceSplitPattern = regexp.MustCompile(`[.!?]+`)

func extractWithTrafilatura(body []byte, pageURL *url.URL) (*Content, error) {
	result, err := trafilatura.Extract(bytes.NewReader(body), trafilatura.Options{
		OriginalURL: pageURL,
	})
	if err != nil {
		return nil, fmt.Errorf("trafilatura: %w", err)
	}
	if result == nil {
		return nil, fmt.Errorf("trafilatura: %w", ErrNoContent)
	}

	var htmlStr string
	if result.ContentNode != nil {
		htmlStr, err = RenderNodeToString(result.ContentNode)
		if err != nil {
			return nil, fmt.Errorf("trafilatura: failed to render content: %w", err)
		}
	}

	return &Content{
		HtmlNode:    htmlStr,
		TextContent: strings.TrimSpace(result.ContentText),
		Extractor:   "trafilatura",
		Metadata: &ContentMetadata{
			Title:       result.Metadata.Title,
			Author:      result.Metadata.Author,
			Description: result.Metadata.Description,
			SiteName:    result.Metadata.Sitename,
			Language:    result.Metadata.Language,
		},
	}, nil
}

// MeasureQuality scores text on length, vocabulary richness and sentence shape, 0..100.
func MeasureQuality(text string) QualityMetrics {
	words := strings.Fields(text)
	wordCount := len(words)
	if wordCount == 0 {
		return QualityMetrics{}
	}

	unique := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.Trim(w, ".,!?\"'():;[]{}"))
		if w != "" {
			unique[w] = struct{}{}
		}
	}
	vocabRichness := float64(len(unique)) / float64(wordCount)

	sentenceCount := 0
	for _, s := range sentenceSplitPattern.Split(text, -1) {
		if strings.TrimSpace(s) != "" {
			sentenceCount++
		}
	}
	if sentenceCount == 0 {
		sentenceCount = 1
	}
	avgSentenceLength := float64(wordCount) / float64(sentenceCount)

	return QualityMetrics{
		WordCount:         wordCount,
		VocabRichness:     vocabRichness,
		SentenceCount:     sentenceCount,
		AvgSentenceLength: avgSentenceLength,
		Score: qualityScore(
			lengthScore(wordCount),
			richnessScore(vocabRichness),
			sentenceScore(sentenceCount, avgSentenceLength),
		),
	}
}

func lengthScore(wordCount int) float64 {
	switch {
	case wordCount < 200:
		return 0.0
	case wordCount > 10000:
		return 0.7
	default:
		return 1.0
	}
}

func richnessScore(vocabRichness float64) float64 {
	switch {
	case vocabRichness < 0.25:
		return 0.0
	case vocabRichness > 0.6:
		return 0.8
	default:
		return 1.0
	}
}

func sentenceScore(sentenceCount int, avgSentenceLength float64) float64 {
	if sentenceCount < 5 {
		return 0.0
	}
	if avgSentenceLength < 10 || avgSentenceLength > 30 {
		return 0.7
	}
	return 1.0
}

func qualityScore(length, richness, sentence float64) float64 {
	return (0.50*length + 0.30*richness + 0.20*sentence) * 100
}

func RenderNodeToString(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}
