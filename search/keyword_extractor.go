package search

// KeywordExtractor extracts normalized keywords from a query or a piece of text.
type KeywordExtractor interface {
	ExtractKeywords(text string) ([]string, error)
}
