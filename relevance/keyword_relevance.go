package relevance

import (
	"searchagent/search"
)

// KeywordRelevance scores how well a search result matches a query by the
// fraction of stemmed query keywords found in its title and description.
type KeywordRelevance struct {
	extractor search.KeywordExtractor
}

func NewKeywordRelevance(extractor search.KeywordExtractor) *KeywordRelevance {
	if extractor == nil {
		extractor = search.NewSimpleKeywordExtractor()
	}
	return &KeywordRelevance{extractor: extractor}
}

// Score returns a value in [0,1]. A query with no usable keywords scores 0.
func (r *KeywordRelevance) Score(query, title, description string) float64 {
	queryTerms, err := r.extractor.ExtractKeywords(query)
	if err != nil || len(queryTerms) == 0 {
		return 0
	}

	docTerms, err := r.extractor.ExtractKeywords(title + " " + description)
	if err != nil || len(docTerms) == 0 {
		return 0
	}

	present := make(map[string]struct{}, len(docTerms))
	for _, t := range docTerms {
		present[t] = struct{}{}
	}

	matches := 0
	for _, t := range queryTerms {
		if _, ok := present[t]; ok {
			matches++
		}
	}

	return float64(matches) / float64(len(queryTerms))
}
