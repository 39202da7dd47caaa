package search

import (
	"regexp"
	"strings"

	"github.com/kljensen/snowball"
)

var nonWordPattern = regexp.MustCompile(`[^\p{L}\p{N}\s]`)

// StopWords is the shared english stop word list.
var StopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "has": true, "he": true,
	"in": true, "is": true, "it": true, "its": true, "of": true, "on": true,
	"that": true, "the": true, "to": true, "was": true, "were": true, "will": true,
	"with": true, "would": true, "could": true, "should": true, "may": true,
	"might": true, "can": true, "must": true, "shall": true, "do": true,
	"does": true, "did": true, "have": true, "had": true, "this": true,
	"these": true, "they": true, "them": true, "their": true, "his": true,
	"her": true, "she": true, "we": true, "you": true, "your": true,
	"our": true, "us": true, "me": true, "my": true, "i": true,
	"what": true, "which": true, "who": true, "how": true, "why": true,
	"about": true, "there": true, "than": true, "then": true, "also": true,
	"been": true, "being": true, "into": true, "more": true, "most": true,
	"other": true, "some": true, "such": true, "only": true, "over": true,
	"while": true, "where": true, "when": true, "those": true, "after": true,
}

// SimpleKeywordExtractor implements KeywordExtractor using stop word removal and snowball stemming
type SimpleKeywordExtractor struct {
	stopWords map[string]bool
}

func NewSimpleKeywordExtractor() *SimpleKeywordExtractor {
	return &SimpleKeywordExtractor{stopWords: StopWords}
}

// ExtractKeywords returns the unique stemmed keywords of text in order of first appearance.
func (ske *SimpleKeywordExtractor) ExtractKeywords(text string) ([]string, error) {
	text = strings.ToLower(text)
	text = nonWordPattern.ReplaceAllString(text, " ")

	var keywords []string
	seen := make(map[string]bool)

	for _, word := range strings.Fields(text) {
		if len(word) < 2 || ske.stopWords[word] {
			continue
		}

		stemmed := Stem(word)
		if !seen[stemmed] {
			keywords = append(keywords, stemmed)
			seen[stemmed] = true
		}
	}

	return keywords, nil
}

// Stem reduces an english word to its snowball stem, or returns it unchanged.
func Stem(word string) string {
	stem, err := snowball.Stem(word, "english", true)
	if err != nil || stem == "" {
		return word
	}
	return stem
}
