package analysis

import (
	"cmp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"searchagent/search"
)

const (
	topicWindow   = 3
	topicMinRunes = 5
)

// RelatedTopics collects words appearing within three words of a query term.
// Query terms, their inflections and stop words are excluded; the most frequent
// words win, ties going to the earliest.
func (a *Analyzer) RelatedTopics(text, query string) []string {
	queryTerms := make(map[string]bool)
	queryStems := make(map[string]bool)
	for _, w := range tokenize(query) {
		queryTerms[w] = true
		queryStems[search.Stem(w)] = true
	}

	topics := make([]string, 0, MaxItems)
	if len(queryTerms) == 0 {
		return topics
	}

	words := tokenize(text)

	type topic struct {
		word  string
		count int
		first int
	}
	byWord := make(map[string]*topic)
	counted := make(map[int]bool)

	for i, w := range words {
		if !queryTerms[w] {
			continue
		}
		for j := max(0, i-topicWindow); j <= min(len(words)-1, i+topicWindow); j++ {
			if counted[j] {
				continue
			}
			cand := words[j]
			if utf8.RuneCountInString(cand) < topicMinRunes || queryTerms[cand] || a.stopWords[cand] ||
				queryStems[search.Stem(cand)] || !hasLetter(cand) {
				continue
			}
			counted[j] = true
			if t, ok := byWord[cand]; ok {
				t.count++
			} else {
				byWord[cand] = &topic{word: cand, count: 1, first: j}
			}
		}
	}

	ranked := make([]*topic, 0, len(byWord))
	for _, t := range byWord {
		ranked = append(ranked, t)
	}
	slices.SortFunc(ranked, func(x, y *topic) int {
		if c := cmp.Compare(y.count, x.count); c != 0 {
			return c
		}
		return cmp.Compare(x.first, y.first)
	})

	for _, t := range ranked[:min(MaxItems, len(ranked))] {
		topics = append(topics, titleCase(t.word))
	}
	return topics
}

func tokenize(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimFunc(f, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if f != "" {
			words = append(words, f)
		}
	}
	return words
}

func hasLetter(s string) bool {
	return strings.IndexFunc(s, unicode.IsLetter) >= 0
}

func titleCase(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}
