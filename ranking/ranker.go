package ranking

import (
	"cmp"
	"slices"

	"searchagent/relevance"
)

const (
	relevanceWeight   = 0.4
	credibilityWeight = 0.3
	richnessWeight    = 0.1
	richnessCountCap  = 5
)

// Item is one analyzed source as seen by the ranker.
type Item struct {
	URL          string
	Title        string
	Description  string
	ProviderRank int

	KeyPoints      int
	Statistics     int
	ExpertOpinions int

	Relevance   float64
	Credibility Credibility
	Score       float64
}

type Ranker struct {
	relevance   *relevance.KeywordRelevance
	credibility *CredibilityEvaluator
}

func NewRanker(rel *relevance.KeywordRelevance, cred *CredibilityEvaluator) *Ranker {
	if rel == nil {
		rel = relevance.NewKeywordRelevance(nil)
	}
	if cred == nil {
		cred = NewCredibilityEvaluator(nil)
	}
	return &Ranker{relevance: rel, credibility: cred}
}

// Rank scores every item and returns them sorted by descending score; equal
// scores keep provider order. The input slice is not modified.
func (r *Ranker) Rank(query string, items []Item) []Item {
	ranked := make([]Item, len(items))
	for i, it := range items {
		it.Relevance = r.relevance.Score(query, it.Title, it.Description)
		it.Credibility = r.credibility.Evaluate(it.URL)
		it.Score = relevanceWeight*it.Relevance +
			credibilityWeight*it.Credibility.Score +
			richnessWeight*float64(capCount(it.KeyPoints)+capCount(it.Statistics)+capCount(it.ExpertOpinions))
		ranked[i] = it
	}

	slices.SortStableFunc(ranked, func(a, b Item) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.ProviderRank, b.ProviderRank)
	})
	return ranked
}

func capCount(n int) int {
	return max(0, min(n, richnessCountCap))
}
