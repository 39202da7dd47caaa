package agent

import (
	"searchagent/analysis"
	"searchagent/ranking"
	"searchagent/synthesis"
)

type Outcome string

const (
	OutcomeComplete Outcome = "complete"
	OutcomePartial  Outcome = "partial"
)

type SearchRequest struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

type CredibilityRating struct {
	URL   string  `json:"url"`
	Score float64 `json:"score"`
	Label string  `json:"label"`
}

type FailedSource struct {
	URL    string `json:"url"`
	Reason string `json:"reason"`
}

// SourceAnalysis is the per-page view, in rank order.
type SourceAnalysis struct {
	Title            string                   `json:"title"`
	URL              string                   `json:"url"`
	Description      string                   `json:"description"`
	SiteName         string                   `json:"site_name"`
	Author           string                   `json:"author"`
	Language         string                   `json:"language"`
	Summary          string                   `json:"summary"`
	KeyPoints        []string                 `json:"key_points"`
	QuickFacts       []string                 `json:"quick_facts"`
	DetailedAnalysis string                   `json:"detailed_analysis"`
	Statistics       []analysis.Statistic     `json:"statistics"`
	ExpertOpinions   []analysis.ExpertOpinion `json:"expert_opinions"`
	Pros             []string                 `json:"pros"`
	Cons             []string                 `json:"cons"`
	RelatedTopics    []string                 `json:"related_topics"`
	Credibility      ranking.Credibility      `json:"credibility"`
	Relevance        float64                  `json:"relevance"`
	RankingScore     float64                  `json:"ranking_score"`
	ProviderRank     int                      `json:"provider_rank"`
	WordCount        int                      `json:"word_count"`
	FetchedVia       string                   `json:"fetched_via"`
}

// AnalysisBundle is the response to one search. Every slice is non-nil.
type AnalysisBundle struct {
	RequestID         string                    `json:"request_id"`
	Query             string                    `json:"query"`
	Outcome           Outcome                   `json:"outcome"`
	Summary           string                    `json:"summary"`
	KeyPoints         []string                  `json:"key_points"`
	Statistics        []synthesis.Statistic     `json:"statistics"`
	ExpertOpinions    []synthesis.ExpertOpinion `json:"expert_opinions"`
	Pros              []string                  `json:"pros"`
	Cons              []string                  `json:"cons"`
	RelatedTopics     []string                  `json:"related_topics"`
	CredibilityRating []CredibilityRating       `json:"credibility_rating"`
	Sources           []SourceAnalysis          `json:"sources"`
	FailedSources     []FailedSource            `json:"failed_sources"`
	AnalyzedCount     int                       `json:"analyzed_count"`
	CandidateCount    int                       `json:"candidate_count"`
	SynthesisEngine   string                    `json:"synthesis_engine"`
	TookMs            int64                     `json:"took_ms"`
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
