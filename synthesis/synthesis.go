package synthesis

import (
	"context"
	"strings"

	"searchagent/analysis"
)

const (
	EngineRule = "rule"
	EngineLLM  = "llm"

	summarySources = 5
)

type Statistic struct {
	Figure    string `json:"figure"`
	Context   string `json:"context"`
	SourceURL string `json:"source_url"`
}

type ExpertOpinion struct {
	Statement   string `json:"statement"`
	Attribution string `json:"attribution"`
	SourceURL   string `json:"source_url"`
}

// Source is one analyzed page, passed in rank order.
type Source struct {
	URL      string
	Title    string
	Markdown string
	Analysis *analysis.Result
}

// Synthesis is the cross-source view of a query.
type Synthesis struct {
	Summary        string
	KeyPoints      []string
	Statistics     []Statistic
	ExpertOpinions []ExpertOpinion
	Pros           []string
	Cons           []string
	RelatedTopics  []string
	Engine         string
}

type Synthesizer interface {
	Synthesize(ctx context.Context, query string, sources []Source) (*Synthesis, error)
}

func emptySynthesis(engine string) *Synthesis {
	return &Synthesis{
		KeyPoints:      []string{},
		Statistics:     []Statistic{},
		ExpertOpinions: []ExpertOpinion{},
		Pros:           []string{},
		Cons:           []string{},
		RelatedTopics:  []string{},
		Engine:         engine,
	}
}

// aggregateLimit bounds merged lists by the configured cap and by what the
// sources could have contributed.
func aggregateLimit(limit, sources int) int {
	return max(0, min(limit, analysis.MaxItems*sources))
}

func dedupeKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
