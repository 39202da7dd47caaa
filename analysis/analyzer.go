package analysis

import (
	"regexp"
	"strings"

	"searchagent/search"
)

// MaxItems bounds every per-source list.
const MaxItems = 5

var sentenceSplitPattern = regexp.MustCompile(`[.!?]+`)

type Statistic struct {
	Figure  string `json:"figure"`
	Context string `json:"context"`
}

type ExpertOpinion struct {
	Statement   string `json:"statement"`
	Attribution string `json:"attribution"`
}

// Result is the rule-based analysis of one document.
type Result struct {
	Summary          string
	KeyPoints        []string
	QuickFacts       []string
	DetailedAnalysis string
	Pros             []string
	Cons             []string
	ExpertOpinions   []ExpertOpinion
	Statistics       []Statistic
	RelatedTopics    []string
}

// Analyzer runs the deterministic extractors over plain text.
type Analyzer struct {
	stopWords map[string]bool
}

func New() *Analyzer {
	return &Analyzer{stopWords: search.StopWords}
}

// Analyze never returns nil slices, so results serialize as [] rather than null.
func (a *Analyzer) Analyze(query, text string) *Result {
	sentences := Sentences(text)
	pros, cons := ProsCons(sentences)

	return &Result{
		Summary:          Summary(sentences),
		KeyPoints:        KeyPoints(sentences),
		QuickFacts:       QuickFacts(sentences),
		DetailedAnalysis: DetailedAnalysis(text),
		Pros:             pros,
		Cons:             cons,
		ExpertOpinions:   ExpertOpinions(sentences),
		Statistics:       Statistics(sentences),
		RelatedTopics:    a.RelatedTopics(text, query),
	}
}

// Sentences splits text on runs of terminal punctuation and collapses whitespace.
func Sentences(text string) []string {
	parts := sentenceSplitPattern.Split(text, -1)
	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		s := strings.Join(strings.Fields(p), " ")
		if s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}
