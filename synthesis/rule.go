package synthesis

import (
	"context"
	"strings"

	"searchagent/analysis"
)

// RuleSynthesizer merges per-source analyses without any model.
type RuleSynthesizer struct {
	limit int
}

func NewRuleSynthesizer(limit int) *RuleSynthesizer {
	return &RuleSynthesizer{limit: limit}
}

// Synthesize interleaves the per-source lists in rank order, one item per
// source per round, dropping case-insensitive duplicates.
func (r *RuleSynthesizer) Synthesize(_ context.Context, _ string, sources []Source) (*Synthesis, error) {
	out := emptySynthesis(EngineRule)
	limit := aggregateLimit(r.limit, len(sources))
	if limit == 0 {
		return out, nil
	}

	var keyPoints, pros, cons, topics [][]string
	var stats [][]Statistic
	var opinions [][]ExpertOpinion
	for _, src := range sources {
		a := src.Analysis
		if a == nil {
			continue
		}
		keyPoints = append(keyPoints, a.KeyPoints)
		pros = append(pros, a.Pros)
		cons = append(cons, a.Cons)
		topics = append(topics, a.RelatedTopics)

		s := make([]Statistic, len(a.Statistics))
		for i, st := range a.Statistics {
			s[i] = Statistic{Figure: st.Figure, Context: st.Context, SourceURL: src.URL}
		}
		stats = append(stats, s)

		o := make([]ExpertOpinion, len(a.ExpertOpinions))
		for i, op := range a.ExpertOpinions {
			o[i] = ExpertOpinion{Statement: op.Statement, Attribution: op.Attribution, SourceURL: src.URL}
		}
		opinions = append(opinions, o)
	}

	identity := func(s string) string { return s }
	out.Summary = summarize(sources)
	out.KeyPoints = roundRobin(keyPoints, limit, identity)
	out.Pros = roundRobin(pros, limit, identity)
	out.Cons = roundRobin(cons, limit, identity)
	out.RelatedTopics = roundRobin(topics, limit, identity)
	out.Statistics = roundRobin(stats, limit, func(s Statistic) string { return s.Figure + "|" + s.Context })
	out.ExpertOpinions = roundRobin(opinions, limit, func(o ExpertOpinion) string { return o.Statement })
	return out, nil
}

// summarize joins the lead sentence of each top source's summary.
func summarize(sources []Source) string {
	var parts []string
	seen := make(map[string]bool)
	for _, src := range sources {
		if len(parts) == summarySources {
			break
		}
		if src.Analysis == nil {
			continue
		}
		sentences := analysis.Sentences(src.Analysis.Summary)
		if len(sentences) == 0 {
			continue
		}
		key := dedupeKey(sentences[0])
		if seen[key] {
			continue
		}
		seen[key] = true
		parts = append(parts, sentences[0])
	}
	if len(parts) == 0 {
		return ""
	}

	summary := strings.Join(parts, ". ")
	if !strings.HasSuffix(summary, ".") {
		summary += "."
	}
	return summary
}

func roundRobin[T any](lists [][]T, limit int, key func(T) string) []T {
	merged := make([]T, 0, limit)
	seen := make(map[string]bool)

	longest := 0
	for _, l := range lists {
		longest = max(longest, len(l))
	}

	for round := 0; round < longest; round++ {
		for _, l := range lists {
			if round >= len(l) {
				continue
			}
			if len(merged) == limit {
				return merged
			}
			k := dedupeKey(key(l[round]))
			if k == "" || seen[k] {
				continue
			}
			seen[k] = true
			merged = append(merged, l[round])
		}
	}
	return merged
}
