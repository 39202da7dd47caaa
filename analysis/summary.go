package analysis

import (
	"cmp"
	"regexp"
	"slices"
	"strings"
)

const (
	summaryMinChars     = 20
	maxDetailedAnalysis = 500
)

var (
	digitPattern       = regexp.MustCompile(`\d+`)
	properNounPattern  = regexp.MustCompile(`[A-Z][a-z]+`)
	summaryPhrases     = []string{"important", "significant", "result", "conclude", "found", "show", "demonstrate", "reveal"}
	analyticalPattern  = regexp.MustCompile(`(?i)\b(analysis|research|study|studies|findings|conclusion|results|suggests|indicates)\b`)
	keyIndicatorRegexp = regexp.MustCompile(`(?i)\b(key|main|important|essential|crucial|primary|major)\b`)
	percentPattern     = regexp.MustCompile(`\d+(?:\.\d+)?%`)
	comparisonPattern  = regexp.MustCompile(`(?i)\b(more|less|better|worse|increases?|increased|decreases?|decreased)\b`)
)

type scoredSentence struct {
	text     string
	position int
	score    float64
}

// topByScore keeps the n highest scores; equal scores keep input order.
func topByScore(scored []scoredSentence, n int) []scoredSentence {
	sorted := slices.Clone(scored)
	slices.SortStableFunc(sorted, func(a, b scoredSentence) int {
		return cmp.Compare(b.score, a.score)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// Summary picks the five best scoring sentences and joins them in document order.
func Summary(sentences []string) string {
	var candidates []string
	for _, s := range sentences {
		if len(s) > summaryMinChars {
			candidates = append(candidates, s)
		}
	}
	if len(candidates) == 0 {
		return ""
	}

	scored := make([]scoredSentence, len(candidates))
	for i, s := range candidates {
		score := (1 - float64(i)/float64(len(candidates))) * 0.3

		switch words := wordCount(s); {
		case words >= 10 && words <= 25:
			score += 0.3
		case words > 25 && words <= 40:
			score += 0.2
		}
		if digitPattern.MatchString(s) {
			score += 0.2
		}
		if properNounPattern.MatchString(s) {
			score += 0.2
		}
		lower := strings.ToLower(s)
		for _, phrase := range summaryPhrases {
			if strings.Contains(lower, phrase) {
				score += 0.2
				break
			}
		}

		scored[i] = scoredSentence{text: s, position: i, score: score}
	}

	top := topByScore(scored, MaxItems)
	slices.SortFunc(top, func(a, b scoredSentence) int {
		return cmp.Compare(a.position, b.position)
	})

	parts := make([]string, len(top))
	for i, s := range top {
		parts[i] = s.text
	}
	summary := strings.Join(parts, ". ")
	if !strings.HasSuffix(summary, ".") {
		summary += "."
	}
	return summary
}

// KeyPoints returns up to five sentences carrying key indicators, percentages
// or comparisons, best first. Sentences matching none of them are never used.
func KeyPoints(sentences []string) []string {
	var scored []scoredSentence
	for i, s := range sentences {
		score := 0.0
		if keyIndicatorRegexp.MatchString(s) {
			score += 0.5
		}
		if percentPattern.MatchString(s) {
			score += 0.3
		}
		if comparisonPattern.MatchString(s) {
			score += 0.2
		}
		if score > 0 {
			scored = append(scored, scoredSentence{text: s, position: i, score: score})
		}
	}

	points := make([]string, 0, MaxItems)
	for _, s := range topByScore(scored, MaxItems) {
		points = append(points, s.text)
	}
	return points
}

// DetailedAnalysis joins the analytical paragraphs of text, or its first two
// long paragraphs when none qualify, and truncates to 500 characters.
func DetailedAnalysis(text string) string {
	var analytical, long []string
	for _, para := range strings.Split(text, "\n") {
		para = strings.Join(strings.Fields(para), " ")
		words := wordCount(para)
		if words >= 20 {
			long = append(long, para)
		}
		if words >= 10 && analyticalPattern.MatchString(para) {
			analytical = append(analytical, para)
		}
	}

	parts := analytical
	if len(parts) == 0 {
		parts = long[:min(2, len(long))]
	}

	analysis := strings.Join(parts, " ")
	if r := []rune(analysis); len(r) > maxDetailedAnalysis {
		analysis = string(r[:maxDetailedAnalysis]) + "..."
	}
	return analysis
}
