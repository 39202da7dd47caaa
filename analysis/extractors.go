package analysis

import (
	"regexp"
	"strings"
)

var (
	datePattern       = regexp.MustCompile(`\b\d{4}\b|\b(?:January|February|March|April|May|June|July|August|September|October|November|December)\b`)
	proPattern        = regexp.MustCompile(`(?i)\b(advantages?|benefits?|pros?|positive|good|better|best|improves?|improved|improvements?)\b`)
	conPattern        = regexp.MustCompile(`(?i)\b(disadvantages?|drawbacks?|cons?|negative|bad|worse|worst|problems?)\b`)
	expertPattern     = regexp.MustCompile(`(?i)\b(according to|says|said|states|suggests|research shows|studies indicate|experts?)\b`)
	magnitudePattern  = regexp.MustCompile(`(?i)\d+(?:[.,]\d+)?\s*(?:times|percent|fold|million|billion|thousand)\b`)
	yearPattern       = regexp.MustCompile(`\b\d{4}\b`)
	accordingToRegexp = regexp.MustCompile(`(?i)according to\s+([^,;:]+)`)
	speakerBefore     = regexp.MustCompile(`((?:[A-Z][\w'.-]*\s+){0,3}[A-Z][\w'.-]*)\s+(?:says|said|states|suggests)\b`)
	speakerAfter      = regexp.MustCompile(`\b(?:says|said|states)\s+((?:[A-Z][\w'.-]*\s*){1,4})`)
)

const (
	quickFactMinChars     = 10
	definitionMaxWords    = 20
	expertOpinionMinWords = 10
	attributionMaxWords   = 6
)

// QuickFacts keeps short numeric, dated or definitional sentences.
func QuickFacts(sentences []string) []string {
	facts := make([]string, 0, MaxItems)
	for _, s := range sentences {
		if len(s) <= quickFactMinChars {
			continue
		}
		switch {
		case digitPattern.MatchString(s),
			datePattern.MatchString(s),
			strings.Contains(strings.ToLower(s), " is ") && wordCount(s) < definitionMaxWords:
			facts = append(facts, s)
		}
		if len(facts) == MaxItems {
			break
		}
	}
	return facts
}

// ProsCons sorts sentences into advantages and drawbacks. A sentence that
// reads as both counts as a pro.
func ProsCons(sentences []string) (pros, cons []string) {
	pros = make([]string, 0, MaxItems)
	cons = make([]string, 0, MaxItems)
	for _, s := range sentences {
		switch {
		case proPattern.MatchString(s):
			if len(pros) < MaxItems {
				pros = append(pros, s)
			}
		case conPattern.MatchString(s):
			if len(cons) < MaxItems {
				cons = append(cons, s)
			}
		}
	}
	return pros, cons
}

// ExpertOpinions returns attributed statements of more than ten words.
func ExpertOpinions(sentences []string) []ExpertOpinion {
	opinions := make([]ExpertOpinion, 0, MaxItems)
	for _, s := range sentences {
		if wordCount(s) <= expertOpinionMinWords || !expertPattern.MatchString(s) {
			continue
		}
		opinions = append(opinions, ExpertOpinion{Statement: s, Attribution: Attribution(s)})
		if len(opinions) == MaxItems {
			break
		}
	}
	return opinions
}

// Attribution names who a statement is credited to, or "" when unknown.
func Attribution(sentence string) string {
	if m := accordingToRegexp.FindStringSubmatch(sentence); m != nil {
		return limitWords(m[1], attributionMaxWords)
	}
	if m := speakerBefore.FindStringSubmatch(sentence); m != nil && !commonOpeners[strings.ToLower(m[1])] {
		return limitWords(m[1], attributionMaxWords)
	}
	if m := speakerAfter.FindStringSubmatch(sentence); m != nil {
		return limitWords(m[1], attributionMaxWords)
	}

	lower := strings.ToLower(sentence)
	switch {
	case strings.Contains(lower, "research shows"):
		return "Research"
	case strings.Contains(lower, "studies indicate"):
		return "Studies"
	case strings.Contains(lower, "expert"):
		return "Experts"
	}
	return ""
}

// commonOpeners are capitalized words that precede "said" without naming anyone.
var commonOpeners = map[string]bool{
	"it": true, "he": true, "she": true, "they": true, "this": true, "that": true,
	"we": true, "report": true, "research": true, "study": true, "the": true,
}

// Statistics pulls one labeled figure per sentence: a percentage, a magnitude
// phrase, or a year, in that order of preference.
func Statistics(sentences []string) []Statistic {
	stats := make([]Statistic, 0, MaxItems)
	for _, s := range sentences {
		figure := percentPattern.FindString(s)
		if figure == "" {
			figure = magnitudePattern.FindString(s)
		}
		if figure == "" {
			figure = yearPattern.FindString(s)
		}
		if figure == "" {
			continue
		}
		stats = append(stats, Statistic{Figure: figure, Context: s})
		if len(stats) == MaxItems {
			break
		}
	}
	return stats
}

func limitWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}
