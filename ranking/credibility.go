package ranking

import (
	"net/url"
	"strings"
)

const defaultCredibility = 0.5

// DefaultDomains maps domain labels or suffixes to a credibility score in [0,1].
var DefaultDomains = map[string]float64{
	"edu":           0.9,
	"gov":           0.9,
	"org":           0.8,
	"wikipedia.org": 0.8,
	"github.com":    0.8,
	"medium.com":    0.7,
	"forbes.com":    0.8,
	"reuters.com":   0.9,
	"bloomberg.com": 0.8,
}

type Credibility struct {
	Score float64 `json:"score"`
	Label string  `json:"label"`
}

// CredibilityEvaluator rates a source by its host name.
type CredibilityEvaluator struct {
	domains map[string]float64
}

// NewCredibilityEvaluator merges extra over DefaultDomains. Keys are lowercased.
func NewCredibilityEvaluator(extra map[string]float64) *CredibilityEvaluator {
	domains := make(map[string]float64, len(DefaultDomains)+len(extra))
	for k, v := range DefaultDomains {
		domains[k] = v
	}
	for k, v := range extra {
		k = strings.Trim(strings.ToLower(strings.TrimSpace(k)), ".")
		if k != "" {
			domains[k] = v
		}
	}
	return &CredibilityEvaluator{domains: domains}
}

// Evaluate returns the highest score of every table entry matching the host.
// A dotless key matches any host label ("edu" matches cs.stanford.edu and
// gov.uk hosts); a dotted key matches the host or any of its subdomains.
func (e *CredibilityEvaluator) Evaluate(rawURL string) Credibility {
	score := defaultCredibility

	host := hostOf(rawURL)
	if host != "" {
		labels := strings.Split(host, ".")
		for key, value := range e.domains {
			if value <= score {
				continue
			}
			if matchesHost(host, labels, key) {
				score = value
			}
		}
	}

	return Credibility{Score: score, Label: CredibilityLabel(score)}
}

func CredibilityLabel(score float64) string {
	switch {
	case score >= 0.9:
		return "Highly Credible Source"
	case score >= 0.7:
		return "Credible Source"
	case score >= 0.5:
		return "Moderate Credibility"
	default:
		return "Exercise Caution"
	}
}

func matchesHost(host string, labels []string, key string) bool {
	if !strings.Contains(key, ".") {
		for _, l := range labels {
			if l == key {
				return true
			}
		}
		return false
	}
	return host == key || strings.HasSuffix(host, "."+key)
}

func hostOf(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
