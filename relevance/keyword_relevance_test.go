package relevance

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type failingExtractor struct{}

func (failingExtractor) ExtractKeywords(string) ([]string, error) {
	return nil, errors.New("boom")
}

func TestKeywordRelevance_Score(t *testing.T) {
	r := NewKeywordRelevance(nil)

	testCases := []struct {
		name        string
		query       string
		title       string
		description string
		expected    float64
	}{
		{"AllTermsInTitle", "electric vehicles", "Electric Vehicle Buying Guide", "", 1.0},
		{"StemmedMatch", "benefits of running", "The benefit of a daily run", "", 1.0},
		{"HalfMatch", "electric vehicles", "Vehicles of the future", "", 0.5},
		{"DescriptionCounts", "solar panels", "Home energy", "Installing solar panels on a roof", 1.0},
		{"NoMatch", "grape orange", "Apple and banana", "fruits people enjoy", 0.0},
		{"StopWordsOnlyQuery", "the of and", "The best of everything", "", 0.0},
		{"EmptyDocument", "electric vehicles", "", "", 0.0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			score := r.Score(tc.query, tc.title, tc.description)
			assert.InDelta(t, tc.expected, score, 1e-9)
			assert.GreaterOrEqual(t, score, 0.0)
			assert.LessOrEqual(t, score, 1.0)
		})
	}
}

func TestKeywordRelevance_ExtractorError(t *testing.T) {
	r := NewKeywordRelevance(failingExtractor{})
	assert.Equal(t, 0.0, r.Score("electric vehicles", "Electric vehicles", ""))
}
