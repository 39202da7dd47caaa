package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"searchagent/agent"
	"searchagent/ranking"
	"searchagent/synthesis"
)

type fakeService struct {
	queries []agent.SearchRequest
	bundle  *agent.AnalysisBundle
	err     error
	block   bool
}

func (f *fakeService) Search(ctx context.Context, req agent.SearchRequest) (*agent.AnalysisBundle, error) {
	f.queries = append(f.queries, req)
	if f.block {
		<-ctx.Done()
		return nil, agent.ErrTimeout
	}
	return f.bundle, f.err
}

func sampleBundle() *agent.AnalysisBundle {
	return &agent.AnalysisBundle{
		Query:   "electric vehicles",
		Outcome: agent.OutcomePartial,
		Summary: "Electric vehicles convert about 77% of grid energy.",
		KeyPoints: []string{
			"Electric motors provide instant torque",
		},
		Statistics: []synthesis.Statistic{
			{Figure: "77%", Context: "of grid energy reaches the wheels", SourceURL: "https://energy.gov/ev"},
		},
		ExpertOpinions: []synthesis.ExpertOpinion{
			{Statement: "EVs are more efficient", Attribution: "Professor Jane Smith"},
		},
		Pros:          []string{"Instant torque"},
		Cons:          []string{"Limited charging"},
		RelatedTopics: []string{"Battery"},
		Sources: []agent.SourceAnalysis{
			{
				Title:       "Electric Vehicles Explained",
				URL:         "https://energy.gov/ev",
				Summary:     "EVs are efficient.",
				KeyPoints:   []string{"Electric motors are efficient"},
				Pros:        []string{"Quiet"},
				Cons:        []string{"Range anxiety"},
				Credibility: ranking.Credibility{Score: 0.9, Label: "Highly Credible Source"},
			},
		},
		FailedSources:  []agent.FailedSource{{URL: "https://blocked.example", Reason: "status 403"}},
		AnalyzedCount:  1,
		CandidateCount: 2,
	}
}

func TestChatLoop_ExitAndEmptyInput(t *testing.T) {
	svc := &fakeService{bundle: sampleBundle()}
	var out bytes.Buffer

	err := chatLoop(context.Background(), svc, strings.NewReader("\n   \nEXIT\n"), &out, 5, 0)
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "Type 'exit' to quit")
	assert.Equal(t, 2, strings.Count(text, "Please enter a valid search query"))
	assert.Contains(t, text, "Goodbye!")
	assert.Empty(t, svc.queries)
}

func TestChatLoop_RunsQueries(t *testing.T) {
	svc := &fakeService{bundle: sampleBundle()}
	var out bytes.Buffer

	err := chatLoop(context.Background(), svc, strings.NewReader("electric vehicles\n"), &out, 7, 0)
	require.NoError(t, err)

	require.Len(t, svc.queries, 1)
	assert.Equal(t, agent.SearchRequest{Query: "electric vehicles", MaxResults: 7}, svc.queries[0])

	text := out.String()
	assert.Contains(t, text, "Electric Vehicles Explained")
	assert.Contains(t, text, "Search completed! Type another query or 'exit' to quit.")
	assert.Contains(t, text, "Goodbye!")
}

func TestChatLoop_ErrorKinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"no results", agent.ErrNoResults, "No results found"},
		{"upstream", agent.ErrUpstreamUnavailable, "search provider is unavailable"},
		{"timeout", agent.ErrTimeout, "timed out"},
		{"validation", &agent.ValidationError{Field: "query", Message: "must not be empty"}, "Invalid request"},
		{"internal", errors.New("boom"), "An error occurred: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{err: tt.err}
			var out bytes.Buffer

			err := chatLoop(context.Background(), svc, strings.NewReader("query\nexit\n"), &out, 5, 0)
			require.NoError(t, err)
			assert.Contains(t, out.String(), tt.want)
			assert.NotContains(t, out.String(), "Search completed!")
		})
	}
}

func TestChatLoop_CancelledContextQuits(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc := &fakeService{err: context.Canceled}
	var out bytes.Buffer

	err := chatLoop(ctx, svc, strings.NewReader("query\nanother\n"), &out, 5, 0)
	require.NoError(t, err)
	assert.Len(t, svc.queries, 1)
	assert.Contains(t, out.String(), "Goodbye!")
}

func TestChatLoop_RequestTimeout(t *testing.T) {
	svc := &fakeService{block: true}
	var out bytes.Buffer

	start := time.Now()
	err := chatLoop(context.Background(), svc, strings.NewReader("query\nexit\n"), &out, 5, 50*time.Millisecond)
	require.NoError(t, err)

	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Contains(t, out.String(), "The search timed out")
	assert.Contains(t, out.String(), "Goodbye!")
}

func TestPrintBundle(t *testing.T) {
	var out bytes.Buffer
	printBundle(&out, sampleBundle())
	text := out.String()

	assert.Contains(t, text, "1. Electric Vehicles Explained")
	assert.Contains(t, text, "URL: https://energy.gov/ev")
	assert.Contains(t, text, "Source Credibility: 0.9 - Highly Credible Source")
	assert.Contains(t, text, "Advantages:")
	assert.Contains(t, text, "Disadvantages:")
	assert.Contains(t, text, "• 77%: of grid energy reaches the wheels (https://energy.gov/ev)")
	assert.Contains(t, text, "• EVs are more efficient (Professor Jane Smith)")
	assert.Contains(t, text, "Analyzed 1 of 2 results; 1 could not be read.")
	assert.Contains(t, text, "https://blocked.example (status 403)")
}

func TestPrintBundle_OmitsEmptySections(t *testing.T) {
	var out bytes.Buffer
	printBundle(&out, &agent.AnalysisBundle{Outcome: agent.OutcomeComplete, Summary: "Short."})
	text := out.String()

	assert.Contains(t, text, "Short.")
	assert.NotContains(t, text, "Key Points:")
	assert.NotContains(t, text, "Unreadable Sources")
	assert.NotContains(t, text, "could not be read")
}
