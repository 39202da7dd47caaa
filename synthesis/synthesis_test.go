package synthesis

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"

	"searchagent/analysis"
)

func testSources() []Source {
	return []Source{
		{
			URL:      "https://a.example.com",
			Title:    "A",
			Markdown: "# A\n\nElectric vehicles are efficient.",
			Analysis: &analysis.Result{
				Summary:        "EVs are efficient. They convert 77% of energy.",
				KeyPoints:      []string{"A1", "Shared point"},
				Statistics:     []analysis.Statistic{{Figure: "77%", Context: "They convert 77% of energy"}},
				ExpertOpinions: []analysis.ExpertOpinion{{Statement: "Experts agree EVs are efficient", Attribution: "Experts"}},
				Pros:           []string{"Cheap to run"},
				Cons:           []string{},
				RelatedTopics:  []string{"Charging"},
			},
		},
		{
			URL:      "https://b.example.com",
			Title:    "B",
			Markdown: "# B\n\nBatteries are getting cheaper.",
			Analysis: &analysis.Result{
				Summary:        "Battery prices fell sharply.",
				KeyPoints:      []string{"B1", "shared  POINT", "B2"},
				Statistics:     []analysis.Statistic{{Figure: "89 percent", Context: "Prices fell 89 percent"}},
				ExpertOpinions: []analysis.ExpertOpinion{},
				Pros:           []string{},
				Cons:           []string{"Limited range"},
				RelatedTopics:  []string{"charging", "Batteries"},
			},
		},
	}
}

func TestRuleSynthesizer_Synthesize(t *testing.T) {
	out, err := NewRuleSynthesizer(10).Synthesize(context.Background(), "electric vehicles", testSources())
	require.NoError(t, err)

	assert.Equal(t, EngineRule, out.Engine)
	assert.Equal(t, "EVs are efficient. Battery prices fell sharply.", out.Summary)
	assert.Equal(t, []string{"A1", "B1", "Shared point", "B2"}, out.KeyPoints)
	assert.Equal(t, []Statistic{
		{Figure: "77%", Context: "They convert 77% of energy", SourceURL: "https://a.example.com"},
		{Figure: "89 percent", Context: "Prices fell 89 percent", SourceURL: "https://b.example.com"},
	}, out.Statistics)
	assert.Equal(t, []ExpertOpinion{
		{Statement: "Experts agree EVs are efficient", Attribution: "Experts", SourceURL: "https://a.example.com"},
	}, out.ExpertOpinions)
	assert.Equal(t, []string{"Cheap to run"}, out.Pros)
	assert.Equal(t, []string{"Limited range"}, out.Cons)
	assert.Equal(t, []string{"Charging", "Batteries"}, out.RelatedTopics)
}

func TestRuleSynthesizer_Limit(t *testing.T) {
	out, err := NewRuleSynthesizer(2).Synthesize(context.Background(), "q", testSources())
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "B1"}, out.KeyPoints)
}

func TestRuleSynthesizer_NoSources(t *testing.T) {
	out, err := NewRuleSynthesizer(10).Synthesize(context.Background(), "q", nil)
	require.NoError(t, err)
	assert.Equal(t, "", out.Summary)
	assert.NotNil(t, out.KeyPoints)
	assert.NotNil(t, out.Statistics)
	assert.NotNil(t, out.ExpertOpinions)
	assert.Empty(t, out.KeyPoints)
}

type fakeModel struct {
	replies []string
	errs    []error
	calls   atomic.Int32
	prompts []string
}

func (f *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	i := int(f.calls.Add(1)) - 1
	for _, m := range messages {
		for _, p := range m.Parts {
			if tc, ok := p.(llms.TextContent); ok {
				f.prompts = append(f.prompts, tc.Text)
			}
		}
	}
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	reply := ""
	if i < len(f.replies) {
		reply = f.replies[i]
	} else if len(f.replies) > 0 {
		reply = f.replies[len(f.replies)-1]
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: reply}}}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func newTestLLM(model llms.Model) *LLMSynthesizer {
	return NewLLMSynthesizer(model, LLMConfig{
		Timeout:        time.Second,
		MaxPromptChars: 4000,
		MaxRetries:     2,
		BaseDelay:      time.Millisecond,
		AggregateLimit: 10,
	}, zap.NewNop())
}

const fencedReply = "```json\n" + `{
  "summary": "Electric vehicles are efficient and batteries are cheaper.",
  "key_points": ["Efficient", "efficient", "Cheaper batteries"],
  "statistics": [
    {"figure": "77%", "context": "They convert 77% of energy", "source_url": "https://a.example.com"},
    {"figure": "99%", "context": "Made up", "source_url": "https://invented.example.com"}
  ],
  "expert_opinions": [{"statement": "Experts agree", "attribution": "Experts", "source_url": "https://a.example.com"}],
  "pros": ["Cheap to run"],
  "cons": ["Limited range"],
  "related_topics": ["Charging"]
}` + "\n```"

func TestLLMSynthesizer_Synthesize(t *testing.T) {
	model := &fakeModel{replies: []string{fencedReply}}
	out, err := newTestLLM(model).Synthesize(context.Background(), "electric vehicles", testSources())
	require.NoError(t, err)

	assert.Equal(t, EngineLLM, out.Engine)
	assert.Equal(t, "Electric vehicles are efficient and batteries are cheaper.", out.Summary)
	assert.Equal(t, []string{"Efficient", "Cheaper batteries"}, out.KeyPoints)
	require.Len(t, out.Statistics, 1)
	assert.Equal(t, "https://a.example.com", out.Statistics[0].SourceURL)
	assert.Len(t, out.ExpertOpinions, 1)
	assert.Equal(t, int32(1), model.calls.Load())

	require.NotEmpty(t, model.prompts)
	assert.Contains(t, model.prompts[0], "Query: electric vehicles")
	assert.Contains(t, model.prompts[0], "URL: https://b.example.com")
	assert.Contains(t, model.prompts[0], "Batteries are getting cheaper.")
}

func TestLLMSynthesizer_RetriesBadJSON(t *testing.T) {
	model := &fakeModel{replies: []string{"not json", fencedReply}}
	out, err := newTestLLM(model).Synthesize(context.Background(), "q", testSources())
	require.NoError(t, err)
	assert.Equal(t, EngineLLM, out.Engine)
	assert.Equal(t, int32(2), model.calls.Load())
}

func TestLLMSynthesizer_FallsBack(t *testing.T) {
	testCases := []struct {
		name  string
		model *fakeModel
	}{
		{"ModelErrors", &fakeModel{errs: []error{errors.New("down"), errors.New("down"), errors.New("down")}}},
		{"EmptySummary", &fakeModel{replies: []string{`{"summary": "  "}`}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := newTestLLM(tc.model).Synthesize(context.Background(), "q", testSources())
			require.NoError(t, err)
			assert.Equal(t, EngineRule, out.Engine)
			assert.Equal(t, int32(3), tc.model.calls.Load())
			assert.Equal(t, "EVs are efficient. Battery prices fell sharply.", out.Summary)
		})
	}
}

func TestLLMSynthesizer_PromptBudget(t *testing.T) {
	s := newTestLLM(&fakeModel{})
	sources := testSources()
	sources[0].Markdown = strings.Repeat("word ", 5000)

	prompt := s.buildPrompt("q", sources)
	assert.Less(t, len(prompt), 4000+len(promptInstructions)+500)
	assert.Contains(t, prompt, "Batteries are getting cheaper.")
	assert.Contains(t, prompt, `"figure": "77%"`)
	assert.Contains(t, prompt, "Use at most 10 entries per list.")
	assert.NotContains(t, prompt, "%!")
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripFences(" {\"a\":1} "))
}
