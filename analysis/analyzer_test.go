package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	s1 = "Electric vehicles convert about 77% of the electrical energy from the grid to power at the wheels"
	s2 = "According to the Department of Energy, conventional gasoline vehicles only convert about 12% to 30% of the energy stored in gasoline"
	s3 = "The main advantage of electric motors is instant torque and a smooth driving experience"
	s4 = "One drawback is that charging infrastructure is still limited in many rural areas"
	s5 = "Battery prices fell by 89 percent between 2010 and 2020"
	s6 = "Professor Jane Smith said that electric vehicles will become cheaper than gasoline cars within a decade"
)

var evText = strings.Join([]string{s1, s2, s3, s4, s5, s6}, ".\n") + "."

func TestSentences(t *testing.T) {
	assert.Equal(t, []string{"Hello world", "How are you", "Fine"}, Sentences("Hello   world!! How are\nyou?  Fine."))
	assert.Empty(t, Sentences("  ...  "))
}

func TestSummary(t *testing.T) {
	summary := Summary(Sentences(evText))
	assert.Equal(t, strings.Join([]string{s1, s2, s3, s4, s5}, ". ")+".", summary)

	assert.Equal(t, "", Summary(Sentences("Too short. Also short.")))
}

func TestSummary_Deterministic(t *testing.T) {
	sentences := Sentences(evText)
	assert.Equal(t, Summary(sentences), Summary(sentences))
}

func TestKeyPoints(t *testing.T) {
	assert.Equal(t, []string{s3, s1, s2}, KeyPoints(Sentences(evText)))

	points := KeyPoints(Sentences("Nothing notable here. Just plain words."))
	assert.NotNil(t, points)
	assert.Empty(t, points)
}

func TestKeyPoints_Bounded(t *testing.T) {
	text := strings.Repeat("The key figure rose 10% more than expected. ", 8)
	assert.Len(t, KeyPoints(Sentences(text)), MaxItems)
}

func TestQuickFacts(t *testing.T) {
	assert.Equal(t, []string{s1, s2, s3, s4, s5}, QuickFacts(Sentences(evText)))

	facts := QuickFacts(Sentences("It launched in March. Short one. Nothing to see in this line at all"))
	assert.Equal(t, []string{"It launched in March"}, facts)
}

func TestDetailedAnalysis(t *testing.T) {
	assert.Equal(t, s2+".", DetailedAnalysis(evText))

	analytical := "Recent research from several universities covers how drivers actually charge their cars."
	assert.Equal(t, analytical, DetailedAnalysis("Intro line.\n"+analytical))

	long := strings.Repeat("This study measured battery degradation across many vehicles ", 20)
	out := DetailedAnalysis(long)
	assert.True(t, strings.HasSuffix(out, "..."))
	assert.Len(t, []rune(out), 503)

	assert.Equal(t, "", DetailedAnalysis("short"))
}

func TestProsCons(t *testing.T) {
	pros, cons := ProsCons(Sentences(evText))
	assert.Equal(t, []string{s3}, pros)
	assert.Equal(t, []string{s4}, cons)

	pros, cons = ProsCons([]string{"The benefit outweighs the problem", "A disadvantage remains", "Conventional wisdom"})
	assert.Equal(t, []string{"The benefit outweighs the problem"}, pros)
	assert.Equal(t, []string{"A disadvantage remains"}, cons)
}

func TestExpertOpinions(t *testing.T) {
	opinions := ExpertOpinions(Sentences(evText))
	require.Len(t, opinions, 2)
	assert.Equal(t, ExpertOpinion{Statement: s2, Attribution: "the Department of Energy"}, opinions[0])
	assert.Equal(t, ExpertOpinion{Statement: s6, Attribution: "Professor Jane Smith"}, opinions[1])

	assert.Empty(t, ExpertOpinions([]string{"Experts said so"}))
}

func TestAttribution(t *testing.T) {
	testCases := []struct {
		sentence string
		expected string
	}{
		{"According to Reuters, sales rose sharply", "Reuters"},
		{"Sales will keep rising, said Maria Lopez of the agency", "Maria Lopez"},
		{"It said that sales will keep rising through the decade", ""},
		{"Research shows that sales will keep rising through the decade", "Research"},
		{"Most experts expect sales to keep rising through the decade", "Experts"},
	}

	for _, tc := range testCases {
		t.Run(tc.sentence, func(t *testing.T) {
			assert.Equal(t, tc.expected, Attribution(tc.sentence))
		})
	}
}

func TestStatistics(t *testing.T) {
	stats := Statistics(Sentences(evText))
	assert.Equal(t, []Statistic{
		{Figure: "77%", Context: s1},
		{Figure: "12%", Context: s2},
		{Figure: "89 percent", Context: s5},
	}, stats)

	stats = Statistics([]string{"Founded in 1998 by two students", "Output grew 3 times over"})
	assert.Equal(t, []Statistic{
		{Figure: "1998", Context: "Founded in 1998 by two students"},
		{Figure: "3 times", Context: "Output grew 3 times over"},
	}, stats)
}

func TestRelatedTopics(t *testing.T) {
	a := New()
	assert.Equal(t, []string{"Convert", "Energy", "Conventional", "Gasoline", "Advantage"}, a.RelatedTopics(evText, "electric vehicles"))

	topics := a.RelatedTopics(evText, "   ")
	assert.NotNil(t, topics)
	assert.Empty(t, topics)
}

func TestAnalyze(t *testing.T) {
	res := New().Analyze("electric vehicles", evText)

	assert.NotEmpty(t, res.Summary)
	assert.Len(t, res.KeyPoints, 3)
	assert.Len(t, res.Statistics, 3)
	assert.Len(t, res.ExpertOpinions, 2)
	assert.Len(t, res.Pros, 1)
	assert.Len(t, res.Cons, 1)
	assert.Len(t, res.RelatedTopics, MaxItems)

	empty := New().Analyze("anything", "")
	assert.Equal(t, "", empty.Summary)
	assert.NotNil(t, empty.KeyPoints)
	assert.NotNil(t, empty.QuickFacts)
	assert.NotNil(t, empty.Pros)
	assert.NotNil(t, empty.Cons)
	assert.NotNil(t, empty.ExpertOpinions)
	assert.NotNil(t, empty.Statistics)
	assert.NotNil(t, empty.RelatedTopics)
}
