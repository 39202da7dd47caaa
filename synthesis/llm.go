package synthesis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/textsplitter"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var errEmptyReply = errors.New("model returned an empty summary")

type LLMConfig struct {
	Timeout        time.Duration
	MaxPromptChars int
	RPM            int
	MaxRetries     int
	BaseDelay      time.Duration
	AggregateLimit int
}

// LLMSynthesizer asks a chat model for the aggregate view and falls back to
// the rule engine on any failure.
type LLMSynthesizer struct {
	model    llms.Model
	fallback *RuleSynthesizer
	limiter  *rate.Limiter
	splitter textsplitter.RecursiveCharacter
	config   LLMConfig
	logger   *zap.Logger
}

func NewLLMSynthesizer(model llms.Model, config LLMConfig, logger *zap.Logger) *LLMSynthesizer {
	if config.MaxPromptChars <= 0 {
		config.MaxPromptChars = 12000
	}
	if config.BaseDelay <= 0 {
		config.BaseDelay = 500 * time.Millisecond
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if config.RPM > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(config.RPM)/60.0), 1)
	}

	return &LLMSynthesizer{
		model:    model,
		fallback: NewRuleSynthesizer(config.AggregateLimit),
		limiter:  limiter,
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(700),
			textsplitter.WithChunkOverlap(0),
			textsplitter.WithSeparators([]string{"\n\n", "\n", ". ", " "}),
		),
		config: config,
		logger: logger,
	}
}

func (s *LLMSynthesizer) Synthesize(ctx context.Context, query string, sources []Source) (*Synthesis, error) {
	if len(sources) == 0 {
		return s.fallback.Synthesize(ctx, query, sources)
	}

	out, err := s.generateWithRetry(ctx, s.buildPrompt(query, sources), sources)
	if err != nil {
		s.logger.Warn("llm synthesis failed, using rule engine", zap.String("query", query), zap.Error(err))
		return s.fallback.Synthesize(ctx, query, sources)
	}
	return out, nil
}

type llmReply struct {
	Summary        string          `json:"summary"`
	KeyPoints      []string        `json:"key_points"`
	Statistics     []Statistic     `json:"statistics"`
	ExpertOpinions []ExpertOpinion `json:"expert_opinions"`
	Pros           []string        `json:"pros"`
	Cons           []string        `json:"cons"`
	RelatedTopics  []string        `json:"related_topics"`
}

const promptInstructions = `You are a research assistant. Using ONLY the sources below, write an aggregate analysis for the query.
Return strictly one JSON object, no markdown, with this shape:
{
  "summary": "3-5 sentence overview",
  "key_points": ["..."],
  "statistics": [{"figure": "77%%", "context": "sentence containing the figure", "source_url": "url of the source"}],
  "expert_opinions": [{"statement": "...", "attribution": "who said it", "source_url": "url of the source"}],
  "pros": ["..."],
  "cons": ["..."],
  "related_topics": ["..."]
}
Use at most %d entries per list. Every statistic and opinion must come from a listed source.`

// buildPrompt gives every source an equal share of the character budget,
// filled with whole chunks of its markdown.
func (s *LLMSynthesizer) buildPrompt(query string, sources []Source) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, promptInstructions, aggregateLimit(s.config.AggregateLimit, len(sources)))
	fmt.Fprintf(&sb, "\n\nQuery: %s\n", query)

	budget := s.config.MaxPromptChars / len(sources)
	for i, src := range sources {
		fmt.Fprintf(&sb, "\nSource %d\nURL: %s\nTitle: %s\nContent:\n", i+1, src.URL, src.Title)

		chunks, err := s.splitter.SplitText(src.Markdown)
		if err != nil {
			s.logger.Debug("failed to split source", zap.String("url", src.URL), zap.Error(err))
			chunks = []string{src.Markdown}
		}

		used := 0
		for _, chunk := range chunks {
			if used+len(chunk) > budget {
				if used == 0 {
					sb.WriteString(truncateRunes(chunk, budget))
				}
				break
			}
			sb.WriteString(chunk)
			sb.WriteString("\n")
			used += len(chunk) + 1
		}
	}
	return sb.String()
}

func (s *LLMSynthesizer) generateWithRetry(ctx context.Context, prompt string, sources []Source) (*Synthesis, error) {
	var lastErr error

	for attempt := 0; attempt <= s.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(s.backoffDelay(attempt - 1)):
			}
		}

		out, err := s.generate(ctx, prompt, sources)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Debug("llm attempt failed", zap.Int("attempt", attempt+1), zap.Error(err))
	}

	return nil, lastErr
}

func (s *LLMSynthesizer) generate(ctx context.Context, prompt string, sources []Source) (*Synthesis, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	completion, err := llms.GenerateFromSinglePrompt(ctx, s.model, prompt, llms.WithTemperature(0.2))
	if err != nil {
		return nil, fmt.Errorf("failed to generate: %w", err)
	}

	var reply llmReply
	if err := json.Unmarshal([]byte(stripFences(completion)), &reply); err != nil {
		return nil, fmt.Errorf("failed to decode reply: %w", err)
	}
	if strings.TrimSpace(reply.Summary) == "" {
		return nil, errEmptyReply
	}

	return s.toSynthesis(reply, sources), nil
}

// toSynthesis applies the same caps and dedupe as the rule engine and drops
// figures or opinions credited to URLs that were not provided.
func (s *LLMSynthesizer) toSynthesis(reply llmReply, sources []Source) *Synthesis {
	limit := aggregateLimit(s.config.AggregateLimit, len(sources))
	known := make(map[string]bool, len(sources))
	for _, src := range sources {
		known[src.URL] = true
	}

	stats := make([]Statistic, 0, len(reply.Statistics))
	for _, st := range reply.Statistics {
		if known[st.SourceURL] && strings.TrimSpace(st.Figure) != "" {
			stats = append(stats, st)
		}
	}
	opinions := make([]ExpertOpinion, 0, len(reply.ExpertOpinions))
	for _, op := range reply.ExpertOpinions {
		if known[op.SourceURL] && strings.TrimSpace(op.Statement) != "" {
			opinions = append(opinions, op)
		}
	}

	identity := func(s string) string { return s }
	out := emptySynthesis(EngineLLM)
	out.Summary = strings.TrimSpace(reply.Summary)
	out.KeyPoints = roundRobin([][]string{reply.KeyPoints}, limit, identity)
	out.Pros = roundRobin([][]string{reply.Pros}, limit, identity)
	out.Cons = roundRobin([][]string{reply.Cons}, limit, identity)
	out.RelatedTopics = roundRobin([][]string{reply.RelatedTopics}, limit, identity)
	out.Statistics = roundRobin([][]Statistic{stats}, limit, func(s Statistic) string { return s.Figure + "|" + s.Context })
	out.ExpertOpinions = roundRobin([][]ExpertOpinion{opinions}, limit, func(o ExpertOpinion) string { return o.Statement })
	return out
}

func (s *LLMSynthesizer) backoffDelay(attempt int) time.Duration {
	delay := float64(s.config.BaseDelay) * math.Pow(2, float64(attempt))
	jitter := delay * 0.25 * (rand.Float64() - 0.5)
	return time.Duration(delay + jitter)
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
