package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"searchagent/analysis"
	"searchagent/crawler"
	"searchagent/pkg/metrics"
	"searchagent/ranking"
	"searchagent/search"
	"searchagent/synthesis"
)

type Searcher interface {
	Search(ctx context.Context, req *search.SearchRequest) ([]search.SearchResult, error)
}

type ContentCrawler interface {
	Crawl(ctx context.Context, pageURL string) (*crawler.Content, error)
}

type Config struct {
	MaxResultsCap    int
	MinSuccesses     int
	Concurrency      int
	CandidateTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxResultsCap:    50,
		MinSuccesses:     1,
		Concurrency:      10,
		CandidateTimeout: 20 * time.Second,
	}
}

// SearchService runs query -> provider search -> parallel extraction -> rank
// -> synthesis. It holds no per-request state and is safe for concurrent use.
type SearchService struct {
	searcher    Searcher
	crawler     ContentCrawler
	analyzer    *analysis.Analyzer
	ranker      *ranking.Ranker
	synthesizer synthesis.Synthesizer
	config      Config
	logger      *zap.Logger
	metrics     *metrics.Metrics
}

func NewSearchService(
	searcher Searcher,
	contentCrawler ContentCrawler,
	ranker *ranking.Ranker,
	synthesizer synthesis.Synthesizer,
	config Config,
	logger *zap.Logger,
	m *metrics.Metrics,
) *SearchService {
	if config.MaxResultsCap < 1 {
		config.MaxResultsCap = DefaultConfig().MaxResultsCap
	}
	if config.MinSuccesses < 1 {
		config.MinSuccesses = 1
	}
	if config.Concurrency < 1 {
		config.Concurrency = DefaultConfig().Concurrency
	}
	if ranker == nil {
		ranker = ranking.NewRanker(nil, nil)
	}
	if synthesizer == nil {
		synthesizer = synthesis.NewRuleSynthesizer(10)
	}

	return &SearchService{
		searcher:    searcher,
		crawler:     contentCrawler,
		analyzer:    analysis.New(),
		ranker:      ranker,
		synthesizer: synthesizer,
		config:      config,
		logger:      logger,
		metrics:     m,
	}
}

// candidate is the outcome of one extraction task.
type candidate struct {
	result   search.SearchResult
	content  *crawler.Content
	analysis *analysis.Result
	err      error
}

func (s *SearchService) Validate(req SearchRequest) error {
	if strings.TrimSpace(req.Query) == "" {
		return &ValidationError{Field: "query", Message: "must not be empty"}
	}
	if req.MaxResults < 1 || req.MaxResults > s.config.MaxResultsCap {
		return &ValidationError{
			Field:   "max_results",
			Message: fmt.Sprintf("must be between 1 and %d, got %d", s.config.MaxResultsCap, req.MaxResults),
		}
	}
	return nil
}

func (s *SearchService) Search(ctx context.Context, req SearchRequest) (*AnalysisBundle, error) {
	start := time.Now()

	if err := s.Validate(req); err != nil {
		s.metrics.RecordSearch(KindValidation, time.Since(start).Seconds())
		return nil, err
	}
	query := strings.TrimSpace(req.Query)

	requestID := crawler.GetRequestID(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
		ctx = crawler.WithRequestID(ctx, requestID)
	}
	logger := crawler.GetContextLogger(ctx, s.logger)

	bundle, err := s.run(ctx, logger, requestID, query, req.MaxResults, start)
	if err != nil {
		s.metrics.RecordSearch(Kind(err), time.Since(start).Seconds())
		logger.Warn("search failed",
			zap.String("query", query),
			zap.String("kind", Kind(err)),
			zap.Error(err),
			zap.Duration("took", time.Since(start)))
		return nil, err
	}

	s.metrics.RecordSearch(string(bundle.Outcome), time.Since(start).Seconds())
	logger.Info("search finished",
		zap.String("query", query),
		zap.String("outcome", string(bundle.Outcome)),
		zap.Int("candidates", bundle.CandidateCount),
		zap.Int("analyzed", bundle.AnalyzedCount),
		zap.String("engine", bundle.SynthesisEngine),
		zap.Int64("took_ms", bundle.TookMs))
	return bundle, nil
}

func (s *SearchService) run(ctx context.Context, logger *zap.Logger, requestID, query string, maxResults int, start time.Time) (*AnalysisBundle, error) {
	// ================
	// Provider search
	// ================
	results, err := s.searcher.Search(ctx, &search.SearchRequest{Query: query, MaxResults: maxResults})
	if err != nil {
		return nil, classifySearchError(ctx, err)
	}
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: provider returned no candidates", ErrNoResults)
	}
	logger.Debug("candidates retrieved", zap.Int("count", len(results)), zap.Duration("took", time.Since(start)))

	// ================
	// Extraction
	// ================
	candidates := s.extractAll(ctx, logger, query, results)
	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: extraction: %w", ErrTimeout, err)
		}
		return nil, fmt.Errorf("search interrupted: %w", err)
	}

	var succeeded []candidate
	failed := make([]FailedSource, 0)
	for _, c := range candidates {
		if c.err != nil {
			failed = append(failed, FailedSource{URL: c.result.URL, Reason: c.err.Error()})
			continue
		}
		succeeded = append(succeeded, c)
	}
	if len(succeeded) == 0 || len(succeeded) < s.config.MinSuccesses {
		return nil, fmt.Errorf("%w: %d of %d candidates analyzed, %d required",
			ErrNoResults, len(succeeded), len(candidates), s.config.MinSuccesses)
	}

	// ================
	// Rank & synthesize
	// ================
	items := make([]ranking.Item, len(succeeded))
	for i, c := range succeeded {
		items[i] = ranking.Item{
			URL:            c.result.URL,
			Title:          c.result.Title,
			Description:    c.result.Description,
			ProviderRank:   c.result.Position,
			KeyPoints:      len(c.analysis.KeyPoints),
			Statistics:     len(c.analysis.Statistics),
			ExpertOpinions: len(c.analysis.ExpertOpinions),
		}
	}
	ranked := s.ranker.Rank(query, items)

	byRank := make(map[int]candidate, len(succeeded))
	for _, c := range succeeded {
		byRank[c.result.Position] = c
	}

	sources := make([]SourceAnalysis, 0, len(ranked))
	synthInput := make([]synthesis.Source, 0, len(ranked))
	ratings := make([]CredibilityRating, 0, len(ranked))
	for _, item := range ranked {
		c := byRank[item.ProviderRank]
		sa := buildSourceAnalysis(c, item)
		sources = append(sources, sa)
		ratings = append(ratings, CredibilityRating{URL: sa.URL, Score: item.Credibility.Score, Label: item.Credibility.Label})
		synthInput = append(synthInput, synthesis.Source{
			URL:      sa.URL,
			Title:    sa.Title,
			Markdown: c.content.TextMd,
			Analysis: c.analysis,
		})
	}

	synth, err := s.synthesizer.Synthesize(ctx, query, synthInput)
	if err != nil {
		return nil, fmt.Errorf("failed to synthesize: %w", err)
	}

	outcome := OutcomeComplete
	if len(failed) > 0 {
		outcome = OutcomePartial
	}

	return &AnalysisBundle{
		RequestID:         requestID,
		Query:             query,
		Outcome:           outcome,
		Summary:           synth.Summary,
		KeyPoints:         nonNil(synth.KeyPoints),
		Statistics:        nonNil(synth.Statistics),
		ExpertOpinions:    nonNil(synth.ExpertOpinions),
		Pros:              nonNil(synth.Pros),
		Cons:              nonNil(synth.Cons),
		RelatedTopics:     nonNil(synth.RelatedTopics),
		CredibilityRating: ratings,
		Sources:           sources,
		FailedSources:     failed,
		AnalyzedCount:     len(succeeded),
		CandidateCount:    len(candidates),
		SynthesisEngine:   synth.Engine,
		TookMs:            time.Since(start).Milliseconds(),
	}, nil
}

// extractAll crawls and analyzes every candidate concurrently. Failures are
// recorded on the candidate and never cancel sibling tasks. Candidates are
// renumbered 1..n in provider order.
func (s *SearchService) extractAll(ctx context.Context, logger *zap.Logger, query string, results []search.SearchResult) []candidate {
	candidates := make([]candidate, len(results))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Concurrency)

	for i, r := range results {
		r.Position = i + 1
		candidates[i].result = r

		g.Go(func() error {
			taskCtx := crawler.WithURL(gctx, r.URL)
			if s.config.CandidateTimeout > 0 {
				var cancel context.CancelFunc
				taskCtx, cancel = context.WithTimeout(taskCtx, s.config.CandidateTimeout)
				defer cancel()
			}

			taskStart := time.Now()
			content, err := s.crawler.Crawl(taskCtx, r.URL)
			if err == nil && taskCtx.Err() != nil {
				err = taskCtx.Err()
			}
			if err != nil {
				status := "failed"
				if errors.Is(err, context.DeadlineExceeded) {
					status = "timeout"
				}
				s.metrics.RecordCandidate(status)
				logger.Warn("candidate failed",
					zap.String("url", r.URL),
					zap.String("status", status),
					zap.Error(err),
					zap.Duration("took", time.Since(taskStart)))
				candidates[i].err = err
				return nil
			}

			candidates[i].content = content
			candidates[i].analysis = s.analyzer.Analyze(query, content.TextContent)
			s.metrics.RecordCandidate("success")
			logger.Debug("candidate analyzed",
				zap.String("url", r.URL),
				zap.String("via", content.FetchedVia),
				zap.Int("word_count", content.Quality.WordCount),
				zap.Duration("took", time.Since(taskStart)))
			return nil
		})
	}

	_ = g.Wait()
	return candidates
}

func buildSourceAnalysis(c candidate, item ranking.Item) SourceAnalysis {
	title := c.result.Title
	description := c.result.Description
	var meta crawler.ContentMetadata
	if c.content.Metadata != nil {
		meta = *c.content.Metadata
	}
	if title == "" {
		title = meta.Title
	}
	if description == "" {
		description = meta.Description
	}

	a := c.analysis
	return SourceAnalysis{
		Title:            title,
		URL:              c.result.URL,
		Description:      description,
		SiteName:         meta.SiteName,
		Author:           meta.Author,
		Language:         meta.Language,
		Summary:          a.Summary,
		KeyPoints:        nonNil(a.KeyPoints),
		QuickFacts:       nonNil(a.QuickFacts),
		DetailedAnalysis: a.DetailedAnalysis,
		Statistics:       nonNil(a.Statistics),
		ExpertOpinions:   nonNil(a.ExpertOpinions),
		Pros:             nonNil(a.Pros),
		Cons:             nonNil(a.Cons),
		RelatedTopics:    nonNil(a.RelatedTopics),
		Credibility:      item.Credibility,
		Relevance:        item.Relevance,
		RankingScore:     item.Score,
		ProviderRank:     item.ProviderRank,
		WordCount:        c.content.Quality.WordCount,
		FetchedVia:       c.content.FetchedVia,
	}
}

func classifySearchError(ctx context.Context, err error) error {
	switch {
	case search.IsTimeout(err):
		return fmt.Errorf("%w: search provider: %w", ErrTimeout, err)
	case ctx.Err() != nil:
		return fmt.Errorf("search interrupted: %w", err)
	default:
		return fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}
}
