package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"

	"searchagent/agent"
	"searchagent/config"
	"searchagent/crawler"
	applog "searchagent/pkg/logger"
	"searchagent/pkg/metrics"
	"searchagent/ranking"
	"searchagent/relevance"
	"searchagent/search"
	"searchagent/synthesis"
)

type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *metrics.Metrics
	service *agent.SearchService
}

func newAppFromFlags(cmd *cobra.Command) (*app, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return newApp(cfg)
}

func newApp(cfg *config.Config) (*app, error) {
	// =========
	// Logging
	// =========
	logger, err := applog.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}

	// =========
	// Metrics
	// =========
	m := metrics.New()

	// =========
	// HTTP
	// =========
	httpClient, httpTransport, err := crawler.NewHTTPClient(cfg.Crawler.ProxyURL)
	if err != nil {
		return nil, err
	}

	// =========
	// Search provider
	// =========
	engine, err := search.NewSearchEngine(cfg, httpClient, logger, m)
	if err != nil {
		return nil, err
	}

	// =========
	// Crawler
	// =========
	crawlerCfg := crawler.DefaultConfig()
	crawlerCfg.UserAgent = cfg.Crawler.UserAgent
	crawlerCfg.FetchTimeout = cfg.Crawler.FetchTimeout
	crawlerCfg.MaxBodyBytes = cfg.Crawler.MaxBodyBytes
	crawlerCfg.BrowserTimeout = cfg.Crawler.BrowserTimeout

	var renderer crawler.Renderer
	if cfg.Crawler.BrowserFallback {
		renderer = crawler.NewBrowser(logger, crawlerCfg, cfg.Crawler.ProxyURL)
	}
	contentCrawler := crawler.NewCrawler(
		crawler.NewFetcher(httpTransport, crawlerCfg, logger),
		crawler.NewExtractor(logger),
		renderer,
		logger,
	)

	// =========
	// Ranking & synthesis
	// =========
	ranker := ranking.NewRanker(
		relevance.NewKeywordRelevance(search.NewSimpleKeywordExtractor()),
		ranking.NewCredibilityEvaluator(cfg.Credibility.Domains),
	)

	synthesizer, err := newSynthesizer(cfg, logger)
	if err != nil {
		return nil, err
	}

	service := agent.NewSearchService(engine, contentCrawler, ranker, synthesizer, agent.Config{
		MaxResultsCap:    cfg.Agent.MaxResultsCap,
		MinSuccesses:     cfg.Agent.MinSuccesses,
		Concurrency:      cfg.Crawler.Concurrency,
		CandidateTimeout: cfg.Crawler.CandidateTimeout,
	}, logger, m)

	logger.Debug("search agent ready",
		zap.String("provider", engine.Name()),
		zap.Bool("browser_fallback", cfg.Crawler.BrowserFallback),
		zap.Bool("llm", cfg.LLM.Enabled))

	return &app{cfg: cfg, logger: logger, metrics: m, service: service}, nil
}

func newSynthesizer(cfg *config.Config, logger *zap.Logger) (synthesis.Synthesizer, error) {
	if !cfg.LLM.Enabled {
		return synthesis.NewRuleSynthesizer(cfg.Agent.AggregateLimit), nil
	}

	opts := []openai.Option{
		openai.WithModel(cfg.LLM.Model),
		openai.WithToken(cfg.LLM.APIKey),
	}
	if cfg.LLM.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.LLM.BaseURL))
	}
	model, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	return synthesis.NewLLMSynthesizer(model, synthesis.LLMConfig{
		Timeout:        cfg.LLM.Timeout,
		MaxPromptChars: cfg.LLM.MaxPromptChars,
		RPM:            cfg.LLM.RPM,
		MaxRetries:     cfg.LLM.MaxRetries,
		AggregateLimit: cfg.Agent.AggregateLimit,
	}, logger), nil
}
