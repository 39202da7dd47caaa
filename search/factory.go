package search

import (
	"fmt"
	"net/http"
	"strings"

	"searchagent/config"
	"searchagent/pkg/metrics"

	"go.uber.org/zap"
)

// NewSearchEngine builds the configured provider wrapped in a ResilientEngine.
func NewSearchEngine(cfg *config.Config, httpClient *http.Client, logger *zap.Logger, m *metrics.Metrics) (*ResilientEngine, error) {
	var engine SearchEngine

	provider := strings.ToLower(cfg.Search.Provider)
	switch provider {
	case "", "duckduckgo":
		engine = NewDuckDuckGoSearchEngine(httpClient, cfg.Search.DuckDuckGoURL, cfg.Crawler.UserAgent)
	case "serpapi":
		if cfg.Search.SerpApiKey == "" {
			return nil, fmt.Errorf("serpapi api key is missing")
		}
		engine = NewSerpApiSearchEngine(httpClient, cfg.Search.SerpApiKey, "")
	case "tavily":
		if cfg.Search.TavilyAPIKey == "" {
			return nil, fmt.Errorf("tavily api key is missing")
		}
		engine = NewTavilySearchEngine(httpClient, cfg.Search.TavilyAPIKey, "")
	case "searxng":
		if cfg.Search.SearXNGBaseURL == "" {
			return nil, fmt.Errorf("searxng base url is missing")
		}
		engine = NewSearXNGSearchEngine(httpClient, cfg.Search.SearXNGBaseURL, cfg.Crawler.UserAgent)
	default:
		return nil, fmt.Errorf("unknown search provider: %s", cfg.Search.Provider)
	}

	rc := ResilientConfig{
		Retry: RetryConfig{
			MaxAttempts:   cfg.Search.RetryMaxAttempts,
			InitialDelay:  cfg.Search.RetryInitialDelay,
			MaxDelay:      cfg.Search.RetryMaxDelay,
			BackoffFactor: cfg.Search.RetryBackoffFactor,
		},
		CircuitBreaker: CircuitBreakerConfig{
			FailureThreshold: cfg.Search.BreakerFailureThreshold,
			SuccessThreshold: cfg.Search.BreakerSuccessThreshold,
			Timeout:          cfg.Search.BreakerOpenTimeout,
			MaxHalfOpenCalls: 3,
		},
		RatePerSecond: cfg.Search.RatePerSecond,
		RateBurst:     cfg.Search.RateBurst,
		Timeout:       cfg.Search.Timeout,
	}

	logger.Info("search provider configured", zap.String("provider", engineName(engine)))
	return NewResilientEngine(engine, rc, logger, m), nil
}
