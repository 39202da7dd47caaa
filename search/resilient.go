package search

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"searchagent/pkg/metrics"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type ResilientConfig struct {
	Retry          RetryConfig
	CircuitBreaker CircuitBreakerConfig
	RatePerSecond  float64
	RateBurst      int
	Timeout        time.Duration
}

// ResilientEngine decorates a provider with rate limiting, retries, a circuit
// breaker and result normalization.
type ResilientEngine struct {
	engine  SearchEngine
	name    string
	cfg     ResilientConfig
	limiter *rate.Limiter
	breaker *CircuitBreaker
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func NewResilientEngine(engine SearchEngine, cfg ResilientConfig, logger *zap.Logger, m *metrics.Metrics) *ResilientEngine {
	name := engineName(engine)
	logger = logger.With(zap.String("provider", name))

	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	burst := cfg.RateBurst
	if burst < 1 {
		burst = 1
	}

	breaker := NewCircuitBreaker(cfg.CircuitBreaker, logger, func(s CircuitState) {
		m.SetCircuitBreakerState(name, s.String())
	})
	m.SetCircuitBreakerState(name, StateClosed.String())

	return &ResilientEngine{
		engine:  engine,
		name:    name,
		cfg:     cfg,
		limiter: rate.NewLimiter(limit, burst),
		breaker: breaker,
		logger:  logger,
		metrics: m,
	}
}

func (r *ResilientEngine) Name() string { return r.name }

func (r *ResilientEngine) Search(ctx context.Context, req *SearchRequest) ([]SearchResult, error) {
	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	if !r.breaker.Allow() {
		r.metrics.RecordProviderLatency(r.name, "circuit_open", 0)
		return nil, fmt.Errorf("%w: %s: %w", ErrProviderUnavailable, r.name, ErrCircuitOpen)
	}

	start := time.Now()
	results, err := WithRetry(ctx, r.cfg.Retry, r.logger, r.name+"_search", func(ctx context.Context) ([]SearchResult, error) {
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		return r.engine.Search(ctx, req)
	})
	elapsed := time.Since(start).Seconds()

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			r.breaker.Release()
			r.metrics.RecordProviderLatency(r.name, "timeout", elapsed)
			return nil, fmt.Errorf("%s search interrupted: %w", r.name, ctxErr)
		}
		r.breaker.Record(err)
		r.metrics.RecordProviderLatency(r.name, "error", elapsed)
		r.logger.Error("search provider failed", zap.String("query", req.Query), zap.Error(err))
		return nil, fmt.Errorf("%w: %s: %w", ErrProviderUnavailable, r.name, err)
	}

	r.breaker.Record(nil)
	r.metrics.RecordProviderLatency(r.name, "success", elapsed)

	normalized := Normalize(results, req.MaxResults)
	r.logger.Info("search completed",
		zap.String("query", req.Query),
		zap.Int("raw_count", len(results)),
		zap.Int("result_count", len(normalized)),
		zap.Duration("took", time.Since(start)))
	return normalized, nil
}

// IsTimeout reports whether a search failed because its deadline passed.
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}

// Normalize drops results without a usable http(s) URL, removes duplicates by
// normalized URL keeping the first, caps at maxResults and renumbers positions 1..n.
func Normalize(results []SearchResult, maxResults int) []SearchResult {
	seen := make(map[string]struct{}, len(results))
	out := make([]SearchResult, 0, len(results))
	for _, r := range results {
		key, ok := normalizeURL(r.URL)
		if !ok {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		r.Title = strings.TrimSpace(r.Title)
		r.Description = strings.TrimSpace(r.Description)
		out = append(out, r)
		if maxResults > 0 && len(out) >= maxResults {
			break
		}
	}
	for i := range out {
		out[i].Position = i + 1
	}
	return out
}

func normalizeURL(raw string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	path := strings.TrimSuffix(u.EscapedPath(), "/")
	key := host + path
	if u.RawQuery != "" {
		key += "?" + u.RawQuery
	}
	return key, true
}
