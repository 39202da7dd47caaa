package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const EnvPrefix = "SEARCHAGENT_"

type Config struct {
	App         AppConfig         `yaml:"app" envPrefix:"APP_"`
	Log         LogConfig         `yaml:"log" envPrefix:"LOG_"`
	Search      SearchConfig      `yaml:"search" envPrefix:"SEARCH_"`
	Crawler     CrawlerConfig     `yaml:"crawler" envPrefix:"CRAWLER_"`
	Agent       AgentConfig       `yaml:"agent" envPrefix:"AGENT_"`
	Credibility CredibilityConfig `yaml:"credibility" envPrefix:"CREDIBILITY_"`
	LLM         LLMConfig         `yaml:"llm" envPrefix:"LLM_"`
}

type AppConfig struct {
	Port            int           `yaml:"port" env:"PORT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" env:"REQUEST_TIMEOUT"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"` // json or console
}

type SearchConfig struct {
	Provider       string        `yaml:"provider" env:"PROVIDER"`
	Timeout        time.Duration `yaml:"timeout" env:"TIMEOUT"`
	SerpApiKey     string        `yaml:"serpapi_key" env:"SERPAPI_KEY"`
	TavilyAPIKey   string        `yaml:"tavily_api_key" env:"TAVILY_API_KEY"`
	SearXNGBaseURL string        `yaml:"searxng_base_url" env:"SEARXNG_BASE_URL"`
	DuckDuckGoURL  string        `yaml:"duckduckgo_url" env:"DUCKDUCKGO_URL"`
	RatePerSecond  float64       `yaml:"rate_per_second" env:"RATE_PER_SECOND"`
	RateBurst      int           `yaml:"rate_burst" env:"RATE_BURST"`

	RetryMaxAttempts   int           `yaml:"retry_max_attempts" env:"RETRY_MAX_ATTEMPTS"`
	RetryInitialDelay  time.Duration `yaml:"retry_initial_delay" env:"RETRY_INITIAL_DELAY"`
	RetryMaxDelay      time.Duration `yaml:"retry_max_delay" env:"RETRY_MAX_DELAY"`
	RetryBackoffFactor float64       `yaml:"retry_backoff_factor" env:"RETRY_BACKOFF_FACTOR"`

	BreakerFailureThreshold int           `yaml:"breaker_failure_threshold" env:"BREAKER_FAILURE_THRESHOLD"`
	BreakerSuccessThreshold int           `yaml:"breaker_success_threshold" env:"BREAKER_SUCCESS_THRESHOLD"`
	BreakerOpenTimeout      time.Duration `yaml:"breaker_open_timeout" env:"BREAKER_OPEN_TIMEOUT"`
}

type CrawlerConfig struct {
	UserAgent        string        `yaml:"user_agent" env:"USER_AGENT"`
	ProxyURL         string        `yaml:"proxy_url" env:"PROXY_URL"`
	FetchTimeout     time.Duration `yaml:"fetch_timeout" env:"FETCH_TIMEOUT"`
	CandidateTimeout time.Duration `yaml:"candidate_timeout" env:"CANDIDATE_TIMEOUT"`
	Concurrency      int           `yaml:"concurrency" env:"CONCURRENCY"`
	MaxBodyBytes     int           `yaml:"max_body_bytes" env:"MAX_BODY_BYTES"`
	BrowserFallback  bool          `yaml:"browser_fallback" env:"BROWSER_FALLBACK"`
	BrowserTimeout   time.Duration `yaml:"browser_timeout" env:"BROWSER_TIMEOUT"`
}

type AgentConfig struct {
	MaxResultsCap     int `yaml:"max_results_cap" env:"MAX_RESULTS_CAP"`
	DefaultMaxResults int `yaml:"default_max_results" env:"DEFAULT_MAX_RESULTS"`
	MinSuccesses      int `yaml:"min_successes" env:"MIN_SUCCESSES"`
	AggregateLimit    int `yaml:"aggregate_limit" env:"AGGREGATE_LIMIT"`
}

type CredibilityConfig struct {
	// Domains adds or overrides domain weights, e.g. "nature.com": 0.9.
	Domains map[string]float64 `yaml:"domains" env:"DOMAINS" envKeyValSeparator:":"`
}

type LLMConfig struct {
	Enabled        bool          `yaml:"enabled" env:"ENABLED"`
	BaseURL        string        `yaml:"base_url" env:"BASE_URL"`
	APIKey         string        `yaml:"api_key" env:"API_KEY"`
	Model          string        `yaml:"model" env:"MODEL"`
	Timeout        time.Duration `yaml:"timeout" env:"TIMEOUT"`
	MaxPromptChars int           `yaml:"max_prompt_chars" env:"MAX_PROMPT_CHARS"`
	RPM            int           `yaml:"rpm" env:"RPM"`
	MaxRetries     int           `yaml:"max_retries" env:"MAX_RETRIES"`
}

func Default() *Config {
	return &Config{
		App: AppConfig{
			Port:            8000,
			ShutdownTimeout: 15 * time.Second,
			RequestTimeout:  90 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Search: SearchConfig{
			Provider:                "duckduckgo",
			Timeout:                 15 * time.Second,
			RatePerSecond:           5,
			RateBurst:               5,
			RetryMaxAttempts:        3,
			RetryInitialDelay:       250 * time.Millisecond,
			RetryMaxDelay:           5 * time.Second,
			RetryBackoffFactor:      1.5,
			BreakerFailureThreshold: 10,
			BreakerSuccessThreshold: 2,
			BreakerOpenTimeout:      30 * time.Second,
		},
		Crawler: CrawlerConfig{
			UserAgent:        "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			FetchTimeout:     10 * time.Second,
			CandidateTimeout: 20 * time.Second,
			Concurrency:      10,
			MaxBodyBytes:     5 << 20,
			BrowserTimeout:   15 * time.Second,
		},
		Agent: AgentConfig{
			MaxResultsCap:     50,
			DefaultMaxResults: 10,
			MinSuccesses:      1,
			AggregateLimit:    10,
		},
		LLM: LLMConfig{
			Timeout:        45 * time.Second,
			MaxPromptChars: 12000,
			RPM:            30,
			MaxRetries:     2,
		},
	}
}

// Load layers defaults, an optional YAML file and SEARCHAGENT_* environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	if c.App.Port <= 0 || c.App.Port > 65535 {
		errs = append(errs, fmt.Errorf("app.port out of range: %d", c.App.Port))
	}

	switch strings.ToLower(c.Search.Provider) {
	case "duckduckgo":
	case "serpapi":
		if c.Search.SerpApiKey == "" {
			errs = append(errs, errors.New("search.serpapi_key is required for provider serpapi"))
		}
	case "tavily":
		if c.Search.TavilyAPIKey == "" {
			errs = append(errs, errors.New("search.tavily_api_key is required for provider tavily"))
		}
	case "searxng":
		if c.Search.SearXNGBaseURL == "" {
			errs = append(errs, errors.New("search.searxng_base_url is required for provider searxng"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown search provider: %q", c.Search.Provider))
	}

	if c.Agent.MaxResultsCap < 1 {
		errs = append(errs, errors.New("agent.max_results_cap must be positive"))
	}
	if c.Agent.DefaultMaxResults < 1 || c.Agent.DefaultMaxResults > c.Agent.MaxResultsCap {
		errs = append(errs, errors.New("agent.default_max_results must be within [1, max_results_cap]"))
	}
	if c.Agent.AggregateLimit < 1 {
		errs = append(errs, errors.New("agent.aggregate_limit must be positive"))
	}
	if c.Agent.MinSuccesses < 1 {
		errs = append(errs, errors.New("agent.min_successes must be positive"))
	}
	if c.Crawler.Concurrency < 1 {
		errs = append(errs, errors.New("crawler.concurrency must be positive"))
	}
	if c.Crawler.CandidateTimeout <= 0 || c.Crawler.FetchTimeout <= 0 {
		errs = append(errs, errors.New("crawler timeouts must be positive"))
	}
	for domain, score := range c.Credibility.Domains {
		if score < 0 || score > 1 {
			errs = append(errs, fmt.Errorf("credibility.domains[%s] must be within [0, 1]", domain))
		}
	}
	if c.LLM.Enabled && c.LLM.Model == "" {
		errs = append(errs, errors.New("llm.model is required when llm is enabled"))
	}

	return errors.Join(errs...)
}
