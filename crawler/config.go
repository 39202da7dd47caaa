package crawler

import (
	"time"
)

type CrawlerConfig struct {
	UserAgent      string
	FetchTimeout   time.Duration
	MaxBodyBytes   int
	BrowserTimeout time.Duration
	AcceptLanguage string
}

// DefaultConfig returns a default crawler configuration
func DefaultConfig() *CrawlerConfig {
	return &CrawlerConfig{
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		FetchTimeout:   10 * time.Second,
		MaxBodyBytes:   5 << 20,
		BrowserTimeout: 15 * time.Second,
		AcceptLanguage: "en-US,en;q=0.9",
	}
}
