package search

import (
	"context"
	"errors"
)

// ErrProviderUnavailable wraps every failure to reach or decode an upstream provider.
var ErrProviderUnavailable = errors.New("search provider unavailable")

type SearchResult struct {
	URL         string            `json:"url"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Position    int               `json:"position"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type SearchRequest struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results,omitempty"`
}

type SearchEngine interface {
	Search(ctx context.Context, req *SearchRequest) ([]SearchResult, error)
}

// Named is implemented by engines that report a provider name for logs and metrics.
type Named interface {
	Name() string
}

func engineName(e SearchEngine) string {
	if n, ok := e.(Named); ok {
		return n.Name()
	}
	return "unknown"
}
