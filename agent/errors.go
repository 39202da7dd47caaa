package agent

import (
	"errors"
	"fmt"
)

var (
	ErrNoResults           = errors.New("no results")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrTimeout             = errors.New("timeout")
)

const (
	KindValidation          = "validation"
	KindNoResults           = "no_results"
	KindUpstreamUnavailable = "upstream_unavailable"
	KindTimeout             = "timeout"
	KindInternal            = "internal"
)

// ValidationError rejects a request before any network call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Kind classifies err for callers that report errors to users.
func Kind(err error) string {
	var vErr *ValidationError
	switch {
	case errors.As(err, &vErr):
		return KindValidation
	case errors.Is(err, ErrNoResults):
		return KindNoResults
	case errors.Is(err, ErrTimeout):
		return KindTimeout
	case errors.Is(err, ErrUpstreamUnavailable):
		return KindUpstreamUnavailable
	default:
		return KindInternal
	}
}
