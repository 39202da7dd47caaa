package search

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitState int

const (
	StateClosed CircuitState = iota
	StateOpen
	StateHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

type CircuitBreakerConfig struct {
	FailureThreshold int           // consecutive failures before opening
	SuccessThreshold int           // successes in half-open before closing
	Timeout          time.Duration // how long to stay open before probing
	MaxHalfOpenCalls int
}

func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		FailureThreshold: 10,
		SuccessThreshold: 2,
		Timeout:          30 * time.Second,
		MaxHalfOpenCalls: 3,
	}
}

type CircuitBreaker struct {
	cfg      CircuitBreakerConfig
	logger   *zap.Logger
	onChange func(CircuitState)
	now      func() time.Time

	mu              sync.Mutex
	state           CircuitState
	failures        int
	successes       int
	lastFailureTime time.Time
	halfOpenCalls   int
}

func NewCircuitBreaker(cfg CircuitBreakerConfig, logger *zap.Logger, onChange func(CircuitState)) *CircuitBreaker {
	if cfg.MaxHalfOpenCalls < 1 {
		cfg.MaxHalfOpenCalls = 1
	}
	if onChange == nil {
		onChange = func(CircuitState) {}
	}
	return &CircuitBreaker{
		cfg:      cfg,
		logger:   logger,
		onChange: onChange,
		now:      time.Now,
		state:    StateClosed,
	}
}

// Allow reports whether a call may proceed. Every allowed call must be
// followed by exactly one Record.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return true
	case StateOpen:
		if cb.now().Sub(cb.lastFailureTime) < cb.cfg.Timeout {
			return false
		}
		cb.logger.Info("circuit breaker transitioning to half-open")
		cb.setState(StateHalfOpen)
		cb.halfOpenCalls = 1
		return true
	case StateHalfOpen:
		if cb.halfOpenCalls < cb.cfg.MaxHalfOpenCalls {
			cb.halfOpenCalls++
			return true
		}
		return false
	default:
		return false
	}
}

func (cb *CircuitBreaker) Record(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err != nil {
		cb.failures++
		cb.successes = 0
		cb.lastFailureTime = cb.now()

		switch {
		case cb.state == StateHalfOpen:
			cb.logger.Warn("circuit breaker reopening after half-open failure", zap.Error(err))
			cb.setState(StateOpen)
			cb.halfOpenCalls = 0
		case cb.state == StateClosed && cb.failures >= cb.cfg.FailureThreshold:
			cb.logger.Warn("circuit breaker opening due to failure threshold",
				zap.Int("failures", cb.failures),
				zap.Error(err))
			cb.setState(StateOpen)
		}
		return
	}

	cb.successes++
	switch cb.state {
	case StateHalfOpen:
		if cb.halfOpenCalls > 0 {
			cb.halfOpenCalls--
		}
		if cb.successes >= cb.cfg.SuccessThreshold {
			cb.logger.Info("circuit breaker closing", zap.Int("successes", cb.successes))
			cb.setState(StateClosed)
			cb.failures = 0
			cb.successes = 0
			cb.halfOpenCalls = 0
		}
	case StateClosed:
		cb.failures = 0
	}
}

// Release returns an allowed call that ended without a verdict, e.g. the caller went away.
func (cb *CircuitBreaker) Release() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state == StateHalfOpen && cb.halfOpenCalls > 0 {
		cb.halfOpenCalls--
	}
}

func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// setState must be called with mu held.
func (cb *CircuitBreaker) setState(s CircuitState) {
	cb.state = s
	cb.onChange(s)
}
