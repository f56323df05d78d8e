package resilience

import (
	"context"
	"errors"
	"sync"
	"time"

	"code-review-assistant/backend/pkg/logger"
)

// ErrCircuitOpen is returned without calling the protected function while the breaker is open
var ErrCircuitOpen = errors.New("circuit open")

// State represents the current state of a circuit breaker
type State string

const (
	// StateClosed means requests pass through
	StateClosed State = "closed"
	// StateOpen means requests are short-circuited
	StateOpen State = "open"
	// StateHalfOpen means a limited number of probe requests are allowed
	StateHalfOpen State = "half-open"
)

// Config holds configuration for a circuit breaker
type Config struct {
	Name             string
	FailureThreshold uint
	SuccessThreshold uint
	// Cooldown is how long the breaker stays open before probing
	Cooldown time.Duration
	// IsFailure decides which errors count against the breaker.
	// Nil counts every error except caller cancellation.
	IsFailure func(error) bool
}

// DefaultConfig returns a default circuit breaker configuration
func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Cooldown:         30 * time.Second,
	}
}

// Metrics is a point-in-time view of the breaker counters
type Metrics struct {
	Name              string    `json:"name"`
	State             State     `json:"state"`
	TotalRequests     uint64    `json:"total_requests"`
	TotalFailures     uint64    `json:"total_failures"`
	TotalSuccesses    uint64    `json:"total_successes"`
	ConsecutiveErrors uint64    `json:"consecutive_errors"`
	OpenCount         uint64    `json:"open_circuit_count"`
	LastFailure       time.Time `json:"last_failure_time"`
}

// CircuitBreaker stops calling a failing dependency until it has had time to recover
type CircuitBreaker struct {
	cfg Config
	log *logger.Logger
	now func() time.Time

	mutex        sync.Mutex
	state        State
	failureCount uint
	successCount uint
	inFlight     uint
	nextAttempt  time.Time
	metrics      Metrics
}

// NewCircuitBreaker creates a new circuit breaker
func NewCircuitBreaker(cfg Config, log *logger.Logger) *CircuitBreaker {
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 1
	}
	if cfg.SuccessThreshold == 0 {
		cfg.SuccessThreshold = 1
	}
	if cfg.IsFailure == nil {
		cfg.IsFailure = func(err error) bool { return !errors.Is(err, context.Canceled) }
	}
	if log == nil {
		log = logger.Discard()
	}
	return &CircuitBreaker{
		cfg:     cfg,
		log:     log,
		now:     time.Now,
		state:   StateClosed,
		metrics: Metrics{Name: cfg.Name},
	}
}

// Execute runs fn through the circuit breaker
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func(context.Context) error) error {
	if !cb.allowRequest() {
		cb.log.Warn("Circuit breaker preventing request", "name", cb.cfg.Name)
		return ErrCircuitOpen
	}

	start := cb.now()
	err := fn(ctx)

	if err != nil {
		if !cb.cfg.IsFailure(err) {
			cb.release()
			return err
		}
		cb.recordFailure()
		cb.log.Warn("Circuit breaker recorded failure",
			"name", cb.cfg.Name,
			"error", err.Error(),
			"duration", cb.now().Sub(start).String(),
		)
		return err
	}

	cb.recordSuccess()
	return nil
}

func (cb *CircuitBreaker) allowRequest() bool {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	switch cb.state {
	case StateOpen:
		if cb.now().Before(cb.nextAttempt) {
			return false
		}
		cb.toHalfOpen()
		fallthrough
	case StateHalfOpen:
		// only as many concurrent probes as successes needed to close
		if cb.successCount+cb.inFlight >= cb.cfg.SuccessThreshold {
			return false
		}
	}

	cb.inFlight++
	cb.metrics.TotalRequests++
	return true
}

// release ends a request whose outcome says nothing about the dependency
func (cb *CircuitBreaker) release() {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	cb.inFlight--
}

func (cb *CircuitBreaker) recordSuccess() {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	cb.inFlight--
	cb.metrics.TotalSuccesses++
	cb.metrics.ConsecutiveErrors = 0

	switch cb.state {
	case StateClosed:
		cb.failureCount = 0
	case StateHalfOpen:
		cb.successCount++
		if cb.successCount >= cb.cfg.SuccessThreshold {
			cb.toClosed()
		}
	}
}

func (cb *CircuitBreaker) recordFailure() {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	cb.inFlight--
	cb.metrics.TotalFailures++
	cb.metrics.ConsecutiveErrors++
	cb.metrics.LastFailure = cb.now()

	switch cb.state {
	case StateClosed:
		cb.failureCount++
		if cb.failureCount >= cb.cfg.FailureThreshold {
			cb.toOpen()
		}
	case StateHalfOpen:
		cb.toOpen()
	}
}

func (cb *CircuitBreaker) toOpen() {
	cb.state = StateOpen
	cb.metrics.OpenCount++
	cb.nextAttempt = cb.now().Add(cb.cfg.Cooldown)

	cb.log.Info("Circuit breaker opened",
		"name", cb.cfg.Name,
		"failures", cb.failureCount,
		"nextAttempt", cb.nextAttempt.Format(time.RFC3339),
	)
}

func (cb *CircuitBreaker) toHalfOpen() {
	cb.state = StateHalfOpen
	cb.successCount = 0
	cb.log.Info("Circuit breaker half-open", "name", cb.cfg.Name)
}

func (cb *CircuitBreaker) toClosed() {
	cb.state = StateClosed
	cb.failureCount = 0
	cb.successCount = 0
	cb.log.Info("Circuit breaker closed", "name", cb.cfg.Name)
}

// State returns the current state of the circuit breaker
func (cb *CircuitBreaker) State() State {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	if cb.state == StateOpen && !cb.now().Before(cb.nextAttempt) {
		return StateHalfOpen
	}
	return cb.state
}

// Metrics returns the current counters of the circuit breaker
func (cb *CircuitBreaker) Metrics() Metrics {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	m := cb.metrics
	m.State = cb.state
	return m
}
