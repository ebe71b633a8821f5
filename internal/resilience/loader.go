package resilience

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

// Predefined errors for resilient operations.
var (
	// ErrCircuitOpen is returned when the circuit breaker is open.
	ErrCircuitOpen = errors.New("circuit breaker is open")

	// ErrMaxRetriesExceeded is returned when all retry attempts have been exhausted.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)

// LoaderConfig holds configuration for a resilient loader.
type LoaderConfig struct {
	// Name identifies the loader in logs and health output.
	Name string

	// MaxRetries is the number of retries after the first attempt.
	MaxRetries uint64

	// InitialInterval is the initial retry backoff interval.
	// Default: 100ms
	InitialInterval time.Duration

	// MaxInterval is the maximum retry backoff interval.
	// Default: 2 seconds
	MaxInterval time.Duration

	// Permanent reports errors that must not be retried, such as not-found
	// sentinels. Context cancellation is always permanent.
	Permanent func(error) bool

	// CircuitBreaker is the circuit breaker configuration.
	// If nil, uses DefaultCircuitBreakerConfig.
	CircuitBreaker *CircuitBreakerConfig

	Logger zerolog.Logger
}

// DefaultLoaderConfig returns the settings used for snapshot loads.
func DefaultLoaderConfig(name string) LoaderConfig {
	cbConfig := DefaultCircuitBreakerConfig(name)
	return LoaderConfig{
		Name:            name,
		MaxRetries:      3,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     2 * time.Second,
		CircuitBreaker:  &cbConfig,
	}
}

// Loader runs load functions returning T through a circuit breaker with retry.
// It is safe for concurrent use.
type Loader[T any] struct {
	config  LoaderConfig
	breaker *gobreaker.CircuitBreaker[T]
	logger  zerolog.Logger

	mu            sync.RWMutex
	lastSuccessAt *time.Time
	lastFailureAt *time.Time
	lastError     string
}

// NewLoader creates a new resilient loader.
func NewLoader[T any](cfg LoaderConfig) *Loader[T] {
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = 100 * time.Millisecond
	}
	if cfg.MaxInterval == 0 {
		cfg.MaxInterval = 2 * time.Second
	}

	cbConfig := DefaultCircuitBreakerConfig(cfg.Name)
	if cfg.CircuitBreaker != nil {
		cbConfig = *cfg.CircuitBreaker
	}

	return &Loader[T]{
		config:  cfg,
		breaker: NewCircuitBreaker[T](cbConfig),
		logger:  cfg.Logger.With().Str("loader", cfg.Name).Logger(),
	}
}

// Name returns the loader name.
func (l *Loader[T]) Name() string {
	return l.config.Name
}

// Load calls fn until it succeeds, the retries run out, the error is
// permanent or the circuit opens. Exhausted retries are reported as
// ErrMaxRetriesExceeded wrapping the last error.
func (l *Loader[T]) Load(ctx context.Context, fn func(ctx context.Context) (T, error)) (T, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = l.config.InitialInterval
	bo.MaxInterval = l.config.MaxInterval
	bo.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, l.config.MaxRetries), ctx)

	var (
		result    T
		attempts  int
		retryable bool
	)

	operation := func() error {
		attempts++
		retryable = false

		v, err := l.breaker.Execute(func() (T, error) {
			return fn(ctx)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(ErrCircuitOpen)
			}
			if l.isPermanent(err) {
				return backoff.Permanent(err)
			}
			retryable = true
			return err
		}

		result = v
		return nil
	}

	notify := func(err error, wait time.Duration) {
		l.logger.Warn().Err(err).Int("attempt", attempts).Dur("retry_in", wait).Msg("load failed, retrying")
	}

	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		l.recordFailure(err)
		var zero T
		if retryable && ctx.Err() == nil {
			return zero, fmt.Errorf("%w: %s after %d attempts: %w", ErrMaxRetriesExceeded, l.config.Name, attempts, err)
		}
		return zero, err
	}

	l.recordSuccess()
	return result, nil
}

func (l *Loader[T]) isPermanent(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return l.config.Permanent != nil && l.config.Permanent(err)
}

func (l *Loader[T]) recordSuccess() {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now()
	l.lastSuccessAt = &now
}

func (l *Loader[T]) recordFailure(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now()
	l.lastFailureAt = &now
	l.lastError = err.Error()
}

// Health returns the current health of the loader.
func (l *Loader[T]) Health() Health {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return Health{
		Name:          l.config.Name,
		CircuitState:  l.breaker.State(),
		Counts:        l.breaker.Counts(),
		LastSuccessAt: l.lastSuccessAt,
		LastFailureAt: l.lastFailureAt,
		LastError:     l.lastError,
	}
}
