package blobstore

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// RetryConfig configures retry behavior for store operations
type RetryConfig struct {
	MaxAttempts   int           `json:"max_attempts"`
	InitialDelay  time.Duration `json:"initial_delay"`
	MaxDelay      time.Duration `json:"max_delay"`
	BackoffFactor float64       `json:"backoff_factor"`
	JitterEnabled bool          `json:"jitter_enabled"`
}

// DefaultRetryConfig returns the retry policy used for artifact writes
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  50 * time.Millisecond,
		MaxDelay:      time.Second,
		BackoffFactor: 2.0,
		JitterEnabled: true,
	}
}

// Operation is a store call that can be retried
type Operation func(ctx context.Context) error

// WithRetry executes op until it succeeds, fails with a non-retryable
// error, or MaxAttempts is reached
func WithRetry(ctx context.Context, config *RetryConfig, op Operation) error {
	if config == nil {
		config = DefaultRetryConfig()
	}

	var lastErr error

	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt >= config.MaxAttempts || !IsRetryable(err) {
			break
		}

		timer := time.NewTimer(config.delay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return lastErr
}

// delay = initial × factor^(attempt-1), capped at MaxDelay, plus up to 10% jitter
func (c *RetryConfig) delay(attempt int) time.Duration {
	d := float64(c.InitialDelay) * math.Pow(c.BackoffFactor, float64(attempt-1))

	if c.MaxDelay > 0 && d > float64(c.MaxDelay) {
		d = float64(c.MaxDelay)
	}

	if c.JitterEnabled {
		d += rand.Float64() * 0.1 * d
	}

	return time.Duration(d)
}

// RetryStore wraps a Store with retry logic on the calls that touch storage
type RetryStore struct {
	Store
	config *RetryConfig
}

// NewRetryStore creates a new RetryStore
func NewRetryStore(store Store, config *RetryConfig) *RetryStore {
	if config == nil {
		config = DefaultRetryConfig()
	}
	return &RetryStore{Store: store, config: config}
}

// Put implements Store.Put with retry logic
func (r *RetryStore) Put(ctx context.Context, key string, data []byte, opts *PutOptions) error {
	return WithRetry(ctx, r.config, func(ctx context.Context) error {
		return r.Store.Put(ctx, key, data, opts)
	})
}

// Get implements Store.Get with retry logic
func (r *RetryStore) Get(ctx context.Context, key string) ([]byte, error) {
	var result []byte
	err := WithRetry(ctx, r.config, func(ctx context.Context) error {
		data, err := r.Store.Get(ctx, key)
		if err != nil {
			return err
		}
		result = data
		return nil
	})
	return result, err
}

// Delete implements Store.Delete with retry logic
func (r *RetryStore) Delete(ctx context.Context, key string) error {
	return WithRetry(ctx, r.config, func(ctx context.Context) error {
		return r.Store.Delete(ctx, key)
	})
}
