// Package retry runs an operation until it succeeds, fails permanently, or
// runs out of attempts.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	errUtils "github.com/cloudposse/pomgraph/errors"
	log "github.com/cloudposse/pomgraph/pkg/logger"
	"github.com/cloudposse/pomgraph/pkg/schema"
)

// Func is an operation that can be retried.
type Func func() error

// Executor applies one retry configuration.
type Executor struct {
	config schema.RetryConfig
	rand   *rand.Rand
}

// New returns an executor for config.
func New(config schema.RetryConfig) *Executor {
	return &Executor{
		config: config,
		rand:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

type permanent struct{ err error }

func (p *permanent) Error() string { return p.err.Error() }
func (p *permanent) Unwrap() error { return p.err }

// Permanent marks err as not worth retrying. Execute returns the wrapped error.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanent{err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var p *permanent
	return errors.As(err, &p)
}

// Execute runs fn, retrying every error that is not permanent.
func (e *Executor) Execute(ctx context.Context, fn Func) error {
	return e.ExecuteWithPredicate(ctx, fn, RetryOnAnyError)
}

// ExecuteWithPredicate runs fn, retrying the errors shouldRetry accepts.
func (e *Executor) ExecuteWithPredicate(ctx context.Context, fn Func, shouldRetry func(error) bool) error {
	start := time.Now()
	attempts := max(e.config.MaxAttempts, 1)

	for attempt := 1; ; attempt++ {
		if e.config.MaxElapsedTime > 0 && time.Since(start) > e.config.MaxElapsedTime {
			return fmt.Errorf("%w after %v", errUtils.ErrRetryTimeout, e.config.MaxElapsedTime)
		}

		err := fn()
		if err == nil {
			return nil
		}
		var p *permanent
		if errors.As(err, &p) {
			return p.err
		}
		if !shouldRetry(err) {
			return err
		}
		if attempt >= attempts {
			if attempts == 1 {
				return err
			}
			return fmt.Errorf("%w: %d attempts, last error: %w", errUtils.ErrRetryExhausted, attempts, err)
		}

		delay := e.delay(attempt)
		log.Debug("Retrying", "attempt", attempt, "delay", delay, "error", err)

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", errUtils.ErrRetryCancelled, ctx.Err())
		case <-time.After(delay):
		}
	}
}

const (
	jitterFlipChance = 0.5
	jitterFraction   = 0.1
)

// delay is the wait before attempt+1.
func (e *Executor) delay(attempt int) time.Duration {
	var d time.Duration
	switch e.config.BackoffStrategy {
	case schema.BackoffLinear:
		d = time.Duration(float64(e.config.InitialDelay) * float64(attempt))
	case schema.BackoffExponential:
		multiplier := e.config.Multiplier
		if multiplier <= 0 {
			multiplier = defaultMultiplier
		}
		d = time.Duration(float64(e.config.InitialDelay) * math.Pow(multiplier, float64(attempt-1)))
	default:
		d = e.config.InitialDelay
	}

	if e.config.MaxDelay > 0 && d > e.config.MaxDelay {
		d = e.config.MaxDelay
	}

	if e.config.RandomJitter {
		jitter := time.Duration(e.rand.Float64() * float64(d) * jitterFraction)
		if e.rand.Float64() < jitterFlipChance {
			d += jitter
		} else {
			d -= jitter
		}
	}
	return max(d, 0)
}

// Validate rejects configurations that cannot run.
func Validate(config *schema.RetryConfig) error {
	if config == nil {
		return nil
	}
	switch {
	case config.MaxAttempts < 0:
		return fmt.Errorf("%w: max_attempts must not be negative", errUtils.ErrInvalidRetryConfig)
	case config.InitialDelay < 0 || config.MaxDelay < 0 || config.MaxElapsedTime < 0:
		return fmt.Errorf("%w: durations must not be negative", errUtils.ErrInvalidRetryConfig)
	case config.Multiplier < 0:
		return fmt.Errorf("%w: multiplier must not be negative", errUtils.ErrInvalidRetryConfig)
	}
	switch config.BackoffStrategy {
	case "", schema.BackoffConstant, schema.BackoffLinear, schema.BackoffExponential:
		return nil
	}
	return fmt.Errorf("%w: unknown backoff strategy '%s'", errUtils.ErrInvalidRetryConfig, config.BackoffStrategy)
}

// Do runs fn with config, or once when config is nil.
func Do(ctx context.Context, config *schema.RetryConfig, fn Func) error {
	return WithPredicate(ctx, config, fn, RetryOnAnyError)
}

// WithPredicate is Do restricted to the errors shouldRetry accepts.
func WithPredicate(ctx context.Context, config *schema.RetryConfig, fn Func, shouldRetry func(error) bool) error {
	if err := Validate(config); err != nil {
		return err
	}
	c := schema.RetryConfig{MaxAttempts: 1}
	if config != nil {
		c = *config
	}
	return New(c).ExecuteWithPredicate(ctx, fn, shouldRetry)
}

const (
	defaultMaxAttempts    = 3
	defaultInitialDelay   = 100 * time.Millisecond
	defaultMaxDelay       = 5 * time.Second
	defaultMaxElapsedTime = 2 * time.Minute
	defaultMultiplier     = 2.0
)

// DefaultConfig is used for publish checks when none is configured.
func DefaultConfig() schema.RetryConfig {
	return schema.RetryConfig{
		MaxAttempts:     defaultMaxAttempts,
		BackoffStrategy: schema.BackoffExponential,
		InitialDelay:    defaultInitialDelay,
		MaxDelay:        defaultMaxDelay,
		RandomJitter:    true,
		Multiplier:      defaultMultiplier,
		MaxElapsedTime:  defaultMaxElapsedTime,
	}
}

// RetryOnAnyError retries every non-permanent error.
var RetryOnAnyError = func(error) bool { return true }
