// Package retry wraps a single remote operation with bounded retry and
// exponential backoff with jitter.
//
// Only errors classified as transient are retried. The last observed error is
// returned unchanged once the budget is spent, so callers can inspect it with
// errors.Is, errors.As or IsTransient.
package retry

import (
	"context"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"github.com/annamdevulanavyasrijanaki-blip/THE-NEW-YOU/internal/core/metrics"
)

// Config defines retry behavior.
type Config struct {
	// MaxAttempts is the total number of invocations, including the first.
	MaxAttempts int `yaml:"max_attempts"`
	// InitialDelay is the backoff before the second attempt (before jitter).
	InitialDelay time.Duration `yaml:"base_delay"`
	// BackoffMultiple is the geometric growth factor between attempts.
	BackoffMultiple float64 `yaml:"multiplier"`
	// MaxJitter bounds the uniform random delay added to every backoff.
	MaxJitter time.Duration `yaml:"max_jitter"`
	// MaxDelay caps the geometric part of the delay. Zero means uncapped.
	MaxDelay time.Duration `yaml:"max_delay"`

	// Name labels logs and metrics.
	Name string `yaml:"-"`
	// Classifier defaults to ClassifyError.
	Classifier Classifier `yaml:"-"`
	// Jitter returns a value in [0, limit). Defaults to a uniform source.
	Jitter func(limit time.Duration) time.Duration `yaml:"-"`
	// Sleep waits for d or until ctx is done. Defaults to a timer.
	Sleep func(ctx context.Context, d time.Duration) error `yaml:"-"`

	Logger *slog.Logger `yaml:"-"`
}

// DefaultConfig provides the policy used for generative AI calls.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:     5,
		InitialDelay:    2500 * time.Millisecond,
		BackoffMultiple: 2.0,
		MaxJitter:       1 * time.Second,
	}
}

// WithName returns a copy of c labelled for logs and metrics.
func (c Config) WithName(name string) Config {
	c.Name = name
	return c
}

func (c Config) normalized() Config {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 1
	}
	if c.BackoffMultiple < 1 {
		c.BackoffMultiple = 1
	}
	if c.InitialDelay < 0 {
		c.InitialDelay = 0
	}
	if c.MaxJitter < 0 {
		c.MaxJitter = 0
	}
	if c.Classifier == nil {
		c.Classifier = ClassifyError
	}
	if c.Jitter == nil {
		c.Jitter = uniformJitter
	}
	if c.Sleep == nil {
		c.Sleep = sleepContext
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Name == "" {
		c.Name = "operation"
	}
	return c
}

// Backoff returns the delay before attempt+1 without jitter.
func Backoff(attempt int, c Config) time.Duration {
	mult := c.BackoffMultiple
	if mult < 1 {
		mult = 1
	}
	delay := float64(c.InitialDelay) * math.Pow(mult, float64(attempt))
	if c.MaxDelay > 0 && delay > float64(c.MaxDelay) {
		delay = float64(c.MaxDelay)
	}
	if delay >= math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(delay)
}

// Do executes op until it succeeds, fails with a terminal error or the
// attempt budget is exhausted. Attempts never overlap. Retried operations
// must be safe to call again.
func Do[T any](ctx context.Context, cfg Config, op func(ctx context.Context) (T, error)) (T, error) {
	cfg = cfg.normalized()

	var zero T
	var lastErr error

	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if cfg.Classifier(err) != ClassRetryable {
			return zero, err
		}
		if attempt == cfg.MaxAttempts-1 {
			break
		}

		delay := Backoff(attempt, cfg)
		if cfg.MaxJitter > 0 {
			delay += cfg.Jitter(cfg.MaxJitter)
		}

		cfg.Logger.Warn("Transient failure, backing off",
			"operation", cfg.Name,
			"attempt", attempt+1,
			"max_attempts", cfg.MaxAttempts,
			"delay", delay,
			"error", err,
		)
		metrics.RetryAttemptsTotal.WithLabelValues(cfg.Name).Inc()

		if err := cfg.Sleep(ctx, delay); err != nil {
			return zero, err
		}
	}

	return zero, lastErr
}

// Run is Do for operations without a result.
func Run(ctx context.Context, cfg Config, op func(ctx context.Context) error) error {
	_, err := Do(ctx, cfg, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

func uniformJitter(limit time.Duration) time.Duration {
	if limit <= 0 {
		return 0
	}
	return time.Duration(rand.Int64N(int64(limit)))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
