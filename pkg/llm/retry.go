package llm

import (
	"context"
	"log"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// RetryConfig controls how completion calls are retried. Attempts counts
// every call including the first one.
type RetryConfig struct {
	Attempts int
	MinWait  time.Duration
	MaxWait  time.Duration
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		Attempts: 3,
		MinWait:  5 * time.Second,
		MaxWait:  30 * time.Second,
	}
}

// Retryable decides whether a completion failure is worth another attempt.
type Retryable func(error) bool

// RetryingProvider wraps another provider and retries rate-limited calls
// with exponential backoff. It is the only component in the generation path
// that sleeps; callers above it never wait on their own.
type RetryingProvider struct {
	inner     LLMProvider
	cfg       RetryConfig
	retryable Retryable
	logger    *log.Logger
}

// Ensure RetryingProvider implements LLMProvider
var _ LLMProvider = &RetryingProvider{}

// NewRetryingProvider decorates inner with the retry policy. The default
// policy retries rate limits only; use WithRetryable to widen or narrow it.
// The logger may be nil.
func NewRetryingProvider(inner LLMProvider, cfg RetryConfig, logger *log.Logger) *RetryingProvider {
	if cfg.Attempts <= 0 {
		cfg.Attempts = DefaultRetryConfig().Attempts
	}
	if cfg.MinWait <= 0 {
		cfg.MinWait = DefaultRetryConfig().MinWait
	}
	if cfg.MaxWait < cfg.MinWait {
		cfg.MaxWait = cfg.MinWait
	}
	return &RetryingProvider{
		inner:     inner,
		cfg:       cfg,
		retryable: IsRateLimit,
		logger:    logger,
	}
}

// WithRetryable replaces the retry predicate and returns the provider for
// chaining.
func (r *RetryingProvider) WithRetryable(fn Retryable) *RetryingProvider {
	if fn != nil {
		r.retryable = fn
	}
	return r
}

func (r *RetryingProvider) Chat(ctx context.Context, history []Message, opts ...Option) (string, error) {
	return r.call(ctx, func() (string, error) {
		return r.inner.Chat(ctx, history, opts...)
	})
}

func (r *RetryingProvider) Generate(ctx context.Context, prompt string, opts ...Option) (string, error) {
	return r.call(ctx, func() (string, error) {
		return r.inner.Generate(ctx, prompt, opts...)
	})
}

func (r *RetryingProvider) call(ctx context.Context, send func() (string, error)) (string, error) {
	attempt := 0
	operation := func() (string, error) {
		attempt++
		out, err := send()
		if err == nil {
			return out, nil
		}
		if !r.retryable(err) {
			return "", backoff.Permanent(err)
		}
		if r.logger != nil {
			r.logger.Printf("[RETRY] Attempt %d/%d rejected: %v", attempt, r.cfg.Attempts, err)
		}
		return "", err
	}

	// Fixed ladder, no jitter: MinWait, MinWait*2, ... capped at MaxWait.
	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = r.cfg.MinWait
	expo.MaxInterval = r.cfg.MaxWait
	expo.Multiplier = 2
	expo.RandomizationFactor = 0

	out, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(expo),
		backoff.WithMaxTries(uint(r.cfg.Attempts)),
	)
	if err != nil {
		if r.logger != nil && attempt >= r.cfg.Attempts {
			r.logger.Printf("[RETRY] Giving up after %d attempts: %v", attempt, err)
		}
		return "", err
	}
	return out, nil
}
