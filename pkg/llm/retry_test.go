package llm

import (
	"context"
	"errors"
	"testing"
	"time"
)

// scriptedProvider returns the queued results in order, then repeats the
// final one.
type scriptedProvider struct {
	texts []string
	errs  []error
	calls int
}

func (s *scriptedProvider) step() (string, error) {
	i := s.calls
	if i >= len(s.errs) {
		i = len(s.errs) - 1
	}
	s.calls++
	return s.texts[i], s.errs[i]
}

func (s *scriptedProvider) Chat(ctx context.Context, history []Message, opts ...Option) (string, error) {
	return s.step()
}

func (s *scriptedProvider) Generate(ctx context.Context, prompt string, opts ...Option) (string, error) {
	return s.step()
}

func fastRetryConfig() RetryConfig {
	return RetryConfig{Attempts: 3, MinWait: time.Millisecond, MaxWait: 4 * time.Millisecond}
}

func TestRetryRecoversFromRateLimit(t *testing.T) {
	rateLimited := &RateLimitError{Provider: "test", Err: errors.New("429")}
	inner := &scriptedProvider{
		texts: []string{"", "recovered"},
		errs:  []error{rateLimited, nil},
	}

	p := NewRetryingProvider(inner, fastRetryConfig(), nil)
	out, err := p.Generate(context.Background(), "prompt")

	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != "recovered" {
		t.Errorf("out = %q, want %q", out, "recovered")
	}
	if inner.calls != 2 {
		t.Errorf("calls = %d, want 2", inner.calls)
	}
}

func TestRetryStopsAfterConfiguredAttempts(t *testing.T) {
	rateLimited := &RateLimitError{Provider: "test", Err: errors.New("429")}
	inner := &scriptedProvider{
		texts: []string{""},
		errs:  []error{rateLimited},
	}

	p := NewRetryingProvider(inner, fastRetryConfig(), nil)
	_, err := p.Generate(context.Background(), "prompt")

	if err == nil {
		t.Fatal("expected failure after exhausting attempts")
	}
	if !IsRateLimit(err) {
		t.Errorf("final error lost its rate-limit class: %v", err)
	}
	if inner.calls != 3 {
		t.Errorf("calls = %d, want 3 (total attempts)", inner.calls)
	}
}

func TestRetryDoesNotRetryOtherFailures(t *testing.T) {
	boom := errors.New("model not found")
	inner := &scriptedProvider{
		texts: []string{""},
		errs:  []error{boom},
	}

	p := NewRetryingProvider(inner, fastRetryConfig(), nil)
	_, err := p.Generate(context.Background(), "prompt")

	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want the original failure", err)
	}
	if inner.calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry)", inner.calls)
	}
}

func TestRetryHonorsContextCancellation(t *testing.T) {
	rateLimited := &RateLimitError{Provider: "test", Err: errors.New("429")}
	inner := &scriptedProvider{
		texts: []string{""},
		errs:  []error{rateLimited},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewRetryingProvider(inner, RetryConfig{Attempts: 3, MinWait: time.Hour, MaxWait: time.Hour}, nil)
	start := time.Now()
	_, err := p.Generate(ctx, "prompt")

	if err == nil {
		t.Fatal("expected an error on canceled context")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("call blocked for %s despite canceled context", elapsed)
	}
}

func TestRetryCustomPredicate(t *testing.T) {
	transient := errors.New("connection reset")
	inner := &scriptedProvider{
		texts: []string{"", "ok"},
		errs:  []error{transient, nil},
	}

	p := NewRetryingProvider(inner, fastRetryConfig(), nil).
		WithRetryable(func(err error) bool { return errors.Is(err, transient) })

	out, err := p.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if out != "ok" {
		t.Errorf("out = %q, want %q", out, "ok")
	}
	if inner.calls != 2 {
		t.Errorf("calls = %d, want 2", inner.calls)
	}
}
