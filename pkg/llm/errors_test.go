package llm

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"
)

func TestIsRateLimit(t *testing.T) {
	base := &RateLimitError{Provider: "gemini", Err: errors.New("quota exceeded")}

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"direct", base, true},
		{"wrapped once", fmt.Errorf("completion failed: %w", base), true},
		{"wrapped twice", fmt.Errorf("outer: %w", fmt.Errorf("inner: %w", base)), true},
		{"plain error", errors.New("quota exceeded"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRateLimit(tt.err); got != tt.want {
				t.Errorf("IsRateLimit = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRateLimitErrorUnwrap(t *testing.T) {
	cause := errors.New("too many requests")
	err := &RateLimitError{Provider: "ollama", RetryAfter: 7 * time.Second, Err: cause}

	if !errors.Is(err, cause) {
		t.Error("Unwrap lost the cause")
	}
	if msg := err.Error(); msg == "" {
		t.Error("empty error message")
	}
}

func TestRetryAfterFromHeader(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{"seconds", "12", 12 * time.Second},
		{"missing", "", 0},
		{"http date ignored", "Wed, 21 Oct 2015 07:28:00 GMT", 0},
		{"negative ignored", "-3", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			if tt.value != "" {
				h.Set("Retry-After", tt.value)
			}
			if got := RetryAfterFromHeader(h); got != tt.want {
				t.Errorf("RetryAfterFromHeader = %v, want %v", got, tt.want)
			}
		})
	}
}
