package gemini

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"ai-storywriting-be/pkg/llm"
)

func newTestProvider(ts *httptest.Server) *GeminiProvider {
	p := NewGeminiProvider("test-key", "gemini-1.5-flash")
	p.BaseURL = ts.URL
	p.Client = ts.Client()
	return p
}

func TestGenerateReturnsText(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("x-goog-api-key"); got != "test-key" {
			t.Errorf("api key header = %q", got)
		}
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Hello "},{"text":"world"}],"role":"model"}}]}`))
	}))
	defer ts.Close()

	out, err := newTestProvider(ts).Generate(context.Background(), "say hello")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != "Hello world" {
		t.Errorf("out = %q, want %q", out, "Hello world")
	}
}

func TestGenerateClassifiesRateLimit(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"http 429", http.StatusTooManyRequests, `{"error":{"code":429,"message":"slow down","status":"RESOURCE_EXHAUSTED"}}`},
		{"resource exhausted on 403", http.StatusForbidden, `{"error":{"code":403,"message":"quota","status":"RESOURCE_EXHAUSTED"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Retry-After", "9")
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer ts.Close()

			_, err := newTestProvider(ts).Generate(context.Background(), "hi")
			if !llm.IsRateLimit(err) {
				t.Fatalf("err = %v, want rate-limit class", err)
			}
		})
	}
}

func TestGenerateOtherStatusIsPlainError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":400,"message":"bad request","status":"INVALID_ARGUMENT"}}`))
	}))
	defer ts.Close()

	_, err := newTestProvider(ts).Generate(context.Background(), "hi")
	if err == nil {
		t.Fatal("expected an error")
	}
	if llm.IsRateLimit(err) {
		t.Errorf("400 misclassified as rate limit: %v", err)
	}
}

func TestGenerateEmptyCandidatesIsEmptyText(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer ts.Close()

	out, err := newTestProvider(ts).Generate(context.Background(), "hi")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != "" {
		t.Errorf("out = %q, want empty", out)
	}
}
