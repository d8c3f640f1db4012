package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	openaiapi "github.com/codevault-app/codevault/internal/api/openai"
	"github.com/codevault-app/codevault/internal/domain"
	"github.com/codevault-app/codevault/internal/testutil"
)

func TestProvider_Complete(t *testing.T) {
	var captured openaiapi.ChatCompletionRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}

		json.NewEncoder(w).Encode(openaiapi.ChatCompletionResponse{
			Choices: []openaiapi.Choice{
				{Message: openaiapi.ChatMessage{Role: "assistant", Content: "```html\n<h1>Hi</h1>\n```"}},
			},
		})
	}))
	defer srv.Close()

	p := New("test-key", WithBaseURL(srv.URL))

	text, err := p.Complete(context.Background(), &domain.CompletionRequest{
		System: "You build websites.",
		History: []domain.Message{
			{Role: "user", Content: "earlier"},
			{Role: "assistant", Content: "reply"},
		},
		Prompt: "make a landing page",
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if text != "```html\n<h1>Hi</h1>\n```" {
		t.Errorf("Complete() = %q", text)
	}

	if captured.Model != "gpt-4" {
		t.Errorf("model = %q", captured.Model)
	}
	if captured.MaxTokens != 4000 {
		t.Errorf("max_tokens = %d", captured.MaxTokens)
	}
	if captured.Temperature == nil || *captured.Temperature != 0.7 {
		t.Errorf("temperature = %v", captured.Temperature)
	}

	// Ordering: system, history in chronological order, new prompt.
	wantRoles := []string{"system", "user", "assistant", "user"}
	if len(captured.Messages) != len(wantRoles) {
		t.Fatalf("got %d messages, want %d", len(captured.Messages), len(wantRoles))
	}
	for i, role := range wantRoles {
		if captured.Messages[i].Role != role {
			t.Errorf("message %d role = %q, want %q", i, captured.Messages[i].Role, role)
		}
	}
	if captured.Messages[3].Content != "make a landing page" {
		t.Errorf("final message = %q", captured.Messages[3].Content)
	}
}

func TestProvider_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"Rate limit reached","type":"rate_limit_error"}}`))
	}))
	defer srv.Close()

	p := New("test-key", WithBaseURL(srv.URL))

	_, err := p.Complete(context.Background(), &domain.CompletionRequest{Prompt: "hi"})
	if err == nil {
		t.Fatal("Complete() expected error")
	}

	apiErr, ok := domain.AsAPIError(err)
	if !ok {
		t.Fatalf("error is not an APIError: %v", err)
	}
	if apiErr.Type != domain.ErrorTypeUpstream {
		t.Errorf("error type = %q", apiErr.Type)
	}
	if apiErr.Provider != "gpt-4" {
		t.Errorf("error provider = %q", apiErr.Provider)
	}
	if apiErr.Message != "Rate limit reached" {
		t.Errorf("error message = %q, want upstream detail verbatim", apiErr.Message)
	}
}

func TestProvider_MissingContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"cmpl-1","choices":[]}`))
	}))
	defer srv.Close()

	p := New("test-key", WithBaseURL(srv.URL))

	_, err := p.Complete(context.Background(), &domain.CompletionRequest{Prompt: "hi"})
	apiErr, ok := domain.AsAPIError(err)
	if !ok {
		t.Fatalf("error is not an APIError: %v", err)
	}
	if apiErr.Type != domain.ErrorTypeUpstream || apiErr.Code != domain.ErrorCodeMissingContent {
		t.Errorf("error = %v, want upstream/missing_content", apiErr)
	}
}

func TestProvider_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	p := New("test-key", WithBaseURL(srv.URL))

	_, err := p.Complete(context.Background(), &domain.CompletionRequest{Prompt: "hi"})
	apiErr, ok := domain.AsAPIError(err)
	if !ok {
		t.Fatalf("error is not an APIError: %v", err)
	}
	if apiErr.Type != domain.ErrorTypeUpstream {
		t.Errorf("error type = %q", apiErr.Type)
	}
}

func TestProvider_Recorded(t *testing.T) {
	if os.Getenv("OPENAI_API_KEY") == "" && os.Getenv("VCR_MODE") == "record" {
		t.Skip("Skipping test: OPENAI_API_KEY not set")
	}

	rec, cleanup := testutil.NewVCRRecorder(t, "openai_complete")
	defer cleanup()

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		apiKey = "test-key"
	}

	p := New(apiKey, WithHTTPClient(testutil.VCRHTTPClient(rec)))

	text, err := p.Complete(context.Background(), &domain.CompletionRequest{
		Prompt: "Say hello",
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if text == "" {
		t.Error("expected completion text")
	}
}
