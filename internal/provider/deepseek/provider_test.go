package deepseek

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	openaiapi "github.com/codevault-app/codevault/internal/api/openai"
	"github.com/codevault-app/codevault/internal/domain"
)

func TestProvider_Complete(t *testing.T) {
	var captured openaiapi.ChatCompletionRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}

		json.NewEncoder(w).Encode(openaiapi.ChatCompletionResponse{
			Choices: []openaiapi.Choice{
				{Message: openaiapi.ChatMessage{Role: "assistant", Content: "done"}},
			},
		})
	}))
	defer srv.Close()

	p := New("test-key", WithBaseURL(srv.URL))

	text, err := p.Complete(context.Background(), &domain.CompletionRequest{
		System: "You build websites.",
		Prompt: "make it",
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if text != "done" {
		t.Errorf("Complete() = %q", text)
	}

	if captured.Model != "deepseek-chat" {
		t.Errorf("model = %q", captured.Model)
	}
	if len(captured.Messages) != 2 || captured.Messages[0].Role != "system" {
		t.Errorf("messages = %+v", captured.Messages)
	}
}

func TestProvider_Name(t *testing.T) {
	if got := New("k").Name(); got != "deepseek" {
		t.Errorf("Name() = %q", got)
	}
}

func TestProvider_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"invalid api key","type":"authentication_error"}}`))
	}))
	defer srv.Close()

	p := New("bad-key", WithBaseURL(srv.URL))

	_, err := p.Complete(context.Background(), &domain.CompletionRequest{Prompt: "hi"})
	apiErr, ok := domain.AsAPIError(err)
	if !ok {
		t.Fatalf("error is not an APIError: %v", err)
	}
	if apiErr.Type != domain.ErrorTypeUpstream || apiErr.Provider != "deepseek" {
		t.Errorf("error = %v", apiErr)
	}
	if apiErr.Message != "invalid api key" {
		t.Errorf("error message = %q", apiErr.Message)
	}
}
