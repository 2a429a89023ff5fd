package grader

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestOpenAIClient_Grade(t *testing.T) {
	var got chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("unexpected authorization header %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"等级：B"},"finish_reason":"stop"}]}`))
	}))
	defer server.Close()

	c := NewOpenAIClient(server.URL+"/", "sk-test", "", time.Second)
	out, err := c.Grade(context.Background(), "system prompt", "payload")
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}
	if out != "等级：B" {
		t.Errorf("unexpected response %q", out)
	}
	if got.Model != DefaultOpenAIModel {
		t.Errorf("expected default model %q, got %q", DefaultOpenAIModel, got.Model)
	}
	if got.Stream {
		t.Error("expected non-streaming request")
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[0].Content != "system prompt" ||
		got.Messages[1].Role != "user" || got.Messages[1].Content != "payload" {
		t.Errorf("unexpected messages %+v", got.Messages)
	}
}

func TestOpenAIClient_StatusClassification(t *testing.T) {
	tests := []struct {
		status    int
		retryable bool
	}{
		{http.StatusTooManyRequests, true},
		{http.StatusBadGateway, true},
		{http.StatusUnauthorized, false},
		{http.StatusBadRequest, false},
	}
	for _, tt := range tests {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			w.Write([]byte(`{"error":{"message":"nope"}}`))
		}))
		c := NewOpenAIClient(server.URL, "k", "m", time.Second)
		_, err := c.Grade(context.Background(), "s", "p")
		server.Close()
		if err == nil {
			t.Fatalf("status %d: expected error", tt.status)
		}
		if IsRetryable(err) != tt.retryable {
			t.Errorf("status %d: retryable=%v, want %v (%v)", tt.status, IsRetryable(err), tt.retryable, err)
		}
	}
}

func TestOpenAIClient_ErrorBodies(t *testing.T) {
	tests := map[string]string{
		"api error":     `{"error":{"message":"invalid model"}}`,
		"empty choices": `{"choices":[]}`,
		"not json":      `<html>oops</html>`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(body))
			}))
			defer server.Close()

			c := NewOpenAIClient(server.URL, "k", "m", time.Second)
			if _, err := c.Grade(context.Background(), "s", "p"); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestOpenAIClient_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := NewOpenAIClient(server.URL, "k", "m", 5*time.Second)
	_, err := c.Grade(ctx, "s", "p")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestOpenAIClient_Defaults(t *testing.T) {
	c := NewOpenAIClient("", "", "", 0)
	if c.baseURL != DefaultOpenAIBaseURL {
		t.Errorf("expected base URL %q, got %q", DefaultOpenAIBaseURL, c.baseURL)
	}
	if c.Model() != DefaultOpenAIModel {
		t.Errorf("expected model %q, got %q", DefaultOpenAIModel, c.Model())
	}
	if !strings.HasPrefix(c.baseURL, "https://") {
		t.Errorf("expected https base URL")
	}
}
