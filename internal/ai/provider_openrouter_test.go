package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOpenRouterProvider_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer or-key" {
			t.Errorf("unexpected auth header: %s", r.Header.Get("Authorization"))
		}
		if r.Header.Get("HTTP-Referer") == "" || r.Header.Get("X-Title") != "Risk Snapshot" {
			t.Errorf("missing attribution headers: referer=%q title=%q",
				r.Header.Get("HTTP-Referer"), r.Header.Get("X-Title"))
		}

		var req openaiRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Model != "qwen/qwen-2.5-72b-instruct" {
			t.Errorf("model = %q, want qwen/qwen-2.5-72b-instruct", req.Model)
		}

		fmt.Fprint(w, `{"model":"qwen/qwen-2.5-72b-instruct","choices":[{"message":{"content":"OpenRouter response"}}],"usage":{"prompt_tokens":7,"completion_tokens":3}}`)
	}))
	defer server.Close()

	provider := NewOpenRouterProvider("or-key", WithOpenRouterBaseURL(server.URL))
	resp, err := provider.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: "user", Content: "hello"}},
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Content != "OpenRouter response" {
		t.Errorf("content = %q, want %q", resp.Content, "OpenRouter response")
	}
	if resp.TotalTokens() != 10 {
		t.Errorf("TotalTokens() = %d, want 10", resp.TotalTokens())
	}
}

func TestOpenRouterProvider_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"No auth credentials found"}}`)
	}))
	defer server.Close()

	provider := NewOpenRouterProvider("bad-key", WithOpenRouterBaseURL(server.URL))
	_, err := provider.Complete(context.Background(), CompletionRequest{})
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Complete() error = %v, want ErrUnauthorized", err)
	}
}

func TestOpenRouterProvider_StreamComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req openaiRequest
		json.NewDecoder(r.Body).Decode(&req)
		if !req.Stream {
			t.Error("StreamComplete() should request a stream")
		}
		if req.Model != "meta-llama/llama-3.1-70b-instruct" {
			t.Errorf("model = %q, want the configured model", req.Model)
		}

		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"Review \"}}]}\n\n")
		fmt.Fprint(w, ": OPENROUTER PROCESSING\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"controls quarterly.\"}}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	provider := NewOpenRouterProvider("or-key",
		WithOpenRouterBaseURL(server.URL),
		WithOpenRouterModel("meta-llama/llama-3.1-70b-instruct"),
	)
	ch, err := provider.StreamComplete(context.Background(), CompletionRequest{})
	if err != nil {
		t.Fatalf("StreamComplete() error = %v", err)
	}
	got, err := Collect(context.Background(), ch)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if got != "Review controls quarterly." {
		t.Errorf("streamed %q, want %q", got, "Review controls quarterly.")
	}
}

func TestOpenRouterProvider_HealthCheck(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{"healthy", http.StatusOK, false},
		{"unavailable", http.StatusServiceUnavailable, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/models" {
					t.Errorf("unexpected path: %s", r.URL.Path)
				}
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			provider := NewOpenRouterProvider("or-key", WithOpenRouterBaseURL(server.URL))
			err := provider.HealthCheck(context.Background())
			if (err != nil) != tt.wantErr {
				t.Errorf("HealthCheck() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
