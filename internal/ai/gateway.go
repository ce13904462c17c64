// Package ai provides a provider-agnostic gateway for the narrative text shown
// alongside assessment results.
package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrUnauthorized marks provider rejections caused by a missing or invalid
// API key.
var ErrUnauthorized = errors.New("ai provider rejected credentials")

// statusError builds the error for a non-200 provider response.
func statusError(provider string, status int, body []byte) error {
	err := fmt.Errorf("%s api error (status %d): %s", provider, status, string(body))
	if status == http.StatusUnauthorized || status == http.StatusForbidden ||
		strings.Contains(string(body), "API key not valid") {
		return fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	return err
}

// TaskType defines the kind of AI task for routing and budgeting.
type TaskType int

const (
	TaskGuidance TaskType = iota
	TaskInsight
)

func (t TaskType) String() string {
	switch t {
	case TaskGuidance:
		return "guidance"
	case TaskInsight:
		return "insight"
	default:
		return "unknown"
	}
}

// Message represents a chat message. Role is "system", "user" or "assistant".
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is the input to an AI completion.
type CompletionRequest struct {
	Messages    []Message `json:"messages"`
	Model       string    `json:"model,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
	Task        TaskType  `json:"task,omitempty"`
}

// CompletionResponse is the output from an AI completion.
type CompletionResponse struct {
	Content      string `json:"content"`
	Model        string `json:"model"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
}

// TotalTokens returns the sum of input and output tokens.
func (r CompletionResponse) TotalTokens() int {
	return r.InputTokens + r.OutputTokens
}

// StreamChunk represents a streaming response chunk. The final chunk has
// Done set; a chunk with Error ends the stream.
type StreamChunk struct {
	Content string
	Done    bool
	Error   error
}

// ModelInfo describes an available model.
type ModelInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	MaxTokens   int    `json:"max_tokens"`
	Description string `json:"description"`
}

// Provider is the interface all AI providers must implement.
type Provider interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
	StreamComplete(ctx context.Context, req CompletionRequest) (<-chan StreamChunk, error)
	Models() []ModelInfo
	HealthCheck(ctx context.Context) error
}

// Collect drains a stream into a single string. It returns the text received
// before the first error along with that error.
func Collect(ctx context.Context, ch <-chan StreamChunk) (string, error) {
	var out []byte
	for {
		select {
		case <-ctx.Done():
			return string(out), ctx.Err()
		case chunk, ok := <-ch:
			if !ok {
				return string(out), nil
			}
			if chunk.Error != nil {
				return string(out), chunk.Error
			}
			out = append(out, chunk.Content...)
			if chunk.Done {
				return string(out), nil
			}
		}
	}
}
