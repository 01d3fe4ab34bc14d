// Package ollama provides the Ollama backend adapter for locally hosted
// open-source models.
package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ollama/ollama/api"

	"workbench/pkg/llm"
)

// Client wraps the Ollama API client to implement llm.Client.
type Client struct {
	client *api.Client
	model  string
}

// NewClient creates a new Ollama backend client. hostURL is the Ollama
// server URL (e.g., "http://localhost:11434").
func NewClient(hostURL, model string) *Client {
	parsed, err := url.Parse(hostURL)
	if err != nil || hostURL == "" {
		parsed, _ = url.Parse("http://localhost:11434")
	}
	return &Client{
		client: api.NewClient(parsed, http.DefaultClient),
		model:  model,
	}
}

func convertMessages(messages []llm.CompletionMessage) []api.Message {
	out := make([]api.Message, 0, len(messages))
	for i := range messages {
		msg := &messages[i]
		out = append(out, api.Message{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}
	return out
}

// Complete implements llm.Client.
func (c *Client) Complete(ctx context.Context, in llm.CompletionRequest) (llm.CompletionResponse, error) {
	stream := false
	req := &api.ChatRequest{
		Model:    c.model,
		Messages: convertMessages(in.Messages),
		Stream:   &stream,
		Options: map[string]any{
			"temperature": in.Temperature,
			"num_predict": in.MaxTokens,
		},
	}

	var response api.ChatResponse
	if err := c.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		response = resp
		return nil
	}); err != nil {
		return llm.CompletionResponse{}, fmt.Errorf("ollama completion failed: %w", err)
	}

	return llm.CompletionResponse{
		Content:    response.Message.Content,
		StopReason: response.DoneReason,
	}, nil
}

// Stream implements llm.Client using Ollama's native streaming callback.
func (c *Client) Stream(ctx context.Context, in llm.CompletionRequest) (<-chan llm.StreamChunk, error) {
	stream := true
	req := &api.ChatRequest{
		Model:    c.model,
		Messages: convertMessages(in.Messages),
		Stream:   &stream,
		Options: map[string]any{
			"temperature": in.Temperature,
			"num_predict": in.MaxTokens,
		},
	}

	ch := make(chan llm.StreamChunk)
	go func() {
		defer close(ch)
		err := c.client.Chat(ctx, req, func(resp api.ChatResponse) error {
			if resp.Message.Content != "" {
				ch <- llm.StreamChunk{Content: resp.Message.Content}
			}
			return nil
		})
		if err != nil {
			ch <- llm.StreamChunk{Error: fmt.Errorf("ollama stream failed: %w", err)}
			return
		}
		ch <- llm.StreamChunk{Done: true}
	}()
	return ch, nil
}

// ModelName returns the model name for this client.
func (c *Client) ModelName() string {
	return c.model
}
