// Package gemini provides the Google Gemini backend adapter.
package gemini

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/genai"

	"workbench/pkg/llm"
)

// Client wraps the Google GenAI client to implement llm.Client.
// The underlying SDK client requires a context to construct, so it is
// created lazily on first use. One Client is shared across concurrent
// requests; the init is guarded so only the first call constructs.
type Client struct {
	client  *genai.Client
	initErr error
	once    sync.Once
	apiKey  string
	model   string
}

// NewClient creates a new Gemini backend client.
func NewClient(apiKey, model string) *Client {
	return &Client{
		apiKey: apiKey,
		model:  model,
	}
}

func (c *Client) ensureClient(ctx context.Context) error {
	c.once.Do(func() {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  c.apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			c.initErr = fmt.Errorf("failed to create Gemini client: %w", err)
			return
		}
		c.client = client
	})
	return c.initErr
}

func convertMessages(messages []llm.CompletionMessage) (contents []*genai.Content, systemInstruction string) {
	var systemParts []string
	for i := range messages {
		msg := &messages[i]
		switch msg.Role {
		case llm.RoleSystem:
			systemParts = append(systemParts, msg.Content)
		case llm.RoleAssistant:
			contents = append(contents, &genai.Content{
				Role:  genai.RoleModel,
				Parts: []*genai.Part{{Text: msg.Content}},
			})
		default:
			contents = append(contents, &genai.Content{
				Role:  genai.RoleUser,
				Parts: []*genai.Part{{Text: msg.Content}},
			})
		}
	}
	return contents, strings.Join(systemParts, "\n\n")
}

// Complete implements llm.Client.
func (c *Client) Complete(ctx context.Context, in llm.CompletionRequest) (llm.CompletionResponse, error) {
	if err := c.ensureClient(ctx); err != nil {
		return llm.CompletionResponse{}, err
	}

	contents, systemInstruction := convertMessages(in.Messages)
	//nolint:gosec // MaxTokens validated at config load, overflow not reachable
	config := &genai.GenerateContentConfig{
		Temperature:     &in.Temperature,
		MaxOutputTokens: int32(in.MaxTokens),
	}
	if systemInstruction != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: systemInstruction}},
		}
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return llm.CompletionResponse{}, fmt.Errorf("gemini completion failed: %w", err)
	}
	if result == nil {
		return llm.CompletionResponse{}, fmt.Errorf("empty response from Gemini API")
	}

	stopReason := ""
	if len(result.Candidates) > 0 {
		stopReason = string(result.Candidates[0].FinishReason)
	}
	return llm.CompletionResponse{
		Content:    result.Text(),
		StopReason: stopReason,
	}, nil
}

// Stream implements llm.Client. The adapter completes the full block and
// re-chunks it; incremental transport is not wired for this backend.
func (c *Client) Stream(ctx context.Context, in llm.CompletionRequest) (<-chan llm.StreamChunk, error) {
	ch := make(chan llm.StreamChunk, 1)
	go func() {
		defer close(ch)
		resp, err := c.Complete(ctx, in)
		if err != nil {
			ch <- llm.StreamChunk{Error: err}
			return
		}
		for chunk := range llm.BlockStream(resp.Content, llm.BlockChunkSize) {
			ch <- chunk
		}
	}()
	return ch, nil
}

// ModelName returns the model name for this client.
func (c *Client) ModelName() string {
	return c.model
}
