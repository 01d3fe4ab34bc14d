// Package llm provides the chat backend contract consumed by the
// orchestrator, plus helpers shared by backend adapters.
package llm

import (
	"context"
	"fmt"
)

// CompletionRole represents the role of a message in a conversation.
type CompletionRole string

const (
	// RoleSystem indicates a system message that provides instructions or context.
	RoleSystem CompletionRole = "system"
	// RoleUser indicates a message from the human user.
	RoleUser CompletionRole = "user"
	// RoleAssistant indicates a message from the AI assistant.
	RoleAssistant CompletionRole = "assistant"
)

const (
	// TemperatureDefault is the default temperature for planning, review,
	// and judgment calls.
	TemperatureDefault = 0.3

	// BlockChunkSize is the fixed window used when re-chunking block-mode
	// completions into token events. Purely a presentation shim so callers
	// observe the same typewriter contract regardless of backend capability.
	BlockChunkSize = 50
)

// CompletionMessage represents a message in a completion request.
type CompletionMessage struct {
	Content string
	Role    CompletionRole
}

// CompletionRequest represents a request to generate a completion.
type CompletionRequest struct {
	Messages    []CompletionMessage
	MaxTokens   int
	Temperature float32
}

// CompletionResponse represents a response from a completion request.
type CompletionResponse struct {
	Content    string
	StopReason string
}

// StreamChunk represents a chunk of streamed completion response.
type StreamChunk struct {
	Error   error
	Content string
	Done    bool
}

// Client defines the interface for chat backend interactions. Adapters
// without native streaming implement Stream by completing the full block
// and re-chunking it through BlockStream, so callers never branch on
// backend capability.
type Client interface {
	// Complete generates a completion synchronously.
	Complete(ctx context.Context, in CompletionRequest) (CompletionResponse, error)

	// Stream generates a completion as an ordered stream of chunks
	// terminating in a Done chunk.
	Stream(ctx context.Context, in CompletionRequest) (<-chan StreamChunk, error)

	// ModelName returns the model name for this client.
	ModelName() string
}

// NewCompletionRequest creates a completion request with default values.
func NewCompletionRequest(messages []CompletionMessage) CompletionRequest {
	return CompletionRequest{
		Messages:    messages,
		MaxTokens:   4096,
		Temperature: TemperatureDefault,
	}
}

// NewSystemMessage creates a new system message.
func NewSystemMessage(content string) CompletionMessage {
	return CompletionMessage{Role: RoleSystem, Content: content}
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) CompletionMessage {
	return CompletionMessage{Role: RoleUser, Content: content}
}

// BlockStream re-chunks a complete text block into fixed-size stream
// chunks followed by a Done chunk. Used by adapters whose transports lack
// incremental delivery.
func BlockStream(text string, chunkSize int) <-chan StreamChunk {
	if chunkSize <= 0 {
		chunkSize = BlockChunkSize
	}
	ch := make(chan StreamChunk)
	go func() {
		defer close(ch)
		for start := 0; start < len(text); start += chunkSize {
			end := start + chunkSize
			if end > len(text) {
				end = len(text)
			}
			ch <- StreamChunk{Content: text[start:end]}
		}
		ch <- StreamChunk{Done: true}
	}()
	return ch
}

// Config represents configuration for a backend client.
type Config struct {
	APIKey      string
	ModelName   string
	Host        string // Ollama host; ignored by hosted backends
	MaxTokens   int
	Temperature float32
}

// Validate validates the backend configuration.
func (c *Config) Validate() error {
	if c.ModelName == "" {
		return fmt.Errorf("model name cannot be empty")
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max tokens must be positive")
	}
	if c.Temperature < 0.0 || c.Temperature > 2.0 {
		return fmt.Errorf("temperature must be between 0.0 and 2.0")
	}
	return nil
}
