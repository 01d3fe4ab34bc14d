// Package mocks provides shared test doubles.
package mocks

import (
	"context"
	"sync"

	"workbench/pkg/llm"
)

// MockLLMClient implements llm.Client for testing.
// It provides configurable behavior for Complete and Stream operations.
type MockLLMClient struct {
	// CompleteFunc is called when Complete is invoked. Override to customize behavior.
	CompleteFunc func(ctx context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error)

	// StreamFunc is called when Stream is invoked. Override to customize behavior.
	StreamFunc func(ctx context.Context, req llm.CompletionRequest) (<-chan llm.StreamChunk, error)

	// CompleteCalls tracks all calls to Complete for verification.
	CompleteCalls []llm.CompletionRequest

	// StreamCalls tracks all calls to Stream for verification.
	StreamCalls []llm.CompletionRequest

	modelName string

	mu sync.Mutex
}

// NewMockLLMClient creates a mock client whose Complete returns a fixed
// response and whose Stream re-chunks that response as a block.
func NewMockLLMClient() *MockLLMClient {
	m := &MockLLMClient{modelName: "mock-model"}

	m.CompleteFunc = func(_ context.Context, _ llm.CompletionRequest) (llm.CompletionResponse, error) {
		return llm.CompletionResponse{Content: "Mock response", StopReason: "end_turn"}, nil
	}

	m.StreamFunc = func(ctx context.Context, req llm.CompletionRequest) (<-chan llm.StreamChunk, error) {
		resp, err := m.CompleteFunc(ctx, req)
		if err != nil {
			return nil, err
		}
		return llm.BlockStream(resp.Content, llm.BlockChunkSize), nil
	}

	return m
}

// WithResponses configures Complete to return each response in order,
// repeating the last one once exhausted.
func (m *MockLLMClient) WithResponses(responses ...string) *MockLLMClient {
	var idx int
	m.CompleteFunc = func(_ context.Context, _ llm.CompletionRequest) (llm.CompletionResponse, error) {
		m.mu.Lock()
		defer m.mu.Unlock()
		content := responses[len(responses)-1]
		if idx < len(responses) {
			content = responses[idx]
			idx++
		}
		return llm.CompletionResponse{Content: content, StopReason: "end_turn"}, nil
	}
	return m
}

// Complete implements llm.Client.
func (m *MockLLMClient) Complete(ctx context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error) {
	m.mu.Lock()
	m.CompleteCalls = append(m.CompleteCalls, req)
	m.mu.Unlock()
	return m.CompleteFunc(ctx, req)
}

// Stream implements llm.Client.
func (m *MockLLMClient) Stream(ctx context.Context, req llm.CompletionRequest) (<-chan llm.StreamChunk, error) {
	m.mu.Lock()
	m.StreamCalls = append(m.StreamCalls, req)
	m.mu.Unlock()
	return m.StreamFunc(ctx, req)
}

// ModelName implements llm.Client.
func (m *MockLLMClient) ModelName() string {
	return m.modelName
}

// CallCount returns the total number of Complete and Stream calls.
func (m *MockLLMClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.CompleteCalls) + len(m.StreamCalls)
}
