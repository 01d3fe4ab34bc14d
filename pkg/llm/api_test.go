package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockStreamRoundTrip(t *testing.T) {
	text := strings.Repeat("abcdefghij", 13) // not a multiple of the chunk size

	var chunks []StreamChunk
	for chunk := range BlockStream(text, BlockChunkSize) {
		chunks = append(chunks, chunk)
	}

	require.NotEmpty(t, chunks)
	last := chunks[len(chunks)-1]
	assert.True(t, last.Done)
	assert.Empty(t, last.Content)

	var rebuilt strings.Builder
	for _, chunk := range chunks[:len(chunks)-1] {
		assert.LessOrEqual(t, len(chunk.Content), BlockChunkSize)
		rebuilt.WriteString(chunk.Content)
	}
	assert.Equal(t, text, rebuilt.String())
}

func TestBlockStreamEmptyText(t *testing.T) {
	var chunks []StreamChunk
	for chunk := range BlockStream("", BlockChunkSize) {
		chunks = append(chunks, chunk)
	}
	require.Len(t, chunks, 1)
	assert.True(t, chunks[0].Done)
}

func TestBlockStreamDefaultsChunkSize(t *testing.T) {
	text := strings.Repeat("x", BlockChunkSize+1)
	var contents []string
	for chunk := range BlockStream(text, 0) {
		if !chunk.Done {
			contents = append(contents, chunk.Content)
		}
	}
	assert.Len(t, contents, 2)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{ModelName: "m", MaxTokens: 100, Temperature: 0.5}, false},
		{"missing model", Config{MaxTokens: 100}, true},
		{"zero max tokens", Config{ModelName: "m"}, true},
		{"temperature too high", Config{ModelName: "m", MaxTokens: 10, Temperature: 2.5}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewCompletionRequestDefaults(t *testing.T) {
	req := NewCompletionRequest([]CompletionMessage{NewUserMessage("hi")})
	assert.Equal(t, 4096, req.MaxTokens)
	assert.InDelta(t, TemperatureDefault, req.Temperature, 0.001)
	require.Len(t, req.Messages, 1)
	assert.Equal(t, RoleUser, req.Messages[0].Role)
}
