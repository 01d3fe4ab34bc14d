package webui

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"workbench/internal/mocks"
	"workbench/pkg/llm"
	"workbench/pkg/orchestrator"
	"workbench/pkg/prompts"
	"workbench/pkg/sandbox"
)

func newTestServer(t *testing.T, client llm.Client, passwordHash string) *Server {
	t.Helper()
	renderer, err := prompts.NewRenderer()
	require.NoError(t, err)
	sb, err := sandbox.New(t.TempDir(), sandbox.DefaultPolicy())
	require.NoError(t, err)
	return NewServer(":0", passwordHash, client, renderer, sb, nil, orchestrator.Config{})
}

func TestRunRejectsMissingGoal(t *testing.T) {
	server := newTestServer(t, mocks.NewMockLLMClient(), "")
	req := httptest.NewRequest(http.MethodPost, "/api/runs", strings.NewReader(`{"goal": ""}`))
	rec := httptest.NewRecorder()

	server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "goal is required")
	assert.NotContains(t, rec.Header().Get("Content-Type"), "text/event-stream")
}

func TestRunRejectsMissingBackend(t *testing.T) {
	server := newTestServer(t, nil, "")
	req := httptest.NewRequest(http.MethodPost, "/api/runs", strings.NewReader(`{"goal": "do things"}`))
	rec := httptest.NewRecorder()

	server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "no chat backend configured")
}

func TestRunStreamsEvents(t *testing.T) {
	client := mocks.NewMockLLMClient().WithResponses(
		"analysis",
		"plan",
		`[{"title":"A","description":"d","priority":"high"}]`,
		"summary",
		"```go\nfunc ok() {}\n```",
		"PASSED fine",
	)
	server := newTestServer(t, client, "")

	req := httptest.NewRequest(http.MethodPost, "/api/runs", strings.NewReader(`{"goal": "build it"}`))
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, "event: phase_change")
	assert.Contains(t, body, "event: token")
	assert.Contains(t, body, "event: task_complete")
	// The terminal event closes the stream.
	frames := strings.Split(strings.TrimSpace(body), "\n\n")
	assert.True(t, strings.HasPrefix(frames[len(frames)-1], "event: complete"), frames[len(frames)-1])
}

func TestRunClientDisconnectAborts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	client := mocks.NewMockLLMClient()
	client.StreamFunc = func(callCtx context.Context, _ llm.CompletionRequest) (<-chan llm.StreamChunk, error) {
		// Simulate the client going away mid-call. The chunk is held
		// back until the cancellation has propagated to the abort
		// watcher.
		cancel()
		ch := make(chan llm.StreamChunk)
		go func() {
			defer close(ch)
			<-callCtx.Done()
			time.Sleep(50 * time.Millisecond)
			ch <- llm.StreamChunk{Content: "late"}
			ch <- llm.StreamChunk{Done: true}
		}()
		return ch, nil
	}
	server := newTestServer(t, client, "")

	req := httptest.NewRequest(http.MethodPost, "/api/runs", strings.NewReader(`{"goal": "build it"}`)).WithContext(ctx)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	body := rec.Body.String()
	assert.Contains(t, body, "aborted by user")
	assert.NotContains(t, body, "event: complete\n")
}

func TestSandboxEndpoint(t *testing.T) {
	server := newTestServer(t, mocks.NewMockLLMClient(), "")

	payload := `{"id": "c1", "type": "get_preview", "args": {}}`
	req := httptest.NewRequest(http.MethodPost, "/api/sandbox", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var result sandbox.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "c1", result.ID)
	assert.True(t, result.Success)
}

func TestSandboxEndpointRejectsTraversal(t *testing.T) {
	server := newTestServer(t, mocks.NewMockLLMClient(), "")

	payload := `{"id": "c2", "type": "read_file", "args": {"path": "../../etc/passwd"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/sandbox", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var result sandbox.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "path traversal")
}

func TestLogsEndpoint(t *testing.T) {
	server := newTestServer(t, mocks.NewMockLLMClient(), "")

	req := httptest.NewRequest(http.MethodGet, "/api/logs", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
}

func TestLogsEndpointRejectsBadTimestamp(t *testing.T) {
	server := newTestServer(t, mocks.NewMockLLMClient(), "")

	req := httptest.NewRequest(http.MethodGet, "/api/logs?since=yesterday", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBasicAuth(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)
	server := newTestServer(t, mocks.NewMockLLMClient(), string(hash))

	req := httptest.NewRequest(http.MethodGet, "/api/logs", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/logs", nil)
	req.SetBasicAuth("anyone", "wrong")
	rec = httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/logs", nil)
	req.SetBasicAuth("anyone", "hunter2")
	rec = httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
