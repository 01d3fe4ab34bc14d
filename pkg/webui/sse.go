package webui

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"workbench/pkg/proto"
)

// heartbeatInterval paces SSE comment lines that keep intermediaries
// from closing an idle stream during long model calls.
const heartbeatInterval = 15 * time.Second

// sseWriter serializes run events onto a text/event-stream response.
// Each event is flushed immediately; buffering would break the ordered
// delivery contract. Writes are serialized with a mutex because the
// heartbeat ticker runs on its own goroutine.
type sseWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
	mu      sync.Mutex
}

func newSSEWriter(w http.ResponseWriter) (*sseWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming unsupported by response writer")
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	return &sseWriter{w: w, flusher: flusher}, nil
}

// Send implements events.Sink.
func (s *sseWriter) Send(event proto.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to serialize %s event: %w", event.Type, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event.Type, data); err != nil {
		return fmt.Errorf("failed to write SSE frame: %w", err)
	}
	s.flusher.Flush()
	return nil
}

// heartbeat writes an SSE comment line. Comment frames are ignored by
// EventSource clients.
func (s *sseWriter) heartbeat() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := fmt.Fprint(s.w, ": heartbeat\n\n"); err != nil {
		return
	}
	s.flusher.Flush()
}
