package stream

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
)

// SSESink delivers events over a text/event-stream response. Writes are
// serialized because the keep-alive ticker and room broadcasts share the sink.
type SSESink struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
	closed  bool
}

// NewSSESink prepares an SSE response on w. It returns an error if the
// ResponseWriter cannot stream.
func NewSSESink(w http.ResponseWriter) (*SSESink, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("response writer does not support streaming")
	}
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-store")
	h.Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "\n")
	flusher.Flush()
	return &SSESink{w: w, flusher: flusher}, nil
}

// Send writes one event in SSE framing and flushes it.
func (s *SSESink) Send(event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("sink closed")
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// Close marks the sink unusable. The underlying connection is owned by the
// HTTP handler and closes when it returns.
func (s *SSESink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
