// internal/server/sse.go
package server

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// sseStream writes Server-Sent Events, flushing after every event so the
// browser sees updates as they happen.
type sseStream struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// newSSEStream sets the streaming headers and returns the writer, or an
// error when the ResponseWriter cannot flush.
func newSSEStream(w http.ResponseWriter) (*sseStream, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming unsupported by response writer")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // disable nginx buffering

	return &sseStream{w: w, flusher: flusher}, nil
}

// send writes one event: <name>\ndata: <json>\n\n and flushes.
func (s *sseStream) send(event string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}
