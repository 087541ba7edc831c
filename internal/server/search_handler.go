// internal/server/search_handler.go
package server

import (
	"context"
	"net/http"
	"time"

	"askliberia/internal/common/errors"
	"askliberia/internal/common/metrics"
	"askliberia/internal/models"
)

const defaultSurface = "search"

// handleSearch streams one search run as SSE. Every aggregator update is a
// `snapshot` event; the terminal value is a `result` event. A newer request
// on the same surface supersedes this one: superseded runs stop emitting and
// their upstream stream is cancelled.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	query := models.Query{
		Text:     q.Get("q"),
		County:   q.Get("county"),
		Language: models.Language(q.Get("lang")),
	}
	if query.Text == "" {
		s.writeError(w, errors.NewValidationFailedError("q is required"))
		return
	}
	if query.Language == "" {
		query.Language = models.LanguageEnglish
	}
	if !query.Language.IsValid() {
		s.writeError(w, errors.NewInvalidLanguageError(string(query.Language)))
		return
	}
	if query.County != "" && !models.IsValidCounty(query.County) {
		s.writeError(w, errors.NewInvalidCountyError(query.County))
		return
	}

	surface := q.Get("surface")
	if surface == "" {
		surface = defaultSurface
	}
	token := s.gate(surface).Begin()

	if err := s.admin.LogSearch(r.Context(), query.Text, query.County, query.Language); err != nil {
		// Analytics never block the search itself.
		s.logger.Warn("search log write failed", map[string]interface{}{"error": err.Error()})
	}

	stream, err := newSSEStream(w)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	start := time.Now()
	final := s.knowledge.Search(ctx, query, func(snapshot models.Snapshot) {
		if !token.Live() {
			metrics.StaleSnapshotsDropped.Inc()
			cancel()
			return
		}
		if err := stream.send("snapshot", snapshot); err != nil {
			cancel()
		}
	})

	if !token.Live() {
		metrics.StaleSnapshotsDropped.Inc()
		s.recordRun(r.Context(), surface, "superseded", time.Since(start))
		return
	}
	s.recordRun(r.Context(), surface, "ok", time.Since(start))
	if err := stream.send("result", final); err != nil {
		s.logger.Warn("result event write failed", map[string]interface{}{"error": err.Error()})
	}
}
