// internal/server/chat_handler.go
package server

import (
	"context"
	"net/http"
	"time"

	"askliberia/internal/common/errors"
	"askliberia/internal/common/metrics"
	"askliberia/internal/models"
)

type chatRequest struct {
	History  []models.ChatTurn `json:"history"`
	Message  string            `json:"message"`
	Language models.Language   `json:"lang"`
}

// handleChat streams one assistant turn: `delta` events carry the
// accumulated reply text, the terminal `result` event the full reply. The
// chat surface has its own gate so a newly submitted turn supersedes a
// still-streaming one.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.Message == "" {
		s.writeError(w, errors.NewValidationFailedError("message is required"))
		return
	}
	if req.Language == "" {
		req.Language = models.LanguageEnglish
	}
	if !req.Language.IsValid() {
		s.writeError(w, errors.NewInvalidLanguageError(string(req.Language)))
		return
	}

	token := s.gate("chat").Begin()

	stream, err := newSSEStream(w)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	start := time.Now()
	reply := s.knowledge.SendTurn(ctx, req.History, req.Message, req.Language, func(partial string) {
		if !token.Live() {
			metrics.StaleSnapshotsDropped.Inc()
			cancel()
			return
		}
		if err := stream.send("delta", map[string]string{"text": partial}); err != nil {
			cancel()
		}
	})

	if !token.Live() {
		metrics.StaleSnapshotsDropped.Inc()
		s.recordRun(r.Context(), "chat", "superseded", time.Since(start))
		return
	}
	s.recordRun(r.Context(), "chat", "ok", time.Since(start))
	if err := stream.send("result", map[string]string{"text": reply}); err != nil {
		s.logger.Warn("result event write failed", map[string]interface{}{"error": err.Error()})
	}
}
