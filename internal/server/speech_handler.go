// internal/server/speech_handler.go
package server

import (
	"encoding/base64"
	"net/http"

	"askliberia/internal/common/errors"
)

type speechRequest struct {
	Text string `json:"text"`
}

// Raw PCM parameters of the synthesis voice; the web client builds its audio
// buffer from these.
const (
	speechSampleRate = 24000
	speechChannels   = 1
)

// handleSpeech synthesizes the given text once. Synthesis failure is an
// expected outcome and answers 200 with available=false; the player simply
// stays hidden.
func (s *Server) handleSpeech(w http.ResponseWriter, r *http.Request) {
	var req speechRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.Text == "" {
		s.writeError(w, errors.NewValidationFailedError("text is required"))
		return
	}

	audio := s.knowledge.Synthesize(r.Context(), req.Text)
	if audio == nil {
		s.writeJSON(w, http.StatusOK, map[string]interface{}{"available": false})
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"available":  true,
		"audio":      base64.StdEncoding.EncodeToString(audio),
		"sampleRate": speechSampleRate,
		"channels":   speechChannels,
	})
}
