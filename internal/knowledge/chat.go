package knowledge

import (
	"context"
	"strings"

	"askliberia/internal/common/metrics"
	"askliberia/internal/models"
)

// SendTurn streams one assistant turn seeded with the prior conversation.
// onUpdate, if non-nil, receives the accumulated text after every chunk. The
// returned string is the complete assistant reply, or a fixed fallback when
// the stream failed; the caller owns appending both turns to its history. A
// failed turn must never tear down the session.
func (s *Service) SendTurn(ctx context.Context, history []models.ChatTurn, message string, lang models.Language, onUpdate func(string)) string {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	req := ChatRequest{
		Instructions: ComposeChat(lang),
		History:      history,
		Message:      message,
	}

	var text strings.Builder

	for chunk, err := range s.chat.ChatStream(ctx, req) {
		if err != nil {
			s.logger.Error("chat stream failed", map[string]interface{}{
				"language":   string(lang),
				"historyLen": len(history),
				"error":      err.Error(),
			})
			metrics.ChatTurns.WithLabelValues(string(lang), "error").Inc()
			return FallbackChatError
		}

		if chunk.Text != "" {
			text.WriteString(chunk.Text)
			if onUpdate != nil {
				onUpdate(text.String())
			}
		}
	}

	metrics.ChatTurns.WithLabelValues(string(lang), "ok").Inc()

	if text.Len() == 0 {
		return FallbackNoInformation
	}
	return text.String()
}
