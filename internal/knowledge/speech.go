package knowledge

import (
	"context"

	"askliberia/internal/common/metrics"
)

// Synthesize converts text into one audio payload. Input is truncated to the
// configured maximum before submission. Returns nil when synthesis is
// unavailable; callers must treat nil as "no audio", not as a fatal error.
// Results are never cached: the same text synthesizes again on every call.
func (s *Service) Synthesize(ctx context.Context, text string) []byte {
	runes := []rune(text)
	if len(runes) > s.config.SpeechMaxChars {
		text = string(runes[:s.config.SpeechMaxChars])
	}

	audio, err := s.speech.Synthesize(ctx, SpeechRequest{Text: text})
	if err != nil {
		s.logger.Error("speech synthesis failed", map[string]interface{}{
			"textLen": len(text),
			"error":   err.Error(),
		})
		metrics.SpeechRequests.WithLabelValues("error").Inc()
		return nil
	}

	metrics.SpeechRequests.WithLabelValues("ok").Inc()
	return audio
}
