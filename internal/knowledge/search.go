package knowledge

import (
	"context"
	"strings"
	"time"

	"askliberia/internal/common/logger"
	"askliberia/internal/common/metrics"
	"askliberia/internal/models"
)

// Fallback strings shown verbatim by the UI; changing them breaks the web
// client's empty/error rendering.
const (
	FallbackNoInformation = "No information found."
	FallbackSearchError   = "An error occurred while searching the Liberia Knowledge Base. Please try again."
	FallbackChatError     = "I'm having trouble connecting right now."
)

// Config carries the fixed generation parameters. Temperature is a deliberate
// constant of the product (factual over creative), not a per-request knob.
type Config struct {
	Temperature    float64
	Timeout        time.Duration
	SpeechMaxChars int
}

func DefaultConfig() Config {
	return Config{
		Temperature:    0.3,
		Timeout:        60 * time.Second,
		SpeechMaxChars: 2000,
	}
}

// Service orchestrates streaming generation requests against the external
// knowledge backend. All expected failures are swallowed at this boundary:
// Search and SendTurn always return a usable terminal value.
type Service struct {
	config Config
	gen    Generator
	chat   ChatStreamer
	speech SpeechSynthesizer
	logger logger.Logger
}

func NewService(cfg Config, gen Generator, chat ChatStreamer, speech SpeechSynthesizer, log logger.Logger) *Service {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	if cfg.SpeechMaxChars <= 0 {
		cfg.SpeechMaxChars = DefaultConfig().SpeechMaxChars
	}
	return &Service{
		config: cfg,
		gen:    gen,
		chat:   chat,
		speech: speech,
		logger: log.WithFields(map[string]interface{}{"component": "knowledge"}),
	}
}

// Search runs one streaming, search-grounded generation request. onUpdate, if
// non-nil, is invoked synchronously after every chunk with a fresh snapshot;
// it must not panic. The returned snapshot is terminal: fallback text on
// stream failure, placeholder text when the stream completed without any
// text, never an error.
func (s *Service) Search(ctx context.Context, query models.Query, onUpdate func(models.Snapshot)) models.Snapshot {
	start := time.Now()
	lang := string(query.Language)
	metrics.SearchesStarted.WithLabelValues(lang).Inc()

	prompt := Compose(query.Text, query.County, query.Language)

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	req := GenerateRequest{
		Instructions: prompt.Instructions,
		Prompt:       prompt.Payload,
		Temperature:  s.config.Temperature,
	}

	var text strings.Builder
	sources := newSourceSet()

	for chunk, err := range s.gen.GenerateStream(ctx, req) {
		if err != nil {
			s.logger.Error("search stream failed", map[string]interface{}{
				"county":   query.County,
				"language": lang,
				"error":    err.Error(),
			})
			metrics.SearchesFailed.WithLabelValues(lang).Inc()
			return models.Snapshot{Text: FallbackSearchError, Sources: []models.Source{}, Final: true}
		}

		sources.Fold(chunk.Citations)
		if chunk.Text != "" {
			text.WriteString(chunk.Text)
		}

		if onUpdate != nil {
			onUpdate(models.Snapshot{Text: text.String(), Sources: sources.Items()})
		}
	}

	metrics.SearchDuration.WithLabelValues(lang).Observe(time.Since(start).Seconds())

	if text.Len() == 0 {
		return models.Snapshot{Text: FallbackNoInformation, Sources: []models.Source{}, Final: true}
	}

	return models.Snapshot{Text: text.String(), Sources: sources.Items(), Final: true}
}
