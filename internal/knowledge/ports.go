package knowledge

import (
	"context"
	"iter"

	"askliberia/internal/models"
)

// Chunk is one increment of a streaming generation response. Either field may
// be empty; citations and text arrive independently.
type Chunk struct {
	Text      string
	Citations []models.Source
}

// GenerateRequest is a single-shot grounded generation request.
type GenerateRequest struct {
	Instructions string
	Prompt       string
	Temperature  float64
}

// ChatRequest is one assistant turn seeded with prior conversation history.
type ChatRequest struct {
	Instructions string
	History      []models.ChatTurn
	Message      string
}

// SpeechRequest converts bounded text into one audio payload.
type SpeechRequest struct {
	Text string
}

// Generator opens a streaming, search-grounded generation call. The sequence
// yields chunks in arrival order and at most one terminal error.
type Generator interface {
	GenerateStream(ctx context.Context, req GenerateRequest) iter.Seq2[Chunk, error]
}

// ChatStreamer opens a streaming chat call for one assistant turn.
type ChatStreamer interface {
	ChatStream(ctx context.Context, req ChatRequest) iter.Seq2[Chunk, error]
}

// SpeechSynthesizer performs a one-shot text-to-speech call.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, req SpeechRequest) ([]byte, error)
}
