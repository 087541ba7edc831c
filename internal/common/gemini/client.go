// internal/common/gemini/client.go
package gemini

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"askliberia/internal/common/config"
	"askliberia/internal/knowledge"
	"askliberia/internal/models"

	"google.golang.org/genai"
)

// Client implements the knowledge ports on the Gemini API. One client serves
// all three call shapes: grounded search generation, chat turns, and speech.
type Client struct {
	client *genai.Client
	cfg    config.GenAIConfig
}

func NewClient(ctx context.Context, cfg config.GenAIConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("genai api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &Client{client: client, cfg: cfg}, nil
}

// GenerateStream opens a grounded streaming generation call. The Google
// Search tool is always attached; grounding citations surface as chunk
// citations.
func (c *Client) GenerateStream(ctx context.Context, req knowledge.GenerateRequest) iter.Seq2[knowledge.Chunk, error] {
	return func(yield func(knowledge.Chunk, error) bool) {
		genConfig := &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(req.Instructions, genai.RoleUser),
			Temperature:       genai.Ptr(float32(req.Temperature)),
			Tools: []*genai.Tool{
				{GoogleSearch: &genai.GoogleSearch{}},
			},
		}

		for resp, err := range c.client.Models.GenerateContentStream(ctx, c.cfg.Model, genai.Text(req.Prompt), genConfig) {
			if err != nil {
				yield(knowledge.Chunk{}, err)
				return
			}
			if !yield(toChunk(resp), nil) {
				return
			}
		}
	}
}

// ChatStream opens a streaming chat call seeded with the prior role-tagged
// turns plus the new user message.
func (c *Client) ChatStream(ctx context.Context, req knowledge.ChatRequest) iter.Seq2[knowledge.Chunk, error] {
	return func(yield func(knowledge.Chunk, error) bool) {
		genConfig := &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(req.Instructions, genai.RoleUser),
			Tools: []*genai.Tool{
				{GoogleSearch: &genai.GoogleSearch{}},
			},
		}

		contents := make([]*genai.Content, 0, len(req.History)+1)
		for _, turn := range req.History {
			role := genai.Role(genai.RoleUser)
			if turn.Role == models.RoleModel {
				role = genai.RoleModel
			}
			contents = append(contents, genai.NewContentFromText(turn.Content, role))
		}
		contents = append(contents, genai.NewContentFromText(req.Message, genai.RoleUser))

		for resp, err := range c.client.Models.GenerateContentStream(ctx, c.cfg.Model, contents, genConfig) {
			if err != nil {
				yield(knowledge.Chunk{}, err)
				return
			}
			if !yield(toChunk(resp), nil) {
				return
			}
		}
	}
}

// Synthesize performs the one-shot text-to-speech call and returns the raw
// audio payload bytes.
func (c *Client) Synthesize(ctx context.Context, req knowledge.SpeechRequest) ([]byte, error) {
	genConfig := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{
					VoiceName: c.cfg.SpeechVoice,
				},
			},
		},
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.cfg.SpeechModel, genai.Text(req.Text), genConfig)
	if err != nil {
		return nil, fmt.Errorf("speech generation failed: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("speech response carried no candidates")
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return part.InlineData.Data, nil
		}
	}
	return nil, fmt.Errorf("speech response carried no audio payload")
}

// toChunk flattens one streaming response into text plus citations. Only the
// first candidate is consulted; the service is invoked with a single
// candidate per request.
func toChunk(resp *genai.GenerateContentResponse) knowledge.Chunk {
	var chunk knowledge.Chunk
	if len(resp.Candidates) == 0 {
		return chunk
	}

	cand := resp.Candidates[0]
	if cand.Content != nil {
		var text strings.Builder
		for _, part := range cand.Content.Parts {
			text.WriteString(part.Text)
		}
		chunk.Text = text.String()
	}

	if cand.GroundingMetadata != nil {
		for _, gc := range cand.GroundingMetadata.GroundingChunks {
			if gc.Web != nil && gc.Web.URI != "" {
				chunk.Citations = append(chunk.Citations, models.Source{
					Title: gc.Web.Title,
					URI:   gc.Web.URI,
				})
			}
		}
	}

	return chunk
}
