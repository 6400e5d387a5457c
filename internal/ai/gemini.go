package ai

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Gemini generates text with the Gemini API
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini generator. It returns ErrDisabled for an empty key.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, ErrDisabled
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) Generate(ctx context.Context, req Request) (*Generation, error) {
	var cfg *genai.GenerateContentConfig
	if req.Grounded {
		cfg = &genai.GenerateContentConfig{
			Tools: []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
		}
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(req.Prompt), cfg)
	if err != nil {
		return nil, err
	}

	out := &Generation{Text: resp.Text()}
	if len(resp.Candidates) > 0 && resp.Candidates[0].GroundingMetadata != nil {
		for _, chunk := range resp.Candidates[0].GroundingMetadata.GroundingChunks {
			if chunk == nil || chunk.Web == nil || chunk.Web.URI == "" {
				continue
			}
			title := chunk.Web.Title
			if title == "" {
				title = "Web Source"
			}
			out.Links = append(out.Links, Link{Title: title, URI: chunk.Web.URI})
		}
	}
	return out, nil
}
